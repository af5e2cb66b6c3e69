package watermark

import (
	"context"
	"fmt"

	cmerrors "github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/sidecar"
	"github.com/mrz1836/cardmark/internal/sigil"
)

// MessageOK is the Result message for a matching signature.
const MessageOK = "OK"

// Result is the outcome of verifying one card.
type Result struct {
	CardDir     string `json:"card_dir"`
	SidecarPath string `json:"sidecar_path"`
	Valid       bool   `json:"valid"`
	Message     string `json:"message"`
	Expected    string `json:"expected,omitempty"`
	Actual      string `json:"actual,omitempty"`
}

// Verify recomputes the signature for cardDir and compares it with the one
// embedded in the sidecar (default: <card-dir>/<sidecar name>).
//
// Only the sidecar text is trusted. The stamped PNG is never inspected, so
// replacing the raster does not fail verification.
//
// A nil error means the signature matched. Every failure returns a Result
// with Valid=false together with an error: cmerrors.ErrInputMissing for a
// missing sidecar, cmerrors.ErrSignatureNotFound for a sidecar without a marker
// and cmerrors.ErrSignatureMismatch when the signatures differ.
func (s *Service) Verify(ctx context.Context, cardDir, sidecarPath string) (*Result, error) {
	if sidecarPath == "" {
		sidecarPath = s.SidecarPath(cardDir)
	}
	res := &Result{CardDir: cardDir, SidecarPath: sidecarPath}

	if !sidecar.Exists(sidecarPath) {
		res.Message = fmt.Sprintf("Missing %s", sidecarPath)
		return res, fmt.Errorf("missing %s: %w", sidecarPath, cmerrors.ErrInputMissing)
	}

	signed, err := s.Compute(ctx, cardDir)
	if err != nil {
		res.Message = err.Error()
		return res, err
	}
	res.Expected = signed.Signature

	text, err := sidecar.Read(sidecarPath)
	if err != nil {
		res.Message = err.Error()
		return res, err
	}

	actual, err := sidecar.ExtractSignature(text)
	if err != nil {
		res.Message = fmt.Sprintf("Could not find embedded hypertext_sig in %s", sidecarPath)
		return res, fmt.Errorf("%s: %w", sidecarPath, err)
	}
	res.Actual = actual

	if actual != signed.Signature {
		res.Message = fmt.Sprintf("Signature mismatch: expected=%s, actual=%s", signed.Signature, actual)
		s.logger.Warn().
			Str("card", signed.Identity.Label()).
			Str("sidecar", sidecarPath).
			Msg("signature mismatch")
		return res, fmt.Errorf("%s: %w", signed.Identity.Label(), cmerrors.ErrSignatureMismatch)
	}

	res.Valid = true
	res.Message = MessageOK
	s.logger.Debug().
		Str("card", signed.Identity.Label()).
		Msg("signature verified")
	return res, nil
}

// Inspection describes a card's computed and embedded watermark data.
// It never includes key material.
type Inspection struct {
	Signed           *Signed `json:"computed"`
	SidecarPath      string  `json:"sidecar_path"`
	SidecarPresent   bool    `json:"sidecar_present"`
	EmbeddedSig      string  `json:"embedded_signature,omitempty"`
	EmbeddedPayload  string  `json:"embedded_payload,omitempty"`
	PayloadMatches   bool    `json:"payload_matches"`
	SignatureMatches bool    `json:"signature_matches"`
	Grid             string  `json:"grid"`
}

// Inspect gathers everything known about a card's watermark for display.
// A missing sidecar is reported, not returned as an error.
func (s *Service) Inspect(ctx context.Context, cardDir, sidecarPath string) (*Inspection, error) {
	if sidecarPath == "" {
		sidecarPath = s.SidecarPath(cardDir)
	}

	signed, err := s.Compute(ctx, cardDir)
	if err != nil {
		return nil, err
	}

	grid, err := sigil.NewGrid(signed.Signature)
	if err != nil {
		return nil, err
	}

	in := &Inspection{Signed: signed, SidecarPath: sidecarPath, Grid: grid.String()}
	if !sidecar.Exists(sidecarPath) {
		return in, nil
	}
	in.SidecarPresent = true

	text, err := sidecar.Read(sidecarPath)
	if err != nil {
		return nil, err
	}
	if sig, err := sidecar.ExtractSignature(text); err == nil {
		in.EmbeddedSig = sig
		in.SignatureMatches = sig == signed.Signature
	}
	if p, ok := sidecar.ExtractPayload(text); ok {
		in.EmbeddedPayload = p
		in.PayloadMatches = p == signed.Payload
	}
	return in, nil
}

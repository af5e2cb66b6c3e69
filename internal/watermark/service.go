// Package watermark orchestrates signing, stamping and verifying card artifacts.
//
// Per-card operations are synchronous and independent; the signer is shared
// read-only. Identity, payload and signature are recomputed on every call and
// never cached.
package watermark

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/cardmark/internal/card"
	"github.com/mrz1836/cardmark/internal/clock"
	"github.com/mrz1836/cardmark/internal/crypto"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/raster"
	"github.com/mrz1836/cardmark/internal/sidecar"
)

// Service runs watermark operations for card directories.
type Service struct {
	signer   crypto.PayloadSigner
	settings Settings
	logger   zerolog.Logger
	clock    clock.Clock
}

// NewService creates a Service. Zero-valued settings fields take defaults.
func NewService(signer crypto.PayloadSigner, settings Settings, logger zerolog.Logger) *Service {
	return &Service{
		signer:   signer,
		settings: settings.withDefaults(),
		logger:   logger.With().Str("component", "watermark").Logger(),
		clock:    clock.RealClock{},
	}
}

// Settings returns the effective settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// Signed is a card identity together with its payload and signature.
type Signed struct {
	CardDir   string        `json:"card_dir"`
	Identity  card.Identity `json:"identity"`
	Payload   string        `json:"payload"`
	Signature string        `json:"signature"`
}

// SidecarPath returns the default sidecar location for cardDir.
func (s *Service) SidecarPath(cardDir string) string {
	return filepath.Join(cardDir, s.settings.SidecarName)
}

// ImagePath returns the default card image location for cardDir.
func (s *Service) ImagePath(cardDir string) string {
	return filepath.Join(cardDir, filepath.FromSlash(s.settings.DefaultImage))
}

// Compute loads the card identity and signs its canonical payload.
func (s *Service) Compute(ctx context.Context, cardDir string) (*Signed, error) {
	id, err := card.LoadFile(ctx, filepath.Join(cardDir, s.settings.CardFile))
	if err != nil {
		return nil, err
	}

	payload := id.CanonicalPayload()
	sig, err := s.signer.SignHex(ctx, payload)
	if err != nil {
		return nil, cmerrors.Wrap(err, "failed to sign payload")
	}

	return &Signed{CardDir: cardDir, Identity: id, Payload: payload, Signature: sig}, nil
}

// SignOptions controls Sign.
type SignOptions struct {
	// Out is the sidecar path. Default: <card-dir>/<sidecar name>.
	Out string
	// Size is the sidecar display size. Default: configured SVG size.
	Size int
}

// Sign computes the signature for cardDir and (re)writes its sidecar.
// It returns the path written.
func (s *Service) Sign(ctx context.Context, cardDir string, opts SignOptions) (string, error) {
	signed, err := s.Compute(ctx, cardDir)
	if err != nil {
		return "", err
	}

	out := opts.Out
	if out == "" {
		out = s.SidecarPath(cardDir)
	}
	size := opts.Size
	if size <= 0 {
		size = s.settings.SVGSize
	}

	if err := s.writeSidecar(ctx, signed, out, size); err != nil {
		return "", err
	}

	s.logger.Info().
		Str("card", signed.Identity.Label()).
		Str("sidecar", out).
		Msg("sidecar written")
	return out, nil
}

func (s *Service) writeSidecar(ctx context.Context, signed *Signed, path string, size int) error {
	doc, err := sidecar.Build(signed.Signature, signed.Payload, size)
	if err != nil {
		return err
	}
	return sidecar.Write(ctx, path, doc, s.settings.LockTimeout)
}

// ApplyOptions controls Apply.
type ApplyOptions struct {
	// In is the source PNG. Default: <card-dir>/<default image>.
	In string
	// Out is the destination PNG. Default: In.
	Out string
	// Raster overrides sigil size and placement when Size is set.
	Raster raster.Options
}

// ApplyResult reports what Apply wrote.
type ApplyResult struct {
	ImagePath      string `json:"image_path"`
	SidecarPath    string `json:"sidecar_path"`
	SidecarWritten bool   `json:"sidecar_written"`
	Signature      string `json:"signature"`
}

// Apply burns the sigil into the card PNG. The sidecar is written only if it
// does not exist yet; an existing sidecar is left untouched.
func (s *Service) Apply(ctx context.Context, cardDir string, opts ApplyOptions) (*ApplyResult, error) {
	in := opts.In
	if in == "" {
		in = s.ImagePath(cardDir)
	}
	ro := opts.Raster
	if ro.Size <= 0 {
		ro = s.settings.Raster
	}
	if ro.LockTimeout <= 0 {
		ro.LockTimeout = s.settings.LockTimeout
	}

	signed, err := s.Compute(ctx, cardDir)
	if err != nil {
		return nil, err
	}

	res := &ApplyResult{SidecarPath: s.SidecarPath(cardDir), Signature: signed.Signature}
	if !sidecar.Exists(res.SidecarPath) {
		if err := s.writeSidecar(ctx, signed, res.SidecarPath, s.settings.SVGSize); err != nil {
			return nil, err
		}
		res.SidecarWritten = true
	}

	res.ImagePath, err = raster.ApplyFile(ctx, in, opts.Out, signed.Signature, ro)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("card", signed.Identity.Label()).
		Str("image", res.ImagePath).
		Bool("sidecar_written", res.SidecarWritten).
		Msg("watermark applied")
	return res, nil
}

// Package sidecar renders, writes and parses the watermark.svg sidecar.
//
// The sidecar holds the diamond sigil plus two plaintext comment lines:
//
//	<!-- hypertext_sig:<64 hex> -->
//	<!-- hypertext_payload:<canonical payload> -->
//
// The embedded signature is what verification compares against. Nothing in the
// sidecar ties it to a particular raster, so a stamped PNG can be swapped
// without failing verification.
package sidecar

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/fileutil"
	"github.com/mrz1836/cardmark/internal/sigil"
)

//go:embed templates/watermark.svg.tmpl
var templateFS embed.FS

// Geometry in viewBox units.
const (
	viewBox  = 100
	pad      = 6
	gridSize = 58.0
	dotRatio = 0.62

	strokeColor = "#0a192f"
	fillColor   = "#c5a059"
)

var (
	//nolint:gochecknoglobals // parsed once from the embedded template
	svgTemplate = template.Must(template.ParseFS(templateFS, "templates/watermark.svg.tmpl"))

	//nolint:gochecknoglobals // compiled once
	sigPattern = regexp.MustCompile(regexp.QuoteMeta(constants.SignatureMarker) + `([0-9a-f]{64})`)

	//nolint:gochecknoglobals // compiled once
	payloadPattern = regexp.MustCompile(`<!-- ` + regexp.QuoteMeta(constants.PayloadMarker) + `(.*) -->`)
)

type dot struct {
	X, Y float64
}

type view struct {
	Signature string
	Payload   string
	Size      int
	ViewBox   int
	Diamond   string
	Center    string
	Stroke    string
	Fill      string
	DotSize   float64
	Dots      []dot
}

// Build renders the sidecar for sigHex and payload at sizePx display pixels.
//
// The payload is embedded verbatim. A payload containing "--" yields a comment
// that strict XML parsers reject; existing sidecars were written the same way,
// so it is not escaped.
func Build(sigHex, payload string, sizePx int) (string, error) {
	grid, err := sigil.NewGrid(sigHex)
	if err != nil {
		return "", err
	}

	center := float64(viewBox) / 2
	c := fmt.Sprintf("%.1f", center)
	origin := (viewBox - gridSize) / 2
	cell := gridSize / constants.SigilGridSide
	dotSize := cell * dotRatio
	dotPad := (cell - dotSize) / 2

	v := view{
		Signature: sigHex,
		Payload:   payload,
		Size:      sizePx,
		ViewBox:   viewBox,
		Diamond:   fmt.Sprintf("%s,%d %d,%s %s,%d %d,%s", c, pad, viewBox-pad, c, c, viewBox-pad, pad, c),
		Center:    c,
		Stroke:    strokeColor,
		Fill:      fillColor,
		DotSize:   dotSize,
	}
	for _, cl := range grid.SetCells() {
		v.Dots = append(v.Dots, dot{
			X: origin + float64(cl.Col)*cell + dotPad,
			Y: origin + float64(cl.Row)*cell + dotPad,
		})
	}

	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to render sidecar: %w", err)
	}
	return buf.String(), nil
}

// Write stores doc at path atomically while holding an exclusive lock on
// path + ".lock". Parent directories are created.
func Write(ctx context.Context, path, doc string, lockTimeout time.Duration) error {
	if err := fileutil.WriteLocked(ctx, path, []byte(doc), fileutil.FilePerm, lockTimeout); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", path, err)
	}
	return nil
}

// Read returns the sidecar text at path. A missing file is an input error.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is the caller's sidecar location
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("missing %s: %w", path, cmerrors.ErrInputMissing)
		}
		return "", fmt.Errorf("failed to read sidecar %s: %w", path, err)
	}
	return string(data), nil
}

// Exists reports whether a sidecar is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExtractSignature returns the first embedded signature in text.
func ExtractSignature(text string) (string, error) {
	m := sigPattern.FindStringSubmatch(text)
	if m == nil {
		return "", cmerrors.ErrSignatureNotFound
	}
	return m[1], nil
}

// ExtractPayload returns the embedded payload line. It is informational only:
// verification recomputes the payload from the card record.
func ExtractPayload(text string) (string, bool) {
	m := payloadPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimRight(m[1], "\r"), true
}

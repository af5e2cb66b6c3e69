// Package raster burns the sigil into a card PNG.
//
// The overlay is visual only. Pixels are never read back for verification.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/fileutil"
)

// Options controls sigil size and placement.
type Options struct {
	// Size is the sigil side length in pixels.
	Size int
	// Inset is the distance from the bottom-right corner.
	Inset int
	// MarginX and MarginY are added to Inset on each axis.
	MarginX int
	MarginY int
	// LockTimeout bounds the wait for the output file lock in ApplyFile.
	LockTimeout time.Duration
}

// DefaultOptions returns the placement used for issued cards.
func DefaultOptions() Options {
	return Options{
		Size:        constants.DefaultRasterSize,
		Inset:       constants.DefaultInset,
		MarginX:     constants.DefaultMarginX,
		MarginY:     constants.DefaultMarginY,
		LockTimeout: constants.DefaultLockTimeout,
	}
}

// Validate rejects sizes that cannot be drawn.
func (o Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: raster size must be positive, got %d", cmerrors.ErrConfigInvalidWatermark, o.Size)
	}
	if o.Inset < 0 || o.MarginX < 0 || o.MarginY < 0 {
		return fmt.Errorf("%w: inset and margins must not be negative", cmerrors.ErrConfigInvalidWatermark)
	}
	return nil
}

// Placement returns where the sigil goes on an image with the given bounds.
// The result may extend past the image; Composite clips it.
func Placement(bounds image.Rectangle, o Options) image.Rectangle {
	x := bounds.Max.X - o.Inset - o.Size - o.MarginX
	y := bounds.Max.Y - o.Inset - o.Size - o.MarginY
	return image.Rect(x, y, x+o.Size, y+o.Size)
}

// Composite returns a copy of src with the sigil for sigHex drawn over its
// bottom-right corner, and the clipped rectangle that was touched. Pixels
// outside that rectangle equal src converted to NRGBA.
func Composite(src image.Image, sigHex string, o Options) (*image.NRGBA, image.Rectangle, error) {
	if err := o.Validate(); err != nil {
		return nil, image.Rectangle{}, err
	}

	layer, err := Sigil(sigHex, o.Size)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	dst := toNRGBA(src)
	target := Placement(dst.Bounds(), o)
	draw.Draw(dst, target, layer, layer.Bounds().Min, draw.Over)

	return dst, target.Intersect(dst.Bounds()), nil
}

// Flatten drops the alpha channel: every pixel keeps its colour and becomes opaque.
func Flatten(img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X-1, y)+4]
		for i := 3; i < len(row); i += 4 {
			row[i] = 0xff
		}
	}
}

// ApplyFile stamps the PNG at inPath and writes the opaque result to outPath
// (inPath when empty). It returns the path written.
func ApplyFile(ctx context.Context, inPath, outPath, sigHex string, o Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if outPath == "" {
		outPath = inPath
	}

	src, err := decodePNG(inPath)
	if err != nil {
		return "", err
	}

	out, _, err := Composite(src, sigHex, o)
	if err != nil {
		return "", err
	}
	Flatten(out)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", outPath, err)
	}

	timeout := o.LockTimeout
	if timeout <= 0 {
		timeout = constants.DefaultLockTimeout
	}
	if err := fileutil.WriteLocked(ctx, outPath, buf.Bytes(), fileutil.FilePerm, timeout); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return outPath, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path) //#nosec G304 -- path is the caller's card image
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("missing %s: %w", path, cmerrors.ErrInputMissing)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", cmerrors.ErrImageDecode, path, err)
	}
	return img, nil
}

// toNRGBA returns a private NRGBA copy of src. NRGBA sources are copied
// byte for byte; others go through the standard colour conversion.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok {
		dst := image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			copy(dst.Pix[dst.PixOffset(b.Min.X, y):], n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X-1, y)+4])
		}
		return dst
	}
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

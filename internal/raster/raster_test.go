package raster

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
	"github.com/mrz1836/cardmark/internal/sigil"
	"github.com/mrz1836/cardmark/internal/testutil"
)

const magiSignature = "55fe6775978f7d338045df1b5b5c4d722fd1e4c48298f871bfa6ee95e74adf15"

func TestPlacement(t *testing.T) {
	t.Parallel()

	got := Placement(image.Rect(0, 0, 1024, 1536), DefaultOptions())
	assert.Equal(t, image.Rect(960, 1480, 996, 1516), got)

	got = Placement(image.Rect(0, 0, 200, 300), Options{Size: 20, Inset: 5})
	assert.Equal(t, image.Rect(175, 275, 195, 295), got)
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultOptions().Validate())
	require.ErrorIs(t, Options{Size: 0}.Validate(), cmerrors.ErrConfigInvalidWatermark)
	require.ErrorIs(t, Options{Size: 10, Inset: -1}.Validate(), cmerrors.ErrConfigInvalidWatermark)
	require.ErrorIs(t, Options{Size: 10, MarginY: -2}.Validate(), cmerrors.ErrConfigInvalidWatermark)
}

func TestSigil(t *testing.T) {
	t.Parallel()

	layer, err := Sigil(magiSignature, 36)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 36, 36), layer.Bounds())

	// Corners lie outside the diamond.
	for _, p := range []image.Point{{0, 0}, {35, 0}, {0, 35}, {35, 35}} {
		assert.Zero(t, layer.RGBAAt(p.X, p.Y).A, "corner %v", p)
	}
	// Centre dot and the diamond's top vertex are painted.
	assert.NotZero(t, layer.RGBAAt(18, 18).A)
	assert.NotZero(t, layer.RGBAAt(18, 3).A)

	again, err := Sigil(magiSignature, 36)
	require.NoError(t, err)
	assert.Equal(t, layer.Pix, again.Pix)

	other, err := Sigil(strings.Repeat("00", 32), 36)
	require.NoError(t, err)
	assert.NotEqual(t, layer.Pix, other.Pix)
}

func TestSigil_PaintsEveryShape(t *testing.T) {
	t.Parallel()

	grid, err := sigil.NewGrid(magiSignature)
	require.NoError(t, err)
	cells := grid.SetCells()
	require.Len(t, cells, 16)

	for _, size := range []int{36, 72} {
		layer, err := Sigil(magiSignature, size)
		require.NoError(t, err)

		gridSize := int(float64(size) * gridRatio)
		x0 := float64(size-gridSize) / 2
		cell := float64(gridSize) / constants.SigilGridSide
		for _, c := range cells {
			x := int(float64(int(x0)) + (float64(c.Col)+0.5)*cell)
			y := int(float64(int(x0)) + (float64(c.Row)+0.5)*cell)
			assert.NotZero(t, layer.RGBAAt(x, y).A, "size %d cell %d,%d", size, c.Row, c.Col)
		}

		mid := size / 2
		for _, v := range []image.Point{{mid, sigilPad}, {size - sigilPad, mid}, {mid, size - sigilPad}, {sigilPad, mid}} {
			assert.NotZero(t, layer.RGBAAt(v.X, v.Y).A, "size %d diamond vertex %v", size, v)
		}
		assert.NotZero(t, layer.RGBAAt(mid, mid).A, "size %d centre", size)

		painted := 0
		for i := 3; i < len(layer.Pix); i += 4 {
			if layer.Pix[i] != 0 {
				painted++
			}
		}
		assert.Greater(t, painted, size*size/10, "size %d", size)
	}
}

func TestSigil_InvalidSignature(t *testing.T) {
	t.Parallel()

	_, err := Sigil("nope", 36)
	require.ErrorIs(t, err, cmerrors.ErrInvalidSignature)
}

func TestComposite_Locality(t *testing.T) {
	t.Parallel()

	src := testutil.NewCardImage(200, 300)
	out, touched, err := Composite(src, magiSignature, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(136, 244, 172, 280), touched)

	changed := 0
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := image.Pt(x, y)
			if p.In(touched) {
				if out.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
					changed++
				}
				continue
			}
			require.Equal(t, src.NRGBAAt(x, y), out.NRGBAAt(x, y), "pixel %v outside overlay changed", p)
		}
	}
	assert.Positive(t, changed)

	// Source is untouched.
	assert.Equal(t, testutil.NewCardImage(200, 300).Pix, src.Pix)
}

func TestComposite_Clipped(t *testing.T) {
	t.Parallel()

	t.Run("partially off image", func(t *testing.T) {
		t.Parallel()
		src := testutil.NewCardImage(60, 60)
		out, touched, err := Composite(src, magiSignature, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 4, 32, 40), touched)
		assert.Equal(t, src.Bounds(), out.Bounds())
	})

	t.Run("entirely off image", func(t *testing.T) {
		t.Parallel()
		src := testutil.NewCardImage(20, 20)
		out, touched, err := Composite(src, magiSignature, DefaultOptions())
		require.NoError(t, err)
		assert.True(t, touched.Empty())
		assert.Equal(t, src.Pix, out.Pix)
	})
}

func TestComposite_NonNRGBASource(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 120, 120))
	out, touched, err := Composite(src, magiSignature, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), out.NRGBAAt(0, 0).A)
	assert.False(t, touched.Empty())
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}
	Flatten(img)

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			c := img.NRGBAAt(x, y)
			assert.Equal(t, uint8(0xff), c.A)
			assert.Equal(t, uint8(0x40), c.R)
		}
	}
}

func TestApplyFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes stamped copy", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		in := filepath.Join(dir, "outputs", "card.png")
		out := filepath.Join(dir, "stamped", "card.png")
		testutil.WritePNG(t, in, testutil.NewCardImage(128, 192))

		written, err := ApplyFile(ctx, in, out, magiSignature, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, out, written)

		img := testutil.ReadPNG(t, out)
		assert.Equal(t, image.Rect(0, 0, 128, 192), img.Bounds())
		_, _, _, a := img.At(5, 5).RGBA()
		assert.Equal(t, uint32(0xffff), a)

		// Input left alone.
		orig := testutil.ReadPNG(t, in)
		wr, wg, wb, wa := testutil.NewCardImage(128, 192).At(100, 150).RGBA()
		gr, gg, gb, ga := orig.At(100, 150).RGBA()
		assert.Equal(t, []uint32{wr, wg, wb, wa}, []uint32{gr, gg, gb, ga})
	})

	t.Run("defaults to overwriting input", func(t *testing.T) {
		t.Parallel()
		in := filepath.Join(t.TempDir(), "card.png")
		testutil.WritePNG(t, in, testutil.NewCardImage(128, 192))
		before, err := os.ReadFile(in) //#nosec G304 -- test temp dir
		require.NoError(t, err)

		written, err := ApplyFile(ctx, in, "", magiSignature, Options{Size: 36, Inset: 12, LockTimeout: time.Second})
		require.NoError(t, err)
		assert.Equal(t, in, written)

		after, err := os.ReadFile(in) //#nosec G304 -- test temp dir
		require.NoError(t, err)
		assert.NotEqual(t, before, after)
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()
		_, err := ApplyFile(ctx, filepath.Join(t.TempDir(), "none.png"), "", magiSignature, DefaultOptions())
		require.ErrorIs(t, err, cmerrors.ErrInputMissing)
	})

	t.Run("not a png", func(t *testing.T) {
		t.Parallel()
		in := filepath.Join(t.TempDir(), "card.png")
		require.NoError(t, os.WriteFile(in, []byte("GIF89a"), 0o600))

		_, err := ApplyFile(ctx, in, "", magiSignature, DefaultOptions())
		require.ErrorIs(t, err, cmerrors.ErrImageDecode)
	})

	t.Run("invalid options", func(t *testing.T) {
		t.Parallel()
		in := filepath.Join(t.TempDir(), "card.png")
		testutil.WritePNG(t, in, testutil.NewCardImage(64, 64))

		_, err := ApplyFile(ctx, in, "", magiSignature, Options{Size: -1})
		require.ErrorIs(t, err, cmerrors.ErrConfigInvalidWatermark)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ApplyFile(cctx, "x.png", "", magiSignature, DefaultOptions())
		require.ErrorIs(t, err, context.Canceled)
	})
}

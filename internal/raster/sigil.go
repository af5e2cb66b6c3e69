package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/mrz1836/cardmark/internal/constants"
	"github.com/mrz1836/cardmark/internal/sigil"
)

//nolint:gochecknoglobals // palette
var (
	navy = color.NRGBA{R: 10, G: 25, B: 47, A: 175}
	gold = color.NRGBA{R: 197, G: 160, B: 89, A: 185}
)

// Sigil geometry in layer pixels.
const (
	sigilPad     = 3
	gridRatio    = 0.62
	dotRatio     = 0.62
	dotRadius    = 2
	navyStroke   = 2
	goldStroke   = 1
	centerRatio  = 0.03
	bezierCircle = 0.5522847498
)

// Pixel i covers [i, i+1). Vertices given in pixel indices are moved to the
// pixel centre so one-pixel strokes land on a single column.
const half = 0.5

// Sigil draws the diamond sigil for sigHex on a transparent size×size layer.
//
// Shapes are painted in order with replace semantics: later shapes overwrite
// earlier ones instead of blending with them.
func Sigil(sigHex string, size int) (*image.RGBA, error) {
	grid, err := sigil.NewGrid(sigHex)
	if err != nil {
		return nil, err
	}

	layer := image.NewRGBA(image.Rect(0, 0, size, size))
	p := &painter{
		dst:  layer,
		mask: image.NewAlpha(layer.Bounds()),
		z:    vector.NewRasterizer(size, size),
	}

	w := float32(size)
	c := w / 2
	diamond := [4][2]float32{
		{c, sigilPad},
		{w - sigilPad, c},
		{c, w - sigilPad},
		{sigilPad, c},
	}
	p.outline(diamond[:], navyStroke, navy)
	p.outline(diamond[:], goldStroke, gold)

	gridSize := int(float64(size) * gridRatio)
	x0 := int(float64(size-gridSize) / 2)
	y0 := x0
	cell := float64(gridSize) / constants.SigilGridSide
	dot := cell * dotRatio
	inset := (cell - dot) / 2
	for _, cl := range grid.SetCells() {
		x := float64(x0) + float64(cl.Col)*cell + inset
		y := float64(y0) + float64(cl.Row)*cell + inset
		p.roundedRect(float32(x), float32(y), float32(x+dot)+1, float32(y+dot)+1, dotRadius, gold)
	}

	r := max(1, int(float64(size)*centerRatio))
	p.circle(c+half, c+half, float32(r)+half, gold)

	return layer, nil
}

type painter struct {
	dst  *image.RGBA
	mask *image.Alpha
	z    *vector.Rasterizer
}

// fill rasterizes path into the coverage mask, then replaces covered pixels
// with c. Partial coverage interpolates between the old pixel and c; pixels
// the path does not touch keep their value.
func (p *painter) fill(c color.Color, path func(z *vector.Rasterizer)) {
	b := p.dst.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
	p.z.DrawOp = draw.Src
	path(p.z)
	p.z.Draw(p.mask, b, image.Opaque, image.Point{})

	r, g, bl, a := c.RGBA()
	src := [4]uint32{r >> 8, g >> 8, bl >> 8, a >> 8}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m := uint32(p.mask.AlphaAt(x, y).A)
			if m == 0 {
				continue
			}
			i := p.dst.PixOffset(x, y)
			px := p.dst.Pix[i : i+4 : i+4]
			for k := range px {
				px[k] = uint8((src[k]*m + uint32(px[k])*(0xff-m)) / 0xff)
			}
		}
	}
}

// outline strokes the closed polygon pts with a line of width centred on its edges.
func (p *painter) outline(pts [][2]float32, width float32, c color.Color) {
	hw := width / 2
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		p.segment(a[0]+half, a[1]+half, b[0]+half, b[1]+half, hw, c)
		p.circle(a[0]+half, a[1]+half, hw, c)
	}
}

func (p *painter) segment(ax, ay, bx, by, hw float32, c color.Color) {
	dx, dy := bx-ax, by-ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	p.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(ax+nx, ay+ny)
		z.LineTo(bx+nx, by+ny)
		z.LineTo(bx-nx, by-ny)
		z.LineTo(ax-nx, ay-ny)
		z.ClosePath()
	})
}

func (p *painter) roundedRect(x0, y0, x1, y1, r float32, c color.Color) {
	r = min(r, (x1-x0)/2, (y1-y0)/2)
	k := r * bezierCircle
	p.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(x0+r, y0)
		z.LineTo(x1-r, y0)
		z.CubeTo(x1-r+k, y0, x1, y0+r-k, x1, y0+r)
		z.LineTo(x1, y1-r)
		z.CubeTo(x1, y1-r+k, x1-r+k, y1, x1-r, y1)
		z.LineTo(x0+r, y1)
		z.CubeTo(x0+r-k, y1, x0, y1-r+k, x0, y1-r)
		z.LineTo(x0, y0+r)
		z.CubeTo(x0, y0+r-k, x0+r-k, y0, x0+r, y0)
		z.ClosePath()
	})
}

func (p *painter) circle(cx, cy, r float32, c color.Color) {
	k := r * bezierCircle
	p.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(cx+r, cy)
		z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
		z.ClosePath()
	})
}

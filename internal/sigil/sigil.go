// Package sigil turns a hex signature into the bit grid drawn by the vector
// and raster watermarks.
//
// The grid is a visual identifier only. It carries 25 of the 256 signature
// bits and is never used to decide authenticity.
package sigil

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

// Bits decodes sigHex and returns its first n bits, most significant bit of
// each byte first. Fewer than n bits are returned when the digest is shorter;
// a non-positive n yields an empty slice.
func Bits(sigHex string, n int) ([]uint8, error) {
	raw, err := hex.DecodeString(sigHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cmerrors.ErrInvalidSignature, err)
	}
	if n <= 0 {
		return []uint8{}, nil
	}

	n = min(n, len(raw)*8)
	bits := make([]uint8, 0, n)
	for _, b := range raw {
		for i := 7; i >= 0; i-- {
			if len(bits) == n {
				return bits, nil
			}
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits, nil
}

// Grid is a square bit matrix indexed [row][col].
type Grid [constants.SigilGridSide][constants.SigilGridSide]bool

// NewGrid maps the first 25 bits of sigHex row-major onto a 5x5 grid:
// bit k lands at row k/5, column k%5.
func NewGrid(sigHex string) (Grid, error) {
	var g Grid
	bits, err := Bits(sigHex, constants.SigilBits)
	if err != nil {
		return g, err
	}
	for k, bit := range bits {
		g[k/constants.SigilGridSide][k%constants.SigilGridSide] = bit == 1
	}
	return g, nil
}

// Cell is a grid position.
type Cell struct {
	Row int
	Col int
}

// SetCells returns the positions of set bits in row-major order.
func (g Grid) SetCells() []Cell {
	var cells []Cell
	for r := range g {
		for c := range g[r] {
			if g[r][c] {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// String renders the grid as text, one row per line: "#" for set, "." for clear.
func (g Grid) String() string {
	var b strings.Builder
	for r := range g {
		for c := range g[r] {
			if g[r][c] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if r < len(g)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

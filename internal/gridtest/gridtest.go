// Package gridtest writes synthetic NADCON .las/.los grid files for tests.
package gridtest

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	headerSize = 56 + 8 + 8*4
	cellStride = 16
)

// ValueFunc returns the shift stored at a 1-based grid node.
type ValueFunc func(row, col int) float32

// Constant returns v at every node.
func Constant(v float32) ValueFunc {
	return func(int, int) float32 { return v }
}

// Plane returns a + perCol*(col-1) + perRow*(row-1).
func Plane(a, perCol, perRow float32) ValueFunc {
	return func(row, col int) float32 {
		return a + perCol*float32(col-1) + perRow*float32(row-1)
	}
}

// Grid describes the header of a synthetic grid.
type Grid struct {
	Ident    string
	Program  string
	NCols    int32
	NRows    int32
	NZ       int32
	OriginX  float32
	DX       float32
	OriginY  float32
	DY       float32
	Rotation float32
}

// Span returns a grid covering [xmin, xmax] x [ymin, ymax] with the given
// node spacing.
func Span(xmin, xmax, ymin, ymax, dx, dy float64) Grid {
	return Grid{
		Ident:   "NADCON EXTRACTED REGION",
		Program: "gridtest",
		NCols:   int32(math.Round((xmax-xmin)/dx)) + 1,
		NRows:   int32(math.Round((ymax-ymin)/dy)) + 1,
		NZ:      1,
		OriginX: float32(xmin),
		DX:      float32(dx),
		OriginY: float32(ymin),
		DY:      float32(dy),
	}
}

// Offset returns the byte offset of node (row, col).
func (g Grid) Offset(row, col int) int64 {
	return int64(row)*cellStride*int64(g.NCols+1) + 4*int64(col)
}

// Encode renders one grid file holding values at every node.
func (g Grid) Encode(values ValueFunc, order binary.ByteOrder) ([]byte, error) {
	if g.Offset(1, 1) < headerSize {
		return nil, fmt.Errorf("gridtest: %d columns is too narrow, the header overlaps row 1", g.NCols)
	}
	buf := make([]byte, int64(g.NRows+1)*cellStride*int64(g.NCols+1))

	copy(buf[:56], g.Ident)
	copy(buf[56:64], g.Program)
	num := buf[64:headerSize]
	order.PutUint32(num[0:], uint32(g.NCols))
	order.PutUint32(num[4:], uint32(g.NRows))
	order.PutUint32(num[8:], uint32(g.NZ))
	for i, f := range []float32{g.OriginX, g.DX, g.OriginY, g.DY, g.Rotation} {
		order.PutUint32(num[12+4*i:], math.Float32bits(f))
	}

	for row := 1; row <= int(g.NRows); row++ {
		for col := 1; col <= int(g.NCols); col++ {
			order.PutUint32(buf[g.Offset(row, col):], math.Float32bits(values(row, col)))
		}
	}
	return buf, nil
}

// Write stores a .las/.los pair at base in fsys.
func Write(fsys afero.Fs, base string, g Grid, lat, lon ValueFunc, order binary.ByteOrder) error {
	if err := fsys.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return err
	}
	for _, f := range []struct {
		ext    string
		values ValueFunc
	}{{".las", lat}, {".los", lon}} {
		b, err := g.Encode(f.values, order)
		if err != nil {
			return err
		}
		if err := afero.WriteFile(fsys, base+f.ext, b, 0644); err != nil {
			return err
		}
	}
	return nil
}

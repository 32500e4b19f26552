package nadcon

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/afero"
)

// Grid file layout. The header is 56 bytes of identification text, an 8
// byte program tag and eight 4-byte numeric fields. Node records are
// addressed with a 16-byte stride per cell, so record r starts at
// r*16*(ncols+1); record 0 holds the header.
const (
	identLen    = 56
	programLen  = 8
	HeaderSize  = identLen + programLen + 8*4
	cellStride  = 16
	nodeSize    = 4
	nodePairLen = 2 * nodeSize
)

// GridHeader is the metadata block at the start of every .las/.los file.
type GridHeader struct {
	Ident    string // Free-text identification, not validated
	Program  string // Producing program tag, not validated
	NCols    int32
	NRows    int32
	NZ       int32
	OriginX  float32
	DX       float32
	OriginY  float32
	DY       float32
	Rotation float32
}

// mismatch returns the name of the first numeric field on which h and o
// differ, or "" if they agree. Floats are compared bit for bit.
func (h GridHeader) mismatch(o GridHeader) string {
	switch {
	case h.NCols != o.NCols:
		return "ncols"
	case h.NRows != o.NRows:
		return "nrows"
	case h.NZ != o.NZ:
		return "zcount"
	case math.Float32bits(h.OriginX) != math.Float32bits(o.OriginX):
		return "originX"
	case math.Float32bits(h.DX) != math.Float32bits(o.DX):
		return "dX"
	case math.Float32bits(h.OriginY) != math.Float32bits(o.OriginY):
		return "originY"
	case math.Float32bits(h.DY) != math.Float32bits(o.DY):
		return "dY"
	case math.Float32bits(h.Rotation) != math.Float32bits(o.Rotation):
		return "rotation"
	}
	return ""
}

// ReadHeader decodes a grid header from the start of r.
func ReadHeader(r io.ReaderAt, order binary.ByteOrder) (GridHeader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return GridHeader{}, fmt.Errorf("reading %d byte header: %w", HeaderSize, err)
	}
	num := buf[identLen+programLen:]
	f32 := func(i int) float32 {
		return math.Float32frombits(order.Uint32(num[4*i:]))
	}
	return GridHeader{
		Ident:    string(buf[:identLen]),
		Program:  string(buf[identLen : identLen+programLen]),
		NCols:    int32(order.Uint32(num[0:])),
		NRows:    int32(order.Uint32(num[4:])),
		NZ:       int32(order.Uint32(num[8:])),
		OriginX:  f32(3),
		DX:       f32(4),
		OriginY:  f32(5),
		DY:       f32(6),
		Rotation: f32(7),
	}, nil
}

// OpenRegion opens and validates the grid file pair at basePath for area.
// On any failure every handle opened so far is closed again.
func OpenRegion(fsys afero.Fs, area Area, basePath string, order binary.ByteOrder) (*Region, error) {
	r := &Region{Area: area, Path: basePath, order: order}
	ok := false
	defer func() {
		if !ok {
			r.Close()
		}
	}()

	var headers [2]GridHeader
	for _, s := range []Surface{LatitudeShift, LongitudeShift} {
		path := basePath + s.extension()
		f, err := fsys.Open(path)
		if err != nil {
			return nil, &Error{Op: "open", Kind: ErrGridFileOpen, Region: area.Name, Path: path, Err: err}
		}
		r.files[s] = f
		headers[s], err = ReadHeader(f, order)
		if err != nil {
			return nil, &Error{Op: "open", Kind: ErrGridRead, Region: area.Name, Path: path, Err: err}
		}
	}

	if field := headers[LatitudeShift].mismatch(headers[LongitudeShift]); field != "" {
		return nil, &Error{
			Op:     "open",
			Kind:   ErrGridHeaderMismatch,
			Region: area.Name,
			Path:   basePath,
			Err:    fmt.Errorf("%s differs between %s and %s", field, LatitudeShift.extension(), LongitudeShift.extension()),
		}
	}
	if h := headers[LatitudeShift]; h.NCols < 2 || h.NRows < 2 {
		return nil, &Error{
			Op:     "open",
			Kind:   ErrGridRead,
			Region: area.Name,
			Path:   basePath,
			Err:    fmt.Errorf("grid of %dx%d nodes has no cells", h.NCols, h.NRows),
		}
	}

	r.Header = headers[LatitudeShift]
	r.gridBounds()
	ok = true
	return r, nil
}

// nodeOffset returns the byte offset of node (row, col) in a grid file with
// ncols columns.
func nodeOffset(ncols, row, col int) int64 {
	return int64(row)*cellStride*int64(ncols+1) + nodeSize*int64(col)
}

// ReadNode reads the shift values of nodes (row, col) and (row, col+1) from
// surface s, in arc-seconds.
func (r *Region) ReadNode(s Surface, row, col int) (float64, float64, error) {
	f := r.files[s]
	if f == nil {
		return 0, 0, &Error{Op: "read", Kind: ErrClosed, Region: r.Name}
	}
	var buf [nodePairLen]byte
	n, err := f.ReadAt(buf[:], nodeOffset(r.NCols, row, col))
	if n < nodePairLen {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, 0, &Error{
			Op:     "read",
			Kind:   ErrGridRead,
			Region: r.Name,
			Path:   r.Path + s.extension(),
			Err:    fmt.Errorf("%s node row %d col %d: %w", s, row, col, err),
		}
	}
	v0 := math.Float32frombits(r.order.Uint32(buf[0:]))
	v1 := math.Float32frombits(r.order.Uint32(buf[nodeSize:]))
	return float64(v0), float64(v1), nil
}

package nadcon

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/geo/s2"
	"github.com/spf13/afero"
)

// earthRadiusKm is the IUGG mean Earth radius.
const earthRadiusKm = 6371.0088

// Area names one of the fixed NADCON grid areas.
type Area struct {
	Key  string // Base file name without extension, e.g. "conus"
	Name string // Display name, at most 15 characters
}

// DefaultAreas lists the grid areas in priority order. A point covered by
// more than one area resolves to the first one listed.
var DefaultAreas = []Area{
	{Key: "conus", Name: "Conus"},
	{Key: "hawaii", Name: "Hawaii"},
	{Key: "prvi", Name: "P.R. and V.I."},
	{Key: "stlrnc", Name: "St. Laurence I."},
	{Key: "stgeorge", Name: "St. George I."},
	{Key: "stpaul", Name: "St. Paul I."},
	{Key: "alaska", Name: "Alaska"},
}

// Surface selects one of the two shift grids of a region.
type Surface int

const (
	LatitudeShift  Surface = iota // .las file, arc-seconds north
	LongitudeShift                // .los file, arc-seconds west
)

func (s Surface) String() string {
	switch s {
	case LatitudeShift:
		return "latitude"
	case LongitudeShift:
		return "longitude"
	}
	return "unknown"
}

// extension returns the file extension holding s.
func (s Surface) extension() string {
	if s == LongitudeShift {
		return ".los"
	}
	return ".las"
}

// Region is one opened, validated pair of grid files. Regions are created by
// OpenRegion and never change until Close.
type Region struct {
	Area
	Path   string     // Base path, without extension
	Header GridHeader // Header shared by both files

	XMin, XMax float64
	YMin, YMax float64
	DX, DY     float64
	NCols      int
	NRows      int

	files [2]afero.File
	order binary.ByteOrder
}

// Bounds returns the region's bounding box in degrees.
func (r *Region) Bounds() geom.Bounds {
	return geom.Bounds{
		Min: geom.Point{X: r.XMin, Y: r.YMin},
		Max: geom.Point{X: r.XMax, Y: r.YMax},
	}
}

// contains reports whether p lies strictly inside the region.
func (r *Region) contains(p geom.Point) bool {
	return p.X > r.XMin && p.X < r.XMax && p.Y > r.YMin && p.Y < r.YMax
}

// Rect returns the region's extent as an s2 latitude/longitude rectangle.
func (r *Region) Rect() s2.Rect {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(r.YMin, r.XMin))
	return rect.AddPoint(s2.LatLngFromDegrees(r.YMax, r.XMax))
}

// AreaKm2 returns the surface area covered by the region in square kilometres.
func (r *Region) AreaKm2() float64 {
	return r.Rect().Area() * earthRadiusKm * earthRadiusKm
}

// Close releases both file handles. It is safe to call more than once.
func (r *Region) Close() error {
	var first error
	for i, f := range r.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("nadcon: closing %s: %w", f.Name(), err)
		}
		r.files[i] = nil
	}
	return first
}

// gridBounds derives the region geometry from a validated header.
func (r *Region) gridBounds() {
	h := r.Header
	r.NCols = int(h.NCols)
	r.NRows = int(h.NRows)
	r.XMin = float64(h.OriginX)
	r.YMin = float64(h.OriginY)
	r.XMax = float64(h.OriginX) + float64(h.NCols-1)*float64(h.DX)
	r.YMax = float64(h.OriginY) + float64(h.NRows-1)*float64(h.DY)
	r.DX = math.Abs(float64(h.DX))
	r.DY = math.Abs(float64(h.DY))
}

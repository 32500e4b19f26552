package nadcon

import (
	"github.com/ctessum/geom"
)

// Location is a point resolved to a grid cell of one region.
type Location struct {
	Index  int     // Region handle within the Context
	Region *Region
	XGrid  float64 // Fractional 1-based column coordinate
	YGrid  float64 // Fractional 1-based row coordinate
	Row    int     // trunc(YGrid)
	Col    int     // trunc(XGrid)
}

// Locate finds the first active region strictly containing p and the grid
// cell p falls in. Points outside every region yield ErrPointOutOfBounds.
func (c *Context) Locate(p geom.Point) (Location, error) {
	if c.closed {
		return Location{}, &Error{Op: "locate", Kind: ErrClosed}
	}
	for i, r := range c.regions {
		// NaN fails every comparison, so it never matches.
		if !r.contains(p) {
			continue
		}
		xgrid := (p.X-r.XMin)/r.DX + 1.0
		ygrid := (p.Y-r.YMin)/r.DY + 1.0
		return Location{
			Index:  i,
			Region: r,
			XGrid:  xgrid,
			YGrid:  ygrid,
			Row:    int(ygrid),
			Col:    int(xgrid),
		}, nil
	}
	return Location{}, pointError("locate", ErrPointOutOfBounds, p)
}

// Package nadcon converts geographic coordinates between the North American
// Datums of 1927 and 1983 by interpolating the NADCON correction grids.
//
// Each covered area is described by a pair of binary grid files,
// <area>.las (latitude shift) and <area>.los (longitude shift), holding
// shifts in arc-seconds on a regular grid indexed by NAD27 coordinates.
// A Context opens every available pair once and keeps the handles until
// Shutdown:
//
//	ctx, err := nadcon.Init(nadcon.WithDataDir("/opt/mrt/data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Shutdown()
//	p83, err := ctx.Transform(geom.Point{X: -100, Y: 35}, nadcon.NAD27ToNAD83)
//
// Points are geom.Point values with X the longitude and Y the latitude, in
// decimal degrees, using the same longitude convention as the grid headers.
//
// A Context caches the most recently fitted grid cell and is not safe for
// concurrent use. Goroutines that convert in parallel should each Init their
// own Context.
package nadcon

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Direction selects the conversion performed by Transform.
type Direction int

const (
	NAD27ToNAD83 Direction = 1
	NAD83ToNAD27 Direction = 2
)

func (d Direction) String() string {
	switch d {
	case NAD27ToNAD83:
		return "NAD27->NAD83"
	case NAD83ToNAD27:
		return "NAD83->NAD27"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Context holds the open grid regions of one conversion session.
type Context struct {
	regions []*Region // priority order; index is the region handle
	cache   patchCache
	log     logrus.FieldLogger
	tol     float64
	maxIter int
	closed  bool
}

// Regions returns the active regions in priority order.
func (c *Context) Regions() []*Region {
	out := make([]*Region, len(c.regions))
	copy(out, c.regions)
	return out
}

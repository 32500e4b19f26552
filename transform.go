package nadcon

import (
	"errors"
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/geo/s2"
)

const arcsecPerDegree = 3600.0

// Result is the outcome of a single datum conversion.
type Result struct {
	Point      geom.Point // Converted point
	Region     string     // Display name of the region used
	DLatArcsec float64    // Latitude shift at the NAD27 point, north positive
	DLonArcsec float64    // Longitude shift at the NAD27 point, west positive
	Iterations int        // Forward evaluations performed (1 for Forward)
}

// Forward converts a NAD27 point to NAD83.
func (c *Context) Forward(p geom.Point) (Result, error) {
	loc, err := c.Locate(p)
	if err != nil {
		return Result{}, err
	}
	dlas, dlos, err := c.Evaluate(loc)
	if err != nil {
		return Result{}, err
	}
	// The grid's longitude shifts are positive west.
	return Result{
		Point:      geom.Point{X: p.X - dlos/arcsecPerDegree, Y: p.Y + dlas/arcsecPerDegree},
		Region:     loc.Region.Name,
		DLatArcsec: dlas,
		DLonArcsec: dlos,
		Iterations: 1,
	}, nil
}

// Inverse converts a NAD83 point to NAD27. The grids are indexed by NAD27
// coordinates, so the NAD27 point is found by fixed-point iteration on
// Forward, stopping once both residuals are within the tolerance.
func (c *Context) Inverse(p geom.Point) (Result, error) {
	trial := p
	for iter := 1; iter <= c.maxIter; iter++ {
		fwd, err := c.Forward(trial)
		if err != nil {
			var e *Error
			if errors.As(err, &e) && errors.Is(err, ErrPointOutOfBounds) {
				e.Op = "inverse"
				e.Point = trial
				e.Iterations = iter
			}
			return Result{}, err
		}

		xdif := p.X - fwd.Point.X
		ydif := p.Y - fwd.Point.Y
		xdone := math.Abs(xdif) <= c.tol
		ydone := math.Abs(ydif) <= c.tol
		if xdone && ydone {
			fwd.Point = trial
			fwd.Iterations = iter
			return fwd, nil
		}

		if iter == 1 {
			if !xdone {
				trial.X = p.X + fwd.DLonArcsec/arcsecPerDegree
			}
			if !ydone {
				trial.Y = p.Y - fwd.DLatArcsec/arcsecPerDegree
			}
			continue
		}
		if !xdone {
			trial.X -= fwd.Point.X - p.X
		}
		if !ydone {
			trial.Y -= fwd.Point.Y - p.Y
		}
	}
	return Result{}, &Error{
		Op:         "inverse",
		Kind:       ErrIterationNonConvergence,
		Point:      p,
		HasPoint:   true,
		Iterations: c.maxIter,
	}
}

// Convert performs the conversion selected by dir and reports the details.
func (c *Context) Convert(p geom.Point, dir Direction) (Result, error) {
	if c.closed {
		return Result{}, &Error{Op: "transform", Kind: ErrClosed}
	}
	switch dir {
	case NAD27ToNAD83:
		return c.Forward(p)
	case NAD83ToNAD27:
		return c.Inverse(p)
	}
	return Result{}, &Error{Op: "transform", Kind: ErrUnsupportedDirection, Err: errors.New(dir.String())}
}

// Transform converts p in direction dir.
func (c *Context) Transform(p geom.Point, dir Direction) (geom.Point, error) {
	res, err := c.Convert(p, dir)
	if err != nil {
		return geom.Point{}, err
	}
	return res.Point, nil
}

// TransformPoints converts every point in pts. Failures are per point: the
// returned error slice is nil when all succeed, otherwise errs[i] holds the
// failure for pts[i] and out[i] is the zero point.
func (c *Context) TransformPoints(pts []geom.Point, dir Direction) (out []geom.Point, errs []error) {
	out = make([]geom.Point, len(pts))
	for i, p := range pts {
		q, err := c.Transform(p, dir)
		if err != nil {
			if errs == nil {
				errs = make([]error, len(pts))
			}
			errs[i] = err
			continue
		}
		out[i] = q
	}
	return out, errs
}

// Shift is the datum shift at a point.
type Shift struct {
	From, To   geom.Point
	Region     string
	DLatArcsec float64 // North positive
	DLonArcsec float64 // West positive, as stored in the grids
	NorthM     float64 // Northward component in metres
	EastM      float64 // Eastward component in metres
}

// Shift converts p in direction dir and reports the shift in arc-seconds and
// metres. The metre components are great-circle distances on a sphere of
// the mean Earth radius.
func (c *Context) Shift(p geom.Point, dir Direction) (Shift, error) {
	res, err := c.Convert(p, dir)
	if err != nil {
		return Shift{}, err
	}
	from, to := p, res.Point
	corner := s2.LatLngFromDegrees(to.Y, from.X)
	north := float64(s2.LatLngFromDegrees(from.Y, from.X).Distance(corner)) * earthRadiusKm * 1000
	east := float64(corner.Distance(s2.LatLngFromDegrees(to.Y, to.X))) * earthRadiusKm * 1000
	if to.Y < from.Y {
		north = -north
	}
	if to.X < from.X {
		east = -east
	}
	return Shift{
		From:       from,
		To:         to,
		Region:     res.Region,
		DLatArcsec: res.DLatArcsec,
		DLonArcsec: res.DLonArcsec,
		NorthM:     north,
		EastM:      east,
	}, nil
}

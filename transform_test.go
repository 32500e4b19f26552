package nadcon

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/arkokoley/modis-county-cropper-sub001/internal/gridtest"
)

// smoothConus writes a conus grid with small, slowly varying shifts.
func smoothConus(t *testing.T) *Context {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(),
		gridtest.Plane(0.5, 0.02, 0.01),
		gridtest.Plane(-1.2, 0.03, -0.015))
	return initTest(t, fsys)
}

func TestForward_ConstantShift(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(36), gridtest.Constant(-18))
	ctx := initTest(t, fsys)

	p := geom.Point{X: -100.3, Y: 35.7}
	res, err := ctx.Forward(p)
	require.NoError(t, err)

	dlas, dlos := 36.0, -18.0
	assert.Equal(t, p.Y+dlas/3600, res.Point.Y)
	// Longitude shifts are positive west, so a negative shift moves east.
	assert.Equal(t, p.X-dlos/3600, res.Point.X)
	assert.Greater(t, res.Point.X, p.X)
	assert.Equal(t, "Conus", res.Region)
	assert.Equal(t, 1, res.Iterations)
}

func TestRoundTrip(t *testing.T) {
	ctx := smoothConus(t)

	for lon := -129.3; lon < -60.5; lon += 3.7 {
		for lat := 20.4; lat < 49.5; lat += 2.3 {
			p27 := geom.Point{X: lon, Y: lat}
			p83, err := ctx.Transform(p27, NAD27ToNAD83)
			require.NoError(t, err, "forward %v", p27)

			res, err := ctx.Convert(p83, NAD83ToNAD27)
			require.NoError(t, err, "inverse %v", p83)
			assert.LessOrEqual(t, res.Iterations, DefaultMaxIterations)

			if !floats.EqualWithinAbs(res.Point.X, p27.X, 1e-8) || !floats.EqualWithinAbs(res.Point.Y, p27.Y, 1e-8) {
				t.Errorf("inverse(forward(%v)) = %v", p27, res.Point)
			}
		}
	}
}

func TestInverse_ZeroShiftConvergesImmediately(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(0), gridtest.Constant(0))
	ctx := initTest(t, fsys)

	p := geom.Point{X: -100.25, Y: 35.5}
	res, err := ctx.Inverse(p)
	require.NoError(t, err)
	assert.Equal(t, p, res.Point)
	assert.Equal(t, 1, res.Iterations)
}

// oscillatingConus stores a latitude shift of (y-30) degrees, which makes
// the inverse iteration alternate between two trial points.
func oscillatingConus(t *testing.T, opts ...Option) *Context {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(),
		func(row, _ int) float32 { return 3600 * float32(row-11) },
		gridtest.Constant(0))
	return initTest(t, fsys, opts...)
}

func TestInverse_NonConvergence(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"default cap", nil, DefaultMaxIterations},
		{"custom cap", []Option{WithMaxIterations(3)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := oscillatingConus(t, tt.opts...)
			p := geom.Point{X: -100, Y: 35.5}

			_, err := ctx.Transform(p, NAD83ToNAD27)
			require.ErrorIs(t, err, ErrIterationNonConvergence)

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.want, e.Iterations)
			assert.Equal(t, p, e.Point)
			assert.Contains(t, err.Error(), "maximum iterations exceeded")
		})
	}
}

func TestInverse_TrialLeavesGrid(t *testing.T) {
	fsys := afero.NewMemMapFs()
	// One degree of westward shift pushes the first trial across the west edge.
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(0), gridtest.Constant(-3600))
	ctx := initTest(t, fsys)

	p := geom.Point{X: -129.5, Y: 35}
	_, err := ctx.Transform(p, NAD83ToNAD27)
	require.ErrorIs(t, err, ErrPointOutOfBounds)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "inverse", e.Op)
	assert.Equal(t, 2, e.Iterations)
	assert.Equal(t, -130.5, e.Point.X)
	assert.Equal(t, 35.0, e.Point.Y)
}

func TestTransform_OutOfBounds(t *testing.T) {
	ctx := smoothConus(t)

	for _, dir := range []Direction{NAD27ToNAD83, NAD83ToNAD27} {
		_, err := ctx.Transform(geom.Point{X: 0, Y: 0}, dir)
		assert.ErrorIs(t, err, ErrPointOutOfBounds, dir.String())
	}
}

func TestTransform_UnsupportedDirection(t *testing.T) {
	ctx := smoothConus(t)

	for _, dir := range []Direction{0, 3, -1} {
		_, err := ctx.Transform(geom.Point{X: -100, Y: 35}, dir)
		assert.ErrorIs(t, err, ErrUnsupportedDirection)
	}
}

func TestTransform_Closed(t *testing.T) {
	ctx := smoothConus(t)
	require.NoError(t, ctx.Shutdown())

	_, err := ctx.Transform(geom.Point{X: -100, Y: 35}, NAD27ToNAD83)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTransformPoints(t *testing.T) {
	ctx := smoothConus(t)

	pts := []geom.Point{{X: -100, Y: 35}, {X: 10, Y: 10}, {X: -80.2, Y: 41.1}}
	out, errs := ctx.TransformPoints(pts, NAD27ToNAD83)
	require.Len(t, out, 3)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrPointOutOfBounds)
	assert.Equal(t, geom.Point{}, out[1])
	assert.NoError(t, errs[2])

	want, err := ctx.Transform(pts[2], NAD27ToNAD83)
	require.NoError(t, err)
	assert.Equal(t, want, out[2])

	out, errs = ctx.TransformPoints(pts[:1], NAD27ToNAD83)
	assert.Nil(t, errs)
	assert.Len(t, out, 1)
}

func TestShift_Metres(t *testing.T) {
	fsys := afero.NewMemMapFs()
	// 3.6" north and 3.6" west.
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(3.6), gridtest.Constant(3.6))
	ctx := initTest(t, fsys)

	p := geom.Point{X: -100, Y: 35}
	s, err := ctx.Shift(p, NAD27ToNAD83)
	require.NoError(t, err)

	metresPerDegree := earthRadiusKm * 1000 * math.Pi / 180
	dlas, dlos := float64(float32(3.6)), float64(float32(3.6))
	assert.InDelta(t, dlas/3600*metresPerDegree, s.NorthM, 0.01)
	assert.InDelta(t, -dlos/3600*metresPerDegree*math.Cos(s.To.Y*math.Pi/180), s.EastM, 0.01)
	assert.Equal(t, p, s.From)
	assert.Equal(t, "Conus", s.Region)
	assert.Equal(t, dlas, s.DLatArcsec)
}

func TestRegion_AreaKm2(t *testing.T) {
	ctx := smoothConus(t)
	r := ctx.Regions()[0]

	// A 70 by 30 degree box between 20N and 50N.
	lat := func(d float64) float64 { return d * math.Pi / 180 }
	want := earthRadiusKm * earthRadiusKm * lat(70) * (math.Sin(lat(50)) - math.Sin(lat(20)))
	assert.InEpsilon(t, want, r.AreaKm2(), 1e-9)
}

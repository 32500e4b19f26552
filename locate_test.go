package nadcon

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spf13/afero"

	"github.com/arkokoley/modis-county-cropper-sub001/internal/gridtest"
)

func TestLocate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(0), gridtest.Constant(0))
	ctx := initTest(t, fsys)

	tests := []struct {
		name     string
		p        geom.Point
		row, col int
		xg, yg   float64
	}{
		{"node", geom.Point{X: -100, Y: 35}, 16, 31, 31, 16},
		{"cell interior", geom.Point{X: -99.75, Y: 35.5}, 16, 31, 31.25, 16.5},
		{"first cell", geom.Point{X: -129.5, Y: 20.5}, 1, 1, 1.5, 1.5},
		{"last cell", geom.Point{X: -60.5, Y: 49.5}, 30, 70, 70.5, 30.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ctx.Locate(tt.p)
			if err != nil {
				t.Fatalf("Locate(%v) error = %v, want nil", tt.p, err)
			}
			if loc.Region.Key != "conus" || loc.Index != 0 {
				t.Errorf("Locate(%v) region = %s/%d, want conus/0", tt.p, loc.Region.Key, loc.Index)
			}
			if loc.Row != tt.row || loc.Col != tt.col {
				t.Errorf("Locate(%v) cell = (%d,%d), want (%d,%d)", tt.p, loc.Row, loc.Col, tt.row, tt.col)
			}
			if loc.XGrid != tt.xg || loc.YGrid != tt.yg {
				t.Errorf("Locate(%v) grid = (%g,%g), want (%g,%g)", tt.p, loc.XGrid, loc.YGrid, tt.xg, tt.yg)
			}
			// 0-based cell indices stay clear of the last row and column.
			if r, c := loc.Row-1, loc.Col-1; r < 0 || r >= loc.Region.NRows-1 || c < 0 || c >= loc.Region.NCols-1 {
				t.Errorf("Locate(%v) cell (%d,%d) outside 0..%d x 0..%d", tt.p, r, c, loc.Region.NRows-2, loc.Region.NCols-2)
			}
		})
	}
}

func TestLocate_OutOfBounds(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(0), gridtest.Constant(0))
	ctx := initTest(t, fsys)

	points := []geom.Point{
		{X: 0, Y: 0},
		{X: -130, Y: 35}, // west edge
		{X: -60, Y: 35},  // east edge
		{X: -100, Y: 20}, // south edge
		{X: -100, Y: 50}, // north edge
		{X: math.NaN(), Y: 35},
		{X: -100, Y: math.Inf(1)},
	}
	for _, p := range points {
		_, err := ctx.Locate(p)
		if !errors.Is(err, ErrPointOutOfBounds) {
			t.Errorf("Locate(%v) error = %v, want ErrPointOutOfBounds", p, err)
			continue
		}
		var e *Error
		if !errors.As(err, &e) || !e.HasPoint {
			t.Errorf("Locate(%v) error carries no point: %v", p, err)
		}
	}
}

func TestLocate_Closed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeGrid(t, fsys, testDir, "conus", conusGrid(), gridtest.Constant(0), gridtest.Constant(0))
	ctx := initTest(t, fsys)
	ctx.Shutdown()

	if _, err := ctx.Locate(geom.Point{X: -100, Y: 35}); !errors.Is(err, ErrClosed) {
		t.Errorf("Locate() after Shutdown error = %v, want ErrClosed", err)
	}
}

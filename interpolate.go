package nadcon

// Patch is the local correction surface Z = A + B*u + C*v + D*u*v fitted to
// the four nodes of one grid cell.
type Patch struct {
	A, B, C, D float64
}

// FitPatch fits a patch to the cell corners t1=(row,col), t2=(row+1,col),
// t3=(row,col+1) and t4=(row+1,col+1).
func FitPatch(t1, t2, t3, t4 float64) Patch {
	return Patch{
		A: t1,
		B: t3 - t1,
		C: t2 - t1,
		D: t4 - t3 - t2 + t1,
	}
}

// At evaluates the patch at cell offsets u (column) and v (row), both in
// [0, 1). The explicit conversions keep the compiler from fusing
// multiply-adds, so results are identical on every architecture.
func (p Patch) At(u, v float64) float64 {
	return p.A + float64(u*p.B) + float64(v*float64(p.C+float64(p.D*u)))
}

// patchCache remembers the patches of the most recently fitted cell.
type patchCache struct {
	valid    bool
	region   int
	row, col int
	lat, lon Patch
}

func (pc *patchCache) hit(loc Location) bool {
	return pc.valid && pc.region == loc.Index && pc.row == loc.Row && pc.col == loc.Col
}

// fitSurface reads the four corner nodes of loc's cell from surface s.
func fitSurface(loc Location, s Surface) (Patch, error) {
	t1, t3, err := loc.Region.ReadNode(s, loc.Row, loc.Col)
	if err != nil {
		return Patch{}, err
	}
	t2, t4, err := loc.Region.ReadNode(s, loc.Row+1, loc.Col)
	if err != nil {
		return Patch{}, err
	}
	return FitPatch(t1, t2, t3, t4), nil
}

// Evaluate interpolates the latitude and longitude shifts, in arc-seconds,
// at a located point. The cell's patches are cached until a different cell
// is evaluated.
func (c *Context) Evaluate(loc Location) (dlas, dlos float64, err error) {
	if c.closed {
		return 0, 0, &Error{Op: "evaluate", Kind: ErrClosed}
	}
	if !c.cache.hit(loc) {
		lat, err := fitSurface(loc, LatitudeShift)
		if err != nil {
			return 0, 0, err
		}
		lon, err := fitSurface(loc, LongitudeShift)
		if err != nil {
			return 0, 0, err
		}
		c.cache = patchCache{valid: true, region: loc.Index, row: loc.Row, col: loc.Col, lat: lat, lon: lon}
	}

	u := loc.XGrid - float64(loc.Col)
	v := loc.YGrid - float64(loc.Row)
	return c.cache.lat.At(u, v), c.cache.lon.At(u, v), nil
}

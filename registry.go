package nadcon

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"
)

// maxRegionNameDistance bounds the edit distance accepted by Region.
const maxRegionNameDistance = 2

// Init opens every available grid area and returns a Context ready for
// transforms. Areas whose files are missing or inconsistent are skipped.
//
// The data directory is taken from WithDataDir, falling back to the
// MRT_DATA_DIR and MRTDATADIR environment variables:
//
//	ctx, err := Init(WithDataDir("/data/nadcon"), WithLogger(log))
func Init(opts ...Option) (*Context, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	normalize(cfg)

	if cfg.DataDir == "" {
		return nil, &Error{Op: "init", Kind: ErrConfigMissing, Err: errNoDataDir}
	}

	c := &Context{log: cfg.Log, tol: cfg.Tolerance, maxIter: cfg.MaxIterations}
	for _, area := range DefaultAreas {
		base := filepath.Join(cfg.DataDir, area.Key)
		r, err := OpenRegion(cfg.Fs, area, base, cfg.ByteOrder)
		if err != nil {
			cfg.Log.WithFields(logrus.Fields{
				"region": area.Name,
				"path":   base,
			}).WithError(err).Warn("nadcon: skipping grid region")
			continue
		}
		c.regions = append(c.regions, r)
	}

	if len(c.regions) == 0 {
		return nil, &Error{Op: "init", Kind: ErrNoActiveRegions, Path: cfg.DataDir}
	}

	c.logOverlaps()
	names := make([]string, len(c.regions))
	for i, r := range c.regions {
		names[i] = r.Name
	}
	cfg.Log.WithFields(logrus.Fields{
		"dir":     cfg.DataDir,
		"regions": strings.Join(names, ", "),
	}).Info("nadcon: grid regions opened")
	return c, nil
}

// normalize replaces unset or invalid settings with defaults.
func normalize(cfg *Config) {
	def := defaultConfig()
	if cfg.Fs == nil {
		cfg.Fs = def.Fs
	}
	if cfg.Log == nil {
		cfg.Log = def.Log
	}
	if cfg.ByteOrder == nil {
		cfg.ByteOrder = def.ByteOrder
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultMaxIterations
	}
}

// logOverlaps notes active regions whose extents overlap. The earlier
// region always wins for points in the overlap.
func (c *Context) logOverlaps() {
	for i, a := range c.regions {
		ab := a.Bounds()
		for _, b := range c.regions[i+1:] {
			bb := b.Bounds()
			if ab.Overlaps(&bb) {
				c.log.WithFields(logrus.Fields{
					"region":  a.Name,
					"shadows": b.Name,
				}).Debug("nadcon: grid regions overlap")
			}
		}
	}
}

// Shutdown closes every open grid file. Calling it again is a no-op. The
// Context cannot be used for transforms afterwards.
func (c *Context) Shutdown() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var first error
	for _, r := range c.regions {
		if err := r.Close(); err != nil {
			c.log.WithFields(logrus.Fields{"region": r.Name}).WithError(err).Warn("nadcon: closing grid region")
			if first == nil {
				first = err
			}
		}
	}
	c.regions = nil
	c.cache = patchCache{}
	return first
}

// Close implements io.Closer.
func (c *Context) Close() error {
	return c.Shutdown()
}

// Region returns the active region whose key or display name matches name,
// ignoring case. Failing an exact match, the closest name within a small
// edit distance is accepted.
func (c *Context) Region(name string) (*Region, error) {
	if c.closed {
		return nil, &Error{Op: "region", Kind: ErrClosed}
	}
	q := strings.ToLower(strings.TrimSpace(name))
	for _, r := range c.regions {
		if q == r.Key || q == strings.ToLower(r.Name) {
			return r, nil
		}
	}

	var best *Region
	bestDist := maxRegionNameDistance + 1
	for _, r := range c.regions {
		for _, cand := range []string{r.Key, strings.ToLower(r.Name)} {
			if d := levenshtein.ComputeDistance(q, cand); d < bestDist {
				best, bestDist = r, d
			}
		}
	}
	if best == nil {
		return nil, &Error{Op: "region", Kind: ErrNoActiveRegions, Region: name}
	}
	return best, nil
}

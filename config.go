package nadcon

import (
	"encoding/binary"
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// DefaultTolerance is the inverse-iteration convergence threshold in degrees.
	DefaultTolerance = 1.0e-9
	// DefaultMaxIterations caps the inverse fixed-point iteration.
	DefaultMaxIterations = 10
)

// dataDirEnv lists the environment variables consulted, in order, when no
// data directory is configured explicitly.
var dataDirEnv = []string{"MRT_DATA_DIR", "MRTDATADIR"}

var errNoDataDir = errors.New("neither WithDataDir, MRT_DATA_DIR nor MRTDATADIR is set")

// Config contains the settings used by Init.
type Config struct {
	DataDir       string           // Directory holding <area>.las/.los pairs
	Fs            afero.Fs         // File backend (default: the OS filesystem)
	Log           logrus.FieldLogger
	ByteOrder     binary.ByteOrder // Byte order of grid headers and nodes
	Tolerance     float64          // Inverse convergence threshold, degrees
	MaxIterations int              // Inverse iteration cap
}

// Option is a functional option for configuring Init.
type Option func(*Config)

// WithDataDir sets the directory containing the grid files.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithFs sets the filesystem the grid files are read from.
func WithFs(fsys afero.Fs) Option {
	return func(c *Config) {
		c.Fs = fsys
	}
}

// WithLogger sets the logger used during Init and Shutdown.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Config) {
		c.Log = log
	}
}

// WithByteOrder overrides the byte order used to decode grid files. Legacy
// files carry no byte-order marker and were written in the producing host's
// native order.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *Config) {
		c.ByteOrder = order
	}
}

// WithTolerance sets the inverse convergence threshold in degrees.
func WithTolerance(tol float64) Option {
	return func(c *Config) {
		c.Tolerance = tol
	}
}

// WithMaxIterations sets the inverse iteration cap.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		c.MaxIterations = n
	}
}

// defaultConfig returns the default configuration. The data directory falls
// back to MRT_DATA_DIR, then MRTDATADIR.
func defaultConfig() *Config {
	cfg := &Config{
		Fs:            afero.NewOsFs(),
		Log:           logrus.StandardLogger(),
		ByteOrder:     binary.NativeEndian,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
	for _, name := range dataDirEnv {
		if dir := os.Getenv(name); dir != "" {
			cfg.DataDir = dir
			break
		}
	}
	return cfg
}

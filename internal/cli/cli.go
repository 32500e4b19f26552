// Package cli implements the nadcon command-line interface.
package cli

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	nadcon "github.com/arkokoley/modis-county-cropper-sub001"
)

// Version is the version of the command-line interface.
const Version = "1.0.0"

// Cfg holds the command tree and its configuration.
type Cfg struct {
	*viper.Viper

	// Root is the top-level command.
	Root *cobra.Command

	// Fs is the filesystem grid and configuration files are read from.
	Fs afero.Fs
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig builds a fresh command tree with its flags bound to a
// new configuration.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper: viper.New(),
		Fs:    afero.NewOsFs(),
	}

	cfg.Root = &cobra.Command{
		Use:   "nadcon",
		Short: "Convert coordinates between NAD27 and NAD83.",
		Long: `nadcon converts geographic coordinates between the North American Datums
of 1927 and 1983 using the NADCON .las/.los correction grids.

Coordinates are decimal degrees, longitude first. Configuration can be
changed by using a configuration file (and providing the path to the file
using the --config flag), by using command-line arguments, or by setting
environment variables in the format 'NADCON_var' where 'var' is the name of
the variable with dashes replaced by underscores. When no data directory is
configured the MRT_DATA_DIR and MRTDATADIR variables are consulted.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	convert := cfg.convertCmd()
	shift := cfg.shiftCmd()
	regions := cfg.regionsCmd()
	cfg.Root.AddCommand(versionCmd(), convert, shift, regions)

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "data-dir",
			usage: `
              data-dir specifies the directory holding the <area>.las and
              <area>.los grid files.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "log-level",
			usage: `
              log-level sets the logging level: debug, info, warn or error.`,
			defaultVal: "warn",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "max-iterations",
			usage: `
              max-iterations caps the NAD83 to NAD27 fixed-point iteration.`,
			defaultVal: nadcon.DefaultMaxIterations,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "tolerance",
			usage: `
              tolerance is the NAD83 to NAD27 convergence threshold in degrees.`,
			defaultVal: nadcon.DefaultTolerance,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "byte-order",
			usage: `
              byte-order is the byte order the grid files were written in:
              native, little or big.`,
			defaultVal: "native",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "reverse",
			usage: `
              reverse converts from NAD83 to NAD27 instead of NAD27 to NAD83.`,
			shorthand:  "r",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{convert.Flags(), shift.Flags()},
		},
		{
			name: "name",
			usage: `
              name restricts the listing to the region with this key or name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{regions.Flags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("NADCON")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
		}
		cfg.BindPFlag(option.name, option.flagsets[0].Lookup(option.name))
	}
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetFs(cfg.Fs)
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("nadcon: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// logger returns a logger writing to the command's error stream at the
// configured level.
func (cfg *Cfg) logger(cmd *cobra.Command) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(cfg.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("nadcon: %v", err)
	}
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(lvl)
	return log, nil
}

func parseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "", "native":
		return binary.NativeEndian, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("nadcon: invalid byte order %q, want native, little or big", s)
}

// openContext initializes a conversion context from the configuration.
func (cfg *Cfg) openContext(cmd *cobra.Command) (*nadcon.Context, logrus.FieldLogger, error) {
	log, err := cfg.logger(cmd)
	if err != nil {
		return nil, nil, err
	}
	order, err := parseByteOrder(cfg.GetString("byte-order"))
	if err != nil {
		return nil, nil, err
	}

	opts := []nadcon.Option{
		nadcon.WithFs(cfg.Fs),
		nadcon.WithLogger(log),
		nadcon.WithByteOrder(order),
		nadcon.WithMaxIterations(cfg.GetInt("max-iterations")),
		nadcon.WithTolerance(cfg.GetFloat64("tolerance")),
	}
	if dir := cfg.GetString("data-dir"); dir != "" {
		opts = append(opts, nadcon.WithDataDir(dir))
	}
	ctx, err := nadcon.Init(opts...)
	if err != nil {
		return nil, nil, err
	}
	return ctx, log, nil
}

func (cfg *Cfg) direction() nadcon.Direction {
	if cfg.GetBool("reverse") {
		return nadcon.NAD83ToNAD27
	}
	return nadcon.NAD27ToNAD83
}

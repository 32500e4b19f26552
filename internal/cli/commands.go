package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ctessum/geom"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	nadcon "github.com/arkokoley/modis-county-cropper-sub001"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of nadcon.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nadcon v%s\n", Version)
		},
		DisableAutoGenTag: true,
	}
}

func (cfg *Cfg) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [LON LAT]",
		Short: "Convert coordinates between NAD27 and NAD83",
		Long: `convert converts one point given as arguments, or every point read from
standard input, one "LON LAT" pair per line. Pairs may be separated by
spaces, tabs or a comma; blank lines and lines starting with # are skipped.
Points outside every grid region print as "NaN NaN". Negative longitudes
given as arguments must follow "--".`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("nadcon: convert takes LON LAT or no arguments, got %d", len(args))
			}
			return nil
		},
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log, err := cfg.openContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Shutdown()

			dir := cfg.direction()
			out := cmd.OutOrStdout()
			if len(args) == 2 {
				p, err := parsePoint(args[0], args[1])
				if err != nil {
					return err
				}
				return convertPoint(ctx, log, out, p, dir)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for line := 1; scanner.Scan(); line++ {
				text := strings.TrimSpace(scanner.Text())
				if text == "" || strings.HasPrefix(text, "#") {
					continue
				}
				fields := strings.FieldsFunc(text, func(r rune) bool {
					return r == ',' || r == ' ' || r == '\t'
				})
				if len(fields) != 2 {
					return fmt.Errorf("nadcon: line %d: want LON LAT, got %q", line, text)
				}
				p, err := parsePoint(fields[0], fields[1])
				if err != nil {
					return fmt.Errorf("nadcon: line %d: %v", line, err)
				}
				if err := convertPoint(ctx, log, out, p, dir); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}

// convertPoint writes the converted point to w. Points outside every region
// are reported and written as NaN; any other failure is returned.
func convertPoint(ctx *nadcon.Context, log logrus.FieldLogger, w io.Writer, p geom.Point, dir nadcon.Direction) error {
	q, err := ctx.Transform(p, dir)
	if errors.Is(err, nadcon.ErrPointOutOfBounds) {
		log.WithFields(logrus.Fields{
			"lon":       p.X,
			"lat":       p.Y,
			"direction": dir,
		}).Warn("nadcon: point outside all grid regions")
		_, err = fmt.Fprintln(w, "NaN NaN")
		return err
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%.9f %.9f\n", q.X, q.Y)
	return err
}

func parsePoint(lon, lat string) (geom.Point, error) {
	x, err := cast.ToFloat64E(lon)
	if err != nil {
		return geom.Point{}, fmt.Errorf("nadcon: invalid longitude %q", lon)
	}
	y, err := cast.ToFloat64E(lat)
	if err != nil {
		return geom.Point{}, fmt.Errorf("nadcon: invalid latitude %q", lat)
	}
	return geom.Point{X: x, Y: y}, nil
}

func (cfg *Cfg) shiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shift LON LAT",
		Short: "Print the datum shift at a point",
		Long: `shift converts one point and prints the shift applied, in arc-seconds
and in metres on the ground.`,
		Args:              cobra.ExactArgs(2),
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			ctx, _, err := cfg.openContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Shutdown()

			s, err := ctx.Shift(p, cfg.direction())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "region\t%s\n", s.Region)
			fmt.Fprintf(w, "from\t%.9f %.9f\n", s.From.X, s.From.Y)
			fmt.Fprintf(w, "to\t%.9f %.9f\n", s.To.X, s.To.Y)
			fmt.Fprintf(w, "dlat\t%.6f\"\t%.3f m north\n", s.DLatArcsec, s.NorthM)
			fmt.Fprintf(w, "dlon\t%.6f\"\t%.3f m east\n", s.DLonArcsec, s.EastM)
			return w.Flush()
		},
	}
}

func (cfg *Cfg) regionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the active grid regions",
		Long: `regions lists the grid regions found in the data directory in the order
they are searched, with their extent, grid size and covered area.`,
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := cfg.openContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Shutdown()

			regions := ctx.Regions()
			if name := cfg.GetString("name"); name != "" {
				r, err := ctx.Region(name)
				if err != nil {
					return err
				}
				regions = []*nadcon.Region{r}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tLON\tLAT\tCOLS\tROWS\tAREA (km²)")
			for _, r := range regions {
				fmt.Fprintf(w, "%s\t%s\t%g..%g\t%g..%g\t%d\t%d\t%s\n",
					r.Key, r.Name, r.XMin, r.XMax, r.YMin, r.YMax, r.NCols, r.NRows,
					humanize.CommafWithDigits(r.AreaKm2(), 0))
			}
			return w.Flush()
		},
	}
}

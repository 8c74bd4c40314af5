package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poorboy44/bounding-boxes/internal/config"
	"github.com/poorboy44/bounding-boxes/internal/grid"
	"github.com/poorboy44/bounding-boxes/internal/logging"
	"github.com/poorboy44/bounding-boxes/parser"
)

var rootCmd = &cobra.Command{
	Use:   "boxgrid",
	Short: "Partition a geographic rectangle into ~25 mile bounding boxes",
	Long: `boxgrid cuts a study area (west/south/east/north decimal degrees) into a
grid of bounding boxes, each spanning roughly the same great-circle width
at every latitude. The longitude step is re-derived row by row so boxes
near the poles do not collapse into slivers.`,
	Example: `  Colorado:  boxgrid --area=-109,37,-102,41
  Tagged:    boxgrid --west=-109 --south=37 --east=-102 --north=41 --tag=colorado
  Text mode: boxgrid --area=-109,37,-102,41 --format=text -o boxes.txt`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyAreaFlag(cmd); err != nil {
			return err
		}

		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		logging.Setup(logLevel(cfg), cfg.LogFormat)
		return grid.Generate(cfg)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Read a generated artifact back and report its coverage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boxes, err := parser.ParseFile(args[0])
		if err != nil {
			return err
		}
		if len(boxes) == 0 {
			fmt.Printf("%s: no boxes\n", args[0])
			return nil
		}

		west, south := boxes[0].West, boxes[0].South
		east, north := boxes[0].East, boxes[0].North
		for _, b := range boxes[1:] {
			if b.West < west {
				west = b.West
			}
			if b.South < south {
				south = b.South
			}
			if b.East > east {
				east = b.East
			}
			if b.North > north {
				north = b.North
			}
		}

		fmt.Printf("%s: %d boxes covering [%3.5f %3.5f %3.5f %3.5f]\n",
			args[0], len(boxes), west, south, east, north)
		return nil
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.Float64("west", 0, "Western bound of the study area (decimal degrees)")
	flags.Float64("south", 0, "Southern bound of the study area (decimal degrees)")
	flags.Float64("east", 0, "Eastern bound of the study area (decimal degrees)")
	flags.Float64("north", 0, "Northern bound of the study area (decimal degrees)")
	flags.String("area", "", "Study area as west,south,east,north (overrides the four bound flags)")
	flags.String("tag", "", "Tag attached to every rule in structured output")
	flags.Float64("lat-offset", 0, "Row height in degrees (default: latitude-band heuristic)")
	flags.Float64("lon-offset", 0, "Initial column width in degrees (default: latitude-band heuristic)")
	flags.String("format", config.FormatJSON, "Output format: json, text, or sqlite")
	flags.StringP("output", "o", "", "Destination path (default depends on format)")
	flags.String("tiers-file", "", "Optional resize tier table file")
	flags.Float64("target-low", 24.8, "Lower edge of the box width acceptance band, miles (exclusive)")
	flags.Float64("target-high", 24.9, "Upper edge of the box width acceptance band, miles (inclusive)")
	flags.Int("max-iterations", 5000, "Iteration cap for the per-row step resize")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.BoolP("verbose", "v", false, "Shorthand for --log-level=debug")

	rootCmd.AddCommand(parseCmd)
}

// applyAreaFlag expands --area=west,south,east,north into the four bound
// flags. Malformed values are rejected here, before configuration loads.
func applyAreaFlag(cmd *cobra.Command) error {
	area, err := cmd.Flags().GetString("area")
	if err != nil || area == "" {
		return err
	}

	parts := strings.Split(area, ",")
	if len(parts) != 4 {
		return fmt.Errorf("area format should be west,south,east,north")
	}

	names := []string{"west", "south", "east", "north"}
	for i, p := range parts {
		if _, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return fmt.Errorf("invalid %s value %q in --area", names[i], p)
		}
		if err := cmd.Flags().Set(names[i], strings.TrimSpace(p)); err != nil {
			return err
		}
	}
	return nil
}

func logLevel(cfg *config.Config) string {
	if cfg.Verbose {
		return "debug"
	}
	return cfg.LogLevel
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

package grid

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poorboy44/bounding-boxes/internal/config"
	"github.com/poorboy44/bounding-boxes/internal/db"
	"github.com/poorboy44/bounding-boxes/internal/output"
	"github.com/poorboy44/bounding-boxes/internal/tiers"
)

// convergenceRiskLat is the absolute latitude beyond which the empirical
// tier deltas are not trusted to converge.
const convergenceRiskLat = 89.0

// Generate runs one full tiling pass for the given configuration and writes
// the result to the configured destination.
func Generate(cfg *config.Config) error {
	startTime := time.Now()

	area := cfg.StudyArea()
	if err := area.Validate(); err != nil {
		return err
	}

	table := tiers.Default()
	if cfg.TiersFile != "" {
		loaded, err := tiers.Load(cfg.TiersFile)
		if err != nil {
			return fmt.Errorf("failed to load tier table: %w", err)
		}
		table = loaded
		slog.Debug("loaded tier table", "path", cfg.TiersFile, "tiers", len(table))
	}

	offset := DefaultOffset(area)
	if cfg.LatOffset > 0 {
		offset.Lat = cfg.LatOffset
	}
	if cfg.LonOffset > 0 {
		offset.Lon = cfg.LonOffset
	}

	if area.MaxAbsLat() > convergenceRiskLat {
		slog.Warn("study area reaches extreme latitude; step resizing may not converge",
			"max_abs_lat", area.MaxAbsLat())
	}

	slog.Info("tiling study area",
		"west", area.West, "south", area.South, "east", area.East, "north", area.North,
		"lat_offset", offset.Lat, "lon_offset", offset.Lon,
		"estimated_boxes", EstimateBoxCount(area, offset))

	tiler := &Tiler{
		Band:          Band{Low: cfg.TargetLow, High: cfg.TargetHigh},
		Tiers:         table,
		MaxIterations: cfg.MaxIterations,
	}

	boxes, err := tiler.Tile(area, offset)
	if err != nil {
		return fmt.Errorf("failed to tile study area: %w", err)
	}

	outPath := cfg.OutputPath()
	outputDir := filepath.Dir(outPath)
	if outputDir != "." && outputDir != "" {
		os.MkdirAll(outputDir, 0755)
	}

	switch cfg.Format {
	case config.FormatJSON:
		err = output.WriteJSON(outPath, boxes, cfg.Tag)
	case config.FormatText:
		err = output.WriteText(outPath, boxes)
	case config.FormatSQLite:
		err = db.Write(outPath, boxes, db.Metadata{
			Area:      area,
			Offset:    offset,
			Tag:       cfg.Tag,
			BoxCount:  len(boxes),
			Generator: "boxgrid",
		})
	default:
		err = fmt.Errorf("unknown output format %q", cfg.Format)
	}
	if err != nil {
		return err
	}

	slog.Info("grid generation complete",
		"boxes", len(boxes), "output", outPath, "elapsed", time.Since(startTime).Round(time.Millisecond))

	return nil
}

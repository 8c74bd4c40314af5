package grid

import (
	"fmt"
	"math"

	"github.com/poorboy44/bounding-boxes/internal/geo"
	"github.com/poorboy44/bounding-boxes/internal/tiers"
)

// Band is the acceptance range for a tile's great-circle width in miles.
// Low is exclusive, High inclusive.
type Band struct {
	Low  float64
	High float64
}

// Contains reports whether a measured distance falls inside the band.
func (b Band) Contains(miles float64) bool {
	return miles > b.Low && miles <= b.High
}

// DefaultBand targets tiles roughly 25 miles wide.
var DefaultBand = Band{Low: 24.8, High: 24.9}

// DefaultMaxIterations caps the resize hill-climb. The tier deltas are
// discrete nudges and can oscillate around a band narrower than the delta
// near the poles, so the climb must not be allowed to loop forever.
const DefaultMaxIterations = 5000

// NonConvergenceError reports a resize that exhausted its iteration cap
// without landing inside the acceptance band.
type NonConvergenceError struct {
	Latitude   float64
	Step       float64
	Iterations int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("longitude step did not converge after %d iterations at latitude %.5f (last step %.5f)",
		e.Iterations, e.Latitude, e.Step)
}

// Tiler walks a study area row by row and cuts it into bounding boxes of
// approximately constant real-world width.
type Tiler struct {
	Band          Band
	Tiers         tiers.Table
	MaxIterations int
}

// NewTiler returns a tiler with the default band, tier table, and
// iteration cap.
func NewTiler() *Tiler {
	return &Tiler{
		Band:          DefaultBand,
		Tiers:         tiers.Default(),
		MaxIterations: DefaultMaxIterations,
	}
}

// ResizeLongitudeStep adjusts step until the great-circle distance between
// (westEdge, southLat) and (westEdge+step, southLat) falls inside the
// acceptance band. Too short a span grows the step by the tier delta for
// that latitude, too long shrinks it. Returns a NonConvergenceError if the
// iteration cap is reached first.
func (t *Tiler) ResizeLongitudeStep(step, westEdge, southLat float64) (float64, error) {
	delta := t.Tiers.Delta(southLat)

	for i := 0; i < t.MaxIterations; i++ {
		d := geo.DistanceMiles(
			geo.GeoPoint{Lon: westEdge, Lat: southLat},
			geo.GeoPoint{Lon: westEdge + step, Lat: southLat},
		)
		if t.Band.Contains(d) {
			return step, nil
		}
		if d <= t.Band.Low {
			step += delta
		} else {
			step -= delta
		}
	}

	return 0, &NonConvergenceError{
		Latitude:   southLat,
		Step:       step,
		Iterations: t.MaxIterations,
	}
}

// cursor is the walking state for one tiling pass. It is owned exclusively
// by Tile and never escapes: emitted boxes are snapshot values.
type cursor struct {
	west  float64
	south float64
	east  float64
	north float64
}

// latPrecision rounds latitude advances to 8 decimal places so repeated
// additions of the row height don't drift across many rows.
const latPrecision = 1e8

func roundLat(v float64) float64 {
	return math.Round(v*latPrecision) / latPrecision
}

// Tile cuts the study area into bounding boxes, south to north, west to
// east within each row. The longitude step is re-derived once per row so
// every box spans roughly the same great-circle width regardless of
// latitude. The returned boxes are clipped to the study area and each one
// is an independent value.
func (t *Tiler) Tile(area geo.StudyArea, initial geo.Offset) ([]geo.BoundingBox, error) {
	if err := area.Validate(); err != nil {
		return nil, err
	}
	if initial.Lat <= 0 || initial.Lon <= 0 {
		return nil, fmt.Errorf("offsets must be positive, got lat=%g lon=%g", initial.Lat, initial.Lon)
	}

	off := initial
	cur := cursor{
		west:  area.West,
		south: area.South,
		east:  area.West + off.Lon,
		north: area.South + off.Lat,
	}

	var boxes []geo.BoundingBox
	for cur.south < area.North {
		for cur.west < area.East {
			box := geo.BoundingBox{
				West:  cur.west,
				South: cur.south,
				East:  cur.east,
				North: cur.north,
			}
			boxes = append(boxes, box.Clip(area))

			cur.west += off.Lon
			cur.east += off.Lon
		}

		// Row done: rewind to the west edge and re-derive the column
		// width for the next row's latitude band.
		cur.west = area.West
		step, err := t.ResizeLongitudeStep(off.Lon, cur.west, cur.south)
		if err != nil {
			return nil, fmt.Errorf("resizing row at latitude %.5f: %w", cur.south, err)
		}
		off.Lon = step
		cur.east = cur.west + off.Lon

		cur.south = roundLat(cur.south + off.Lat)
		cur.north = roundLat(cur.north + off.Lat)
	}

	return boxes, nil
}

// EstimateBoxCount predicts the grid size for logging. The actual count can
// differ slightly because the longitude step is re-derived per row.
func EstimateBoxCount(area geo.StudyArea, off geo.Offset) int {
	cols := math.Ceil(math.Abs(area.West-area.East) / off.Lon)
	rows := math.Ceil((area.North - area.South) / off.Lat)
	return int(cols * rows)
}

// Default offsets by latitude band. Longitude lines are close together
// near the poles, so the starting column width grows with latitude to keep
// the resize loop short.
const (
	defaultLatOffset      = 0.35
	equatorialLonOffset   = 0.35
	midLatitudeLonOffset  = 0.45
	polarLonOffset        = 3.0
	equatorialAbsLatLimit = 15.0
	polarAbsLatLimit      = 80.0
)

// DefaultOffset picks starting step sizes for a study area. Areas with a
// bound inside the tropics start narrow, areas with a bound past 80 degrees
// start wide, and everything else uses the mid-latitude default.
func DefaultOffset(area geo.StudyArea) geo.Offset {
	lon := midLatitudeLonOffset
	switch {
	case math.Abs(area.South) < equatorialAbsLatLimit || math.Abs(area.North) < equatorialAbsLatLimit:
		lon = equatorialLonOffset
	case math.Abs(area.South) > polarAbsLatLimit || math.Abs(area.North) > polarAbsLatLimit:
		lon = polarLonOffset
	}
	return geo.Offset{Lat: defaultLatOffset, Lon: lon}
}

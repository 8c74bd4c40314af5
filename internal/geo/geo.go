package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle math.
const EarthRadiusMiles = 3963.19

// GeoPoint is a single coordinate in decimal degrees.
type GeoPoint struct {
	Lon float64
	Lat float64
}

// StudyArea is the outer rectangle being subdivided. Read-only once validated.
type StudyArea struct {
	West  float64
	South float64
	East  float64
	North float64
}

// ErrInvalidStudyArea reports a study area whose bounds are empty or inverted.
type ErrInvalidStudyArea struct {
	West  float64
	South float64
	East  float64
	North float64
}

func (e *ErrInvalidStudyArea) Error() string {
	return fmt.Sprintf("invalid study area [%g %g %g %g]: west must be < east and south must be < north",
		e.West, e.South, e.East, e.North)
}

// Validate rejects empty or inverted rectangles before tiling starts.
func (a StudyArea) Validate() error {
	if a.West >= a.East || a.South >= a.North {
		return &ErrInvalidStudyArea{West: a.West, South: a.South, East: a.East, North: a.North}
	}
	return nil
}

// MaxAbsLat returns the largest absolute latitude touched by the area.
func (a StudyArea) MaxAbsLat() float64 {
	return math.Max(math.Abs(a.South), math.Abs(a.North))
}

// BoundingBox is one grid cell, west/south/east/north in decimal degrees.
// Boxes are independent values: the tiling cursor is never handed out directly.
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// NewBoundingBox builds a box, rejecting empty or inverted bounds.
func NewBoundingBox(west, south, east, north float64) (BoundingBox, error) {
	if west >= east || south >= north {
		return BoundingBox{}, fmt.Errorf("invalid bounding box [%g %g %g %g]: west must be < east and south must be < north",
			west, south, east, north)
	}
	return BoundingBox{West: west, South: south, East: east, North: north}, nil
}

// Clip returns a copy of the box with its east and north edges pulled back
// to the study area boundary. West and south are never moved: the tiling
// cursor only ever starts inside the area.
func (b BoundingBox) Clip(area StudyArea) BoundingBox {
	if b.East > area.East {
		b.East = area.East
	}
	if b.North > area.North {
		b.North = area.North
	}
	return b
}

// Offset holds the tiling step sizes in degrees. Lat is the row height and
// stays constant for a whole run; Lon is the column width and is re-derived
// once per row.
type Offset struct {
	Lat float64
	Lon float64
}

// DistanceMiles returns the great-circle distance between two points using
// the haversine formula on a spherical Earth.
func DistanceMiles(p1, p2 GeoPoint) float64 {
	dLat := toRad(p2.Lat - p1.Lat)
	dLon := toRad(p2.Lon - p1.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p1.Lat))*math.Cos(toRad(p2.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Floating error can push a just outside [0,1] for antipodal or
	// coincident points; clamp before the square roots.
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * EarthRadiusMiles
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

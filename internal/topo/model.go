// Package topo defines the in-memory document model for PocketTopo cave
// survey files: shots, trips, fixed references, and the two vector sketches
// (outline and sideview) recorded by the handheld logger.
//
// All values are produced once by a parse pass and are not mutated
// afterwards. Raw measurements keep the units the instrument stores:
// millimetres for distances and the internal 16-bit angle units for
// azimuth, inclination, and declination (full circle = 65536). Conversion
// helpers live in units.go.
package topo

import (
	"fmt"
	"time"
)

// StationKind discriminates the two station naming schemes the logger
// supports.
type StationKind int

const (
	// StationMajorMinor is a "major.minor" pair, e.g. survey 1 station 4
	// is written "1.4".
	StationMajorMinor StationKind = iota

	// StationPlain is a flat station number, e.g. "17".
	StationPlain
)

// StationId identifies a survey station. Fields beyond the ones selected by
// Kind are zero. Absent stations (an unconnected splay end, or a reference
// not tied to a station) are represented as a nil *StationId, never as a
// StationId value.
type StationId struct {
	Kind StationKind

	// Major and Minor are set when Kind is StationMajorMinor.
	Major uint16
	Minor uint16

	// Number is set when Kind is StationPlain.
	Number uint32
}

// MajorMinorStation returns a major.minor station identifier.
func MajorMinorStation(major, minor uint16) StationId {
	return StationId{Kind: StationMajorMinor, Major: major, Minor: minor}
}

// PlainStation returns a flat numeric station identifier.
func PlainStation(number uint32) StationId {
	return StationId{Kind: StationPlain, Number: number}
}

// String renders the station the way the logger displays it.
func (s StationId) String() string {
	if s.Kind == StationPlain {
		return fmt.Sprintf("%d", s.Number)
	}
	return fmt.Sprintf("%d.%d", s.Major, s.Minor)
}

// ShotFlags is the per-shot flag byte.
type ShotFlags uint8

const (
	// ShotFlipped marks a shot measured from the far station back toward
	// the near one.
	ShotFlipped ShotFlags = 1 << 0

	// ShotHasComment marks a shot that carries a trailing comment string
	// in the file.
	ShotHasComment ShotFlags = 1 << 1
)

// Flipped reports whether the shot was measured in the reverse direction.
func (f ShotFlags) Flipped() bool { return f&ShotFlipped != 0 }

// HasComment reports whether the shot carries a comment.
func (f ShotFlags) HasComment() bool { return f&ShotHasComment != 0 }

// Shot is a single leg measurement between two stations.
type Shot struct {
	From *StationId // nil for an undefined near station
	To   *StationId // nil for a splay (no far station)

	Distance    int32 // mm
	Azimuth     int16 // internal angle units, north = 0, east = 16384
	Inclination int16 // internal angle units, up = 16384, down = -16384
	Flags       ShotFlags
	Roll        uint8 // full circle = 256, display up = 0
	TripIndex   int16 // -1: no trip, >= 0: index into Document.Trips

	// Comment is meaningful only when Flags.HasComment() is true; an
	// empty comment and an absent one are distinct states in the file.
	Comment string
}

// Trip is a dated survey session. Shots reference trips by index.
type Trip struct {
	Time        time.Time
	Comment     string
	Declination int16 // internal angle units
}

// Reference ties the relative survey grid to an absolute real-world
// coordinate.
type Reference struct {
	Station  *StationId // nil when the fix is not bound to a station
	East     int64      // mm
	North    int64      // mm
	Altitude int32      // mm above sea level
	Comment  string
}

// Point is a sketch coordinate in millimetres, relative to the first
// station in the file.
type Point struct {
	X int32
	Y int32
}

// Mapping is the last scroll position and zoom of a sketch view.
type Mapping struct {
	Origin Point
	Scale  int32 // nominal range 10..50000, not enforced by the decoder
}

// Color is a sketch polygon color. Valid values are 1 through 7.
type Color byte

const (
	ColorBlack  Color = 1
	ColorGray   Color = 2
	ColorBrown  Color = 3
	ColorBlue   Color = 4
	ColorRed    Color = 5
	ColorGreen  Color = 6
	ColorOrange Color = 7
)

func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorGray:
		return "gray"
	case ColorBrown:
		return "brown"
	case ColorBlue:
		return "blue"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorOrange:
		return "orange"
	}
	return fmt.Sprintf("color(%d)", byte(c))
}

// Element is one drawing element of a sketch: either a Polygon or a
// CrossSection. The set is closed; no other implementations exist.
type Element interface {
	isElement()
}

// Polygon is an open polyline drawn in a single color. The point sequence
// is kept in file order and is not implicitly closed.
type Polygon struct {
	Points []Point
	Color  Color
}

func (Polygon) isElement() {}

// CrossSection marks where a profile cut was taken. Unlike shots and
// references, a cross-section always resolves to a station.
type CrossSection struct {
	Position  Point
	Station   StationId
	Direction int32 // projection azimuth in internal angle units, -1: horizontal
}

func (CrossSection) isElement() {}

// Horizontal reports whether the cut is projected horizontally rather than
// along a bearing.
func (c CrossSection) Horizontal() bool { return c.Direction == -1 }

// Drawing is one vector sketch: its viewport mapping plus the elements in
// file order. The logger paints the list back to front, so renderers
// typically iterate it in reverse.
type Drawing struct {
	Mapping  Mapping
	Elements []Element
}

// Document is a fully parsed survey file.
type Document struct {
	Trips      []Trip
	Shots      []Shot
	References []Reference

	Overview Mapping
	Outline  Drawing // plan view sketch
	Sideview Drawing // profile view sketch
}

// TripForShot resolves a shot's trip index. The file format does not
// guarantee the index is in range, so callers must check ok.
func (d *Document) TripForShot(s Shot) (Trip, bool) {
	if s.TripIndex < 0 || int(s.TripIndex) >= len(d.Trips) {
		return Trip{}, false
	}
	return d.Trips[s.TripIndex], true
}

// TotalShotLength sums the lengths of all shots in millimetres.
func (d *Document) TotalShotLength() int64 {
	var total int64
	for _, s := range d.Shots {
		total += int64(s.Distance)
	}
	return total
}

// Package survey derives station geometry and summary statistics from a
// parsed document. Positions are computed in metres relative to the first
// survey station: X east, Y north, Z up.
package survey

import (
	"math"

	"github.com/speleo-data/cavetopo/internal/topo"
)

// StationPosition is a reduced 3D position for one survey station.
type StationPosition struct {
	Station topo.StationId
	X       float64 // m east
	Y       float64 // m north
	Z       float64 // m up
}

// Summary aggregates the headline numbers of a survey.
type Summary struct {
	TripCount      int `json:"trip_count"`
	ShotCount      int `json:"shot_count"`
	LegCount       int `json:"leg_count"`   // shots connecting two stations
	SplayCount     int `json:"splay_count"` // shots with no far station
	StationCount   int `json:"station_count"`
	ReferenceCount int `json:"reference_count"`

	TotalLengthMeters float64 `json:"total_length_m"`
	DepthRangeMeters  float64 `json:"depth_range_m"` // vertical extent of the reduced stations
}

// Reduce propagates station positions from the survey legs. The first leg's
// near station anchors the origin. Shots are not stored in traversal order,
// so passes repeat until no new station resolves; legs whose stations never
// connect to the anchored component are left out.
func Reduce(doc *topo.Document) []StationPosition {
	type leg struct {
		from, to   topo.StationId
		dx, dy, dz float64
	}

	legs := make([]leg, 0, len(doc.Shots))
	for _, s := range doc.Shots {
		if s.From == nil || s.To == nil {
			continue
		}

		azimuth := s.AzimuthDegrees()
		if trip, ok := doc.TripForShot(s); ok {
			azimuth += trip.DeclinationDegrees()
		}
		inclination := s.InclinationDegrees()
		distance := s.DistanceMeters()

		azimuthRad := azimuth * math.Pi / 180.0
		inclinationRad := inclination * math.Pi / 180.0

		cosInclination := math.Cos(inclinationRad)
		sinInclination := math.Sin(inclinationRad)

		l := leg{
			from: *s.From,
			to:   *s.To,
			dx:   distance * cosInclination * math.Sin(azimuthRad), // east
			dy:   distance * cosInclination * math.Cos(azimuthRad), // north
			dz:   distance * sinInclination,                        // up
		}
		if s.Flags.Flipped() {
			l.from, l.to = l.to, l.from
			l.dx, l.dy, l.dz = -l.dx, -l.dy, -l.dz
		}
		legs = append(legs, l)
	}

	if len(legs) == 0 {
		return nil
	}

	positions := make(map[topo.StationId]StationPosition, len(legs)+1)
	order := make([]topo.StationId, 0, len(legs)+1)

	place := func(id topo.StationId, x, y, z float64) {
		if _, seen := positions[id]; seen {
			return
		}
		positions[id] = StationPosition{Station: id, X: x, Y: y, Z: z}
		order = append(order, id)
	}

	place(legs[0].from, 0, 0, 0)

	for progressed := true; progressed; {
		progressed = false
		for _, l := range legs {
			if from, ok := positions[l.from]; ok {
				if _, seen := positions[l.to]; !seen {
					place(l.to, from.X+l.dx, from.Y+l.dy, from.Z+l.dz)
					progressed = true
				}
				continue
			}
			if to, ok := positions[l.to]; ok {
				if _, seen := positions[l.from]; !seen {
					place(l.from, to.X-l.dx, to.Y-l.dy, to.Z-l.dz)
					progressed = true
				}
			}
		}
	}

	result := make([]StationPosition, 0, len(order))
	for _, id := range order {
		result = append(result, positions[id])
	}
	return result
}

// Summarize computes the survey's headline statistics.
func Summarize(doc *topo.Document) Summary {
	s := Summary{
		TripCount:      len(doc.Trips),
		ShotCount:      len(doc.Shots),
		ReferenceCount: len(doc.References),
	}

	for _, shot := range doc.Shots {
		if shot.From != nil && shot.To != nil {
			s.LegCount++
		} else {
			s.SplayCount++
		}
		s.TotalLengthMeters += shot.DistanceMeters()
	}

	stations := Reduce(doc)
	s.StationCount = len(stations)

	if len(stations) > 0 {
		minZ, maxZ := stations[0].Z, stations[0].Z
		for _, st := range stations[1:] {
			minZ = math.Min(minZ, st.Z)
			maxZ = math.Max(maxZ, st.Z)
		}
		s.DepthRangeMeters = maxZ - minZ
	}

	return s
}

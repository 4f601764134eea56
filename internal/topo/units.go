package topo

// Unit name constants accepted by the API and CLI layers.
const (
	Meters = "m"
	Feet   = "ft"
)

// Angle and distance scale factors of the logger's internal representation.
const (
	AngleFullCircle = 65536 // 16-bit internal angle units per full turn
	RollFullCircle  = 256   // roll byte units per full turn

	millimetersPerMeter = 1000.0
	millimetersPerFoot  = 304.8
)

// ValidUnits contains all valid distance unit values.
var ValidUnits = []string{Meters, Feet}

// IsValidUnit checks if the given unit is in the list of valid units.
func IsValidUnit(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// AngleDegrees converts internal 16-bit angle units to degrees.
func AngleDegrees(v int16) float64 {
	return float64(v) * 360.0 / AngleFullCircle
}

// RollDegrees converts the roll byte to degrees.
func RollDegrees(v uint8) float64 {
	return float64(v) * 360.0 / RollFullCircle
}

// ConvertDistance converts a millimetre value to the target units.
// Files and the database store distances in mm.
func ConvertDistance(mm int64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return float64(mm) / millimetersPerFoot
	case Meters:
		return float64(mm) / millimetersPerMeter
	default:
		return float64(mm) / millimetersPerMeter
	}
}

// AzimuthDegrees returns the shot bearing in degrees, 0 = north, 90 = east.
// Stored azimuths are signed 16-bit, so west of north comes back negative;
// normalise into [0, 360).
func (s Shot) AzimuthDegrees() float64 {
	deg := AngleDegrees(s.Azimuth)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// InclinationDegrees returns the shot slope in degrees, positive up.
func (s Shot) InclinationDegrees() float64 {
	return AngleDegrees(s.Inclination)
}

// DistanceMeters returns the shot length in metres.
func (s Shot) DistanceMeters() float64 {
	return float64(s.Distance) / millimetersPerMeter
}

// DeclinationDegrees returns the trip's magnetic declination in degrees.
func (t Trip) DeclinationDegrees() float64 {
	return AngleDegrees(t.Declination)
}

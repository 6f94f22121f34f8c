// Package units provides shared constants and conversions for model lengths
// and angles.
package units

import "math"

// Length unit constants
const (
	Inch       = "in"
	Centimeter = "cm"
)

// CMPerInch is the exact inch definition.
const CMPerInch = 2.54

// ConvertLength converts a length in inches to the target units.
// Model coordinates are stored in inches.
func ConvertLength(inches float64, targetUnits string) float64 {
	switch targetUnits {
	case Centimeter:
		return inches * CMPerInch
	default:
		return inches
	}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

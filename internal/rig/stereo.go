package rig

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/mazecapture/internal/config"
	"github.com/banshee-data/mazecapture/internal/units"
)

// Eye tags one camera of the stereo pair.
type Eye int

const (
	Left Eye = iota
	Right
)

// String returns the lowercase token used in output file names.
func (e Eye) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Eye(%d)", int(e))
	}
}

// MarshalText encodes the eye as its token.
func (e Eye) MarshalText() ([]byte, error) {
	if e != Left && e != Right {
		return nil, fmt.Errorf("unknown eye %d", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText decodes "left" or "right".
func (e *Eye) UnmarshalText(b []byte) error {
	switch string(b) {
	case "left":
		*e = Left
	case "right":
		*e = Right
	default:
		return fmt.Errorf("unknown eye %q", string(b))
	}
	return nil
}

// Eyes lists the eyes in render order.
var Eyes = [2]Eye{Left, Right}

// EyePose is a complete camera placement for one simulated eye.
// Look and Up are unit vectors; Up is orthogonal to Look.
type EyePose struct {
	Eye      Eye        `json:"eye"`
	Position ModelPoint `json:"position"`
	Look     r3.Vec     `json:"look"`
	Up       r3.Vec     `json:"up"`
	VFOVDeg  float64    `json:"vfov_deg"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
}

// StereoPair holds both eyes of one viewing direction.
type StereoPair struct {
	Left  EyePose
	Right EyePose
}

// Eye returns the pose of e.
func (p StereoPair) Eye(e Eye) EyePose {
	if e == Right {
		return p.Right
	}
	return p.Left
}

var worldUp = r3.Vec{Z: 1}

// PosesFor derives both eye poses from an eye centre and a base heading
// (model-space yaw, radians, counter-clockwise from +X).
//
// The eyes sit half the separation either side of centre along the base
// right vector. The left eye yaws counter-clockwise by the yaw offset and the
// right eye clockwise by the same amount, so each eye looks out over its own
// side; both then pitch up.
func PosesFor(center ModelPoint, yaw float64, cfg config.RigConfig) StereoPair {
	forward := r3.Vec{X: math.Cos(yaw), Y: math.Sin(yaw)}
	right := r3.Rotate(forward, -math.Pi/2, worldUp)
	half := cfg.EyeSeparationInches / 2

	yawOffset := units.DegToRad(cfg.YawOffsetDeg)
	pitch := units.DegToRad(cfg.PitchUpDeg)

	pose := func(eye Eye, pos ModelPoint, offset float64) EyePose {
		look := lookVector(forward, offset, pitch)
		return EyePose{
			Eye:      eye,
			Position: pos,
			Look:     look,
			Up:       upVector(look),
			VFOVDeg:  cfg.VFOVDeg,
			Width:    cfg.ImageWidth,
			Height:   cfg.ImageHeight,
		}
	}

	return StereoPair{
		Left:  pose(Left, r3.Sub(center, r3.Scale(half, right)), yawOffset),
		Right: pose(Right, r3.Add(center, r3.Scale(half, right)), -yawOffset),
	}
}

// lookVector yaws forward about world up, then pitches it about its own
// right axis.
func lookVector(forward r3.Vec, yawOffset, pitch float64) r3.Vec {
	h := r3.Rotate(forward, yawOffset, worldUp)
	side := r3.Unit(r3.Cross(h, worldUp))
	return r3.Unit(r3.Rotate(h, pitch, side))
}

// upVector is world up with its component along look removed.
func upVector(look r3.Vec) r3.Vec {
	return r3.Unit(r3.Sub(worldUp, r3.Scale(r3.Dot(worldUp, look), look)))
}

// Yaw returns the horizontal heading of v, radians, counter-clockwise from +X.
func Yaw(v r3.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// Pitch returns the elevation of v above the horizontal plane, radians.
func Pitch(v r3.Vec) float64 {
	return math.Asin(v.Z / r3.Norm(v))
}

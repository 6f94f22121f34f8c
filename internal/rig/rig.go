package rig

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/mazecapture/internal/config"
	"github.com/banshee-data/mazecapture/internal/units"
)

// Rig bundles the calibrated mapper, the corner table and the north
// reference. It is immutable after NewRig and safe to share.
type Rig struct {
	cfg      config.RigConfig
	mapper   *Mapper
	corners  []GridPosition
	northYaw float64
}

// NewRig validates cfg and solves everything that does not depend on a
// particular grid cell. Any error here is a configuration error.
func NewRig(cfg config.RigConfig) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mapper, err := NewMapper(cfg)
	if err != nil {
		return nil, err
	}

	from, to := mapper.Map(cfg.NorthFrom), mapper.Map(cfg.NorthTo)
	north := r3.Vec{X: to.X - from.X, Y: to.Y - from.Y}
	if r3.Norm(north) < 1e-9 {
		return nil, fmt.Errorf("%w: north reference (%d,%d)->(%d,%d) maps to a single point",
			config.ErrInvalidGeometry, cfg.NorthFrom.X, cfg.NorthFrom.Y, cfg.NorthTo.X, cfg.NorthTo.Y)
	}

	corners := make([]GridPosition, len(cfg.Corners))
	copy(corners, cfg.Corners)

	return &Rig{
		cfg:      cfg,
		mapper:   mapper,
		corners:  corners,
		northYaw: Yaw(north),
	}, nil
}

// Config returns the rig configuration.
func (r *Rig) Config() config.RigConfig { return r.cfg }

// Mapper returns the coordinate mapper.
func (r *Rig) Mapper() *Mapper { return r.mapper }

// Map returns the eye centre of a grid cell.
func (r *Rig) Map(cell GridPosition) ModelPoint { return r.mapper.Map(cell) }

// Kind classifies cell against the configured corners.
func (r *Rig) Kind(cell GridPosition) CellKind { return Classify(cell, r.corners) }

// DirectionsFor returns the canonical viewing directions of cell.
func (r *Rig) DirectionsFor(cell GridPosition) []Direction {
	return DirectionsFor(r.Kind(cell))
}

// NorthYaw is the model-space yaw of the north reference, radians.
func (r *Rig) NorthYaw() float64 { return r.northYaw }

// Heading returns the model-space yaw of d, radians, counter-clockwise from
// +X. Bearings run clockwise from north when viewed from above.
func (r *Rig) Heading(d Direction) float64 {
	return normalizeAngle(r.northYaw - units.DegToRad(d.Bearing()))
}

// Poses returns the stereo pair looking along d from cell.
func (r *Rig) Poses(cell GridPosition, d Direction) StereoPair {
	return PosesFor(r.Map(cell), r.Heading(d), r.cfg)
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

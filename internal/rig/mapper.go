package rig

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/mazecapture/internal/config"
)

// GridPosition is an integer maze cell (x, y).
type GridPosition = config.GridCell

// ModelPoint is a position in model space, inches.
type ModelPoint = r3.Vec

// axisMap is the calibration of a single model axis against a single grid
// axis. Segment slopes are solved once by Fit and reused for every lookup.
type axisMap struct {
	pl     interp.PiecewiseLinear
	lo, hi int
}

func newAxisMap(axis string, anchors []config.Anchor) (axisMap, error) {
	sorted := config.SortedAnchors(anchors)
	if len(sorted) < 2 {
		return axisMap{}, fmt.Errorf("%w: %s needs at least 2 anchors", config.ErrInvalidAnchors, axis)
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, a := range sorted {
		if i > 0 && (a.Grid == sorted[i-1].Grid || a.Model == sorted[i-1].Model) {
			return axisMap{}, fmt.Errorf("%w: %s anchors at grid %d and %d are degenerate",
				config.ErrInvalidAnchors, axis, sorted[i-1].Grid, a.Grid)
		}
		xs[i] = float64(a.Grid)
		ys[i] = a.Model
	}

	m := axisMap{lo: sorted[0].Grid, hi: sorted[len(sorted)-1].Grid}
	if err := m.pl.Fit(xs, ys); err != nil {
		return axisMap{}, fmt.Errorf("%w: %s: %v", config.ErrInvalidAnchors, axis, err)
	}
	return m, nil
}

// at holds the end value outside the anchored range.
func (m axisMap) at(grid int) float64 {
	return m.pl.Predict(float64(grid))
}

// Mapper converts grid cells to model-space eye centres.
// Model X follows grid y and model Y follows grid x; Z is the constant eye
// height.
type Mapper struct {
	xFromGridY axisMap
	yFromGridX axisMap
	z          float64
}

// NewMapper solves the per-axis calibration from the configured anchors.
func NewMapper(cfg config.RigConfig) (*Mapper, error) {
	x, err := newAxisMap("x_from_grid_y", cfg.XFromGridY)
	if err != nil {
		return nil, err
	}
	y, err := newAxisMap("y_from_grid_x", cfg.YFromGridX)
	if err != nil {
		return nil, err
	}
	return &Mapper{xFromGridY: x, yFromGridX: y, z: cfg.EyeZInches()}, nil
}

// Map returns the model point of a grid cell.
func (m *Mapper) Map(cell GridPosition) ModelPoint {
	return ModelPoint{
		X: m.xFromGridY.at(cell.Y),
		Y: m.yFromGridX.at(cell.X),
		Z: m.z,
	}
}

// GridBounds returns the anchored grid range, inclusive.
func (m *Mapper) GridBounds() (lo, hi GridPosition) {
	lo = GridPosition{X: m.yFromGridX.lo, Y: m.xFromGridY.lo}
	hi = GridPosition{X: m.yFromGridX.hi, Y: m.xFromGridY.hi}
	return lo, hi
}

// Contains reports whether cell lies inside the anchored grid range.
func (m *Mapper) Contains(cell GridPosition) bool {
	lo, hi := m.GridBounds()
	return cell.X >= lo.X && cell.X <= hi.X && cell.Y >= lo.Y && cell.Y <= hi.Y
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Sentinel configuration errors. All of them are fatal before any job runs.
var (
	ErrInvalidAnchors  = errors.New("invalid calibration anchors")
	ErrInvalidCorners  = errors.New("invalid corner list")
	ErrInvalidGeometry = errors.New("invalid eye geometry")
)

// GridCell is an integer maze cell coordinate.
type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Anchor links one grid coordinate to one model coordinate (inches) on a
// single axis.
type Anchor struct {
	Grid  int     `json:"grid"`
	Model float64 `json:"model"`
}

// RigConfig describes the maze calibration and the stereo camera rig.
// It is built once at startup and never mutated during a run.
type RigConfig struct {
	// Calibration. Model X follows grid y and model Y follows grid x.
	XFromGridY []Anchor `json:"x_from_grid_y"`
	YFromGridX []Anchor `json:"y_from_grid_x"`

	// Grid plane height and eye raise above it, inches.
	GridZInches    float64 `json:"grid_z_in"`
	EyeRaiseInches float64 `json:"eye_raise_in"`

	// Eye geometry
	EyeSeparationInches float64 `json:"eye_separation_in"` // total, split evenly
	YawOffsetDeg        float64 `json:"yaw_offset_deg"`
	PitchUpDeg          float64 `json:"pitch_up_deg"`
	VFOVDeg             float64 `json:"vfov_deg"`
	ImageWidth          int     `json:"image_width"`
	ImageHeight         int     `json:"image_height"`

	// Cells that receive diagonal instead of cardinal directions.
	Corners []GridCell `json:"corners"`

	// North is the model direction from NorthFrom toward NorthTo.
	NorthFrom GridCell `json:"north_from"`
	NorthTo   GridCell `json:"north_to"`
}

// DefaultRigConfig returns the calibration of the 10x10 maze and the rodent
// eye template.
func DefaultRigConfig() RigConfig {
	return RigConfig{
		XFromGridY: []Anchor{
			{Grid: 0, Model: 8.039},
			{Grid: 1, Model: 16.336},
			{Grid: 5, Model: 55.519},
			{Grid: 9, Model: 94.702},
			{Grid: 10, Model: 102.999},
		},
		YFromGridX: []Anchor{
			{Grid: 0, Model: 6.02},
			{Grid: 1, Model: 14.317},
			{Grid: 5, Model: 53.50},
			{Grid: 9, Model: 92.683},
			{Grid: 10, Model: 100.98},
		},
		GridZInches:         33.577,
		EyeRaiseInches:      2.5,
		EyeSeparationInches: 0.5,
		YawOffsetDeg:        50,
		PitchUpDeg:          15,
		VFOVDeg:             150,
		ImageWidth:          128,
		ImageHeight:         128,
		Corners: []GridCell{
			{X: 0, Y: 0},
			{X: 10, Y: 0},
			{X: 0, Y: 10},
			{X: 10, Y: 10},
		},
		NorthFrom: GridCell{X: 5, Y: 5},
		NorthTo:   GridCell{X: 5, Y: 0},
	}
}

// EyeZInches is the constant model Z of every eye.
func (c RigConfig) EyeZInches() float64 {
	return c.GridZInches + c.EyeRaiseInches
}

// LoadRigConfig loads a RigConfig from a JSON file.
// Fields omitted from the file keep their DefaultRigConfig values; a list
// present in the file replaces the default list entirely.
func LoadRigConfig(path string) (RigConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return RigConfig{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return RigConfig{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return RigConfig{}, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return RigConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseRigConfig(data)
}

// ParseRigConfig overlays JSON data onto the defaults and validates the result.
func ParseRigConfig(data []byte) (RigConfig, error) {
	cfg := DefaultRigConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RigConfig{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RigConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c RigConfig) Validate() error {
	if err := validateAnchors("x_from_grid_y", c.XFromGridY); err != nil {
		return err
	}
	if err := validateAnchors("y_from_grid_x", c.YFromGridX); err != nil {
		return err
	}

	if c.EyeSeparationInches < 0 {
		return fmt.Errorf("%w: eye_separation_in must be non-negative, got %f", ErrInvalidGeometry, c.EyeSeparationInches)
	}
	if c.VFOVDeg <= 0 || c.VFOVDeg >= 180 {
		return fmt.Errorf("%w: vfov_deg must be in (0, 180), got %f", ErrInvalidGeometry, c.VFOVDeg)
	}
	if c.PitchUpDeg <= -90 || c.PitchUpDeg >= 90 {
		return fmt.Errorf("%w: pitch_up_deg must be in (-90, 90), got %f", ErrInvalidGeometry, c.PitchUpDeg)
	}
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidGeometry, c.ImageWidth, c.ImageHeight)
	}

	if len(c.Corners) != 4 {
		return fmt.Errorf("%w: need exactly 4 corners, got %d", ErrInvalidCorners, len(c.Corners))
	}
	seen := make(map[GridCell]bool, len(c.Corners))
	for _, cell := range c.Corners {
		if seen[cell] {
			return fmt.Errorf("%w: duplicate corner (%d,%d)", ErrInvalidCorners, cell.X, cell.Y)
		}
		seen[cell] = true
	}

	if c.NorthFrom == c.NorthTo {
		return fmt.Errorf("%w: north reference points must differ", ErrInvalidGeometry)
	}
	return nil
}

// SortedAnchors returns a copy of anchors ordered by grid coordinate.
func SortedAnchors(anchors []Anchor) []Anchor {
	out := make([]Anchor, len(anchors))
	copy(out, anchors)
	sort.Slice(out, func(i, j int) bool { return out[i].Grid < out[j].Grid })
	return out
}

func validateAnchors(axis string, anchors []Anchor) error {
	if len(anchors) < 2 {
		return fmt.Errorf("%w: %s needs at least 2 anchors, got %d", ErrInvalidAnchors, axis, len(anchors))
	}
	sorted := SortedAnchors(anchors)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Grid == cur.Grid {
			return fmt.Errorf("%w: %s has duplicate grid coordinate %d", ErrInvalidAnchors, axis, cur.Grid)
		}
		if prev.Model == cur.Model {
			return fmt.Errorf("%w: %s anchors %d and %d collapse to zero scale", ErrInvalidAnchors, axis, prev.Grid, cur.Grid)
		}
	}
	return nil
}

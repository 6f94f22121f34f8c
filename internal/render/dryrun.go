package render

import (
	"context"

	"github.com/banshee-data/mazecapture/internal/monitoring"
	"github.com/banshee-data/mazecapture/internal/rig"
	"github.com/banshee-data/mazecapture/internal/units"
)

// DryRunRenderer logs every pose and writes nothing. It lets a batch be
// planned and checked without a render host.
type DryRunRenderer struct {
	logf  func(format string, v ...interface{})
	calls int
}

// NewDryRunRenderer creates a dry-run renderer.
func NewDryRunRenderer() *DryRunRenderer {
	return &DryRunRenderer{logf: monitoring.Prefixed("dry-run")}
}

// Render implements capture.Renderer.
func (d *DryRunRenderer) Render(_ context.Context, pose rig.EyePose, outputPath string) error {
	d.calls++
	d.logf("%s eye=%s pos=(%.3f, %.3f, %.3f)%s yaw=%.1f° pitch=%.1f°",
		outputPath, pose.Eye,
		pose.Position.X, pose.Position.Y, pose.Position.Z, units.Inch,
		units.RadToDeg(rig.Yaw(pose.Look)), units.RadToDeg(rig.Pitch(pose.Look)))
	return nil
}

// Calls reports how many poses were logged.
func (d *DryRunRenderer) Calls() int { return d.calls }

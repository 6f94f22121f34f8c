// Package rigplot draws where the eyes of a capture batch sit and where they
// look, for checking a positions file before committing to a long render.
package rigplot

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/mazecapture/internal/capture"
	"github.com/banshee-data/mazecapture/internal/fsutil"
	"github.com/banshee-data/mazecapture/internal/rig"
)

// ErrNoJobs is returned when there is nothing to plot.
var ErrNoJobs = errors.New("no jobs to plot")

// lookLength is the drawn length of each look segment, inches.
const lookLength = 2.0

// directionColors gives each viewing direction a fixed colour so plots of
// different batches are comparable.
var directionColors = map[rig.Direction]color.RGBA{
	rig.North:     {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	rig.East:      {R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	rig.South:     {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	rig.West:      {R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	rig.NorthEast: {R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	rig.SouthEast: {R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	rig.SouthWest: {R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	rig.NorthWest: {R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
}

// byDirection groups jobs per direction, directions in canonical order.
func byDirection(jobs []capture.RenderJob) ([]rig.Direction, map[rig.Direction][]capture.RenderJob) {
	groups := make(map[rig.Direction][]capture.RenderJob)
	for _, j := range jobs {
		groups[j.Direction] = append(groups[j.Direction], j)
	}
	var order []rig.Direction
	for d := rig.North; d <= rig.NorthWest; d++ {
		if len(groups[d]) > 0 {
			order = append(order, d)
		}
	}
	return order, groups
}

// NewPlot builds a top-down plot of eye positions (model X/Y, inches) with a
// short segment along each eye's horizontal look direction.
func NewPlot(title string, jobs []capture.RenderJob) (*plot.Plot, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Model X (in)"
	p.Y.Label.Text = "Model Y (in)"
	p.Add(plotter.NewGrid())

	order, groups := byDirection(jobs)
	for _, d := range order {
		group := groups[d]
		c := directionColors[d]

		pts := make(plotter.XYs, 0, len(group))
		for _, j := range group {
			pts = append(pts, plotter.XY{X: j.Pose.Position.X, Y: j.Pose.Position.Y})
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("direction %s: %w", d, err)
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add(d.String(), scatter)

		for _, j := range group {
			seg, err := plotter.NewLine(lookSegment(j.Pose))
			if err != nil {
				return nil, fmt.Errorf("job %d: %w", j.Seq, err)
			}
			seg.Color = c
			seg.Width = vg.Points(1)
			p.Add(seg)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// lookSegment runs from the eye along the look vector projected onto the
// horizontal plane.
func lookSegment(pose rig.EyePose) plotter.XYs {
	yaw := rig.Yaw(pose.Look)
	x, y := pose.Position.X, pose.Position.Y
	return plotter.XYs{
		{X: x, Y: y},
		{X: x + lookLength*math.Cos(yaw), Y: y + lookLength*math.Sin(yaw)},
	}
}

// PlotPNG renders the plot for jobs into a PNG at path.
func PlotPNG(fs fsutil.FileSystem, path, title string, jobs []capture.RenderJob) error {
	p, err := NewPlot(title, jobs)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

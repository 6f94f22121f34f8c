package capture

import (
	"fmt"
	"path"

	"github.com/banshee-data/mazecapture/internal/rig"
)

// ImageExt is the extension of every rendered image.
const ImageExt = ".png"

// RenderJob is one eye of one direction at one grid cell. It is a plain
// value: nothing about it changes after Enumerate returns. Path is
// slash-separated and relative to the photos root.
type RenderJob struct {
	Seq       int              `json:"seq"`
	Cell      rig.GridPosition `json:"cell"`
	Direction rig.Direction    `json:"direction"`
	Eye       rig.Eye          `json:"eye"`
	Path      string           `json:"path"`
	Pose      rig.EyePose      `json:"pose"`
}

// ID identifies the job in reports and the ledger.
func (j RenderJob) ID() string { return j.Path }

// OutputPath names the image for (cell, direction, eye):
// <prefix>/<prefix>_<x>_<y>_<direction>_<eye>.png, with grid coordinates.
func OutputPath(prefix string, cell rig.GridPosition, d rig.Direction, eye rig.Eye) string {
	name := fmt.Sprintf("%s_%d_%d_%s_%s%s", prefix, cell.X, cell.Y, d, eye, ImageExt)
	return path.Join(prefix, name)
}

// Enumerate expands cells into render jobs: cells in input order, each
// cell's directions in canonical order, left eye before right. The same
// input always yields the same jobs.
func Enumerate(cells []rig.GridPosition, prefix string, r *rig.Rig) []RenderJob {
	cfg := r.Config()
	jobs := make([]RenderJob, 0, len(cells)*4*len(rig.Eyes))

	for _, cell := range cells {
		center := r.Map(cell)
		for _, d := range r.DirectionsFor(cell) {
			pair := rig.PosesFor(center, r.Heading(d), cfg)
			for _, eye := range rig.Eyes {
				jobs = append(jobs, RenderJob{
					Seq:       len(jobs),
					Cell:      cell,
					Direction: d,
					Eye:       eye,
					Path:      OutputPath(prefix, cell, d, eye),
					Pose:      pair.Eye(eye),
				})
			}
		}
	}
	return jobs
}

// Dirs returns the distinct output directories of jobs in first-seen order.
func Dirs(jobs []RenderJob) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, j := range jobs {
		d := path.Dir(j.Path)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

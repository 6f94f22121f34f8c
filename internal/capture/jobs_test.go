package capture

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/mazecapture/internal/config"
	"github.com/banshee-data/mazecapture/internal/rig"
)

func newTestRig(t *testing.T) *rig.Rig {
	t.Helper()
	r, err := rig.NewRig(config.DefaultRigConfig())
	if err != nil {
		t.Fatalf("NewRig: %v", err)
	}
	return r
}

func TestEnumerate_EightJobsPerCell(t *testing.T) {
	r := newTestRig(t)

	for x := 0; x <= 10; x++ {
		for y := 0; y <= 10; y++ {
			cell := rig.GridPosition{X: x, Y: y}
			jobs := Enumerate([]rig.GridPosition{cell}, "p", r)
			if len(jobs) != 8 {
				t.Fatalf("cell %v: got %d jobs, want 8", cell, len(jobs))
			}
			paths := make(map[string]bool)
			for _, j := range jobs {
				paths[j.Path] = true
			}
			if len(paths) != 8 {
				t.Errorf("cell %v: got %d distinct paths, want 8", cell, len(paths))
			}
		}
	}
}

func TestEnumerate_Config0Example(t *testing.T) {
	r := newTestRig(t)
	cells := []rig.GridPosition{{X: 5, Y: 7}, {X: 5, Y: 8}, {X: 5, Y: 9}}

	jobs := Enumerate(cells, "config0", r)
	if len(jobs) != 24 {
		t.Fatalf("got %d jobs, want 24", len(jobs))
	}

	if jobs[0].Path != "config0/config0_5_7_north_left.png" {
		t.Errorf("jobs[0].Path = %q", jobs[0].Path)
	}
	if jobs[1].Path != "config0/config0_5_7_north_right.png" {
		t.Errorf("jobs[1].Path = %q", jobs[1].Path)
	}
	if jobs[23].Path != "config0/config0_5_9_west_right.png" {
		t.Errorf("jobs[23].Path = %q", jobs[23].Path)
	}

	for i, j := range jobs {
		if j.Seq != i {
			t.Errorf("jobs[%d].Seq = %d", i, j.Seq)
		}
		if j.Pose.Eye != j.Eye {
			t.Errorf("jobs[%d]: pose eye %v does not match job eye %v", i, j.Pose.Eye, j.Eye)
		}
	}
}

func TestEnumerate_Order(t *testing.T) {
	r := newTestRig(t)
	jobs := Enumerate([]rig.GridPosition{{X: 2, Y: 3}}, "p", r)

	want := []struct {
		dir rig.Direction
		eye rig.Eye
	}{
		{rig.North, rig.Left}, {rig.North, rig.Right},
		{rig.East, rig.Left}, {rig.East, rig.Right},
		{rig.South, rig.Left}, {rig.South, rig.Right},
		{rig.West, rig.Left}, {rig.West, rig.Right},
	}
	for i, w := range want {
		if jobs[i].Direction != w.dir || jobs[i].Eye != w.eye {
			t.Errorf("jobs[%d] = %v/%v, want %v/%v", i, jobs[i].Direction, jobs[i].Eye, w.dir, w.eye)
		}
	}
}

func TestEnumerate_CornerUsesDiagonals(t *testing.T) {
	r := newTestRig(t)
	jobs := Enumerate([]rig.GridPosition{{X: 0, Y: 0}}, "config0", r)

	if jobs[0].Path != "config0/config0_0_0_ne_left.png" {
		t.Errorf("jobs[0].Path = %q", jobs[0].Path)
	}
	for _, j := range jobs {
		for _, cardinal := range []string{"_north_", "_east_", "_south_", "_west_"} {
			if strings.Contains(j.Path, cardinal) {
				t.Errorf("corner job has cardinal path %q", j.Path)
			}
		}
	}
}

func TestEnumerate_Idempotent(t *testing.T) {
	r := newTestRig(t)
	cells := []rig.GridPosition{{X: 5, Y: 7}, {X: 10, Y: 10}, {X: 1, Y: 4}}

	first := Enumerate(cells, "run", r)
	second := Enumerate(cells, "run", r)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Enumerate not deterministic (-first +second):\n%s", diff)
	}
}

func TestEnumerate_Empty(t *testing.T) {
	r := newTestRig(t)
	if jobs := Enumerate(nil, "p", r); len(jobs) != 0 {
		t.Errorf("got %d jobs for no cells", len(jobs))
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		prefix string
		cell   rig.GridPosition
		dir    rig.Direction
		eye    rig.Eye
		want   string
	}{
		{"config0", rig.GridPosition{X: 5, Y: 7}, rig.North, rig.Left, "config0/config0_5_7_north_left.png"},
		{"a", rig.GridPosition{X: 10, Y: 0}, rig.SouthWest, rig.Right, "a/a_10_0_sw_right.png"},
		{"run-2", rig.GridPosition{X: 3, Y: 9}, rig.East, rig.Right, "run-2/run-2_3_9_east_right.png"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.prefix, tt.cell, tt.dir, tt.eye); got != tt.want {
			t.Errorf("OutputPath(%q, %v, %v, %v) = %q, want %q", tt.prefix, tt.cell, tt.dir, tt.eye, got, tt.want)
		}
	}
}

func TestDirs(t *testing.T) {
	jobs := []RenderJob{
		{Path: "b/b_1_1_north_left.png"},
		{Path: "a/a_1_1_north_left.png"},
		{Path: "b/b_1_1_north_right.png"},
	}
	want := []string{"b", "a"}
	if diff := cmp.Diff(want, Dirs(jobs)); diff != "" {
		t.Errorf("Dirs() mismatch (-want +got):\n%s", diff)
	}
}

package capture

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/mazecapture/internal/fsutil"
	"github.com/banshee-data/mazecapture/internal/monitoring"
	"github.com/banshee-data/mazecapture/internal/rig"
	"github.com/banshee-data/mazecapture/internal/security"
	"github.com/banshee-data/mazecapture/internal/timeutil"
)

// DefaultPhotosRoot is the directory image paths are resolved under.
const DefaultPhotosRoot = "photos"

// Renderer is the host render capability: place the camera at pose, render,
// and write the image to outputPath, replacing any existing file. The call
// blocks until the image is written or the failure is known.
type Renderer interface {
	Render(ctx context.Context, pose rig.EyePose, outputPath string) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, pose rig.EyePose, outputPath string) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, pose rig.EyePose, outputPath string) error {
	return f(ctx, pose, outputPath)
}

// JobOutcome is the result of rendering one job.
type JobOutcome struct {
	Job       RenderJob
	Started   time.Time
	Duration  time.Duration
	Overwrote bool // an image already existed at the output path
	Err       error
}

// Recorder receives run progress. Recorder errors are logged and never fail
// a job.
type Recorder interface {
	StartRun(runID, prefix string, started time.Time, total int) error
	RecordJob(runID string, outcome JobOutcome) error
	FinishRun(runID string, report Report) error
}

// Orchestrator renders jobs one at a time, in order.
type Orchestrator struct {
	renderer Renderer
	fs       fsutil.FileSystem
	root     string
	clock    timeutil.Clock
	recorder Recorder
	newRunID func() string
	logf     func(format string, v ...interface{})
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFileSystem sets the filesystem used to prepare output directories.
func WithFileSystem(fs fsutil.FileSystem) Option {
	return func(o *Orchestrator) { o.fs = fs }
}

// WithPhotosRoot sets the directory job paths are resolved under.
func WithPhotosRoot(root string) Option {
	return func(o *Orchestrator) { o.root = root }
}

// WithClock sets the clock used for run and job timing.
func WithClock(c timeutil.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithRecorder attaches a run recorder such as the ledger.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithRunIDFunc overrides run ID generation.
func WithRunIDFunc(f func() string) Option {
	return func(o *Orchestrator) { o.newRunID = f }
}

// NewOrchestrator creates an orchestrator around renderer.
func NewOrchestrator(renderer Renderer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		renderer: renderer,
		fs:       fsutil.OSFileSystem{},
		root:     DefaultPhotosRoot,
		clock:    timeutil.RealClock{},
		newRunID: uuid.NewString,
		logf:     monitoring.Prefixed("capture"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run renders every job in order. A failed job is recorded and the run moves
// on to the next one. Once ctx is done no further job is started; the rest
// are listed in Report.NotAttempted.
func (o *Orchestrator) Run(ctx context.Context, prefix string, jobs []RenderJob) Report {
	report := Report{
		RunID:   o.newRunID(),
		Started: o.clock.Now(),
		Total:   len(jobs),
	}
	o.logf("run %s: %d jobs under %s", report.RunID, len(jobs), o.root)
	if o.recorder != nil {
		if err := o.recorder.StartRun(report.RunID, prefix, report.Started, len(jobs)); err != nil {
			o.logf("run %s: recorder start failed: %v", report.RunID, err)
		}
	}

	dirErrs := o.prepareDirs(jobs)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			for _, rest := range jobs[i:] {
				report.NotAttempted = append(report.NotAttempted, rest.ID())
			}
			o.logf("run %s: stopped before job %d: %v", report.RunID, job.Seq, err)
			break
		}
		outcome := o.runJob(ctx, job, dirErrs)
		if outcome.Err != nil {
			report.Failed = append(report.Failed, JobFailure{Seq: job.Seq, ID: job.ID(), Err: outcome.Err})
			o.logf("job %d %s failed: %v", job.Seq, job.ID(), outcome.Err)
		} else {
			report.Succeeded = append(report.Succeeded, job.ID())
			if outcome.Overwrote {
				report.Overwritten++
			}
		}
		if o.recorder != nil {
			if err := o.recorder.RecordJob(report.RunID, outcome); err != nil {
				o.logf("job %d %s: recorder failed: %v", job.Seq, job.ID(), err)
			}
		}
	}

	report.Finished = o.clock.Now()
	if o.recorder != nil {
		if err := o.recorder.FinishRun(report.RunID, report); err != nil {
			o.logf("run %s: recorder finish failed: %v", report.RunID, err)
		}
	}
	o.logf("%s", report)
	return report
}

// prepareDirs creates every output directory up front. A directory that
// cannot be created fails only the jobs that write into it.
func (o *Orchestrator) prepareDirs(jobs []RenderJob) map[string]error {
	errs := make(map[string]error)
	for _, dir := range Dirs(jobs) {
		full, err := security.JoinWithin(o.root, filepath.FromSlash(dir))
		if err == nil {
			err = o.fs.MkdirAll(full, 0755)
		}
		if err != nil {
			errs[dir] = fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return errs
}

func (o *Orchestrator) runJob(ctx context.Context, job RenderJob, dirErrs map[string]error) (outcome JobOutcome) {
	outcome = JobOutcome{Job: job, Started: o.clock.Now()}
	defer func() { outcome.Duration = o.clock.Since(outcome.Started) }()

	if err := dirErrs[path.Dir(job.Path)]; err != nil {
		outcome.Err = err
		return outcome
	}
	full, err := security.JoinWithin(o.root, filepath.FromSlash(job.Path))
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Overwrote = o.fs.Exists(full)
	if err := o.renderer.Render(ctx, job.Pose, full); err != nil {
		outcome.Err = fmt.Errorf("render %s: %w", full, err)
	}
	return outcome
}

package capture

import (
	"errors"
	"fmt"
	"time"
)

// Errors summarised by Report.Err.
var (
	ErrJobsFailed  = errors.New("render jobs failed")
	ErrRunCanceled = errors.New("run canceled")
)

// JobFailure records one failed job.
type JobFailure struct {
	Seq int
	ID  string
	Err error
}

// Report summarises a run. Succeeded, Failed and NotAttempted are in job
// order. NotAttempted lists the jobs skipped after cancellation.
type Report struct {
	RunID        string
	Started      time.Time
	Finished     time.Time
	Total        int
	Succeeded    []string
	Failed       []JobFailure
	NotAttempted []string
	Overwritten  int
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Err returns nil when every job was rendered successfully.
func (r Report) Err() error {
	var errs []error
	if len(r.Failed) > 0 {
		first := r.Failed[0]
		errs = append(errs, fmt.Errorf("%w: %d of %d (first: job %d %s: %v)",
			ErrJobsFailed, len(r.Failed), r.Total, first.Seq, first.ID, first.Err))
	}
	if len(r.NotAttempted) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d of %d jobs not attempted",
			ErrRunCanceled, len(r.NotAttempted), r.Total))
	}
	return errors.Join(errs...)
}

// String is a one-line summary for logs.
func (r Report) String() string {
	s := fmt.Sprintf("run=%s total=%d succeeded=%d failed=%d overwritten=%d elapsed=%s",
		r.RunID, r.Total, len(r.Succeeded), len(r.Failed), r.Overwritten, r.Duration().Round(time.Millisecond))
	if len(r.NotAttempted) > 0 {
		s += fmt.Sprintf(" not_attempted=%d", len(r.NotAttempted))
	}
	return s
}

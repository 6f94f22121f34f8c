package capture

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReport_Err(t *testing.T) {
	ok := Report{Total: 2, Succeeded: []string{"a", "b"}}
	if err := ok.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	cause := errors.New("timeout")
	failed := Report{
		Total:     3,
		Succeeded: []string{"a"},
		Failed: []JobFailure{
			{Seq: 1, ID: "p/p_1_1_east_left.png", Err: cause},
			{Seq: 2, ID: "p/p_1_1_east_right.png", Err: cause},
		},
	}
	err := failed.Err()
	if !errors.Is(err, ErrJobsFailed) {
		t.Fatalf("Err() = %v, want ErrJobsFailed", err)
	}
	for _, want := range []string{"2 of 3", "job 1", "p/p_1_1_east_left.png", "timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Err() = %q, missing %q", err, want)
		}
	}
}

func TestReport_String(t *testing.T) {
	r := Report{
		RunID:       "abc",
		Started:     testStart,
		Finished:    testStart.Add(1500 * time.Millisecond),
		Total:       4,
		Succeeded:   []string{"a", "b", "c"},
		Failed:      []JobFailure{{Seq: 3, ID: "d"}},
		Overwritten: 2,
	}
	want := "run=abc total=4 succeeded=3 failed=1 overwritten=2 elapsed=1.5s"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if r.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", r.Duration())
	}
}

func TestReport_ErrNotAttempted(t *testing.T) {
	r := Report{Total: 4, Succeeded: []string{"a"}, NotAttempted: []string{"b", "c", "d"}}
	err := r.Err()
	if !errors.Is(err, ErrRunCanceled) {
		t.Fatalf("Err() = %v, want ErrRunCanceled", err)
	}
	if errors.Is(err, ErrJobsFailed) {
		t.Errorf("Err() = %v, no job failed", err)
	}
	if !strings.Contains(err.Error(), "3 of 4 jobs not attempted") {
		t.Errorf("Err() = %q", err)
	}
}

// Package testutil provides shared test helpers.
package testutil

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// VecNear reports whether a and b are within eps of each other.
func VecNear(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

// AssertVecNear fails the test if got is further than eps from want.
func AssertVecNear(t testing.TB, name string, got, want r3.Vec, eps float64) {
	t.Helper()
	if !VecNear(got, want, eps) {
		t.Errorf("%s = %+v, want %+v (eps %g)", name, got, want, eps)
	}
}

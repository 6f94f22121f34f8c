// Package rig owns the camera-rig geometry of a maze capture.
//
// Responsibilities: grid → model coordinate mapping, the corner-aware
// direction table, and stereo eye pose derivation.
// Key types: GridPosition, ModelPoint, Direction, EyePose.
//
// Dependency rule: rig depends only on config and units. No I/O is allowed
// in this package; every function is a pure computation over an immutable
// Rig.
package rig

// Package capture turns grid cells into render jobs and drives a renderer
// through them.
//
// Responsibilities: deterministic job enumeration and output naming,
// sequential render orchestration with per-job failure tolerance, and the
// pose manifest written beside the images.
// Key types: RenderJob, Renderer, Orchestrator, Report.
//
// The renderer is stateful and not reentrant, so jobs are never rendered
// concurrently.
package capture

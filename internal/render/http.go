// Package render provides capture.Renderer implementations: a client for the
// host render bridge and a dry-run renderer that only logs.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/mazecapture/internal/httputil"
	"github.com/banshee-data/mazecapture/internal/monitoring"
	"github.com/banshee-data/mazecapture/internal/rig"
	"github.com/banshee-data/mazecapture/internal/units"
)

// ErrRenderRejected is returned when the bridge answers with a non-2xx status.
var ErrRenderRejected = errors.New("render request rejected")

// TargetDistanceCM is how far along the look vector the camera target is
// placed. The host aims cameras at a point rather than along a vector.
const TargetDistanceCM = 10.0

// maxErrorBody bounds how much of an error response is quoted in errors.
const maxErrorBody = 512

// Vec3 is a point or direction in host units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CaptureRequest is the body of POST <base>/capture.
type CaptureRequest struct {
	Path        string  `json:"path"`
	Eye         rig.Eye `json:"eye"`
	Units       string  `json:"units"`
	Position    Vec3    `json:"eye_position"`
	Target      Vec3    `json:"target"`
	Up          Vec3    `json:"up"`
	VFOVDeg     float64 `json:"vfov_deg"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Perspective bool    `json:"perspective"`
}

// NewCaptureRequest converts a pose in model inches into the bridge's
// centimetre request.
func NewCaptureRequest(pose rig.EyePose, outputPath string) CaptureRequest {
	eye := r3.Vec{
		X: units.ConvertLength(pose.Position.X, units.Centimeter),
		Y: units.ConvertLength(pose.Position.Y, units.Centimeter),
		Z: units.ConvertLength(pose.Position.Z, units.Centimeter),
	}
	target := r3.Add(eye, r3.Scale(TargetDistanceCM, r3.Unit(pose.Look)))
	return CaptureRequest{
		Path:        outputPath,
		Eye:         pose.Eye,
		Units:       units.Centimeter,
		Position:    toVec3(eye),
		Target:      toVec3(target),
		Up:          toVec3(pose.Up),
		VFOVDeg:     pose.VFOVDeg,
		Width:       pose.Width,
		Height:      pose.Height,
		Perspective: true,
	}
}

func toVec3(v r3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// HTTPRenderer drives the render bridge running inside the CAD host. The
// bridge serialises calls itself; the orchestrator also never overlaps them.
type HTTPRenderer struct {
	client  httputil.HTTPClient
	baseURL string
	logf    func(format string, v ...interface{})
}

// NewHTTPRenderer creates a renderer that posts to baseURL. A nil client uses
// the default HTTP client with no timeout, since a render has no useful
// upper bound.
func NewHTTPRenderer(client httputil.HTTPClient, baseURL string) *HTTPRenderer {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &HTTPRenderer{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logf:    monitoring.Prefixed("render"),
	}
}

// Render implements capture.Renderer.
func (r *HTTPRenderer) Render(ctx context.Context, pose rig.EyePose, outputPath string) error {
	data, err := json.Marshal(NewCaptureRequest(pose, outputPath))
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/capture", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrRenderRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	r.logf("rendered %s", outputPath)
	return nil
}

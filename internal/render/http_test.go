package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/mazecapture/internal/httputil"
	"github.com/banshee-data/mazecapture/internal/monitoring"
	"github.com/banshee-data/mazecapture/internal/rig"
)

func testPose() rig.EyePose {
	return rig.EyePose{
		Eye:      rig.Left,
		Position: r3.Vec{X: 10, Y: 20, Z: 36.077},
		Look:     r3.Vec{X: 1},
		Up:       r3.Vec{Z: 1},
		VFOVDeg:  150,
		Width:    128,
		Height:   128,
	}
}

func TestNewCaptureRequest(t *testing.T) {
	req := NewCaptureRequest(testPose(), "photos/p/p_1_1_north_left.png")

	assert.Equal(t, "cm", req.Units)
	assert.Equal(t, rig.Left, req.Eye)
	assert.True(t, scalar.EqualWithinAbs(req.Position.X, 25.4, 1e-9))
	assert.True(t, scalar.EqualWithinAbs(req.Position.Y, 50.8, 1e-9))
	assert.True(t, scalar.EqualWithinAbs(req.Position.Z, 36.077*2.54, 1e-9))
	// Target sits 10 cm along the look vector.
	assert.True(t, scalar.EqualWithinAbs(req.Target.X, 35.4, 1e-9))
	assert.True(t, scalar.EqualWithinAbs(req.Target.Y, req.Position.Y, 1e-9))
	assert.Equal(t, Vec3{Z: 1}, req.Up)
	assert.Equal(t, 150.0, req.VFOVDeg)
	assert.Equal(t, 128, req.Width)
	assert.True(t, req.Perspective)
}

func TestHTTPRenderer_Render(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	mock := httputil.NewMockHTTPClient()
	r := NewHTTPRenderer(mock, "http://localhost:8765/")

	require.NoError(t, r.Render(context.Background(), testPose(), "photos/p/a.png"))
	require.Equal(t, 1, mock.RequestCount())

	req := mock.Requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "http://localhost:8765/capture", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(mock.Body(0), &body))
	assert.Equal(t, "photos/p/a.png", body["path"])
	assert.Equal(t, "left", body["eye"])
	assert.Contains(t, body, "eye_position")
	assert.Contains(t, body, "target")
}

func TestHTTPRenderer_Errors(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	transportErr := errors.New("connection refused")
	mock := httputil.NewMockHTTPClient().
		AddResponse(http.StatusServiceUnavailable, "host is in sketch mode\n").
		AddErrorResponse(transportErr).
		AddResponse(http.StatusNoContent, "")
	r := NewHTTPRenderer(mock, "http://bridge")

	err := r.Render(context.Background(), testPose(), "a.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderRejected)
	assert.True(t, strings.HasSuffix(err.Error(), "status 503: host is in sketch mode"), err.Error())

	err = r.Render(context.Background(), testPose(), "b.png")
	assert.ErrorIs(t, err, transportErr)

	assert.NoError(t, r.Render(context.Background(), testPose(), "c.png"), "any 2xx is success")
	assert.Equal(t, 3, mock.RequestCount())
}

func TestHTTPRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := httputil.NewMockHTTPClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	}
	err := NewHTTPRenderer(mock, "http://bridge").Render(ctx, testPose(), "a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDryRunRenderer(t *testing.T) {
	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, format)
	})
	defer monitoring.SetLogger(nil)

	d := NewDryRunRenderer()
	require.NoError(t, d.Render(context.Background(), testPose(), "p/a.png"))
	require.NoError(t, d.Render(context.Background(), testPose(), "p/b.png"))

	assert.Equal(t, 2, d.Calls())
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[dry-run] "))
}

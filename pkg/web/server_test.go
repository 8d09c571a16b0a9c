package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/hub"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/projection"
	"github.com/teslashibe/go-facetrack/pkg/smoothing"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

type fakeController struct {
	enableErr error
	enabled   bool
	topo      landmark.Topology
	tuning    tracking.TuningParams
}

func (f *fakeController) Enable() error {
	if f.enableErr != nil {
		return f.enableErr
	}
	f.enabled = true
	return nil
}

func (f *fakeController) Disable() { f.enabled = false }

func (f *fakeController) Toggle() (bool, error) {
	if f.enabled {
		f.Disable()
		return false, nil
	}
	if err := f.Enable(); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeController) Status() tracking.Status {
	return tracking.Status{Enabled: f.enabled, Ready: f.topo.Name != "", Topology: f.topo.Name}
}

func (f *fakeController) Topology() landmark.Topology { return f.topo }

func (f *fakeController) GetTuningParams() tracking.TuningParams { return f.tuning }

func (f *fakeController) SetTuningParams(p tracking.TuningParams) {
	if p.SmoothingFactor > 0 {
		f.tuning.SmoothingFactor = p.SmoothingFactor
	}
	if p.Scale > 0 {
		f.tuning.Scale = p.Scale
	}
	if p.FrameRate > 0 {
		f.tuning.FrameRate = p.FrameRate
	}
}

func newTestServer(ctrl *fakeController) *Server {
	return NewServer(Config{Port: "0"}, ctrl, camera.NewManager())
}

func do(t *testing.T, s *Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestEnableErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not ready", tracking.ErrDetectorNotReady, http.StatusConflict, msgNotReady},
		{"busy", video.Classify("0", syscall.EBUSY), http.StatusServiceUnavailable, video.MsgDeviceBusy},
		{"denied", video.Classify("0", syscall.EACCES), http.StatusServiceUnavailable, video.MsgPermissionDenied},
		{"unavailable", video.Classify("0", io.EOF), http.StatusServiceUnavailable, video.MsgUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeController{enableErr: tt.err})

			for _, path := range []string{"/api/tracking/enable", "/api/tracking/toggle"} {
				code, body := do(t, s, http.MethodPost, path, nil)
				assert.Equal(t, tt.code, code, path)
				assert.Equal(t, tt.message, body["message"], path)
				assert.Equal(t, LabelEnable, body["button"], path)
			}
		})
	}
}

func TestTrackingToggle(t *testing.T) {
	ctrl := &fakeController{topo: landmark.YuNet}
	s := newTestServer(ctrl)

	code, body := do(t, s, http.MethodPost, "/api/tracking/toggle", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, LabelDisable, body["button"])

	code, body = do(t, s, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, LabelDisable, body["button"])
	assert.NotEmpty(t, body["session"])

	code, body = do(t, s, http.MethodPost, "/api/tracking/disable", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["enabled"])
	assert.False(t, ctrl.enabled)
}

func TestCameraEndpoints(t *testing.T) {
	s := newTestServer(&fakeController{})

	code, body := do(t, s, http.MethodGet, "/api/camera", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 45, body["fov"])

	code, body = do(t, s, http.MethodPost, "/api/camera", map[string]interface{}{"fov": 60})
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 60, body["fov"])

	code, _ = do(t, s, http.MethodPost, "/api/camera", map[string]interface{}{"fov": 500})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/camera", map[string]interface{}{"preset": "fisheye"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, s, http.MethodPost, "/api/camera", map[string]interface{}{"preset": "wide"})
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 75, body["fov"])
}

func TestViewportResize(t *testing.T) {
	s := newTestServer(&fakeController{})

	code, body := do(t, s, http.MethodPost, "/api/viewport", ViewportRequest{Width: 1920, Height: 1080})
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 16.0/9.0, body["aspect"], 1e-9)
	assert.InDelta(t, 16.0/9.0, s.camera.Params().Aspect, 1e-9)

	code, _ = do(t, s, http.MethodPost, "/api/viewport", ViewportRequest{Width: 0, Height: 1080})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTuningEndpoints(t *testing.T) {
	ctrl := &fakeController{tuning: tracking.TuningParams{SmoothingFactor: 0.7, Scale: 10, FrameRate: 30}}
	s := newTestServer(ctrl)

	code, body := do(t, s, http.MethodPost, "/api/tuning", map[string]float64{"smoothing_factor": 0.85})
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0.85, body["smoothing_factor"])
	assert.EqualValues(t, 10, body["scale"])

	code, _ = do(t, s, http.MethodPost, "/api/tuning", map[string]float64{"smoothing_factor": 2})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, s, http.MethodGet, "/api/tuning", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0.85, body["smoothing_factor"])
}

func TestTopologyEndpoint(t *testing.T) {
	s := newTestServer(&fakeController{})
	code, _ := do(t, s, http.MethodGet, "/api/topology", nil)
	assert.Equal(t, http.StatusConflict, code)

	s = newTestServer(&fakeController{topo: landmark.MediaPipeFaceMesh})
	code, body := do(t, s, http.MethodGet, "/api/topology", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mediapipe-face-mesh", body["name"])
	assert.EqualValues(t, 1, body["nose_tip"])
	assert.EqualValues(t, 478, body["landmarks"])
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(&fakeController{})
	code, _ := do(t, s, http.MethodGet, "/ws/pose", nil)
	assert.Equal(t, http.StatusUpgradeRequired, code)
}

func TestPoseMessage(t *testing.T) {
	cam := camera.DefaultConfig()
	scene := tracking.Scene{
		Frame:     7,
		Timestamp: 231 * time.Millisecond,
		Outcome:   smoothing.Smoothed,
		Faces:     smoothing.FaceHistory{{{X: 0.5, Y: 0.5}}},
		Topology:  "yunet",
		Camera:    cam,
		Params:    projection.CameraParams{FOV: 45, Aspect: 1.5},
	}

	msg := NewPoseMessage(scene)
	assert.Nil(t, msg.Position, "no position before the first nose tip")

	scene.Position = projection.Position{X: -3.1, Y: 0, Z: 2}
	scene.HasPosition = true
	msg = NewPoseMessage(scene)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	pos := decoded["position"].(map[string]interface{})
	assert.InDelta(t, -3.1, pos["x"], 1e-9)
	assert.InDelta(t, 2.0, pos["z"], 1e-9)

	camState := decoded["camera"].(map[string]interface{})
	assert.InDelta(t, 45, camState["fov"], 1e-9)
	assert.InDelta(t, 1.5, camState["aspect"], 1e-9)
	assert.InDelta(t, 10, camState["position"].(map[string]interface{})["z"], 1e-9)

	faces := decoded["faces"].([]interface{})
	require.Len(t, faces, 1)
	assert.EqualValues(t, 231, decoded["timestamp_ms"])
	assert.Equal(t, "smoothed", decoded["outcome"])
}

// viewerConn is a hub connection that keeps every message written to it.
type viewerConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newViewerConn() *viewerConn { return &viewerConn{closed: make(chan struct{})} }

func (c *viewerConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *viewerConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *viewerConn) SetReadLimit(int64)                {}
func (c *viewerConn) SetReadDeadline(time.Time) error   { return nil }
func (c *viewerConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *viewerConn) SetPongHandler(func(string) error) {}
func (c *viewerConn) Close() error                      { c.once.Do(func() { close(c.closed) }); return nil }

func (c *viewerConn) frames() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []uint64
	for _, w := range c.writes {
		var msg PoseMessage
		if json.Unmarshal(w, &msg) == nil && msg.Type == "pose" {
			out = append(out, msg.Frame)
		}
	}
	return out
}

func TestRenderWithoutViewersKeepsReplayCurrent(t *testing.T) {
	s := newTestServer(&fakeController{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.poseHub.Run(ctx)

	// Frames rendered before anyone watches
	require.NoError(t, s.Render(tracking.Scene{Frame: 1, Camera: camera.DefaultConfig()}))
	require.NoError(t, s.Render(tracking.Scene{Frame: 2, Camera: camera.DefaultConfig()}))
	time.Sleep(20 * time.Millisecond)

	conn := newViewerConn()
	client := hub.NewClient(s.poseHub, conn)
	go client.Run()
	defer conn.Close()

	require.Eventually(t, func() bool {
		frames := conn.frames()
		return len(frames) > 0 && frames[len(frames)-1] == 2
	}, 2*time.Second, 5*time.Millisecond, "new viewer should get the latest pose")
	assert.NotContains(t, conn.frames(), uint64(1))
}

package detection

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

func newLandmarker(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("content type = %q, want image/jpeg", r.Header.Get("Content-Type"))
		}
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_DecodesFaces(t *testing.T) {
	srv := newLandmarker(t, http.StatusOK,
		`{"faceLandmarks":[[{"x":0.4,"y":0.5,"z":-0.01},{"x":0.5,"y":0.55,"z":-0.05}]]}`)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	d, err := NewRemote(cfg)
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}

	sets, err := d.DetectJPEG(context.Background(), []byte{0xff, 0xd8})
	if err != nil {
		t.Fatalf("DetectJPEG: %v", err)
	}
	if len(sets) != 1 || len(sets[0]) != 2 {
		t.Fatalf("got %v, want 1 face with 2 landmarks", sets)
	}

	nose := sets[0][d.Topology().NoseTip]
	if nose.X != 0.5 || nose.Z != -0.05 {
		t.Errorf("nose = %+v", nose)
	}
}

func TestRemote_NoFaces(t *testing.T) {
	srv := newLandmarker(t, http.StatusOK, `{"faceLandmarks":[]}`)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	d, _ := NewRemote(cfg)

	sets, err := d.DetectJPEG(context.Background(), []byte{0xff})
	if err != nil {
		t.Fatalf("DetectJPEG: %v", err)
	}
	if sets != nil {
		t.Errorf("expected nil for no faces, got %v", sets)
	}
}

func TestRemote_MaxFaces(t *testing.T) {
	srv := newLandmarker(t, http.StatusOK,
		`{"faceLandmarks":[[{"x":0.1,"y":0.1,"z":0}],[{"x":0.9,"y":0.9,"z":0}]]}`)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	cfg.MaxFaces = 1
	d, _ := NewRemote(cfg)

	sets, err := d.DetectJPEG(context.Background(), []byte{0xff})
	if err != nil {
		t.Fatalf("DetectJPEG: %v", err)
	}
	if len(sets) != 1 || sets[0][0] != (landmark.Landmark{X: 0.1, Y: 0.1}) {
		t.Errorf("expected first face only, got %v", sets)
	}
}

func TestRemote_ServerError(t *testing.T) {
	srv := newLandmarker(t, http.StatusServiceUnavailable, `{"error":"model loading"}`)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	d, _ := NewRemote(cfg)

	if _, err := d.DetectJPEG(context.Background(), []byte{0xff}); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestRemote_ServerErrorNotJSON(t *testing.T) {
	srv := newLandmarker(t, http.StatusBadGateway, `<html><body>502 Bad Gateway</body></html>`)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	d, _ := NewRemote(cfg)

	_, err := d.DetectJPEG(context.Background(), []byte{0xff})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error = %v, want the status code", err)
	}
	if strings.Contains(err.Error(), "decode") {
		t.Errorf("error = %v, should not be a decode failure", err)
	}
}

func TestNewRemote_Topology(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "http://sidecar"

	cfg.Topology = landmark.YuNet.Name
	d, err := NewRemote(cfg)
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}
	if d.Topology().Name != landmark.YuNet.Name {
		t.Errorf("Topology() = %q, want %q", d.Topology().Name, landmark.YuNet.Name)
	}

	cfg.Topology = ""
	d, err = NewRemote(cfg)
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}
	if d.Topology().Name != landmark.MediaPipeFaceMesh.Name {
		t.Errorf("default Topology() = %q", d.Topology().Name)
	}

	cfg.Topology = "dlib-68"
	if _, err := NewRemote(cfg); !errors.Is(err, landmark.ErrUnknownTopology) {
		t.Errorf("NewRemote error = %v, want ErrUnknownTopology", err)
	}
}

func TestNewRemote_RequiresURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = ""
	if _, err := NewRemote(cfg); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestRemote_FrameWithoutImage(t *testing.T) {
	srv := newLandmarker(t, http.StatusOK, `{"faceLandmarks":[]}`)
	cfg := DefaultConfig()
	cfg.Backend = "remote"
	cfg.URL = srv.URL

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := d.Detect(video.Frame{Width: 480, Height: 360}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Detect() error = %v, want ErrNoImage", err)
	}
}

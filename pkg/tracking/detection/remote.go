package detection

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/teslashibe/go-facetrack/internal/httpc"
	"github.com/teslashibe/go-facetrack/pkg/debug"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// landmarkerResponse is the face-landmarker sidecar's reply.
type landmarkerResponse struct {
	FaceLandmarks [][]landmark.Landmark `json:"faceLandmarks"`
	Error         string                `json:"error,omitempty"`
}

// RemoteDetector sends frames to a MediaPipe face-landmarker sidecar over HTTP.
type RemoteDetector struct {
	url      string
	topology landmark.Topology
	client   *http.Client
	config   Config
	timeout  time.Duration
	mu       sync.Mutex // One request in flight
}

// NewRemote creates a detector that posts JPEG frames to cfg.URL.
func NewRemote(cfg Config) (*RemoteDetector, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote detector: url is required")
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = DefaultConfig().JPEGQuality
	}
	if cfg.Topology == "" {
		cfg.Topology = landmark.MediaPipeFaceMesh.Name
	}
	topo, err := landmark.Lookup(cfg.Topology)
	if err != nil {
		return nil, fmt.Errorf("remote detector: %w", err)
	}
	return &RemoteDetector{
		url:      cfg.URL,
		topology: topo,
		client:   httpc.Client,
		config:   cfg,
		timeout:  httpc.DefaultTimeout,
	}, nil
}

// Topology returns the configured sidecar layout, MediaPipe face mesh by default.
func (d *RemoteDetector) Topology() landmark.Topology {
	return d.topology
}

// Detect encodes the frame and asks the sidecar for landmarks.
func (d *RemoteDetector) Detect(frame video.Frame) ([]landmark.Set, error) {
	if !frame.HasImage() {
		return nil, ErrNoImage
	}
	jpeg, err := video.EncodeJPEG(frame.Image, d.config.JPEGQuality)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.DetectJPEG(ctx, jpeg)
}

// DetectJPEG posts an encoded frame and decodes the returned landmark sets.
func (d *RemoteDetector) DetectJPEG(ctx context.Context, jpeg []byte) ([]landmark.Set, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := httpc.Post(ctx, d.client, d.url, "image/jpeg", jpeg)
	if err != nil {
		return nil, fmt.Errorf("landmarker request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read landmarker response: %w", err)
	}

	var out landmarkerResponse
	if resp.StatusCode != http.StatusOK {
		// Proxies answer with HTML, so the JSON error is best effort
		if json.Unmarshal(body, &out) == nil && out.Error != "" {
			return nil, fmt.Errorf("landmarker status %d: %s", resp.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("landmarker status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode landmarker response: %w", err)
	}

	sets := make([]landmark.Set, 0, len(out.FaceLandmarks))
	for _, face := range out.FaceLandmarks {
		if len(face) == 0 {
			continue
		}
		sets = append(sets, landmark.Set(face))
	}
	if d.config.MaxFaces > 0 && len(sets) > d.config.MaxFaces {
		sets = sets[:d.config.MaxFaces]
	}
	if len(sets) == 0 {
		return nil, nil
	}

	debug.TrackLog("👁️  Landmarker returned %d face(s)\n", len(sets))
	return sets, nil
}

// Close is a no-op; the sidecar outlives the detector.
func (d *RemoteDetector) Close() error {
	return nil
}

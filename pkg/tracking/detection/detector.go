// Package detection provides face-landmark detectors for the tracking pipeline.
package detection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// ErrUnknownBackend is returned by New for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown detector backend")

// ErrNoImage is returned when a frame carries no pixels.
var ErrNoImage = errors.New("frame has no image")

// Detection is a face bounding box.
type Detection struct {
	X, Y       float64 // Top-left corner (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Face is one detected face with its landmarks.
type Face struct {
	Box       Detection
	Landmarks landmark.Set
}

// Detector is the interface for face-landmark backends.
type Detector interface {
	// Detect finds faces in the frame. No faces is an empty result, not an error.
	Detect(frame video.Frame) ([]landmark.Set, error)

	// Topology describes what each landmark index means.
	Topology() landmark.Topology

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	Backend          string  // "yunet" or "remote"
	ModelPath        string  // Path to ONNX model (yunet)
	URL              string  // Landmarker endpoint (remote)
	Topology         string  // Landmark layout the sidecar returns (remote)
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
	MaxFaces         int     // Faces to keep per frame; 0 keeps all
	JPEGQuality      int     // Frame encoding quality for remote backends
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		Backend:          "yunet",
		ModelPath:        "models/face_detection_yunet_2023mar.onnx",
		URL:              "http://localhost:8501/v1/face_landmarks",
		Topology:         landmark.MediaPipeFaceMesh.Name,
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
		MaxFaces:         1,
		JPEGQuality:      85,
	}
}

// New creates a detector for cfg.Backend.
func New(cfg Config) (Detector, error) {
	switch cfg.Backend {
	case "yunet", "":
		return NewYuNet(cfg)
	case "remote":
		return NewRemote(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Limit keeps the max highest-scoring faces. Survivors keep the detector's order;
// reordering here would hide rather than fix identity swaps between frames.
func Limit(faces []Face, max int) []Face {
	if max <= 0 || len(faces) <= max {
		return faces
	}

	boxes := make([]Detection, len(faces))
	for i, f := range faces {
		boxes[i] = f.Box
	}
	area := maxArea(boxes)

	idx := make([]int, len(faces))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return score(boxes[idx[a]], area) > score(boxes[idx[b]], area)
	})
	keep := idx[:max]
	sort.Ints(keep)

	out := make([]Face, 0, max)
	for _, i := range keep {
		out = append(out, faces[i])
	}
	return out
}

// Sets extracts the landmark sets from faces.
func Sets(faces []Face) []landmark.Set {
	if len(faces) == 0 {
		return nil
	}
	sets := make([]landmark.Set, len(faces))
	for i, f := range faces {
		sets[i] = f.Landmarks
	}
	return sets
}

func maxArea(dets []Detection) float64 {
	m := 0.0
	for _, d := range dets {
		if d.Area() > m {
			m = d.Area()
		}
	}
	return m
}

func score(d Detection, maxArea float64) float64 {
	if maxArea <= 0 {
		return d.Confidence * 0.7
	}
	return d.Confidence*0.7 + (d.Area()/maxArea)*0.3
}

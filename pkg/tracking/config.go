// Package tracking drives the per-frame face tracking pipeline:
// detect, smooth, draw, project, render.
package tracking

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/teslashibe/go-facetrack/pkg/projection"
	"github.com/teslashibe/go-facetrack/pkg/smoothing"
)

// Aspect sources for the projection.
const (
	AspectViewport = "viewport" // Renderer viewport (follows window resizes)
	AspectVideo    = "video"    // Captured frame size
)

// Config holds all tunable parameters for face tracking
type Config struct {
	// Smoothing
	SmoothingFactor float64 `json:"smoothing_factor" validate:"gte=0,lte=1"` // Weight on history (higher = more inertia)

	// Projection
	Scale        float64 `json:"scale" validate:"gt=0"`                         // Normalized units to world units
	TrackedFace  int     `json:"tracked_face" validate:"gte=0"`                 // Face whose nose drives the object
	AspectSource string  `json:"aspect_source" validate:"oneof=viewport video"` // Where the aspect ratio comes from

	// Timing
	FrameInterval time.Duration `json:"frame_interval" validate:"min=5ms,max=1s"` // Frame loop period

	// Dashboard stream
	StreamEvery int `json:"stream_every" validate:"gte=0"`         // Send every nth frame to the dashboard (0 = off)
	JPEGQuality int `json:"jpeg_quality" validate:"min=1,max=100"` // Dashboard JPEG quality

	// Logging
	LogEvery uint64 `json:"log_every"` // Per-frame debug log sampling
}

var validate = validator.New()

// DefaultConfig returns the recommended configuration
func DefaultConfig() Config {
	return Config{
		SmoothingFactor: smoothing.DefaultAlpha,

		Scale:        projection.DefaultScale,
		TrackedFace:  0,
		AspectSource: AspectViewport,

		FrameInterval: 33 * time.Millisecond, // ~30 FPS

		StreamEvery: 2,
		JPEGQuality: 70,

		LogEvery: 30,
	}
}

// SmoothConfig returns a configuration for slower, steadier tracking
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0.85
	return cfg
}

// ResponsiveConfig returns a configuration that follows the face closely
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingFactor = 0.4
	cfg.FrameInterval = 16 * time.Millisecond
	return cfg
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid tracking config: %w", err)
	}
	return nil
}

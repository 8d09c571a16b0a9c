// Package camera holds the runtime-configurable perspective camera and viewport
// that the external renderer draws through. The projection reads its field of
// view and aspect ratio from here every frame.
package camera

import "github.com/teslashibe/go-facetrack/pkg/projection"

// Config holds the scene camera and viewport parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	// === Frustum ===
	FOV  float64 `json:"fov"`  // Vertical field of view in degrees
	Near float64 `json:"near"` // Near clipping plane
	Far  float64 `json:"far"`  // Far clipping plane

	// === Placement ===
	// The camera looks down -Z from (PositionX, PositionY, PositionZ).
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
	PositionZ float64 `json:"position_z"`

	// === Viewport ===
	// Renderer output size in pixels. Aspect ratio is derived from these.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport limits
const (
	MinViewport = 16
	MaxViewport = 8192
	MinFOV      = 1.0
	MaxFOV      = 170.0
)

// DefaultConfig mirrors the demo scene: 45° camera ten units back, 480x360 viewport.
func DefaultConfig() Config {
	return Config{
		FOV:  45,
		Near: 0.1,
		Far:  1000,

		PositionX: 0,
		PositionY: 0,
		PositionZ: 10,

		Width:  480,
		Height: 360,
	}
}

// Aspect returns the viewport aspect ratio (width / height).
func (c Config) Aspect() float64 {
	if c.Height == 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

// Params returns the values the projection needs.
func (c Config) Params() projection.CameraParams {
	return projection.CameraParams{FOV: c.FOV, Aspect: c.Aspect()}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.FOV < MinFOV || c.FOV > MaxFOV {
		errors = append(errors, "fov must be between 1 and 170 degrees")
	}
	if c.Near <= 0 {
		errors = append(errors, "near must be positive")
	}
	if c.Far <= c.Near {
		errors = append(errors, "far must be greater than near")
	}
	if c.Width < MinViewport || c.Width > MaxViewport {
		errors = append(errors, "width must be between 16 and 8192")
	}
	if c.Height < MinViewport || c.Height > MaxViewport {
		errors = append(errors, "height must be between 16 and 8192")
	}

	return errors
}

// Capabilities describes the accepted ranges.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"min_fov":      MinFOV,
		"max_fov":      MaxFOV,
		"min_viewport": MinViewport,
		"max_viewport": MaxViewport,
		"presets":      PresetNames(),
	}
}

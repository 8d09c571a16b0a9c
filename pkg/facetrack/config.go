// Package facetrack wires the webcam, detector, tracking loop and scene server
// into one application.
package facetrack

import (
	"fmt"
	"strings"

	"github.com/teslashibe/go-facetrack/internal/config"
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
	"github.com/teslashibe/go-facetrack/pkg/tracking/detection"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// Config holds all configuration for the application.
// Flag parsing is done in cmd/facetrack; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// DebugTracking enables per-frame tracking logs.
	DebugTracking bool

	// LogLevel is passed to the structured logger.
	LogLevel string

	// Web server.
	Port      string
	StaticDir string

	// AutoStart enables tracking as soon as the detector has loaded.
	AutoStart bool

	Capture   video.Config
	Detection detection.Config
	Tracking  tracking.Config
	Scene     camera.Config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  config.DefaultLogLevel,
		Port:      config.DefaultPort,
		StaticDir: config.DefaultStaticDir,
		Capture:   video.DefaultConfig(),
		Detection: detection.DefaultConfig(),
		Tracking:  tracking.DefaultConfig(),
		Scene:     camera.DefaultConfig(),
	}
}

// ApplyEnv copies environment settings into the config.
// Call this before applying command line flags so flags win.
func (c *Config) ApplyEnv(env config.Env) {
	c.Port = env.Port
	c.StaticDir = env.StaticDir
	c.LogLevel = env.LogLevel
	c.AutoStart = env.AutoStart
	c.Capture.Device = env.CameraDevice
	c.Detection.Backend = env.Detector
	c.Detection.ModelPath = env.YuNetModel
	c.Detection.URL = env.LandmarkerURL
	if env.Topology != "" {
		c.Detection.Topology = env.Topology
	}
}

// Validate checks that the configuration can run.
func (c *Config) Validate() error {
	switch c.Detection.Backend {
	case "yunet":
		if c.Detection.ModelPath == "" {
			return &ConfigError{Field: "Detection.ModelPath", Message: "YUNET_MODEL is required for the yunet backend"}
		}
	case "remote":
		if c.Detection.URL == "" {
			return &ConfigError{Field: "Detection.URL", Message: "LANDMARKER_URL is required for the remote backend"}
		}
		if c.Detection.Topology != "" {
			if _, err := landmark.Lookup(c.Detection.Topology); err != nil {
				return &ConfigError{Field: "Detection.Topology", Message: fmt.Sprintf("%v (want one of %s)", err, strings.Join(landmark.Names(), ", "))}
			}
		}
	default:
		return &ConfigError{Field: "Detection.Backend", Message: fmt.Sprintf("unknown detector backend %q (want yunet or remote)", c.Detection.Backend)}
	}

	if err := c.Tracking.Validate(); err != nil {
		return &ConfigError{Field: "Tracking", Message: err.Error()}
	}
	if errs := c.Scene.Validate(); len(errs) > 0 {
		return &ConfigError{Field: "Scene", Message: "camera: " + strings.Join(errs, "; ")}
	}
	if c.Port == "" {
		return &ConfigError{Field: "Port", Message: "port is required"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

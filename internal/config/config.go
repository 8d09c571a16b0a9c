// Package config provides environment configuration for go-facetrack commands.
// Values come from the process environment, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults used when the environment is silent.
const (
	DefaultPort          = "8080"
	DefaultCameraDevice  = "0"
	DefaultDetector      = "yunet"
	DefaultYuNetModel    = "models/face_detection_yunet_2023mar.onnx"
	DefaultLandmarkerURL = "http://localhost:8501/v1/face_landmarks"
	DefaultTopology      = "mediapipe-face-mesh"
	DefaultLogLevel      = "info"
	DefaultStaticDir     = "./web"
)

// Env is the resolved environment configuration.
type Env struct {
	Port          string // FACETRACK_PORT
	CameraDevice  string // CAMERA_DEVICE
	Detector      string // DETECTOR_BACKEND: yunet or remote
	YuNetModel    string // YUNET_MODEL
	LandmarkerURL string // LANDMARKER_URL
	Topology      string // LANDMARKER_TOPOLOGY: landmark layout the sidecar returns
	LogLevel      string // LOG_LEVEL
	StaticDir     string // STATIC_DIR
	AutoStart     bool   // TRACKING_AUTOSTART
}

// LoadDotEnv reads .env files into the environment without overriding values already set.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load resolves configuration from the environment.
func Load() Env {
	return Env{
		Port:          Get("FACETRACK_PORT", DefaultPort),
		CameraDevice:  Get("CAMERA_DEVICE", DefaultCameraDevice),
		Detector:      Get("DETECTOR_BACKEND", DefaultDetector),
		YuNetModel:    Get("YUNET_MODEL", DefaultYuNetModel),
		LandmarkerURL: Get("LANDMARKER_URL", DefaultLandmarkerURL),
		Topology:      Get("LANDMARKER_TOPOLOGY", DefaultTopology),
		LogLevel:      Get("LOG_LEVEL", DefaultLogLevel),
		StaticDir:     Get("STATIC_DIR", DefaultStaticDir),
		AutoStart:     Bool("TRACKING_AUTOSTART", false),
	}
}

// Get returns the env var or the provided default if not set.
func Get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Bool parses a boolean env var, falling back to def when unset or malformed.
func Bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-facetrack/internal/config"
	"github.com/teslashibe/go-facetrack/internal/log"
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/facetrack"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
)

// runOptions holds flag values for the run command
type runOptions struct {
	Debug          bool
	DebugTracking  bool
	Port           string
	Device         string
	Detector       string
	Model          string
	LandmarkerURL  string
	Topology       string
	StaticDir      string
	AutoStart      bool
	TrackingPreset string
	CameraPreset   string
	Smoothing      float64
	Scale          float64
	FPS            float64
	AspectSource   string
	MaxFaces       int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture the webcam, track the face and serve the scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, runOpts, config.Load())
		if err != nil {
			return err
		}
		log.Init(cfg.LogLevel)

		app, err := facetrack.New(cfg)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if err := app.Init(); err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}
		defer app.Shutdown()

		return app.Run(cmd.Context())
	},
}

// buildConfig layers defaults, environment and explicitly set flags.
func buildConfig(cmd *cobra.Command, opts runOptions, env config.Env) (facetrack.Config, error) {
	cfg := facetrack.DefaultConfig()
	cfg.ApplyEnv(env)

	flags := cmd.Flags()
	cfg.Debug = opts.Debug
	cfg.DebugTracking = opts.DebugTracking
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	switch opts.TrackingPreset {
	case "", "default":
	case "smooth":
		cfg.Tracking = tracking.SmoothConfig()
	case "responsive":
		cfg.Tracking = tracking.ResponsiveConfig()
	default:
		return cfg, fmt.Errorf("unknown tracking preset %q (want default, smooth or responsive)", opts.TrackingPreset)
	}

	if opts.CameraPreset != "" {
		preset := camera.GetPreset(opts.CameraPreset)
		if preset == nil {
			return cfg, fmt.Errorf("unknown camera preset %q", opts.CameraPreset)
		}
		cfg.Scene = *preset
	}

	if flags.Changed("port") {
		cfg.Port = opts.Port
	}
	if flags.Changed("device") {
		cfg.Capture.Device = opts.Device
	}
	if flags.Changed("detector") {
		cfg.Detection.Backend = opts.Detector
	}
	if flags.Changed("model") {
		cfg.Detection.ModelPath = opts.Model
	}
	if flags.Changed("landmarker-url") {
		cfg.Detection.URL = opts.LandmarkerURL
	}
	if flags.Changed("topology") {
		cfg.Detection.Topology = opts.Topology
	}
	if flags.Changed("static") {
		cfg.StaticDir = opts.StaticDir
	}
	if flags.Changed("autostart") {
		cfg.AutoStart = opts.AutoStart
	}
	if flags.Changed("smoothing") {
		cfg.Tracking.SmoothingFactor = opts.Smoothing
	}
	if flags.Changed("scale") {
		cfg.Tracking.Scale = opts.Scale
	}
	if flags.Changed("fps") && opts.FPS > 0 {
		cfg.Tracking.FrameInterval = time.Duration(float64(time.Second) / opts.FPS)
	}
	if flags.Changed("aspect-source") {
		cfg.Tracking.AspectSource = opts.AspectSource
	}
	if flags.Changed("max-faces") {
		cfg.Detection.MaxFaces = opts.MaxFaces
	}

	return cfg, nil
}

// addRunFlags registers the run flags on cmd, bound to opts
func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	defaults := facetrack.DefaultConfig()
	f := cmd.Flags()

	f.BoolVar(&opts.Debug, "debug", false, "Enable verbose debug logging")
	f.BoolVar(&opts.DebugTracking, "debug-tracking", false, "Log per-frame tracking (very verbose)")
	f.StringVar(&opts.Port, "port", defaults.Port, "HTTP port (overrides FACETRACK_PORT)")
	f.StringVar(&opts.Device, "device", defaults.Capture.Device, "Camera index, device path or stream URL (overrides CAMERA_DEVICE)")
	f.StringVar(&opts.Detector, "detector", defaults.Detection.Backend, "Detector backend: yunet or remote (overrides DETECTOR_BACKEND)")
	f.StringVar(&opts.Model, "model", defaults.Detection.ModelPath, "YuNet ONNX model path (overrides YUNET_MODEL)")
	f.StringVar(&opts.LandmarkerURL, "landmarker-url", defaults.Detection.URL, "Remote face landmarker endpoint (overrides LANDMARKER_URL)")
	f.StringVar(&opts.Topology, "topology", defaults.Detection.Topology, "Landmark layout returned by the remote landmarker: "+strings.Join(landmark.Names(), ", ")+" (overrides LANDMARKER_TOPOLOGY)")
	f.StringVar(&opts.StaticDir, "static", defaults.StaticDir, "Directory served at / (overrides STATIC_DIR)")
	f.BoolVar(&opts.AutoStart, "autostart", false, "Enable tracking once the model has loaded (overrides TRACKING_AUTOSTART)")
	f.StringVar(&opts.TrackingPreset, "preset", "default", "Tracking preset: default, smooth, responsive")
	f.StringVar(&opts.CameraPreset, "camera", "", "Scene camera preset: "+fmt.Sprint(camera.PresetNames()))
	f.Float64Var(&opts.Smoothing, "smoothing", defaults.Tracking.SmoothingFactor, "Smoothing factor 0-1 (weight on history)")
	f.Float64Var(&opts.Scale, "scale", defaults.Tracking.Scale, "Normalized to world unit scale")
	f.Float64Var(&opts.FPS, "fps", 30, "Frame loop rate")
	f.StringVar(&opts.AspectSource, "aspect-source", defaults.Tracking.AspectSource, "Projection aspect ratio source: viewport or video")
	f.IntVar(&opts.MaxFaces, "max-faces", defaults.Detection.MaxFaces, "Faces to track per frame (0 = all)")
}

func init() {
	addRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
}

package facetrack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-facetrack/internal/log"
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/debug"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
	"github.com/teslashibe/go-facetrack/pkg/tracking/detection"
	"github.com/teslashibe/go-facetrack/pkg/video"
	"github.com/teslashibe/go-facetrack/pkg/web"
)

// DetectorFactory builds the face-landmark detector. It may be slow (model load).
type DetectorFactory func(cfg detection.Config) (detection.Detector, error)

// App is the application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger

	cameraManager *camera.Manager
	tracker       *tracking.Tracker
	webServer     *web.Server

	newDetector DetectorFactory
	openSource  tracking.SourceOpener
	detector    chan detection.Detector
}

// New creates an application with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Tracking = cfg.DebugTracking

	capture := cfg.Capture
	return &App{
		config:      cfg,
		logger:      log.Component("app"),
		newDetector: detection.New,
		openSource: func() (video.Source, error) {
			cam, err := video.OpenWebcam(capture)
			if err != nil {
				return nil, err
			}
			return cam, nil
		},
		detector: make(chan detection.Detector, 1),
	}, nil
}

// Init builds the scene, tracker and server. Call this after New() and before Run().
func (a *App) Init() error {
	a.logger.Info("facetrack starting",
		"detector", a.config.Detection.Backend,
		"device", a.config.Capture.Device,
		"port", a.config.Port)
	if debug.Enabled {
		a.logger.Info("debug mode enabled", "tracking_logs", debug.Tracking)
	}

	a.cameraManager = camera.NewManagerWithConfig(a.config.Scene)

	// The server is the tracker's renderer; the tracker is the server's controller
	a.tracker = tracking.New(a.config.Tracking, a.cameraManager, nil, a.openSource)
	a.webServer = web.NewServer(web.Config{
		Port:      a.config.Port,
		StaticDir: a.config.StaticDir,
	}, a.tracker, a.cameraManager)
	a.tracker.SetRenderer(a.webServer)
	a.tracker.SetFrameSink(a.webServer)
	a.tracker.OnStateChange(a.webServer.UpdateStatus)

	return nil
}

// Run starts the server, loads the detector in the background and drives the frame loop.
// Blocks until context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.tracker == nil {
		return fmt.Errorf("app not initialized")
	}

	a.webServer.StartAsync(ctx)
	go a.loadDetector(ctx)

	a.tracker.Run(ctx)
	return nil
}

// loadDetector builds the detector off the frame loop so the server is usable while the model loads.
func (a *App) loadDetector(ctx context.Context) {
	a.logger.Info("loading face landmark model", "backend", a.config.Detection.Backend)

	d, err := a.newDetector(a.config.Detection)
	if err != nil {
		a.logger.Error("detector failed to load, tracking unavailable", "error", err)
		return
	}
	if ctx.Err() != nil {
		d.Close()
		return
	}

	a.detector <- d
	if err := a.tracker.SetDetector(d); err != nil {
		a.logger.Error("detector rejected, tracking unavailable", "error", err)
		return
	}

	if a.config.AutoStart {
		if err := a.tracker.Enable(); err != nil {
			a.logger.Warn("autostart failed", "error", err)
		}
	}
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.logger.Info("shutting down")

	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			a.logger.Warn("web server shutdown", "error", err)
		}
	}
	select {
	case d := <-a.detector:
		d.Close()
	default:
	}
}

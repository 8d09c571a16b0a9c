// Package web serves the face tracking scene: pose and camera streams over
// websockets and a REST API for tracking, camera and tuning control.
package web

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-facetrack/internal/log"
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/hub"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
)

// Controller is the tracking surface the server drives.
// *tracking.Tracker satisfies it.
type Controller interface {
	Enable() error
	Disable()
	Toggle() (bool, error)
	Status() tracking.Status
	Topology() landmark.Topology
	GetTuningParams() tracking.TuningParams
	SetTuningParams(tracking.TuningParams)
}

// Config holds server settings.
type Config struct {
	Port      string
	StaticDir string // Served at / when it exists
}

// Server is the scene server. It is the pipeline's renderer and frame sink.
type Server struct {
	app     *fiber.App
	config  Config
	session string
	logger  *slog.Logger

	tracker Controller
	camera  *camera.Manager

	// Hubs for websocket broadcast
	poseHub   *hub.Hub
	statusHub *hub.Hub
	cameraHub *hub.Hub

	cancel context.CancelFunc
}

// NewServer creates a new scene server
func NewServer(cfg Config, tracker Controller, cam *camera.Manager) *Server {
	if cam == nil {
		cam = camera.NewManager()
	}
	s := &Server{
		config:    cfg,
		session:   uuid.NewString(),
		logger:    log.Component("web"),
		tracker:   tracker,
		camera:    cam,
		poseHub:   hub.NewReplaying("pose"),
		statusHub: hub.NewReplaying("status"),
		cameraHub: hub.New("camera"),
	}

	// Viewers re-read the camera when it changes
	cam.OnConfigChange = func(camera.Config) error {
		s.PublishStatus()
		return nil
	}

	app := fiber.New(fiber.Config{
		AppName:               "facetrack",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/tracking/enable", s.handleEnable)
	api.Post("/tracking/disable", s.handleDisable)
	api.Post("/tracking/toggle", s.handleToggle)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleSetCamera)
	api.Get("/camera/presets", s.handleCameraPresets)
	api.Post("/viewport", s.handleViewport)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)
	api.Get("/topology", s.handleTopology)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/pose", websocket.New(s.serveHub(s.poseHub)))
	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	// Static files
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			app.Static("/", cfg.StaticDir)
		}
	}

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the hubs and blocks serving HTTP.
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.poseHub.Run(ctx)
	go s.statusHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	s.PublishStatus()

	s.logger.Info("scene server listening", "url", "http://localhost:"+s.config.Port, "session", s.session)
	return s.app.Listen(":" + s.config.Port)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// SendCameraFrame sends an overlayed camera frame to all viewers
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.BroadcastBinary(jpegData)
}

// PublishStatus broadcasts the current status to /ws/status viewers.
func (s *Server) PublishStatus() {
	if err := s.statusHub.BroadcastJSON(s.statusMessage()); err != nil {
		s.logger.Warn("status encode failed", "error", err)
	}
}

// UpdateStatus is the tracker's state change callback.
func (s *Server) UpdateStatus(tracking.Status) {
	s.PublishStatus()
}

// Shutdown gracefully stops the server and its hubs
func (s *Server) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.app.Shutdown()
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.NewClient(h, c).Run()
	}
}

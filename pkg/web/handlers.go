package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// Message shown while the model is still loading.
const msgNotReady = "Face landmark model is still loading. Try again in a moment."

// handleError renders fiber and handler errors as JSON
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// trackingError maps an Enable/Toggle failure to a status code and user message
func (s *Server) trackingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, tracking.ErrDetectorNotReady):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   err.Error(),
			"message": msgNotReady,
			"button":  LabelEnable,
		})
	case errors.Is(err, video.ErrDeviceBusy),
		errors.Is(err, video.ErrPermissionDenied),
		errors.Is(err, video.ErrCameraUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   err.Error(),
			"message": video.UserMessage(err),
			"button":  LabelEnable,
		})
	}
	s.logger.Error("tracking request failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// handleStatus returns tracker, camera and viewer state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.statusMessage())
}

// handleEnable starts tracking
func (s *Server) handleEnable(c *fiber.Ctx) error {
	if err := s.tracker.Enable(); err != nil {
		return s.trackingError(c, err)
	}
	return c.JSON(fiber.Map{"enabled": true, "button": LabelDisable})
}

// handleDisable stops tracking
func (s *Server) handleDisable(c *fiber.Ctx) error {
	s.tracker.Disable()
	return c.JSON(fiber.Map{"enabled": false, "button": LabelEnable})
}

// handleToggle flips tracking, like the dashboard button
func (s *Server) handleToggle(c *fiber.Ctx) error {
	enabled, err := s.tracker.Toggle()
	if err != nil {
		return s.trackingError(c, err)
	}
	return c.JSON(fiber.Map{"enabled": enabled, "button": buttonLabel(enabled)})
}

// handleGetCamera returns the scene camera
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	return c.JSON(s.camera.GetConfigJSON())
}

// handleSetCamera applies a partial camera update or preset
func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if err := s.camera.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(s.camera.GetConfigJSON())
}

// handleCameraPresets lists presets and accepted ranges
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets":      camera.PresetNames(),
		"capabilities": camera.Capabilities(),
	})
}

// ViewportRequest is the body of POST /api/viewport
type ViewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// handleViewport follows a browser window resize
func (s *Server) handleViewport(c *fiber.Ctx) error {
	var req ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if err := s.camera.Resize(req.Width, req.Height); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	cfg := s.camera.GetConfig()
	return c.JSON(cameraState(cfg, cfg.Aspect()))
}

// handleGetTuning returns runtime tuning parameters
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.tracker.GetTuningParams())
}

// handleSetTuning applies runtime tuning parameters; zero fields are ignored
func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	var params tracking.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if params.SmoothingFactor > 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "smoothing_factor must be at most 1"})
	}

	s.tracker.SetTuningParams(params)
	s.logger.Info("tuning updated",
		"smoothing_factor", params.SmoothingFactor,
		"scale", params.Scale,
		"frame_rate", params.FrameRate)
	return c.JSON(s.tracker.GetTuningParams())
}

// TopologyInfo describes the detector's landmark layout
type TopologyInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Landmarks int      `json:"landmarks"`
	NoseTip   int      `json:"nose_tip"`
	Regions   []string `json:"regions"`
}

// handleTopology returns the active landmark topology
func (s *Server) handleTopology(c *fiber.Ctx) error {
	topo := s.tracker.Topology()
	if topo.Name == "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   tracking.ErrDetectorNotReady.Error(),
			"message": msgNotReady,
		})
	}
	return c.JSON(TopologyInfo{
		Name:      topo.Name,
		Version:   topo.Version,
		Landmarks: topo.Landmarks,
		NoseTip:   topo.NoseTip,
		Regions:   topo.RegionNames(),
	})
}

package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-facetrack/internal/log"
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/debug"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/projection"
	"github.com/teslashibe/go-facetrack/pkg/tracking/detection"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// maxReadFailures is how many consecutive camera read failures disable tracking.
const maxReadFailures = 30

// SourceOpener opens the video source when tracking is first enabled.
type SourceOpener func() (video.Source, error)

// Status is a snapshot of tracker state for dashboards.
type Status struct {
	Enabled     bool                `json:"enabled"`
	Ready       bool                `json:"ready"`
	Topology    string              `json:"topology,omitempty"`
	Frames      uint64              `json:"frames"`
	Faces       int                 `json:"faces"`
	Outcome     string              `json:"outcome,omitempty"`
	Position    projection.Position `json:"-"`
	HasPosition bool                `json:"has_position"`
	Error       string              `json:"error,omitempty"`
}

// Tracker owns the frame loop. One pass runs at a time on the Run goroutine;
// Enable and Disable only flip the flag the loop checks before each pass.
type Tracker struct {
	config   Config
	pipeline *Pipeline
	open     SourceOpener
	logger   *slog.Logger

	enabled atomic.Bool
	ready   atomic.Bool

	passMu sync.Mutex // Serializes access to the pipeline

	mu           sync.RWMutex // Guards source and status
	source       video.Source
	status       Status
	readFailures int

	tickerReset   chan time.Duration
	onStateChange func(Status)
}

// New creates a tracker. The detector is installed later with SetDetector,
// usually once the model has finished loading.
func New(config Config, cam *camera.Manager, renderer Renderer, open SourceOpener) *Tracker {
	return &Tracker{
		config:      config,
		pipeline:    NewPipeline(config, cam, renderer),
		open:        open,
		logger:      log.Component("tracker"),
		tickerReset: make(chan time.Duration, 1),
	}
}

// SetRenderer installs the scene renderer.
func (t *Tracker) SetRenderer(r Renderer) {
	t.passMu.Lock()
	defer t.passMu.Unlock()
	t.pipeline.renderer = r
}

// SetFrameSink installs the dashboard frame receiver.
func (t *Tracker) SetFrameSink(s FrameSink) {
	t.passMu.Lock()
	defer t.passMu.Unlock()
	t.pipeline.SetFrameSink(s)
}

// OnStateChange registers a callback for enable/disable and error transitions.
func (t *Tracker) OnStateChange(fn func(Status)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = fn
}

// SetDetector installs a loaded detector. Tracking can be enabled afterwards.
// A detector with an invalid topology is refused and readiness is unchanged.
func (t *Tracker) SetDetector(d detection.Detector) error {
	t.passMu.Lock()
	err := t.pipeline.SetDetector(d)
	topo := t.pipeline.Topology()
	t.passMu.Unlock()

	if err != nil {
		t.logger.Error("detector refused", "topology", d.Topology().Name, "version", d.Topology().Version, "error", err)
		return err
	}

	t.ready.Store(d != nil)

	t.mu.Lock()
	t.status.Topology = topo.Name
	t.mu.Unlock()

	if d != nil {
		t.logger.Info("detector ready", "topology", topo.Name, "version", topo.Version, "landmarks", topo.Landmarks)
	}
	t.notify()
	return nil
}

// Ready reports whether a detector has been loaded.
func (t *Tracker) Ready() bool {
	return t.ready.Load()
}

// Topology returns the landmark topology of the loaded detector.
func (t *Tracker) Topology() landmark.Topology {
	t.passMu.Lock()
	defer t.passMu.Unlock()
	return t.pipeline.Topology()
}

// Enabled reports whether the frame loop is processing frames.
func (t *Tracker) Enabled() bool {
	return t.enabled.Load()
}

// Enable starts processing frames, opening the camera on first use.
// On a camera error the tracker stays disabled and the classified error is returned.
func (t *Tracker) Enable() error {
	if !t.ready.Load() {
		t.logger.Warn("tracking requested before detector loaded")
		return ErrDetectorNotReady
	}
	if t.enabled.Load() {
		return nil
	}

	t.mu.Lock()
	if t.source == nil {
		if t.open == nil {
			t.mu.Unlock()
			return video.ErrCameraUnavailable
		}
		src, err := t.open()
		if err != nil {
			t.enabled.Store(false)
			t.status.Error = video.UserMessage(err)
			t.mu.Unlock()
			t.logger.Error("camera open failed", "error", err)
			t.notify()
			return err
		}
		t.source = src
	}
	t.status.Error = ""
	t.readFailures = 0
	t.enabled.Store(true)
	t.mu.Unlock()

	t.logger.Info("tracking enabled")
	t.notify()
	return nil
}

// Disable stops scheduling passes. A pass already running finishes.
func (t *Tracker) Disable() {
	if !t.enabled.Swap(false) {
		return
	}
	t.logger.Info("tracking disabled")
	t.notify()
}

// Toggle flips tracking and returns the new state.
func (t *Tracker) Toggle() (bool, error) {
	if t.enabled.Load() {
		t.Disable()
		return false, nil
	}
	if err := t.Enable(); err != nil {
		return false, err
	}
	return true, nil
}

// Status returns a snapshot of tracker state.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.status
	s.Enabled = t.enabled.Load()
	s.Ready = t.ready.Load()
	return s
}

// Run drives the frame loop until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	interval := t.config.FrameInterval
	if interval <= 0 {
		interval = DefaultConfig().FrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer t.closeSource()

	t.logger.Info("frame loop started",
		"interval", interval,
		"smoothing", t.config.SmoothingFactor,
		"scale", t.config.Scale,
		"aspect_source", t.config.AspectSource)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("frame loop stopped")
			return

		case d := <-t.tickerReset:
			ticker.Reset(d)
			t.logger.Info("frame interval changed", "interval", d)

		case <-ticker.C:
			if !t.enabled.Load() {
				continue
			}
			t.pass()
		}
	}
}

// pass reads one frame and runs it through the pipeline.
func (t *Tracker) pass() {
	t.mu.RLock()
	src := t.source
	t.mu.RUnlock()
	if src == nil {
		return
	}

	frame, err := src.Read()
	if err != nil {
		t.readFailed(err)
		return
	}
	defer frame.Close()

	t.passMu.Lock()
	scene, err := t.pipeline.Step(frame)
	t.passMu.Unlock()

	if err != nil && !errors.Is(err, ErrDetectorNotReady) {
		debug.TrackLog("⚠️  %v\n", err)
	}

	t.mu.Lock()
	t.readFailures = 0
	t.status.Frames++
	t.status.Faces = len(scene.Faces)
	t.status.Outcome = scene.Outcome.String()
	t.status.Position = scene.Position
	t.status.HasPosition = scene.HasPosition
	t.mu.Unlock()
}

func (t *Tracker) readFailed(err error) {
	t.mu.Lock()
	t.readFailures++
	failures := t.readFailures
	t.mu.Unlock()

	if failures == 1 {
		t.logger.Warn("camera read failed", "error", err)
	}
	if failures < maxReadFailures {
		return
	}

	t.enabled.Store(false)
	t.closeSource()

	t.mu.Lock()
	t.status.Error = fmt.Sprintf("%s (%d consecutive read failures)", video.MsgUnavailable, failures)
	t.mu.Unlock()

	t.logger.Error("camera stopped delivering frames, tracking disabled", "failures", failures)
	t.notify()
}

func (t *Tracker) closeSource() {
	t.mu.Lock()
	src := t.source
	t.source = nil
	t.readFailures = 0
	t.mu.Unlock()

	if src != nil {
		if err := src.Close(); err != nil {
			t.logger.Warn("camera close failed", "error", err)
		}
	}
}

func (t *Tracker) notify() {
	t.mu.RLock()
	fn := t.onStateChange
	t.mu.RUnlock()
	if fn != nil {
		fn(t.Status())
	}
}

package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-facetrack/internal/log"
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/debug"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/overlay"
	"github.com/teslashibe/go-facetrack/pkg/projection"
	"github.com/teslashibe/go-facetrack/pkg/smoothing"
	"github.com/teslashibe/go-facetrack/pkg/tracking/detection"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// ErrDetectorNotReady is returned when tracking is requested before a detector is loaded.
var ErrDetectorNotReady = errors.New("detector not loaded yet")

// ErrInvalidTopology is returned when a detector's landmark topology fails validation.
var ErrInvalidTopology = errors.New("invalid detector topology")

// Scene is everything the renderer needs for one frame.
type Scene struct {
	Frame       uint64
	Timestamp   time.Duration
	Detected    bool                  // A detection ran on this frame
	Blank       bool                  // Warm-up frame, detection skipped
	Mismatched  int                   // Detected faces whose landmark count disagrees with the topology
	Outcome     smoothing.Outcome     // What the smoother did
	Faces       smoothing.FaceHistory // Smoothed landmarks
	Topology    string
	Position    projection.Position // Tracked object position
	HasPosition bool                // False until the first nose tip is seen
	Camera      camera.Config
	Params      projection.CameraParams
}

// Renderer receives the scene once per frame and draws it.
type Renderer interface {
	Render(scene Scene) error
}

// FrameSink receives overlayed JPEG frames for display.
type FrameSink interface {
	SendCameraFrame(jpeg []byte)
}

// Pipeline runs one frame through detect, smooth, draw, project, render.
// It holds the smoothing history and the last rendered position; only the frame driver calls it.
type Pipeline struct {
	config   Config
	detector detection.Detector
	topology landmark.Topology
	smoother *smoothing.Smoother
	camera   *camera.Manager
	painter  *overlay.Painter
	renderer Renderer
	frames   FrameSink
	logger   *slog.Logger

	lastTimestamp time.Duration
	hasTimestamp  bool
	position      projection.Position
	hasPosition   bool
}

// NewPipeline creates a pipeline. detector may be nil and set later with SetDetector.
func NewPipeline(config Config, cam *camera.Manager, renderer Renderer) *Pipeline {
	if cam == nil {
		cam = camera.NewManager()
	}
	return &Pipeline{
		config:   config,
		smoother: smoothing.NewSmoother(config.SmoothingFactor),
		camera:   cam,
		renderer: renderer,
		logger:   log.Component("pipeline"),
	}
}

// SetDetector installs the detector and adopts its topology.
// A detector whose topology fails validation is refused and the current one kept.
// History is discarded because landmark indices may mean something else now.
func (p *Pipeline) SetDetector(d detection.Detector) error {
	if d != nil {
		topo := d.Topology()
		if err := topo.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTopology, err)
		}
		p.topology = topo
		p.painter = overlay.NewPainter(topo)
	}
	p.detector = d
	p.smoother.Reset()
	p.hasTimestamp = false
	return nil
}

// Ready reports whether a detector is installed.
func (p *Pipeline) Ready() bool {
	return p.detector != nil
}

// Topology returns the active detector topology.
func (p *Pipeline) Topology() landmark.Topology {
	return p.topology
}

// SetFrameSink installs the dashboard frame receiver.
func (p *Pipeline) SetFrameSink(s FrameSink) {
	p.frames = s
}

// Smoother exposes the smoothing state owner.
func (p *Pipeline) Smoother() *smoothing.Smoother {
	return p.smoother
}

// Step processes one frame. A detector error is returned alongside a valid scene:
// the frame is treated as having no detection and the last pose is held.
func (p *Pipeline) Step(frame video.Frame) (Scene, error) {
	if p.detector == nil {
		return Scene{}, ErrDetectorNotReady
	}

	scene := Scene{
		Frame:     frame.Seq,
		Timestamp: frame.Timestamp,
		Topology:  p.topology.Name,
	}

	// Detect only when the frame actually advanced
	var stepErr error
	if !p.hasTimestamp || frame.Timestamp != p.lastTimestamp {
		p.lastTimestamp = frame.Timestamp
		p.hasTimestamp = true

		var incoming []landmark.Set
		if frame.HasImage() && video.IsBlank(frame.Image) {
			scene.Blank = true
			debug.TrackLog("⬛ frame %d is blank, skipping detection\n", frame.Seq)
		} else {
			sets, err := p.detector.Detect(frame)
			if err != nil {
				stepErr = fmt.Errorf("detect frame %d: %w", frame.Seq, err)
				sets = nil
			}
			scene.Mismatched = p.checkLayout(frame.Seq, sets)
			incoming = sets
			scene.Detected = true
		}
		p.smoother.Update(incoming)
		scene.Outcome = p.smoother.LastOutcome()
	} else {
		scene.Outcome = smoothing.Held
	}

	faces := p.smoother.History()
	scene.Faces = faces

	p.drawOverlay(frame, faces)

	// Project. A missing nose tip leaves the last position in place.
	cfg := p.camera.GetConfig()
	params := p.params(cfg, frame)
	if pos, ok := projection.ProjectFrom(faces, p.config.TrackedFace, p.topology.NoseTip, params, p.config.Scale); ok {
		p.position = pos
		p.hasPosition = true
	}
	scene.Position = p.position
	scene.HasPosition = p.hasPosition
	scene.Camera = cfg
	scene.Params = params

	debug.TrackLogEvery(p.config.LogEvery, frame.Seq,
		"🎯 frame %d: %s, %d face(s), object at (%.2f, %.2f, %.2f)\n",
		frame.Seq, scene.Outcome, len(faces), p.position.X, p.position.Y, p.position.Z)

	if p.renderer != nil {
		if err := p.renderer.Render(scene); err != nil {
			p.logger.Warn("render failed", "frame", frame.Seq, "error", err)
		}
	}

	return scene, stepErr
}

// checkLayout reports landmark sets whose size disagrees with the topology.
// A mismatch usually means the detector was upgraded without its topology version.
func (p *Pipeline) checkLayout(seq uint64, sets []landmark.Set) int {
	mismatched := 0
	for i, set := range sets {
		if len(set) != p.topology.Landmarks {
			mismatched++
			debug.TrackLog("⚠️  frame %d face %d: %d landmarks, %s %s expects %d\n",
				seq, i, len(set), p.topology.Name, p.topology.Version, p.topology.Landmarks)
		}
	}
	return mismatched
}

func (p *Pipeline) params(cfg camera.Config, frame video.Frame) projection.CameraParams {
	params := cfg.Params()
	if p.config.AspectSource == AspectVideo {
		if a := frame.Aspect(); a > 0 {
			params.Aspect = a
		}
	}
	return params
}

// drawOverlay paints connectors onto the frame and forwards it to the dashboard.
func (p *Pipeline) drawOverlay(frame video.Frame, faces smoothing.FaceHistory) {
	if p.frames == nil || p.painter == nil || p.config.StreamEvery <= 0 {
		return
	}
	if frame.Seq%uint64(p.config.StreamEvery) != 0 || !frame.HasImage() {
		return
	}

	p.painter.Paint(overlay.NewMatSurface(&frame.Image), faces)

	jpeg, err := video.EncodeJPEG(frame.Image, p.config.JPEGQuality)
	if err != nil {
		p.logger.Debug("encode overlay frame", "error", err)
		return
	}
	p.frames.SendCameraFrame(jpeg)
}

// setSmoothingFactor changes the smoother's history weight.
func (p *Pipeline) setSmoothingFactor(a float64) {
	p.config.SmoothingFactor = a
	p.smoother.SetAlpha(a)
}

// setScale changes the world-unit scale.
func (p *Pipeline) setScale(s float64) {
	p.config.Scale = s
}

package web

import (
	"github.com/teslashibe/go-facetrack/pkg/camera"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/projection"
	"github.com/teslashibe/go-facetrack/pkg/tracking"
)

// Vec3 is a point in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vec(p projection.Position) Vec3 {
	return Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// CameraState is what the browser needs to set up its perspective camera.
type CameraState struct {
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Position Vec3    `json:"position"`
}

func cameraState(cfg camera.Config, aspect float64) CameraState {
	return CameraState{
		FOV:      cfg.FOV,
		Aspect:   aspect,
		Near:     cfg.Near,
		Far:      cfg.Far,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Position: Vec3{X: cfg.PositionX, Y: cfg.PositionY, Z: cfg.PositionZ},
	}
}

// PoseMessage is broadcast on /ws/pose once per frame.
// Position is null until a nose tip has been seen; viewers keep the object where it is.
type PoseMessage struct {
	Type        string                `json:"type"`
	Frame       uint64                `json:"frame"`
	TimestampMs int64                 `json:"timestamp_ms"`
	Position    *Vec3                 `json:"position"`
	Camera      CameraState           `json:"camera"`
	Faces       [][]landmark.Landmark `json:"faces"`
	Topology    string                `json:"topology"`
	Outcome     string                `json:"outcome"`
}

// NewPoseMessage converts a rendered scene into its wire form.
func NewPoseMessage(scene tracking.Scene) PoseMessage {
	msg := PoseMessage{
		Type:        "pose",
		Frame:       scene.Frame,
		TimestampMs: scene.Timestamp.Milliseconds(),
		Camera:      cameraState(scene.Camera, scene.Params.Aspect),
		Faces:       make([][]landmark.Landmark, 0, len(scene.Faces)),
		Topology:    scene.Topology,
		Outcome:     scene.Outcome.String(),
	}
	if scene.HasPosition {
		p := vec(scene.Position)
		msg.Position = &p
	}
	for _, set := range scene.Faces {
		msg.Faces = append(msg.Faces, set)
	}
	return msg
}

// Render publishes the scene to pose viewers.
// It broadcasts even with no viewers so the replayed pose is the current one.
func (s *Server) Render(scene tracking.Scene) error {
	return s.poseHub.BroadcastJSON(NewPoseMessage(scene))
}

// StatusMessage is broadcast on /ws/status and returned by GET /api/status.
type StatusMessage struct {
	Type     string          `json:"type"`
	Session  string          `json:"session"`
	Tracking tracking.Status `json:"tracking"`
	Position *Vec3           `json:"position"`
	Button   string          `json:"button"`
	Camera   CameraState     `json:"camera"`
	Viewers  map[string]int  `json:"viewers"`
}

// Button labels for the tracking toggle.
const (
	LabelEnable  = "ENABLE PREDICTIONS"
	LabelDisable = "DISABLE PREDICTIONS"
)

func buttonLabel(enabled bool) string {
	if enabled {
		return LabelDisable
	}
	return LabelEnable
}

func (s *Server) statusMessage() StatusMessage {
	var st tracking.Status
	if s.tracker != nil {
		st = s.tracker.Status()
	}
	cfg := s.camera.GetConfig()
	var pos *Vec3
	if st.HasPosition {
		p := vec(st.Position)
		pos = &p
	}
	return StatusMessage{
		Type:     "status",
		Session:  s.session,
		Tracking: st,
		Position: pos,
		Button:   buttonLabel(st.Enabled),
		Camera:   cameraState(cfg, cfg.Aspect()),
		Viewers: map[string]int{
			"pose":   s.poseHub.ClientCount(),
			"status": s.statusHub.ClientCount(),
			"camera": s.cameraHub.ClientCount(),
		},
	}
}

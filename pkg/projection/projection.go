// Package projection maps a normalized facial landmark into the scene space of
// a perspective camera, so an object placed there tracks the head on screen.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/go-facetrack/pkg/landmark"
)

// DefaultScale maps normalized units to renderer world units.
const DefaultScale = 10.0

// CameraParams are the renderer camera properties the projection depends on.
type CameraParams struct {
	FOV    float64 `json:"fov"`    // Vertical field of view in degrees
	Aspect float64 `json:"aspect"` // Width / height
}

// Validate rejects parameters that would produce a degenerate frustum.
func (c CameraParams) Validate() error {
	if c.FOV <= 0 || c.FOV >= 180 {
		return fmt.Errorf("fov must be in (0, 180) degrees, got %v", c.FOV)
	}
	if c.Aspect <= 0 || math.IsInf(c.Aspect, 0) || math.IsNaN(c.Aspect) {
		return fmt.Errorf("aspect must be positive, got %v", c.Aspect)
	}
	return nil
}

// HalfHeight is the vertical half-extent of the frustum at unit distance.
func (c CameraParams) HalfHeight() float64 {
	return math.Tan(c.FOV * math.Pi / 180 / 2)
}

// HalfWidth is the horizontal half-extent of the frustum at unit distance.
func (c CameraParams) HalfWidth() float64 {
	return c.Aspect * c.HalfHeight()
}

// Position is a point in scene space.
type Position = r3.Vec

// Project places landmark l in scene space.
//
// X is mirrored to match the selfie view of a webcam, Y is flipped because image rows grow
// downward, and Z is negated so a face moving toward the camera moves the object toward the
// viewer. All three axes are multiplied by scale.
func Project(l landmark.Landmark, cam CameraParams, scale float64) Position {
	x := (l.X - 0.5) * 2 * cam.HalfWidth()
	y := (0.5 - l.Y) * 2 * cam.HalfHeight()
	z := -l.Z

	return r3.Scale(scale, r3.Vec{X: -x, Y: y, Z: z})
}

// ProjectFrom projects landmark index of face in faces.
// It returns false when the face or landmark is missing, in which case the caller should
// keep the previously rendered position.
func ProjectFrom(faces []landmark.Set, face, index int, cam CameraParams, scale float64) (Position, bool) {
	if face < 0 || face >= len(faces) {
		return Position{}, false
	}
	set := faces[face]
	if index < 0 || index >= len(set) {
		return Position{}, false
	}
	return Project(set[index], cam, scale), true
}

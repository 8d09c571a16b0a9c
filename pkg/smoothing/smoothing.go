// Package smoothing stabilizes per-frame facial landmarks with an
// exponential moving average.
package smoothing

import "github.com/teslashibe/go-facetrack/pkg/landmark"

// DefaultAlpha is the weight given to history. Higher = more inertia, slower response.
const DefaultAlpha = 0.7

// FaceHistory is the smoothed landmark state, one Set per tracked face.
// A nil FaceHistory means nothing has been detected yet.
type FaceHistory []landmark.Set

// Faces returns the number of tracked faces.
func (h FaceHistory) Faces() int {
	return len(h)
}

// Smooth folds one frame of raw detections into previous.
//
// An empty incoming frame holds the last pose. A nil previous, or any change in the
// number of faces or landmarks per face, adopts incoming as-is: index correspondence
// across frames is what makes elementwise smoothing meaningful, and a count change means
// it broke. Otherwise each coordinate becomes prev*alpha + new*(1-alpha).
//
// Faces reordered by the detector without a count change are smoothed onto each
// other's history. Nothing here can detect that.
//
// Neither argument is mutated.
func Smooth(previous FaceHistory, incoming []landmark.Set, alpha float64) FaceHistory {
	if len(incoming) == 0 {
		return previous
	}
	if !sameShape(previous, incoming) {
		return FaceHistory(landmark.CloneAll(incoming))
	}

	beta := 1 - alpha
	out := make(FaceHistory, len(incoming))
	for f, face := range incoming {
		prev := previous[f]
		smoothed := make(landmark.Set, len(face))
		for i, l := range face {
			smoothed[i] = landmark.Landmark{
				X: prev[i].X*alpha + l.X*beta,
				Y: prev[i].Y*alpha + l.Y*beta,
				Z: prev[i].Z*alpha + l.Z*beta,
			}
		}
		out[f] = smoothed
	}
	return out
}

// sameShape reports whether previous and incoming have matching face and landmark counts.
func sameShape(previous FaceHistory, incoming []landmark.Set) bool {
	if previous == nil || len(previous) != len(incoming) {
		return false
	}
	for f := range incoming {
		if len(previous[f]) != len(incoming[f]) {
			return false
		}
	}
	return true
}

// Package landmark defines facial landmark types and the detector
// topologies that give landmark indices their meaning.
package landmark

// Landmark is one tracked facial point.
// X and Y are normalized to [0,1] over the frame (0,0 = top-left).
// Z is a relative depth estimate in detector-defined units; more negative is closer to the camera.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set holds all landmarks for one detected face in one frame.
// Indices are defined by the detector's Topology.
type Set []Landmark

// Clone returns a copy of the set that shares no memory with s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// CloneAll deep-copies a slice of sets.
func CloneAll(sets []Set) []Set {
	if sets == nil {
		return nil
	}
	out := make([]Set, len(sets))
	for i, s := range sets {
		out[i] = s.Clone()
	}
	return out
}

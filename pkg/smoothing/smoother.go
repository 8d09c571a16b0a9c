package smoothing

import "github.com/teslashibe/go-facetrack/pkg/landmark"

// Outcome describes what Update did with a frame.
type Outcome int

const (
	// Held means the frame had no detections and the last pose was kept.
	Held Outcome = iota
	// Reset means history was replaced by the raw detections.
	Reset
	// Smoothed means the detections were blended into history.
	Smoothed
)

func (o Outcome) String() string {
	switch o {
	case Held:
		return "held"
	case Reset:
		return "reset"
	case Smoothed:
		return "smoothed"
	}
	return "unknown"
}

// Smoother owns a FaceHistory across frames.
// It is not safe for concurrent use; the frame driver owns it.
type Smoother struct {
	alpha   float64
	history FaceHistory
	last    Outcome
}

// NewSmoother creates a smoother with the given history weight, clamped to [0,1].
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{alpha: clampAlpha(alpha)}
}

// Update folds a frame into the history and returns the new history.
func (s *Smoother) Update(incoming []landmark.Set) FaceHistory {
	switch {
	case len(incoming) == 0:
		s.last = Held
	case sameShape(s.history, incoming):
		s.last = Smoothed
	default:
		s.last = Reset
	}
	s.history = Smooth(s.history, incoming, s.alpha)
	return s.history
}

// History returns the current smoothed state (nil before the first detection).
func (s *Smoother) History() FaceHistory {
	return s.history
}

// LastOutcome reports what the most recent Update did.
func (s *Smoother) LastOutcome() Outcome {
	return s.last
}

// Reset discards all history.
func (s *Smoother) Reset() {
	s.history = nil
	s.last = Held
}

// Alpha returns the history weight.
func (s *Smoother) Alpha() float64 {
	return s.alpha
}

// SetAlpha changes the history weight, clamped to [0,1].
func (s *Smoother) SetAlpha(alpha float64) {
	s.alpha = clampAlpha(alpha)
}

func clampAlpha(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

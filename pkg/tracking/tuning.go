package tracking

import "time"

// Frame rate limits for runtime tuning.
const (
	MinFrameRate = 1.0
	MaxFrameRate = 120.0
)

// TuningParams holds the real-time adjustable tracking parameters.
// These can be modified via the tuning API without restarting.
type TuningParams struct {
	SmoothingFactor float64 `json:"smoothing_factor"` // History weight (0.4=responsive, 0.85=steady)
	Scale           float64 `json:"scale"`            // Normalized units to world units
	FrameRate       float64 `json:"frame_rate"`       // Frame loop frequency (Hz)
}

// GetTuningParams returns current tuning parameters from the tracker.
func (t *Tracker) GetTuningParams() TuningParams {
	t.passMu.Lock()
	defer t.passMu.Unlock()

	interval := t.pipeline.config.FrameInterval
	if interval <= 0 {
		interval = DefaultConfig().FrameInterval
	}

	return TuningParams{
		SmoothingFactor: t.pipeline.smoother.Alpha(),
		Scale:           t.pipeline.config.Scale,
		FrameRate:       1.0 / interval.Seconds(),
	}
}

// SetTuningParams updates tuning parameters at runtime.
// Only positive values are applied.
func (t *Tracker) SetTuningParams(params TuningParams) {
	t.passMu.Lock()
	if params.SmoothingFactor > 0 {
		t.pipeline.setSmoothingFactor(params.SmoothingFactor)
	}
	if params.Scale > 0 {
		t.pipeline.setScale(params.Scale)
	}
	t.passMu.Unlock()

	// Frame rate is handled by the loop via channel
	if params.FrameRate > 0 {
		t.setFrameRate(params.FrameRate)
	}
}

// setFrameRate updates the frame loop period.
func (t *Tracker) setFrameRate(hz float64) {
	if hz < MinFrameRate {
		hz = MinFrameRate
	}
	if hz > MaxFrameRate {
		hz = MaxFrameRate
	}

	interval := time.Duration(float64(time.Second) / hz)

	t.passMu.Lock()
	defer t.passMu.Unlock()
	t.pipeline.config.FrameInterval = interval

	// The loop only needs the newest interval; replace any it has not picked up yet
	select {
	case <-t.tickerReset:
	default:
	}
	select {
	case t.tickerReset <- interval:
	default:
	}
}

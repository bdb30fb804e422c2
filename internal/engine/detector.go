package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeDetector tracks one metric and fires when an observation moves
// by at least the configured absolute delta from the stored baseline.
//
// The baseline is replaced on EVERY successful observation, alert or
// not, so a slow drift never accumulates into a spurious fire. Failed
// fetches simply never reach Observe — the baseline stays put.
type ChangeDetector struct {
	mu          sync.Mutex
	metric      string
	threshold   float64
	baseline    float64
	hasBaseline bool
}

// NewChangeDetector builds a detector with no baseline. The first
// observation seeds the baseline and never fires.
func NewChangeDetector(metric string, threshold float64) *ChangeDetector {
	return &ChangeDetector{metric: metric, threshold: threshold}
}

// Seed installs a persisted baseline, typically loaded from storage at
// startup so a restart does not lose alerting continuity.
func (d *ChangeDetector) Seed(value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseline = value
	d.hasBaseline = true
}

// Baseline returns the current baseline and whether one exists.
func (d *ChangeDetector) Baseline() (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.baseline, d.hasBaseline
}

// Observe records a successful metric observation. It returns the alert
// to emit and true when the move from the baseline meets the threshold.
// A zero threshold disables alerting for the metric; the baseline still
// tracks.
func (d *ChangeDetector) Observe(value float64, at time.Time) (Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasBaseline {
		d.baseline = value
		d.hasBaseline = true
		return Alert{}, false
	}

	prev := d.baseline
	d.baseline = value

	delta := value - prev
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if d.threshold <= 0 || abs < d.threshold {
		return Alert{}, false
	}

	dir := DirectionUp
	if delta < 0 {
		dir = DirectionDown
	}
	return Alert{
		ID:        uuid.NewString(),
		Metric:    d.metric,
		Baseline:  prev,
		Current:   value,
		Delta:     delta,
		Direction: dir,
		At:        at,
	}, true
}

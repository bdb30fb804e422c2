package notify

import (
	"fmt"
	"time"

	"eve-tradehub/internal/db"
	"eve-tradehub/internal/engine"
	"eve-tradehub/internal/logger"
)

// RecorderSink persists derived results to SQLite. Storage failures are
// logged, never propagated; the engine's publish path is fire-and-forget.
type RecorderSink struct {
	db            *db.DB
	locationCount int
}

// NewRecorderSink builds a sink writing to the given database.
// locationCount is recorded alongside each tick for history context.
func NewRecorderSink(d *db.DB, locationCount int) *RecorderSink {
	return &RecorderSink{db: d, locationCount: locationCount}
}

func (s *RecorderSink) PublishOpportunities(opps []engine.Opportunity) {
	if _, err := s.db.SaveOpportunities(opps, s.locationCount, time.Now()); err != nil {
		logger.Error("Recorder", fmt.Sprintf("Could not persist opportunities: %v", err))
	}
}

func (s *RecorderSink) PublishValuation(v engine.Valuation) {
	if err := s.db.SaveValuationSummary(v); err != nil {
		logger.Error("Recorder", fmt.Sprintf("Could not persist valuation: %v", err))
	}
}

func (s *RecorderSink) PublishAlert(a engine.Alert) {
	if err := s.db.SaveAlert(a); err != nil {
		logger.Error("Recorder", fmt.Sprintf("Could not persist alert: %v", err))
	}
}

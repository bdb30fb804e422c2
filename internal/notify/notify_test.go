package notify

import (
	"testing"

	"eve-tradehub/internal/engine"
)

type countingSink struct {
	opps, vals, alerts int
}

func (c *countingSink) PublishOpportunities([]engine.Opportunity) { c.opps++ }
func (c *countingSink) PublishValuation(engine.Valuation)         { c.vals++ }
func (c *countingSink) PublishAlert(engine.Alert)                 { c.alerts++ }

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	multi := MultiSink{a, b}

	multi.PublishOpportunities(nil)
	multi.PublishValuation(engine.Valuation{})
	multi.PublishAlert(engine.Alert{})
	multi.PublishAlert(engine.Alert{})

	for name, s := range map[string]*countingSink{"a": a, "b": b} {
		if s.opps != 1 || s.vals != 1 || s.alerts != 2 {
			t.Errorf("sink %s counts = %d/%d/%d, want 1/1/2", name, s.opps, s.vals, s.alerts)
		}
	}
}

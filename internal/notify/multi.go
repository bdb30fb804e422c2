package notify

import "eve-tradehub/internal/engine"

// MultiSink fans results out to several sinks in order.
type MultiSink []engine.ResultSink

func (m MultiSink) PublishOpportunities(opps []engine.Opportunity) {
	for _, s := range m {
		s.PublishOpportunities(opps)
	}
}

func (m MultiSink) PublishValuation(v engine.Valuation) {
	for _, s := range m {
		s.PublishValuation(v)
	}
}

func (m MultiSink) PublishAlert(a engine.Alert) {
	for _, s := range m {
		s.PublishAlert(a)
	}
}

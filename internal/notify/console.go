package notify

import (
	"fmt"

	"eve-tradehub/internal/engine"
	"eve-tradehub/internal/logger"
)

// ConsoleSink prints derived results to the console. Top opportunities
// only; full batches go to the recorder sink.
type ConsoleSink struct {
	TopN int // opportunities shown per scan, 0 = default 5
}

func (s *ConsoleSink) topN() int {
	if s.TopN <= 0 {
		return 5
	}
	return s.TopN
}

func (s *ConsoleSink) PublishOpportunities(opps []engine.Opportunity) {
	if len(opps) == 0 {
		logger.Info("Scan", "No opportunities this tick")
		return
	}
	logger.Section("Opportunities")
	for i, o := range opps {
		if i >= s.topN() {
			logger.Info("Scan", fmt.Sprintf("... and %d more", len(opps)-i))
			break
		}
		logger.Info("Scan", fmt.Sprintf("item %d: buy %.2f @ %d -> sell %.2f @ %d (%.1f%%, +%.2f ISK/unit)",
			o.ItemID, o.BuyPrice, o.BuyLocation, o.SellPrice, o.SellLocation, o.MarginPct, o.MarginAbs))
	}
}

func (s *ConsoleSink) PublishValuation(v engine.Valuation) {
	logger.Section("Valuation")
	logger.Stats("items", v.Summary.TotalItems)
	logger.Stats("value", fmt.Sprintf("%.2f ISK", v.Summary.TotalValue))
	logger.Stats("unrealized profit", fmt.Sprintf("%.2f ISK", v.Summary.TotalProfit))
	logger.Stats("ISK in orders", fmt.Sprintf("%.2f ISK", v.Summary.ISKInOrders))
	logger.Stats("cost basis coverage", fmt.Sprintf("%.0f%%", v.Summary.CostBasisCoverage))
}

func (s *ConsoleSink) PublishAlert(a engine.Alert) {
	arrow := "▲"
	if a.Direction == engine.DirectionDown {
		arrow = "▼"
	}
	logger.Warn("Alert", fmt.Sprintf("%s %s %.2f -> %.2f (Δ %.2f)",
		arrow, a.Metric, a.Baseline, a.Current, a.Delta))
}

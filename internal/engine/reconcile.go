package engine

import (
	"fmt"
	"sort"
)

// FillProgressPct reports how much of an order's issued volume has
// traded, as a percentage. Zero total volume reports 0%, not an error.
func FillProgressPct(volumeTotal, volumeRemain int64) float64 {
	if volumeTotal <= 0 {
		return 0
	}
	return float64(volumeTotal-volumeRemain) / float64(volumeTotal) * 100
}

// SummarizeOrders aggregates the open orders of one side for a single
// item+location. Fill progress is computed over the aggregated volumes;
// ISKCommitted is the escrow of the remaining volume at each order's
// price (meaningful for the buy side).
func SummarizeOrders(orders []PriceQuote, side Side) OrderSideSummary {
	var sum OrderSideSummary
	for _, o := range orders {
		if o.Side != side {
			continue
		}
		sum.Orders++
		sum.VolumeRemain += int64(o.VolumeRemain)
		sum.VolumeTotal += int64(o.VolumeTotal)
		sum.ISKCommitted += o.Price * float64(o.VolumeRemain)
	}
	sum.FillPct = FillProgressPct(sum.VolumeTotal, sum.VolumeRemain)
	return sum
}

// MinProfitableSellPrice is the lowest sell price that still yields the
// target margin over the cost basis once broker fee and sales tax are
// deducted:
//
//	minSell = cost × (1 + margin/100) / (1 − totalFee/100)
//
// Pure function; errors when the combined fee rate leaves nothing of
// the sale.
func MinProfitableSellPrice(costBasis, targetMarginPct float64, rates FeeRates) (float64, error) {
	feeFraction := rates.TotalPct() / 100
	if feeFraction >= 1 {
		return 0, fmt.Errorf("total fee rate %.2f%% consumes the full sale", rates.TotalPct())
	}
	targetNet := costBasis * (1 + targetMarginPct/100)
	return targetNet / (1 - feeFraction), nil
}

// Reconcile joins one inventory line with its cost basis, live price,
// and open orders into an EnrichedLine.
//
// Cost resolution policy: a transaction-derived basis wins; otherwise
// marketEstimate is used and the line is tagged Estimated — "unknown"
// is never conflated with zero. livePrice is the current best
// achievable sale price (0 when no quote exists).
func Reconcile(line InventoryLine, openOrders []PriceQuote, basis CostBasis, livePrice, marketEstimate float64, targetMarginPct float64, rates FeeRates) EnrichedLine {
	enriched := EnrichedLine{
		InventoryLine: line,
		LivePrice:     livePrice,
		CostSource:    CostUnknown,
	}

	switch {
	case basis.HasHistory:
		enriched.CostPerUnit = basis.WeightedAvgUnitCost
		enriched.CostSource = CostFromTransactions
	case marketEstimate > 0:
		enriched.CostPerUnit = marketEstimate
		enriched.CostSource = CostFromMarketEstimate
		enriched.Estimated = true
	}

	if enriched.CostSource != CostUnknown && livePrice > 0 {
		enriched.HasProfit = true
		enriched.ProfitPerUnit = livePrice - enriched.CostPerUnit
		enriched.NetProfitPerUnit = EffectiveSellPrice(livePrice, rates) - EffectiveBuyPrice(enriched.CostPerUnit, rates)
		enriched.TotalProfit = enriched.ProfitPerUnit * float64(line.Quantity)
	}

	if enriched.CostSource != CostUnknown {
		if minSell, err := MinProfitableSellPrice(enriched.CostPerUnit, targetMarginPct, rates); err == nil {
			enriched.MinSellPrice = minSell
		}
	}

	enriched.BuyOrders = SummarizeOrders(openOrders, SideBuy)
	enriched.SellOrders = SummarizeOrders(openOrders, SideSell)
	return enriched
}

// SortEnrichedLines orders lines for display: descending total profit,
// with lines whose profit is unknown sorted last.
func SortEnrichedLines(lines []EnrichedLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.HasProfit != b.HasProfit {
			return a.HasProfit
		}
		if !a.HasProfit {
			return false
		}
		return a.TotalProfit > b.TotalProfit
	})
}

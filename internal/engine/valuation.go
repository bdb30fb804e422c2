package engine

import "time"

// bestPrices extracts, per item at one location, the best achievable
// sale price (highest sell-side quote) and the cheapest acquisition
// price (lowest buy-side quote, used as the market estimate for cost
// fallback).
func bestPrices(quotes []PriceQuote, locationID int64) (sellable map[int32]float64, estimate map[int32]float64) {
	sellable = make(map[int32]float64)
	estimate = make(map[int32]float64)
	for _, q := range quotes {
		if q.LocationID != locationID || q.Malformed() {
			continue
		}
		switch q.Side {
		case SideSell:
			if q.Price > sellable[q.ItemID] {
				sellable[q.ItemID] = q.Price
			}
		case SideBuy:
			if cur, ok := estimate[q.ItemID]; !ok || q.Price < cur {
				estimate[q.ItemID] = q.Price
			}
		}
	}
	return sellable, estimate
}

// BuildValuation reconciles every inventory line in the given snapshots
// against cost basis, live prices, and open orders, and aggregates the
// result. Lines sort by descending total profit with unknown-profit
// lines last.
func BuildValuation(snaps []Snapshot, lookbackDays int, targetMarginPct float64, rates FeeRates, now time.Time) Valuation {
	v := Valuation{TakenAt: now}
	covered := 0

	for _, snap := range snaps {
		sellable, estimate := bestPrices(snap.Quotes, snap.LocationID)

		ordersByItem := make(map[int32][]PriceQuote)
		for _, o := range snap.OpenOrders {
			ordersByItem[o.ItemID] = append(ordersByItem[o.ItemID], o)
		}

		for _, line := range snap.Inventory {
			basis := ComputeCostBasis(line.ItemID, line.LocationID, snap.Transactions, lookbackDays, now)
			enriched := Reconcile(line, ordersByItem[line.ItemID], basis,
				sellable[line.ItemID], estimate[line.ItemID], targetMarginPct, rates)

			v.Lines = append(v.Lines, enriched)
			v.Summary.TotalItems++
			v.Summary.TotalValue += enriched.LivePrice * float64(line.Quantity)
			if enriched.HasProfit {
				v.Summary.TotalProfit += enriched.TotalProfit
			}
			if enriched.CostSource == CostFromTransactions {
				covered++
			}
		}

		v.Summary.ISKInOrders += ISKInOrders(snap.OpenOrders)
	}

	if v.Summary.TotalItems > 0 {
		v.Summary.CostBasisCoverage = float64(covered) / float64(v.Summary.TotalItems) * 100
	}
	SortEnrichedLines(v.Lines)
	return v
}

// ProfitTotal is the realized net trading cash flow over a transaction
// set: sell proceeds minus buy spend, fees deducted on both sides.
func ProfitTotal(txns []Transaction) float64 {
	var total float64
	for _, tx := range txns {
		amount := tx.UnitPrice * float64(tx.Quantity)
		if tx.IsBuy {
			total -= amount + tx.FeePaid
		} else {
			total += amount - tx.FeePaid
		}
	}
	return total
}

// WarehouseValue is the mark-to-market value of enriched inventory
// lines at their live prices.
func WarehouseValue(lines []EnrichedLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LivePrice * float64(l.Quantity)
	}
	return total
}

// ISKInOrders is the escrow committed to open buy orders: remaining
// volume at each order's price. Sell orders commit items, not ISK.
func ISKInOrders(openOrders []PriceQuote) float64 {
	var total float64
	for _, o := range openOrders {
		if o.Side != SideBuy {
			continue
		}
		total += o.Price * float64(o.VolumeRemain)
	}
	return total
}

// ContractCollateral sums the collateral locked in outstanding
// contracts.
func ContractCollateral(contracts []Contract) float64 {
	var total float64
	for _, c := range contracts {
		total += c.Collateral
	}
	return total
}

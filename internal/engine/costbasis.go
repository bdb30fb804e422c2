package engine

import (
	"log"
	"time"
)

// ComputeCostBasis derives the weighted-average acquisition cost for
// one item at one location from a transaction history.
//
// Only buy transactions at the given location with a timestamp inside
// [now-lookbackDays, now] contribute. When no transaction qualifies the
// result has HasHistory=false and the caller must fall back to a
// market estimate — the engine never substitutes a price itself.
//
// Idempotent: same inputs produce the same output, no hidden state.
func ComputeCostBasis(itemID int32, locationID int64, txns []Transaction, lookbackDays int, now time.Time) CostBasis {
	basis := CostBasis{ItemID: itemID, LocationID: locationID}
	cutoff := now.AddDate(0, 0, -lookbackDays)

	var totalCost float64
	var totalQty int64

	for _, tx := range txns {
		if !tx.IsBuy || tx.ItemID != itemID || tx.LocationID != locationID {
			continue
		}
		if tx.Timestamp.Before(cutoff) || tx.Timestamp.After(now) {
			continue
		}
		if tx.Quantity == 0 {
			continue
		}
		if tx.Quantity < 0 {
			// Returns/corrections are not supported; skip, never crash.
			log.Printf("[COSTBASIS] Skipping negative-quantity buy: item=%d loc=%d qty=%d",
				tx.ItemID, tx.LocationID, tx.Quantity)
			continue
		}
		totalCost += tx.UnitPrice * float64(tx.Quantity)
		totalQty += int64(tx.Quantity)
	}

	if totalQty == 0 {
		return basis
	}

	basis.HasHistory = true
	basis.QuantityBasis = totalQty
	basis.WeightedAvgUnitCost = totalCost / float64(totalQty)
	return basis
}

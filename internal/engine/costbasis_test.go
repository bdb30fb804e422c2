package engine

import (
	"math"
	"testing"
	"time"
)

var costNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func buyTxn(item int32, loc int64, price float64, qty int32, daysAgo int) Transaction {
	return Transaction{
		ItemID:     item,
		LocationID: loc,
		IsBuy:      true,
		UnitPrice:  price,
		Quantity:   qty,
		Timestamp:  costNow.AddDate(0, 0, -daysAgo),
	}
}

func TestCostBasisEmptyWindow(t *testing.T) {
	basis := ComputeCostBasis(34, 100, nil, 30, costNow)
	if basis.HasHistory {
		t.Fatal("expected no history for empty transaction set")
	}
	if basis.WeightedAvgUnitCost != 0 || basis.QuantityBasis != 0 {
		t.Errorf("empty basis should be zero-valued, got %+v", basis)
	}
}

func TestCostBasisSingleTransaction(t *testing.T) {
	txns := []Transaction{buyTxn(34, 100, 5.5, 1000, 3)}
	basis := ComputeCostBasis(34, 100, txns, 30, costNow)
	if !basis.HasHistory {
		t.Fatal("expected history")
	}
	if math.Abs(basis.WeightedAvgUnitCost-5.5) > 1e-9 {
		t.Errorf("avg cost = %v, want 5.5", basis.WeightedAvgUnitCost)
	}
	if basis.QuantityBasis != 1000 {
		t.Errorf("quantity basis = %d, want 1000", basis.QuantityBasis)
	}
}

func TestCostBasisWeightedAverage(t *testing.T) {
	txns := []Transaction{
		buyTxn(34, 100, 10, 100, 1), // 1000
		buyTxn(34, 100, 20, 300, 2), // 6000
	}
	basis := ComputeCostBasis(34, 100, txns, 30, costNow)
	if math.Abs(basis.WeightedAvgUnitCost-17.5) > 1e-9 {
		t.Errorf("avg cost = %v, want 17.5", basis.WeightedAvgUnitCost)
	}
}

func TestCostBasisFilters(t *testing.T) {
	txns := []Transaction{
		buyTxn(34, 100, 10, 100, 1),
		buyTxn(34, 999, 999, 100, 1), // wrong location
		buyTxn(35, 100, 999, 100, 1), // wrong item
		buyTxn(34, 100, 999, 100, 45), // outside lookback
		{ItemID: 34, LocationID: 100, IsBuy: false, UnitPrice: 999, Quantity: 100, Timestamp: costNow.AddDate(0, 0, -1)}, // sell
	}
	basis := ComputeCostBasis(34, 100, txns, 30, costNow)
	if math.Abs(basis.WeightedAvgUnitCost-10) > 1e-9 {
		t.Errorf("avg cost = %v, want 10 (only one txn qualifies)", basis.WeightedAvgUnitCost)
	}
	if basis.QuantityBasis != 100 {
		t.Errorf("quantity basis = %d, want 100", basis.QuantityBasis)
	}
}

func TestCostBasisNegativeQuantitySkipped(t *testing.T) {
	txns := []Transaction{
		buyTxn(34, 100, 10, 100, 1),
		buyTxn(34, 100, 10, -50, 1),
	}
	basis := ComputeCostBasis(34, 100, txns, 30, costNow)
	if basis.QuantityBasis != 100 {
		t.Errorf("negative-quantity buy should be skipped, got basis qty %d", basis.QuantityBasis)
	}
}

func TestCostBasisIdempotent(t *testing.T) {
	txns := []Transaction{
		buyTxn(34, 100, 10, 100, 1),
		buyTxn(34, 100, 20, 300, 2),
	}
	a := ComputeCostBasis(34, 100, txns, 30, costNow)
	b := ComputeCostBasis(34, 100, txns, 30, costNow)
	if a != b {
		t.Errorf("same inputs produced different bases: %+v vs %+v", a, b)
	}
}

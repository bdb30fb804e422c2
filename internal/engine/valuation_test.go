package engine

import (
	"math"
	"testing"
	"time"
)

func TestProfitTotal(t *testing.T) {
	txns := []Transaction{
		{IsBuy: true, UnitPrice: 10, Quantity: 100, FeePaid: 25},   // -1025
		{IsBuy: false, UnitPrice: 15, Quantity: 100, FeePaid: 105}, // +1395
	}
	got := ProfitTotal(txns)
	if math.Abs(got-370) > 1e-9 {
		t.Errorf("profit total = %v, want 370", got)
	}
}

func TestISKInOrders(t *testing.T) {
	orders := []PriceQuote{
		{Side: SideBuy, Price: 10, VolumeRemain: 100}, // 1000 in escrow
		{Side: SideSell, Price: 99, VolumeRemain: 50}, // items, not ISK
	}
	got := ISKInOrders(orders)
	if math.Abs(got-1000) > 1e-9 {
		t.Errorf("ISK in orders = %v, want 1000", got)
	}
}

func TestContractCollateral(t *testing.T) {
	contracts := []Contract{
		{ContractID: 1, Collateral: 5_000_000},
		{ContractID: 2, Collateral: 2_500_000},
	}
	got := ContractCollateral(contracts)
	if math.Abs(got-7_500_000) > 1e-9 {
		t.Errorf("collateral = %v, want 7500000", got)
	}
}

func TestBuildValuation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rates := FeeRates{BrokerFeePct: 2.5, SalesTaxPct: 4.5}

	snap := Snapshot{
		TakenAt:    now,
		LocationID: 100,
		Quotes: []PriceQuote{
			{ItemID: 1, LocationID: 100, Side: SideSell, Price: 12, VolumeRemain: 500}, // live sale price
			{ItemID: 1, LocationID: 100, Side: SideBuy, Price: 11, VolumeRemain: 500},
			{ItemID: 2, LocationID: 100, Side: SideBuy, Price: 7, VolumeRemain: 500}, // estimate only
		},
		Transactions: []Transaction{
			{ItemID: 1, LocationID: 100, IsBuy: true, UnitPrice: 10, Quantity: 100, Timestamp: now.AddDate(0, 0, -1)},
		},
		OpenOrders: []PriceQuote{
			{ItemID: 1, LocationID: 100, Side: SideBuy, Price: 9, VolumeRemain: 20, VolumeTotal: 100},
		},
		Inventory: []InventoryLine{
			{ItemID: 1, LocationID: 100, Quantity: 100},
			{ItemID: 2, LocationID: 100, Quantity: 50},
		},
	}

	v := BuildValuation([]Snapshot{snap}, 30, 20, rates, now)

	if v.Summary.TotalItems != 2 {
		t.Fatalf("total items = %d, want 2", v.Summary.TotalItems)
	}
	// Item 1: live 12, cost 10 from transactions -> 200 profit, first
	// after sorting. Item 2 has no sell quote, so no profit.
	if v.Lines[0].ItemID != 1 {
		t.Fatalf("expected item 1 first, got %d", v.Lines[0].ItemID)
	}
	if v.Lines[0].CostSource != CostFromTransactions {
		t.Errorf("item 1 cost source = %v, want transactions", v.Lines[0].CostSource)
	}
	if math.Abs(v.Lines[0].TotalProfit-200) > 1e-9 {
		t.Errorf("item 1 total profit = %v, want 200", v.Lines[0].TotalProfit)
	}
	if v.Lines[1].CostSource != CostFromMarketEstimate || !v.Lines[1].Estimated {
		t.Errorf("item 2 should fall back to the market estimate, got %+v", v.Lines[1])
	}
	if math.Abs(v.Summary.TotalValue-1200) > 1e-9 {
		t.Errorf("total value = %v, want 1200 (item 2 has no live price)", v.Summary.TotalValue)
	}
	if math.Abs(v.Summary.ISKInOrders-180) > 1e-9 {
		t.Errorf("ISK in orders = %v, want 180", v.Summary.ISKInOrders)
	}
	if math.Abs(v.Summary.CostBasisCoverage-50) > 1e-9 {
		t.Errorf("coverage = %v%%, want 50%%", v.Summary.CostBasisCoverage)
	}
	if v.Lines[0].BuyOrders.Orders != 1 || v.Lines[0].BuyOrders.FillPct != 80 {
		t.Errorf("item 1 buy order summary = %+v, want 1 order at 80%% fill", v.Lines[0].BuyOrders)
	}
}

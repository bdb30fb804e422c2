package esi

import (
	"context"
	"fmt"
	"log"
	"time"

	"eve-tradehub/internal/engine"
)

// Provider adapts the ESI client to the engine's data port.
//
// Quote side semantics: the engine's buy side is the price units can be
// ACQUIRED at, which on the market is a standing sell order; the
// engine's sell side is the price units can be SOLD INTO, a standing
// buy order. Open orders keep their own side: the character's buy
// order is a buy-side entry (that is where the ISK escrow sits).
type Provider struct {
	client          *Client
	stationToRegion map[int64]int32
}

// NewProvider builds a provider for the given station -> region map.
// Only orders at mapped stations are surfaced.
func NewProvider(client *Client, stationToRegion map[int64]int32) *Provider {
	return &Provider{client: client, stationToRegion: stationToRegion}
}

// FetchQuotes pulls region order books for every region covering the
// requested locations and converts station-level orders to quotes.
func (p *Provider) FetchQuotes(ctx context.Context, locations []int64) ([]engine.PriceQuote, error) {
	wanted := make(map[int64]bool, len(locations))
	regions := make(map[int32]bool)
	for _, loc := range locations {
		region, ok := p.stationToRegion[loc]
		if !ok {
			return nil, fmt.Errorf("no region mapping for location %d", loc)
		}
		wanted[loc] = true
		regions[region] = true
	}

	var quotes []engine.PriceQuote
	skipped := 0
	for region := range regions {
		orders, err := p.client.FetchRegionOrders(ctx, region)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			if !wanted[o.LocationID] {
				continue
			}
			q, ok := quoteFromOrder(o)
			if !ok {
				skipped++
				continue
			}
			quotes = append(quotes, q)
		}
	}
	if skipped > 0 {
		log.Printf("[ESI] Skipped %d orders with unparseable issue dates", skipped)
	}
	return quotes, nil
}

func quoteFromOrder(o MarketOrder) (engine.PriceQuote, bool) {
	issued, err := time.Parse(time.RFC3339, o.Issued)
	if err != nil {
		return engine.PriceQuote{}, false
	}
	side := engine.SideBuy // a standing sell order is where we can buy
	if o.IsBuyOrder {
		side = engine.SideSell
	}
	return engine.PriceQuote{
		ItemID:       o.TypeID,
		LocationID:   o.LocationID,
		Side:         side,
		Price:        o.Price,
		VolumeRemain: o.VolumeRemain,
		VolumeTotal:  o.VolumeTotal,
		IssuedAt:     issued,
		OrderID:      o.OrderID,
	}, true
}

// FetchTransactions pulls the character's wallet transactions for one
// location, bounded by since. Rows with unparseable dates are skipped
// with a warning, never fatal.
func (p *Provider) FetchTransactions(ctx context.Context, location int64, since time.Time) ([]engine.Transaction, error) {
	raw, err := p.client.GetWalletTransactions(ctx)
	if err != nil {
		return nil, err
	}

	var out []engine.Transaction
	for _, tx := range raw {
		if tx.LocationID != location {
			continue
		}
		ts, err := time.Parse(time.RFC3339, tx.Date)
		if err != nil {
			log.Printf("[ESI] Skipping transaction %d with bad date %q", tx.TransactionID, tx.Date)
			continue
		}
		if ts.Before(since) {
			continue
		}
		out = append(out, engine.Transaction{
			ItemID:     tx.TypeID,
			LocationID: tx.LocationID,
			IsBuy:      tx.IsBuy,
			UnitPrice:  tx.UnitPrice,
			Quantity:   tx.Quantity,
			Timestamp:  ts,
		})
	}
	return out, nil
}

// FetchOpenOrders pulls the character's active orders at one location.
func (p *Provider) FetchOpenOrders(ctx context.Context, location int64) ([]engine.PriceQuote, error) {
	orders, err := p.client.GetCharacterOrders(ctx)
	if err != nil {
		return nil, err
	}

	var out []engine.PriceQuote
	for _, o := range orders {
		if o.LocationID != location {
			continue
		}
		issued, err := time.Parse(time.RFC3339, o.Issued)
		if err != nil {
			log.Printf("[ESI] Skipping order %d with bad issue date %q", o.OrderID, o.Issued)
			continue
		}
		side := engine.SideSell
		if o.IsBuyOrder {
			side = engine.SideBuy
		}
		out = append(out, engine.PriceQuote{
			ItemID:       o.TypeID,
			LocationID:   o.LocationID,
			Side:         side,
			Price:        o.Price,
			VolumeRemain: o.VolumeRemain,
			VolumeTotal:  o.VolumeTotal,
			IssuedAt:     issued,
			OrderID:      o.OrderID,
		})
	}
	return out, nil
}

// FetchInventory pulls the character's assets at one location, grouped
// into one line per item type.
func (p *Provider) FetchInventory(ctx context.Context, location int64) ([]engine.InventoryLine, error) {
	assets, err := p.client.GetAssets(ctx)
	if err != nil {
		return nil, err
	}

	byType := make(map[int32]int64)
	for _, a := range assets {
		if a.LocationID != location {
			continue
		}
		qty := a.Quantity
		if qty == 0 && a.IsSingleton {
			qty = 1 // assembled items report quantity 0
		}
		byType[a.TypeID] += qty
	}

	out := make([]engine.InventoryLine, 0, len(byType))
	for typeID, qty := range byType {
		out = append(out, engine.InventoryLine{ItemID: typeID, LocationID: location, Quantity: qty})
	}
	return out, nil
}

// FetchWalletBalance pulls the character's ISK balance.
func (p *Provider) FetchWalletBalance(ctx context.Context) (float64, error) {
	return p.client.GetWalletBalance(ctx)
}

// FetchContracts pulls the character's still-active contracts.
func (p *Provider) FetchContracts(ctx context.Context) ([]engine.Contract, error) {
	raw, err := p.client.GetContracts(ctx)
	if err != nil {
		return nil, err
	}
	var out []engine.Contract
	for _, ct := range raw {
		if !ct.Active() {
			continue
		}
		out = append(out, engine.Contract{
			ContractID: ct.ContractID,
			Status:     ct.Status,
			Price:      ct.Price,
			Collateral: ct.Collateral,
		})
	}
	return out, nil
}

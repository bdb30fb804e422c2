package engine

import (
	"log"
	"sort"
)

// ScanFilters bound which quote pairs qualify as opportunities.
// Zero values mean "unbounded" for that dimension.
type ScanFilters struct {
	MinMarginPct float64 `json:"min_margin_pct"`
	MaxMarginPct float64 `json:"max_margin_pct"` // 0 = no upper bound
	MinVolume    int32   `json:"min_volume"`
	MinBuyPrice  float64 `json:"min_buy_price"`
}

// Validate rejects bound combinations that can never match.
func (f ScanFilters) Validate() error {
	if f.MaxMarginPct > 0 && f.MinMarginPct > f.MaxMarginPct {
		return wrapConfigErr("min margin %.2f%% exceeds max margin %.2f%%", f.MinMarginPct, f.MaxMarginPct)
	}
	if f.MinVolume < 0 {
		return wrapConfigErr("min volume must be non-negative, got %d", f.MinVolume)
	}
	if f.MinBuyPrice < 0 {
		return wrapConfigErr("min buy price must be non-negative, got %v", f.MinBuyPrice)
	}
	return nil
}

// itemLoc identifies one item at one location.
type itemLoc struct {
	itemID     int32
	locationID int64
}

// ScanArbitrage finds cross-location opportunities in a quote set.
//
// Per (item, location) only the best quote on each side is kept: the
// lowest buy-side price and the highest sell-side price. Every
// cross-location pairing with a positive margin is then filtered by
// the inclusive margin band, the minimum tradable volume
// (min(buyVolume, sellVolume)), and the buy price floor. Same-location
// pairs are never opportunities.
//
// Malformed quotes are dropped with a warning; a one-sided item is
// simply excluded. An empty result is valid.
func ScanArbitrage(quotes []PriceQuote, filters ScanFilters) []Opportunity {
	// Single pass: best buy (lowest) and best sell (highest) per item+location.
	bestBuy := make(map[itemLoc]PriceQuote)
	bestSell := make(map[itemLoc]PriceQuote)
	dropped := 0

	for _, q := range quotes {
		if q.Malformed() {
			dropped++
			continue
		}
		key := itemLoc{q.ItemID, q.LocationID}
		switch q.Side {
		case SideBuy:
			if cur, ok := bestBuy[key]; !ok || q.Price < cur.Price {
				bestBuy[key] = q
			}
		case SideSell:
			if cur, ok := bestSell[key]; !ok || q.Price > cur.Price {
				bestSell[key] = q
			}
		}
	}
	if dropped > 0 {
		log.Printf("[SCAN] Dropped %d malformed quotes", dropped)
	}

	// Group the surviving best quotes per item.
	buysByItem := make(map[int32][]PriceQuote)
	sellsByItem := make(map[int32][]PriceQuote)
	for key, q := range bestBuy {
		buysByItem[key.itemID] = append(buysByItem[key.itemID], q)
	}
	for key, q := range bestSell {
		sellsByItem[key.itemID] = append(sellsByItem[key.itemID], q)
	}

	var results []Opportunity
	for itemID, buys := range buysByItem {
		sells, ok := sellsByItem[itemID]
		if !ok {
			continue
		}
		for _, buy := range buys {
			if filters.MinBuyPrice > 0 && buy.Price < filters.MinBuyPrice {
				continue
			}
			for _, sell := range sells {
				if sell.LocationID == buy.LocationID {
					continue
				}
				marginAbs := sell.Price - buy.Price
				if marginAbs <= 0 {
					continue
				}
				marginPct := marginAbs / buy.Price * 100
				if marginPct < filters.MinMarginPct {
					continue
				}
				if filters.MaxMarginPct > 0 && marginPct > filters.MaxMarginPct {
					continue
				}
				tradable := buy.VolumeRemain
				if sell.VolumeRemain < tradable {
					tradable = sell.VolumeRemain
				}
				if tradable < filters.MinVolume {
					continue
				}
				results = append(results, Opportunity{
					ItemID:       itemID,
					BuyLocation:  buy.LocationID,
					SellLocation: sell.LocationID,
					BuyPrice:     buy.Price,
					SellPrice:    sell.Price,
					MarginAbs:    marginAbs,
					MarginPct:    marginPct,
					BuyVolume:    buy.VolumeRemain,
					SellVolume:   sell.VolumeRemain,
				})
			}
		}
	}

	// Descending margin %; ties by higher absolute margin, then lower
	// item ID, then locations, so the ordering is fully deterministic.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MarginPct != b.MarginPct {
			return a.MarginPct > b.MarginPct
		}
		if a.MarginAbs != b.MarginAbs {
			return a.MarginAbs > b.MarginAbs
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		if a.BuyLocation != b.BuyLocation {
			return a.BuyLocation < b.BuyLocation
		}
		return a.SellLocation < b.SellLocation
	})

	return results
}

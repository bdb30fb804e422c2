package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// MarketOrder mirrors the ESI market order response.
type MarketOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int32   `json:"type_id"`
	LocationID   int64   `json:"location_id"`
	SystemID     int32   `json:"system_id"`
	Price        float64 `json:"price"`
	VolumeRemain int32   `json:"volume_remain"`
	VolumeTotal  int32   `json:"volume_total"`
	IsBuyOrder   bool    `json:"is_buy_order"`
	Issued       string  `json:"issued"`
	RegionID     int32   `json:"-"` // set by us
}

// orderCacheEntry holds cached orders until the ESI refresh window
// rolls over.
type orderCacheEntry struct {
	orders  []MarketOrder
	expires time.Time
}

// orderCache is a thread-safe in-memory cache for region market
// orders, keyed on region. A singleflight.Group coalesces concurrent
// fetches for the same region.
type orderCache struct {
	mu      sync.RWMutex
	entries map[int32]*orderCacheEntry
	group   singleflight.Group
}

func newOrderCache() *orderCache {
	return &orderCache{entries: make(map[int32]*orderCacheEntry)}
}

func (oc *orderCache) get(regionID int32) ([]MarketOrder, bool) {
	oc.mu.RLock()
	defer oc.mu.RUnlock()
	e, ok := oc.entries[regionID]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.orders, true
}

func (oc *orderCache) put(regionID int32, orders []MarketOrder, expires time.Time) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.entries[regionID] = &orderCacheEntry{orders: orders, expires: expires}
}

// FetchRegionOrders fetches all market orders for a region. Repeated
// calls within the ESI refresh window (typically 5 min) return from
// cache without network I/O; concurrent calls for the same region
// coalesce into one fetch.
func (c *Client) FetchRegionOrders(ctx context.Context, regionID int32) ([]MarketOrder, error) {
	if orders, hit := c.orders.get(regionID); hit {
		log.Printf("[ESI] OrderCache HIT region=%d (%d orders)", regionID, len(orders))
		return orders, nil
	}

	sfKey := strconv.Itoa(int(regionID))
	result, err, _ := c.orders.group.Do(sfKey, func() (interface{}, error) {
		return c.fetchRegionOrders(ctx, regionID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]MarketOrder), nil
}

func (c *Client) fetchRegionOrders(ctx context.Context, regionID int32) ([]MarketOrder, error) {
	url := fmt.Sprintf("%s/markets/%d/orders/?datasource=tranquility&order_type=all", baseURL, regionID)

	// Page 1 inline so the Expires header can drive the cache TTL.
	c.sem <- struct{}{}
	req, err := c.newRequest(ctx, url+"&page=1", false)
	if err != nil {
		<-c.sem
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		<-c.sem
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	<-c.sem
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, readErr)
	}
	if resp.StatusCode != 200 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	expires := parseExpires(resp)
	totalPages := 1
	if p := resp.Header.Get("X-Pages"); p != "" {
		totalPages, _ = strconv.Atoi(p)
	}

	var all []MarketOrder
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, err
	}

	if totalPages > 1 {
		type pageResult struct {
			data []MarketOrder
			err  error
		}
		results := make(chan pageResult, totalPages-1)
		for p := 2; p <= totalPages; p++ {
			go func(pageNum int) {
				b, _, err := c.getPage(ctx, url, pageNum, false)
				if err != nil {
					results <- pageResult{err: err}
					return
				}
				var data []MarketOrder
				if err := json.Unmarshal(b, &data); err != nil {
					results <- pageResult{err: err}
					return
				}
				results <- pageResult{data: data}
			}(p)
		}
		for i := 0; i < totalPages-1; i++ {
			r := <-results
			if r.err != nil {
				// A missing page would silently truncate the market
				// view; fail the whole fetch instead.
				return nil, r.err
			}
			all = append(all, r.data...)
		}
	}

	for i := range all {
		all[i].RegionID = regionID
	}
	c.orders.put(regionID, all, expires)
	log.Printf("[ESI] OrderCache MISS region=%d (%d orders, expires=%s)",
		regionID, len(all), expires.Format("15:04:05"))
	return all, nil
}

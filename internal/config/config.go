package config

import (
	"time"

	"eve-tradehub/internal/engine"
)

// Hub is one tracked trade hub: the station whose orders we trade and
// the region whose order book covers it.
type Hub struct {
	Name      string `json:"name"`
	RegionID  int32  `json:"region_id"`
	StationID int64  `json:"station_id"`
}

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	Hubs []Hub `json:"hubs"`

	MinMarginPct float64 `json:"min_margin_pct"`
	MaxMarginPct float64 `json:"max_margin_pct"`
	MinVolume    int32   `json:"min_volume"`
	MinBuyPrice  float64 `json:"min_buy_price"`

	LookbackDays    int     `json:"lookback_days"`
	TargetMarginPct float64 `json:"target_margin_pct"`

	BrokerRelationsLevel int `json:"broker_relations_level"`
	AccountingLevel      int `json:"accounting_level"`

	RefreshIntervalSec int `json:"refresh_interval_sec"`
	FetchTimeoutSec    int `json:"fetch_timeout_sec"`

	Thresholds []engine.AlertThreshold `json:"thresholds"`
}

// Default returns a Config with sensible defaults: the five major
// trade hubs, filters tuned for hub-to-hub hauling, and maxed trading
// skills.
func Default() *Config {
	return &Config{
		Hubs: []Hub{
			{Name: "Jita", RegionID: 10000002, StationID: 60003760},
			{Name: "Amarr", RegionID: 10000043, StationID: 60008494},
			{Name: "Rens", RegionID: 10000030, StationID: 60004588},
			{Name: "Dodixie", RegionID: 10000032, StationID: 60011866},
			{Name: "Hek", RegionID: 10000042, StationID: 60005686},
		},
		MinMarginPct:         20,
		MaxMarginPct:         1500, // beyond this the "opportunity" is usually a scam order
		MinVolume:            75,
		MinBuyPrice:          100_000,
		LookbackDays:         30,
		TargetMarginPct:      20,
		BrokerRelationsLevel: 5,
		AccountingLevel:      5,
		RefreshIntervalSec:   300,
		FetchTimeoutSec:      30,
		Thresholds: []engine.AlertThreshold{
			{Metric: engine.MetricWalletBalance, AbsoluteDelta: 100_000_000},
			{Metric: engine.MetricWarehouseValue, AbsoluteDelta: 250_000_000},
			{Metric: engine.MetricISKInOrders, AbsoluteDelta: 100_000_000},
			{Metric: engine.MetricOpenOrderCount, AbsoluteDelta: 5},
		},
	}
}

// StationToRegion returns the hub lookup map used by the ESI provider.
func (c *Config) StationToRegion() map[int64]int32 {
	m := make(map[int64]int32, len(c.Hubs))
	for _, h := range c.Hubs {
		m[h.StationID] = h.RegionID
	}
	return m
}

// Settings converts the config to the engine's per-tick snapshot.
func (c *Config) Settings() engine.Settings {
	locations := make([]int64, 0, len(c.Hubs))
	for _, h := range c.Hubs {
		locations = append(locations, h.StationID)
	}
	return engine.Settings{
		Locations: locations,
		Filters: engine.ScanFilters{
			MinMarginPct: c.MinMarginPct,
			MaxMarginPct: c.MaxMarginPct,
			MinVolume:    c.MinVolume,
			MinBuyPrice:  c.MinBuyPrice,
		},
		LookbackDays:    c.LookbackDays,
		TargetMarginPct: c.TargetMarginPct,
		Skills: engine.SkillLevels{
			BrokerRelations: c.BrokerRelationsLevel,
			Accounting:      c.AccountingLevel,
		},
		Thresholds:      c.Thresholds,
		RefreshInterval: time.Duration(c.RefreshIntervalSec) * time.Second,
		FetchTimeout:    time.Duration(c.FetchTimeoutSec) * time.Second,
	}
}

// Validate delegates to the engine's settings checks so the config
// can be rejected at save time, before a tick ever sees it.
func (c *Config) Validate() error {
	return c.Settings().Validate()
}

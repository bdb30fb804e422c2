package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConfigInvalid marks a settings snapshot that cannot drive a tick
// (e.g. min margin above max margin). The tick fails fast and leaves
// all baselines untouched.
var ErrConfigInvalid = errors.New("configuration invalid")

// DataProvider is the upstream snapshot source. Implementations fail
// with provider-level errors (unavailable, auth); the scheduler treats
// any error as a failed fetch — never as a zero-valued result.
type DataProvider interface {
	FetchQuotes(ctx context.Context, locations []int64) ([]PriceQuote, error)
	FetchTransactions(ctx context.Context, location int64, since time.Time) ([]Transaction, error)
	FetchOpenOrders(ctx context.Context, location int64) ([]PriceQuote, error)
	FetchInventory(ctx context.Context, location int64) ([]InventoryLine, error)
	FetchWalletBalance(ctx context.Context) (float64, error)
	FetchContracts(ctx context.Context) ([]Contract, error)
}

// ResultSink receives derived results. Side-effect only; the core never
// consumes a return value from it.
type ResultSink interface {
	PublishOpportunities(opps []Opportunity)
	PublishValuation(v Valuation)
	PublishAlert(a Alert)
}

// ConfigSource yields a read-only settings snapshot per tick. Changes
// take effect on the next tick.
type ConfigSource interface {
	Settings() (Settings, error)
}

// BaselineStore persists metric baselines across restarts. Optional;
// the scheduler works without one.
type BaselineStore interface {
	LoadBaselines() (map[string]float64, error)
	SaveBaseline(metric string, value float64, at time.Time) error
}

func wrapConfigErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConfigInvalid}, args...)...)
}

// Settings is the per-tick configuration snapshot consumed by the core.
type Settings struct {
	Locations       []int64
	Filters         ScanFilters
	LookbackDays    int
	TargetMarginPct float64
	Skills          SkillLevels
	Thresholds      []AlertThreshold
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
}

// Validate checks the settings for values that would make a tick
// meaningless. Returns an error wrapping ErrConfigInvalid.
func (s Settings) Validate() error {
	if err := s.Filters.Validate(); err != nil {
		return err
	}
	if s.LookbackDays <= 0 {
		return wrapConfigErr("lookback days must be positive, got %d", s.LookbackDays)
	}
	if len(s.Locations) == 0 {
		return wrapConfigErr("no locations configured")
	}
	if s.RefreshInterval <= 0 {
		return wrapConfigErr("refresh interval must be positive, got %s", s.RefreshInterval)
	}
	if s.FetchTimeout <= 0 {
		return wrapConfigErr("fetch timeout must be positive, got %s", s.FetchTimeout)
	}
	for _, t := range s.Thresholds {
		if t.AbsoluteDelta < 0 {
			return wrapConfigErr("threshold for %s must be non-negative, got %v", t.Metric, t.AbsoluteDelta)
		}
	}
	return nil
}

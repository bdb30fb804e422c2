package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"eve-tradehub/internal/logger"
)

// Metric names tracked by the scheduler's change detectors.
const (
	MetricWalletBalance      = "wallet_balance"
	MetricProfitTotal        = "profit_total"
	MetricWarehouseValue     = "warehouse_value"
	MetricISKInOrders        = "isk_in_orders"
	MetricOpenOrderCount     = "open_order_count"
	MetricContractCount      = "contract_count"
	MetricContractCollateral = "contract_collateral"
)

const defaultRefreshInterval = 5 * time.Minute

// Scheduler drives the periodic refresh cycle: fetch raw data through
// the provider, store snapshots, derive opportunities/valuation/alerts,
// and publish them to the sink.
//
// One tick runs at a time. A failed fetch skips the computations that
// depend on it for that tick; it never zeroes a metric or fires a
// false alert.
type Scheduler struct {
	provider  DataProvider
	sink      ResultSink
	cfg       ConfigSource
	store     *SnapshotStore
	baselines BaselineStore // optional

	tickMu    sync.Mutex
	refreshCh chan struct{}

	detMu     sync.Mutex
	detectors map[string]*ChangeDetector
	seeded    map[string]float64

	intervalMu   sync.Mutex
	lastInterval time.Duration
}

// NewScheduler wires the core loop. baselines may be nil; when present,
// persisted baselines seed the change detectors so restarts do not fire
// spurious alerts.
func NewScheduler(provider DataProvider, sink ResultSink, cfg ConfigSource, store *SnapshotStore, baselines BaselineStore) *Scheduler {
	s := &Scheduler{
		provider:     provider,
		sink:         sink,
		cfg:          cfg,
		store:        store,
		baselines:    baselines,
		refreshCh:    make(chan struct{}, 1),
		detectors:    make(map[string]*ChangeDetector),
		seeded:       make(map[string]float64),
		lastInterval: defaultRefreshInterval,
	}
	if baselines != nil {
		if persisted, err := baselines.LoadBaselines(); err != nil {
			logger.Warn("Scheduler", fmt.Sprintf("Could not load metric baselines: %v", err))
		} else {
			s.seeded = persisted
		}
	}
	return s
}

// Run ticks immediately, then on every refresh interval until the
// context is cancelled. RefreshNow cuts the current countdown short;
// either way the countdown restarts after the tick completes.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Scheduler", fmt.Sprintf("Tick failed: %v", err))
		}

		timer := time.NewTimer(s.interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-s.refreshCh:
			timer.Stop()
		}
	}
}

// RefreshNow requests an immediate tick. Non-blocking; requests made
// while one is already pending coalesce.
func (s *Scheduler) RefreshNow() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) interval() time.Duration {
	s.intervalMu.Lock()
	defer s.intervalMu.Unlock()
	return s.lastInterval
}

func (s *Scheduler) setInterval(d time.Duration) {
	s.intervalMu.Lock()
	defer s.intervalMu.Unlock()
	s.lastInterval = d
}

// locationFetch holds the per-location results of one tick's fan-out.
type locationFetch struct {
	location     int64
	transactions []Transaction
	txnsOK       bool
	openOrders   []PriceQuote
	ordersOK     bool
	inventory    []InventoryLine
	inventoryOK  bool
}

// Tick performs one full refresh cycle. Invalid settings fail the tick
// before any fetch; fetch failures degrade it partially.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	settings, err := s.cfg.Settings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	s.setInterval(settings.RefreshInterval)

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -settings.LookbackDays)
	rates := Rates(settings.Skills)
	start := time.Now()

	var (
		quotes   []PriceQuote
		quotesOK bool

		wallet   float64
		walletOK bool

		contracts   []Contract
		contractsOK bool
	)
	perLoc := make([]locationFetch, len(settings.Locations))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, settings.FetchTimeout)
		defer cancel()
		q, err := s.provider.FetchQuotes(fctx, settings.Locations)
		if err != nil {
			logger.Warn("Scheduler", fmt.Sprintf("Quote fetch failed: %v", err))
			return nil
		}
		quotes, quotesOK = q, true
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, settings.FetchTimeout)
		defer cancel()
		bal, err := s.provider.FetchWalletBalance(fctx)
		if err != nil {
			logger.Warn("Scheduler", fmt.Sprintf("Wallet fetch failed: %v", err))
			return nil
		}
		wallet, walletOK = bal, true
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, settings.FetchTimeout)
		defer cancel()
		c, err := s.provider.FetchContracts(fctx)
		if err != nil {
			logger.Warn("Scheduler", fmt.Sprintf("Contract fetch failed: %v", err))
			return nil
		}
		contracts, contractsOK = c, true
		return nil
	})

	for i, loc := range settings.Locations {
		i, loc := i, loc
		perLoc[i].location = loc

		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, settings.FetchTimeout)
			defer cancel()
			txns, err := s.provider.FetchTransactions(fctx, loc, since)
			if err != nil {
				logger.Warn("Scheduler", fmt.Sprintf("Transaction fetch failed for %d: %v", loc, err))
				return nil
			}
			perLoc[i].transactions, perLoc[i].txnsOK = txns, true
			return nil
		})
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, settings.FetchTimeout)
			defer cancel()
			orders, err := s.provider.FetchOpenOrders(fctx, loc)
			if err != nil {
				logger.Warn("Scheduler", fmt.Sprintf("Open-order fetch failed for %d: %v", loc, err))
				return nil
			}
			perLoc[i].openOrders, perLoc[i].ordersOK = orders, true
			return nil
		})
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, settings.FetchTimeout)
			defer cancel()
			inv, err := s.provider.FetchInventory(fctx, loc)
			if err != nil {
				logger.Warn("Scheduler", fmt.Sprintf("Inventory fetch failed for %d: %v", loc, err))
				return nil
			}
			perLoc[i].inventory, perLoc[i].inventoryOK = inv, true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Snapshot assembly: only fully-fetched locations enter the store
	// and the valuation, so stale data never masquerades as fresh.
	var snaps []Snapshot
	allTxnsOK, allOrdersOK := true, true
	var allTxns []Transaction
	var allOrders []PriceQuote

	for _, lf := range perLoc {
		if !lf.txnsOK {
			allTxnsOK = false
		} else {
			allTxns = append(allTxns, lf.transactions...)
		}
		if !lf.ordersOK {
			allOrdersOK = false
		} else {
			allOrders = append(allOrders, lf.openOrders...)
		}
		if !lf.txnsOK || !lf.ordersOK || !lf.inventoryOK {
			continue
		}
		snap := Snapshot{
			TakenAt:      now,
			LocationID:   lf.location,
			Transactions: lf.transactions,
			OpenOrders:   lf.openOrders,
			Inventory:    lf.inventory,
		}
		if quotesOK {
			for _, q := range quotes {
				if q.LocationID == lf.location {
					snap.Quotes = append(snap.Quotes, q)
				}
			}
		}
		s.store.Put(snap)
		snaps = append(snaps, snap)
	}
	if pruned := s.store.Prune(now); pruned > 0 {
		log.Printf("[SCHED] Pruned %d stale snapshots", pruned)
	}

	if quotesOK {
		opps := ScanArbitrage(quotes, settings.Filters)
		s.sink.PublishOpportunities(opps)
		logger.Info("Scheduler", fmt.Sprintf("Scan found %d opportunities across %d locations", len(opps), len(settings.Locations)))
	}

	var valuation Valuation
	haveValuation := len(snaps) > 0 && quotesOK
	if haveValuation {
		valuation = BuildValuation(snaps, settings.LookbackDays, settings.TargetMarginPct, rates, now)
		s.sink.PublishValuation(valuation)
	}

	// Metric observations. Each depends only on its own fetches; a
	// failed fetch skips the metric entirely for this tick.
	if walletOK {
		s.observe(MetricWalletBalance, wallet, now, settings.Thresholds)
	}
	if allTxnsOK {
		s.observe(MetricProfitTotal, ProfitTotal(allTxns), now, settings.Thresholds)
	}
	if haveValuation {
		s.observe(MetricWarehouseValue, WarehouseValue(valuation.Lines), now, settings.Thresholds)
	}
	if allOrdersOK {
		s.observe(MetricISKInOrders, ISKInOrders(allOrders), now, settings.Thresholds)
		s.observe(MetricOpenOrderCount, float64(len(allOrders)), now, settings.Thresholds)
	}
	if contractsOK {
		s.observe(MetricContractCount, float64(len(contracts)), now, settings.Thresholds)
		s.observe(MetricContractCollateral, ContractCollateral(contracts), now, settings.Thresholds)
	}

	log.Printf("[SCHED] Tick complete in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// detectorFor returns the detector for a metric, creating (and seeding
// from the persisted baseline) on first use. A threshold change
// replaces the detector but carries the baseline forward.
func (s *Scheduler) detectorFor(metric string, threshold float64) *ChangeDetector {
	s.detMu.Lock()
	defer s.detMu.Unlock()

	if d, ok := s.detectors[metric]; ok {
		if d.threshold == threshold {
			return d
		}
		next := NewChangeDetector(metric, threshold)
		if base, ok := d.Baseline(); ok {
			next.Seed(base)
		}
		s.detectors[metric] = next
		return next
	}

	d := NewChangeDetector(metric, threshold)
	if base, ok := s.seeded[metric]; ok {
		d.Seed(base)
	}
	s.detectors[metric] = d
	return d
}

func thresholdFor(metric string, thresholds []AlertThreshold) float64 {
	for _, t := range thresholds {
		if t.Metric == metric {
			return t.AbsoluteDelta
		}
	}
	return 0
}

func (s *Scheduler) observe(metric string, value float64, at time.Time, thresholds []AlertThreshold) {
	d := s.detectorFor(metric, thresholdFor(metric, thresholds))
	if alert, fired := d.Observe(value, at); fired {
		s.sink.PublishAlert(alert)
	}
	if s.baselines != nil {
		if err := s.baselines.SaveBaseline(metric, value, at); err != nil {
			logger.Warn("Scheduler", fmt.Sprintf("Could not persist baseline for %s: %v", metric, err))
		}
	}
}

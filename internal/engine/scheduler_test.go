package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeProvider struct {
	mu sync.Mutex

	quotes       []PriceQuote
	transactions []Transaction
	openOrders   []PriceQuote
	inventory    []InventoryLine
	wallet       float64
	contracts    []Contract

	quotesErr error
	walletErr error
}

func (p *fakeProvider) FetchQuotes(ctx context.Context, locations []int64) ([]PriceQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quotesErr != nil {
		return nil, p.quotesErr
	}
	return p.quotes, nil
}

func (p *fakeProvider) FetchTransactions(ctx context.Context, location int64, since time.Time) ([]Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Transaction
	for _, tx := range p.transactions {
		if tx.LocationID == location {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (p *fakeProvider) FetchOpenOrders(ctx context.Context, location int64) ([]PriceQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PriceQuote
	for _, o := range p.openOrders {
		if o.LocationID == location {
			out = append(out, o)
		}
	}
	return out, nil
}

func (p *fakeProvider) FetchInventory(ctx context.Context, location int64) ([]InventoryLine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []InventoryLine
	for _, l := range p.inventory {
		if l.LocationID == location {
			out = append(out, l)
		}
	}
	return out, nil
}

func (p *fakeProvider) FetchWalletBalance(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.walletErr != nil {
		return 0, p.walletErr
	}
	return p.wallet, nil
}

func (p *fakeProvider) FetchContracts(ctx context.Context) ([]Contract, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contracts, nil
}

func (p *fakeProvider) setWallet(v float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wallet, p.walletErr = v, err
}

type recordingSink struct {
	mu            sync.Mutex
	opportunities [][]Opportunity
	valuations    []Valuation
	alerts        []Alert
}

func (s *recordingSink) PublishOpportunities(opps []Opportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities = append(s.opportunities, opps)
}

func (s *recordingSink) PublishValuation(v Valuation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valuations = append(s.valuations, v)
}

func (s *recordingSink) PublishAlert(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

func (s *recordingSink) alertsFor(metric string) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Alert
	for _, a := range s.alerts {
		if a.Metric == metric {
			out = append(out, a)
		}
	}
	return out
}

type staticConfig struct {
	settings Settings
	err      error
}

func (c staticConfig) Settings() (Settings, error) { return c.settings, c.err }

type memBaselines struct {
	mu     sync.Mutex
	values map[string]float64
	saves  int
}

func (b *memBaselines) LoadBaselines() (map[string]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out, nil
}

func (b *memBaselines) SaveBaseline(metric string, value float64, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.values == nil {
		b.values = make(map[string]float64)
	}
	b.values[metric] = value
	b.saves++
	return nil
}

func testSettings() Settings {
	return Settings{
		Locations:       []int64{100, 200},
		Filters:         ScanFilters{MinMarginPct: 20, MaxMarginPct: 1000, MinVolume: 30},
		LookbackDays:    30,
		TargetMarginPct: 20,
		Skills:          SkillLevels{BrokerRelations: 5, Accounting: 5},
		Thresholds: []AlertThreshold{
			{Metric: MetricWalletBalance, AbsoluteDelta: 100_000},
		},
		RefreshInterval: time.Minute,
		FetchTimeout:    5 * time.Second,
	}
}

func testProvider() *fakeProvider {
	return &fakeProvider{
		quotes: []PriceQuote{
			{ItemID: 1, LocationID: 100, Side: SideBuy, Price: 100, VolumeRemain: 50, VolumeTotal: 50},
			{ItemID: 1, LocationID: 200, Side: SideSell, Price: 130, VolumeRemain: 40, VolumeTotal: 40},
		},
		inventory: []InventoryLine{{ItemID: 1, LocationID: 100, Quantity: 10}},
		wallet:    1_000_000,
	}
}

func TestTickPublishesResults(t *testing.T) {
	provider := testProvider()
	sink := &recordingSink{}
	sched := NewScheduler(provider, sink, staticConfig{settings: testSettings()}, NewSnapshotStore(time.Hour), nil)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(sink.opportunities) != 1 {
		t.Fatalf("expected 1 opportunity batch, got %d", len(sink.opportunities))
	}
	opps := sink.opportunities[0]
	if len(opps) != 1 || opps[0].MarginPct != 30 {
		t.Errorf("unexpected opportunities: %+v", opps)
	}
	if len(sink.valuations) != 1 {
		t.Fatalf("expected 1 valuation, got %d", len(sink.valuations))
	}
	if len(sink.alerts) != 0 {
		t.Errorf("first tick seeds baselines and must not alert, got %+v", sink.alerts)
	}
}

func TestTickAlertsOnWalletMove(t *testing.T) {
	provider := testProvider()
	sink := &recordingSink{}
	sched := NewScheduler(provider, sink, staticConfig{settings: testSettings()}, NewSnapshotStore(time.Hour), nil)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	provider.setWallet(1_150_000, nil)
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}

	alerts := sink.alertsFor(MetricWalletBalance)
	if len(alerts) != 1 {
		t.Fatalf("expected exactly 1 wallet alert, got %d", len(alerts))
	}
	if alerts[0].Delta != 150_000 || alerts[0].Direction != DirectionUp {
		t.Errorf("alert = %+v, want +150000 up", alerts[0])
	}
}

func TestTickFailedFetchIsSilent(t *testing.T) {
	provider := testProvider()
	sink := &recordingSink{}
	sched := NewScheduler(provider, sink, staticConfig{settings: testSettings()}, NewSnapshotStore(time.Hour), nil)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The wallet endpoint goes down; the tick must neither alert on the
	// wallet nor treat the failure as a balance of zero.
	provider.setWallet(0, errors.New("backend unavailable"))
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if alerts := sink.alertsFor(MetricWalletBalance); len(alerts) != 0 {
		t.Fatalf("failed fetch produced wallet alerts: %+v", alerts)
	}

	// Recovery at the old value: still no alert, the baseline held.
	provider.setWallet(1_000_000, nil)
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	if alerts := sink.alertsFor(MetricWalletBalance); len(alerts) != 0 {
		t.Fatalf("recovery at the baseline value alerted: %+v", alerts)
	}
}

func TestTickInvalidConfigFailsFast(t *testing.T) {
	cfg := staticConfig{settings: testSettings()}
	cfg.settings.Filters.MinMarginPct = 500
	cfg.settings.Filters.MaxMarginPct = 100

	provider := testProvider()
	sink := &recordingSink{}
	sched := NewScheduler(provider, sink, cfg, NewSnapshotStore(time.Hour), nil)

	err := sched.Tick(context.Background())
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if len(sink.opportunities) != 0 || len(sink.valuations) != 0 || len(sink.alerts) != 0 {
		t.Error("invalid config must not publish anything")
	}
}

func TestSchedulerSeedsFromBaselineStore(t *testing.T) {
	provider := testProvider()
	provider.setWallet(1_150_000, nil)
	sink := &recordingSink{}
	baselines := &memBaselines{values: map[string]float64{MetricWalletBalance: 1_000_000}}

	sched := NewScheduler(provider, sink, staticConfig{settings: testSettings()}, NewSnapshotStore(time.Hour), baselines)
	if err := sched.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The persisted baseline survives the restart, so the very first
	// observation can fire.
	alerts := sink.alertsFor(MetricWalletBalance)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 wallet alert from the persisted baseline, got %d", len(alerts))
	}
	if alerts[0].Baseline != 1_000_000 || alerts[0].Current != 1_150_000 {
		t.Errorf("alert = %+v", alerts[0])
	}

	baselines.mu.Lock()
	saved := baselines.values[MetricWalletBalance]
	baselines.mu.Unlock()
	if saved != 1_150_000 {
		t.Errorf("baseline store = %v, want 1150000", saved)
	}
}

func TestRunRespondsToRefreshAndCancel(t *testing.T) {
	provider := testProvider()
	sink := &recordingSink{}
	settings := testSettings()
	settings.RefreshInterval = time.Hour // only RefreshNow can trigger tick 2

	sched := NewScheduler(provider, sink, staticConfig{settings: settings}, NewSnapshotStore(time.Hour), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.opportunities)
		sink.mu.Unlock()
		if n >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first tick never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sched.RefreshNow()
	for {
		sink.mu.Lock()
		n := len(sink.opportunities)
		sink.mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("RefreshNow never triggered a tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

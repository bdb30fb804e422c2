package engine

import "time"

// Side of a PriceQuote. A buy-side quote is the price at which units can
// be acquired at a location (the market's standing sell orders); a
// sell-side quote is the price units can be sold into (standing buy
// orders).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PriceQuote is a single market order level at one location.
type PriceQuote struct {
	ItemID       int32     `json:"item_id"`
	LocationID   int64     `json:"location_id"`
	Side         Side      `json:"side"`
	Price        float64   `json:"price"`
	VolumeRemain int32     `json:"volume_remain"`
	VolumeTotal  int32     `json:"volume_total"`
	IssuedAt     time.Time `json:"issued_at"`
	OrderID      int64     `json:"order_id"`
}

// Malformed reports whether the quote violates the basic shape rules
// (non-positive price or negative remaining volume). Malformed quotes
// are dropped with a warning, never an error.
func (q PriceQuote) Malformed() bool {
	return q.Price <= 0 || q.VolumeRemain < 0
}

// Transaction is one wallet transaction. Immutable once recorded.
type Transaction struct {
	ItemID     int32     `json:"item_id"`
	LocationID int64     `json:"location_id"`
	IsBuy      bool      `json:"is_buy"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int32     `json:"quantity"`
	Timestamp  time.Time `json:"timestamp"`
	FeePaid    float64   `json:"fee_paid"`
}

// CostBasis is the weighted-average acquisition cost for an item at a
// location. WeightedAvgUnitCost is meaningful only when HasHistory is
// true; callers must fall back to a market estimate (and tag it as
// such) rather than treat a missing basis as zero.
type CostBasis struct {
	ItemID              int32   `json:"item_id"`
	LocationID          int64   `json:"location_id"`
	WeightedAvgUnitCost float64 `json:"weighted_avg_unit_cost"`
	QuantityBasis       int64   `json:"quantity_basis"`
	HasHistory          bool    `json:"has_history"`
}

// Opportunity is a profitable buy-here/sell-there pair for one item
// across two locations. Recomputed per scan, never persisted across
// ticks.
type Opportunity struct {
	ItemID       int32   `json:"item_id"`
	BuyLocation  int64   `json:"buy_location"`
	SellLocation int64   `json:"sell_location"`
	BuyPrice     float64 `json:"buy_price"`
	SellPrice    float64 `json:"sell_price"`
	MarginAbs    float64 `json:"margin_abs"`
	MarginPct    float64 `json:"margin_pct"`
	BuyVolume    int32   `json:"buy_volume"`
	SellVolume   int32   `json:"sell_volume"`
}

// InventoryLine is one held stack of an item at a location, as reported
// by the provider for a single tick. It is superseded wholesale on the
// next tick.
type InventoryLine struct {
	ItemID     int32 `json:"item_id"`
	LocationID int64 `json:"location_id"`
	Quantity   int64 `json:"quantity"`
}

// CostSource tags where an EnrichedLine's per-unit cost came from.
type CostSource string

const (
	CostFromTransactions   CostSource = "transactions"
	CostFromMarketEstimate CostSource = "market-estimate"
	CostUnknown            CostSource = "unknown"
)

// OrderSideSummary aggregates all open orders of one side for an item
// at a location.
type OrderSideSummary struct {
	Orders       int     `json:"orders"`
	VolumeRemain int64   `json:"volume_remain"`
	VolumeTotal  int64   `json:"volume_total"`
	FillPct      float64 `json:"fill_pct"`
	ISKCommitted float64 `json:"isk_committed"`
}

// EnrichedLine is an InventoryLine joined with cost basis, live price,
// fee-adjusted profitability, and open-order fill progress.
type EnrichedLine struct {
	InventoryLine

	LivePrice   float64    `json:"live_price"`
	CostPerUnit float64    `json:"cost_per_unit"`
	CostSource  CostSource `json:"cost_source"`
	Estimated   bool       `json:"estimated"`

	HasProfit        bool    `json:"has_profit"`
	ProfitPerUnit    float64 `json:"profit_per_unit"`
	NetProfitPerUnit float64 `json:"net_profit_per_unit"`
	TotalProfit      float64 `json:"total_profit"`
	MinSellPrice     float64 `json:"min_sell_price"`

	BuyOrders  OrderSideSummary `json:"buy_orders"`
	SellOrders OrderSideSummary `json:"sell_orders"`
}

// ValuationSummary aggregates a valuation pass across all locations.
type ValuationSummary struct {
	TotalItems        int     `json:"total_items"`
	TotalValue        float64 `json:"total_value"`
	TotalProfit       float64 `json:"total_profit"`
	ISKInOrders       float64 `json:"isk_in_orders"`
	CostBasisCoverage float64 `json:"cost_basis_coverage"` // % of lines with transaction-derived cost
}

// Valuation is the full per-tick valuation view published to sinks.
type Valuation struct {
	TakenAt time.Time        `json:"taken_at"`
	Lines   []EnrichedLine   `json:"lines"`
	Summary ValuationSummary `json:"summary"`
}

// Contract is an outstanding contract as reported by the provider.
type Contract struct {
	ContractID int64   `json:"contract_id"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
	Collateral float64 `json:"collateral"`
}

// Direction of a metric delta.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Alert is emitted when a tracked metric moves by at least its
// configured threshold between two successful observations.
type Alert struct {
	ID        string    `json:"id"`
	Metric    string    `json:"metric"`
	Baseline  float64   `json:"baseline"`
	Current   float64   `json:"current"`
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
	At        time.Time `json:"at"`
}

// AlertThreshold configures the absolute delta that fires an alert for
// one metric. Immutable at runtime.
type AlertThreshold struct {
	Metric        string  `json:"metric"`
	AbsoluteDelta float64 `json:"absolute_delta"`
}

// Snapshot is an immutable, timestamped bundle of raw provider data
// produced by one tick. All derived computations within the tick read
// from it; the next tick supersedes it.
type Snapshot struct {
	TakenAt      time.Time       `json:"taken_at"`
	LocationID   int64           `json:"location_id,omitempty"` // 0 = global
	Quotes       []PriceQuote    `json:"quotes,omitempty"`
	Transactions []Transaction   `json:"transactions,omitempty"`
	OpenOrders   []PriceQuote    `json:"open_orders,omitempty"`
	Inventory    []InventoryLine `json:"inventory,omitempty"`
}

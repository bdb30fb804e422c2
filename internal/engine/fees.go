package engine

// Trading fee constants. Broker fee starts at 3.0% and drops 0.1% per
// level of Broker Relations (floor 2.5% at level V). Sales tax starts
// at 8.0% and drops 11% of the base per level of Accounting (floor
// 4.5% at level V).
const (
	baseBrokerFeePct      = 3.0
	brokerFeePerLevelPct  = 0.1
	minBrokerFeePct       = 2.5
	baseSalesTaxPct       = 8.0
	salesTaxLevelFraction = 0.11
	minSalesTaxPct        = 4.5
)

// SkillLevels are the trading skills that reduce market fees.
type SkillLevels struct {
	BrokerRelations int `json:"broker_relations"`
	Accounting      int `json:"accounting"`
}

// FeeRates are the effective fee percentages for a skill tuple.
type FeeRates struct {
	BrokerFeePct float64 `json:"broker_fee_pct"`
	SalesTaxPct  float64 `json:"sales_tax_pct"`
}

// TotalPct is the combined fee percentage deducted from a completed
// sell order.
func (r FeeRates) TotalPct() float64 {
	return r.BrokerFeePct + r.SalesTaxPct
}

// BrokerFeePct returns the effective broker fee percentage for a
// Broker Relations level. Monotonically non-increasing in level.
func BrokerFeePct(level int) float64 {
	if level < 0 {
		level = 0
	}
	rate := baseBrokerFeePct - float64(level)*brokerFeePerLevelPct
	if rate < minBrokerFeePct {
		return minBrokerFeePct
	}
	return rate
}

// SalesTaxPct returns the effective sales tax percentage for an
// Accounting level. Monotonically non-increasing in level.
func SalesTaxPct(level int) float64 {
	if level < 0 {
		level = 0
	}
	rate := baseSalesTaxPct * (1 - salesTaxLevelFraction*float64(level))
	if rate < minSalesTaxPct {
		return minSalesTaxPct
	}
	return rate
}

// Rates is the FeeModel entry point: skill levels in, effective rates
// out. Pure function, no I/O.
func Rates(skills SkillLevels) FeeRates {
	return FeeRates{
		BrokerFeePct: BrokerFeePct(skills.BrokerRelations),
		SalesTaxPct:  SalesTaxPct(skills.Accounting),
	}
}

// EffectiveBuyPrice is the ISK actually spent per unit when placing a
// buy order at the given price (broker fee paid upfront).
func EffectiveBuyPrice(price float64, r FeeRates) float64 {
	return price * (1 + r.BrokerFeePct/100)
}

// EffectiveSellPrice is the ISK actually received per unit when a sell
// order at the given price completes (broker fee and sales tax
// deducted).
func EffectiveSellPrice(price float64, r FeeRates) float64 {
	return price * (1 - r.TotalPct()/100)
}

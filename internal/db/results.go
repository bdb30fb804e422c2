package db

import (
	"fmt"
	"time"

	"eve-tradehub/internal/engine"
)

// SaveOpportunities records one scan's opportunities under a new tick
// row and returns the tick ID.
func (d *DB) SaveOpportunities(opps []engine.Opportunity, locationCount int, at time.Time) (int64, error) {
	topMargin := 0.0
	if len(opps) > 0 {
		topMargin = opps[0].MarginPct // scan output is sorted descending
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO tick_history (timestamp, location_count, opportunity_count, top_margin_pct)
		VALUES (?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339), locationCount, len(opps), topMargin)
	if err != nil {
		return 0, fmt.Errorf("tick history: %w", err)
	}
	tickID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO opportunity_results (
			tick_id, type_id, buy_location, sell_location,
			buy_price, sell_price, margin_abs, margin_pct, buy_volume, sell_volume
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, o := range opps {
		if _, err := stmt.Exec(
			tickID, o.ItemID, o.BuyLocation, o.SellLocation,
			o.BuyPrice, o.SellPrice, o.MarginAbs, o.MarginPct, o.BuyVolume, o.SellVolume,
		); err != nil {
			return 0, fmt.Errorf("opportunity row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return tickID, nil
}

// TickSummary is one row of scan history.
type TickSummary struct {
	ID               int64   `json:"id"`
	Timestamp        string  `json:"timestamp"`
	LocationCount    int     `json:"location_count"`
	OpportunityCount int     `json:"opportunity_count"`
	TopMarginPct     float64 `json:"top_margin_pct"`
}

// GetTickHistory returns the most recent ticks, newest first.
// Limit 0 means unlimited.
func (d *DB) GetTickHistory(limit int) ([]TickSummary, error) {
	query := "SELECT id, timestamp, location_count, opportunity_count, top_margin_pct FROM tick_history ORDER BY timestamp DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickSummary
	for rows.Next() {
		var t TickSummary
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.LocationCount, &t.OpportunityCount, &t.TopMarginPct); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetOpportunities returns the stored opportunities for one tick,
// preserving the scan's descending-margin order.
func (d *DB) GetOpportunities(tickID int64) ([]engine.Opportunity, error) {
	rows, err := d.sql.Query(`
		SELECT type_id, buy_location, sell_location,
		       buy_price, sell_price, margin_abs, margin_pct, buy_volume, sell_volume
		  FROM opportunity_results
		 WHERE tick_id = ?
		 ORDER BY id`, tickID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Opportunity
	for rows.Next() {
		var o engine.Opportunity
		if err := rows.Scan(
			&o.ItemID, &o.BuyLocation, &o.SellLocation,
			&o.BuyPrice, &o.SellPrice, &o.MarginAbs, &o.MarginPct, &o.BuyVolume, &o.SellVolume,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveValuationSummary appends one valuation snapshot to the history.
func (d *DB) SaveValuationSummary(v engine.Valuation) error {
	_, err := d.sql.Exec(`
		INSERT INTO valuation_history (
			timestamp, total_items, total_value, total_profit, isk_in_orders, cost_basis_coverage
		) VALUES (?, ?, ?, ?, ?, ?)`,
		v.TakenAt.UTC().Format(time.RFC3339),
		v.Summary.TotalItems, v.Summary.TotalValue, v.Summary.TotalProfit,
		v.Summary.ISKInOrders, v.Summary.CostBasisCoverage)
	return err
}

// CleanupOldTicks removes tick history (and its opportunity rows)
// older than the given number of days. Returns rows removed from
// tick_history.
func (d *DB) CleanupOldTicks(olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)

	if _, err := d.sql.Exec(`
		DELETE FROM opportunity_results
		 WHERE tick_id IN (SELECT id FROM tick_history WHERE timestamp < ?)`, cutoff); err != nil {
		return 0, err
	}
	res, err := d.sql.Exec("DELETE FROM tick_history WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

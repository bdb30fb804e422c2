package db

import (
	"time"
)

// LoadBaselines returns the persisted metric baselines. An empty map
// (not an error) when none have been saved.
func (d *DB) LoadBaselines() (map[string]float64, error) {
	rows, err := d.sql.Query("SELECT metric, value FROM metric_baselines")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	baselines := make(map[string]float64)
	for rows.Next() {
		var metric string
		var value float64
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, err
		}
		baselines[metric] = value
	}
	return baselines, rows.Err()
}

// SaveBaseline upserts the latest observed value for a metric.
func (d *DB) SaveBaseline(metric string, value float64, at time.Time) error {
	_, err := d.sql.Exec(`
		INSERT INTO metric_baselines (metric, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(metric) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		metric, value, at.UTC().Format(time.RFC3339))
	return err
}

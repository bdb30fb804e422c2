package db

import (
	"time"

	"eve-tradehub/internal/engine"
)

// SaveAlert records a fired alert to the history table.
func (d *DB) SaveAlert(a engine.Alert) error {
	_, err := d.sql.Exec(`
		INSERT INTO alert_history (id, metric, baseline, current, delta, direction, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Metric, a.Baseline, a.Current, a.Delta, string(a.Direction),
		a.At.UTC().Format(time.RFC3339))
	return err
}

// GetAlertHistory returns alerts, newest first. If metric is empty all
// metrics are returned; limit 0 means unlimited.
func (d *DB) GetAlertHistory(metric string, limit int) ([]engine.Alert, error) {
	query := `
		SELECT id, metric, baseline, current, delta, direction, created_at
		  FROM alert_history`
	args := []interface{}{}
	if metric != "" {
		query += " WHERE metric = ?"
		args = append(args, metric)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Alert
	for rows.Next() {
		var a engine.Alert
		var direction, createdAt string
		if err := rows.Scan(&a.ID, &a.Metric, &a.Baseline, &a.Current, &a.Delta, &direction, &createdAt); err != nil {
			return nil, err
		}
		a.Direction = engine.Direction(direction)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			a.At = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CleanupOldAlerts removes alerts older than the given number of days.
func (d *DB) CleanupOldAlerts(olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)
	res, err := d.sql.Exec("DELETE FROM alert_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

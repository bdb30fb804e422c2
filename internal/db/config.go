package db

import (
	"database/sql"
	"encoding/json"
)

const configKey = "tradehub_config"

// SaveConfig persists a JSON-serializable config blob.
func (d *DB) SaveConfig(cfg interface{}) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = d.sql.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		configKey, string(data))
	return err
}

// LoadConfig reads the persisted config into dst. Returns (false, nil)
// when nothing has been saved yet, so callers keep their defaults.
func (d *DB) LoadConfig(dst interface{}) (bool, error) {
	var raw string
	err := d.sql.QueryRow("SELECT value FROM config WHERE key = ?", configKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

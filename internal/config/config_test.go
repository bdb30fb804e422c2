package config

import (
	"errors"
	"testing"
	"time"

	"eve-tradehub/internal/engine"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}
}

func TestDefaultHubs(t *testing.T) {
	cfg := Default()
	if len(cfg.Hubs) != 5 {
		t.Fatalf("got %d hubs, want 5", len(cfg.Hubs))
	}

	m := cfg.StationToRegion()
	if m[60003760] != 10000002 {
		t.Errorf("Jita station maps to region %d, want The Forge", m[60003760])
	}
	if m[60008494] != 10000043 {
		t.Errorf("Amarr station maps to region %d, want Domain", m[60008494])
	}
}

func TestSettingsConversion(t *testing.T) {
	cfg := Default()
	s := cfg.Settings()

	if len(s.Locations) != len(cfg.Hubs) {
		t.Errorf("locations = %d, want %d", len(s.Locations), len(cfg.Hubs))
	}
	if s.Filters.MinMarginPct != 20 || s.Filters.MaxMarginPct != 1500 {
		t.Errorf("margin band = %v..%v, want 20..1500", s.Filters.MinMarginPct, s.Filters.MaxMarginPct)
	}
	if s.Filters.MinVolume != 75 || s.Filters.MinBuyPrice != 100_000 {
		t.Errorf("volume/price floors = %d/%v", s.Filters.MinVolume, s.Filters.MinBuyPrice)
	}
	if s.LookbackDays != 30 {
		t.Errorf("lookback = %d, want 30", s.LookbackDays)
	}
	if s.RefreshInterval != 5*time.Minute {
		t.Errorf("refresh interval = %v, want 5m", s.RefreshInterval)
	}
	if s.Skills.BrokerRelations != 5 || s.Skills.Accounting != 5 {
		t.Errorf("skills = %+v, want V/V", s.Skills)
	}
}

func TestValidateRejectsBadMarginBand(t *testing.T) {
	cfg := Default()
	cfg.MinMarginPct = 2000 // above the 1500 cap
	err := cfg.Validate()
	if !errors.Is(err, engine.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateRejectsZeroLookback(t *testing.T) {
	cfg := Default()
	cfg.LookbackDays = 0
	if err := cfg.Validate(); !errors.Is(err, engine.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"eve-tradehub/internal/config"
	"eve-tradehub/internal/db"
	"eve-tradehub/internal/engine"
	"eve-tradehub/internal/esi"
	"eve-tradehub/internal/logger"
	"eve-tradehub/internal/notify"
)

var version = "dev"

func main() {
	runOnce := flag.Bool("once", false, "run a single refresh cycle and exit")
	flag.Parse()

	// .env is optional; real env vars win either way.
	godotenv.Load()

	logger.Banner(version)

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfgStore, err := config.NewStore(database)
	if err != nil {
		logger.Error("Config", fmt.Sprintf("Failed to load config: %v", err))
		os.Exit(1)
	}

	creds := esi.Credentials{
		AccessToken: os.Getenv("EVE_ACCESS_TOKEN"),
	}
	if id := os.Getenv("EVE_CHARACTER_ID"); id != "" {
		creds.CharacterID, _ = strconv.ParseInt(id, 10, 64)
	}
	if creds.CharacterID == 0 || creds.AccessToken == "" {
		logger.Error("ESI", "EVE_CHARACTER_ID and EVE_ACCESS_TOKEN must be set (see .env.example)")
		os.Exit(1)
	}

	client := esi.NewClient(creds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if !client.HealthCheck(startupCtx) {
		logger.Warn("ESI", "Health check failed, continuing anyway")
	} else {
		logger.Success("ESI", "Connected")
	}
	cancel()

	syncSkills(ctx, client, cfgStore)

	cfg := cfgStore.Current()
	logger.Section("Tracked hubs")
	for _, hub := range cfg.Hubs {
		logger.Stats(hub.Name, fmt.Sprintf("station %d (region %d)", hub.StationID, hub.RegionID))
	}

	provider := esi.NewProvider(client, cfg.StationToRegion())
	sink := notify.MultiSink{
		&notify.ConsoleSink{},
		notify.NewRecorderSink(database, len(cfg.Hubs)),
	}

	// Keep snapshots around for three refresh windows before calling
	// them stale.
	settings, _ := cfgStore.Settings()
	store := engine.NewSnapshotStore(3 * settings.RefreshInterval)

	sched := engine.NewScheduler(provider, sink, cfgStore, store, database)
	if *runOnce {
		if err := sched.Tick(ctx); err != nil {
			logger.Error("Scheduler", fmt.Sprintf("Tick failed: %v", err))
			os.Exit(1)
		}
		return
	}

	logger.Info("Scheduler", fmt.Sprintf("Refreshing every %s", settings.RefreshInterval))
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduler", fmt.Sprintf("Stopped: %v", err))
		os.Exit(1)
	}
	logger.Info("Scheduler", "Shut down cleanly")
}

// syncSkills pulls the character's trained trading skills and persists
// them so fee rates match reality. Failure keeps the configured levels.
func syncSkills(ctx context.Context, client *esi.Client, store *config.Store) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sheet, err := client.GetSkills(fetchCtx)
	if err != nil {
		logger.Warn("ESI", fmt.Sprintf("Skill sync failed, keeping configured levels: %v", err))
		return
	}
	broker, accounting := sheet.TradingSkills()

	cfg := store.Current()
	if cfg.BrokerRelationsLevel == broker && cfg.AccountingLevel == accounting {
		return
	}
	cfg.BrokerRelationsLevel = broker
	cfg.AccountingLevel = accounting
	if err := store.Update(cfg); err != nil {
		logger.Warn("Config", fmt.Sprintf("Could not persist synced skills: %v", err))
		return
	}
	logger.Success("ESI", fmt.Sprintf("Synced skills: Broker Relations %d, Accounting %d", broker, accounting))
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/config"
	"github.com/Alias1177/Oracle/internal/database"
	"github.com/Alias1177/Oracle/internal/engine"
	"github.com/Alias1177/Oracle/internal/feed"
	"github.com/Alias1177/Oracle/internal/indicators"
	"github.com/Alias1177/Oracle/internal/notify"
	"github.com/Alias1177/Oracle/internal/ring"
	"github.com/Alias1177/Oracle/internal/sphere"
	"github.com/Alias1177/Oracle/internal/trinity"
	"github.com/Alias1177/Oracle/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	r := ring.New(ring.DefaultRankingConfig())
	core := trinity.New(trinityConfig(cfg))
	eng := engine.New(r, core, cfg.RegimeHistoryLen)

	var db *database.DB
	if cfg.DatabaseURL != "" && cfg.DatabaseURL != "-" {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to database")
		}
		defer db.Close()
	}

	if err := buildEnsemble(r, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("building ensemble")
	}
	log.Info().Int("spheres", r.Size()).Msg("ensemble ready")

	notifier, err := notify.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("telegram notifier disabled")
	}

	client := feed.NewClient(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := models.IntervalDuration(cfg.Interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Str("symbol", cfg.Symbol).Msg("starting tick loop")
	runTick(ctx, eng, client, db, notifier)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			runTick(ctx, eng, client, db, notifier)
		}
	}
}

func trinityConfig(cfg *models.Config) trinity.Config {
	tc := trinity.DefaultConfig()
	if cfg.HeatmapSize > 0 {
		tc.HeatmapSize = cfg.HeatmapSize
	}
	return tc
}

// buildEnsemble restores persisted spheres when a database is configured and
// otherwise seeds one sphere per classifier kind plus a composite.
func buildEnsemble(r *ring.Ring, db *database.DB, cfg *models.Config) error {
	if db != nil {
		payloads, err := db.LoadAllSnapshots()
		if err != nil {
			return err
		}
		restored := 0
		for _, payload := range payloads {
			h, err := sphere.DecodeSnapshot(payload)
			if err != nil {
				log.Warn().Err(err).Msg("skipping unreadable sphere snapshot")
				continue
			}
			r.Adopt(h)
			restored++
		}
		if restored > 0 {
			log.Info().Int("restored", restored).Msg("restored spheres from database")
			return nil
		}
	}

	for _, sc := range defaultSphereConfigs(cfg) {
		if _, err := r.Add(sc); err != nil {
			return err
		}
	}
	return nil
}

func defaultSphereConfigs(cfg *models.Config) []models.SphereConfig {
	base := func(name, kind string, params map[string]float64) models.SphereConfig {
		return models.SphereConfig{
			Name:             name,
			Classifier:       kind,
			ClassifierParams: params,
			LookbackWindow:   cfg.LookbackWindow,
			DecayFactor:      cfg.DecayFactor,
			Symbol:           cfg.Symbol,
			Timeframe:        cfg.Interval,
			PriorStrength:    cfg.PriorStrength,
		}
	}
	return []models.SphereConfig{
		base("momentum", "momentum", nil),
		base("volatility", "volatility", nil),
		base("oscillator", "oscillator", nil),
		base("multi-period", "multi_period", nil),
		base("volume", "volume", nil),
		base("composite", "composite", map[string]float64{
			"momentum":   0.4,
			"volatility": 0.3,
			"oscillator": 0.3,
		}),
	}
}

func runTick(ctx context.Context, eng *engine.Engine, client models.CandleClient, db *database.DB, notifier *notify.Notifier) {
	candles, err := client.GetCandles(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetching candles")
		return
	}

	snapshot, err := indicators.Snapshot(candles)
	if err != nil {
		log.Error().Err(err).Msg("computing indicator snapshot")
		return
	}

	ts := candles[len(candles)-1].Timestamp
	if err := eng.ProcessTick(snapshot, ts); err != nil {
		log.Error().Err(err).Msg("processing tick")
		return
	}

	if signal := eng.Signal(); signal != nil {
		log.Info().
			Str("sphere", signal.SphereID).
			Stringer("predicted", signal.PredictedState).
			Float64("confidence", signal.Confidence).
			Msg("active signal")
	}

	if notifier != nil {
		notifier.Observe(eng.Trinity(), eng.Regime())
	}

	if db != nil {
		persistSpheres(eng, db)
	}
}

func persistSpheres(eng *engine.Engine, db *database.DB) {
	for _, snap := range eng.Snapshots() {
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Warn().Err(err).Str("sphere", snap.Config.Name).Msg("encoding snapshot")
			continue
		}
		if err := db.SaveSnapshot(snap, payload); err != nil {
			log.Warn().Err(err).Str("sphere", snap.Config.Name).Msg("persisting snapshot")
		}
	}
}

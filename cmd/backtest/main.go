package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/backtest"
	"github.com/Alias1177/Oracle/internal/config"
	"github.com/Alias1177/Oracle/internal/engine"
	"github.com/Alias1177/Oracle/internal/feed"
	"github.com/Alias1177/Oracle/internal/ring"
	"github.com/Alias1177/Oracle/internal/trinity"
	"github.com/Alias1177/Oracle/models"
)

func main() {
	candleCount := flag.Int("candles", 500, "number of historical candles to replay")
	window := flag.Int("window", 60, "indicator window size in candles")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	cfg.CandleCount = *candleCount
	client := feed.NewClient(cfg)

	candles, err := client.GetCandles(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("fetching historical candles")
	}
	log.Info().Int("candles", len(candles)).Str("symbol", cfg.Symbol).Msg("replaying history")

	eng, err := buildEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building engine")
	}

	btCfg := backtest.DefaultConfig()
	btCfg.WindowSize = *window
	runner := backtest.NewRunner(eng, btCfg)

	result, err := runner.Run(candles)
	if err != nil {
		log.Fatal().Err(err).Msg("running backtest")
	}
	fmt.Println(backtest.FormatResults(result))
}

func buildEngine(cfg *models.Config) (*engine.Engine, error) {
	r := ring.New(ring.DefaultRankingConfig())
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
	configs := []models.SphereConfig{
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
	for _, sc := range configs {
		if _, err := r.Add(sc); err != nil {
			return nil, err
		}
	}

	tc := trinity.DefaultConfig()
	if cfg.HeatmapSize > 0 {
		tc.HeatmapSize = cfg.HeatmapSize
	}
	return engine.New(r, trinity.New(tc), cfg.RegimeHistoryLen), nil
}

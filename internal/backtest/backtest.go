package backtest

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/engine"
	"github.com/Alias1177/Oracle/internal/indicators"
	"github.com/Alias1177/Oracle/models"
)

// Config holds the replay parameters.
type Config struct {
	WindowSize     int     // candles per indicator window
	PipScale       float64 // converts raw price change to pips
	InitialBalance float64
}

// DefaultConfig returns the standard replay parameters for a 15min FX feed.
func DefaultConfig() Config {
	return Config{
		WindowSize:     60,
		PipScale:       10000.0,
		InitialBalance: 10000.0,
	}
}

// Trade is one validated signal from the replay.
type Trade struct {
	Index      int                `json:"index"`
	Signal     models.MarketState `json:"signal"`
	Confidence float64            `json:"confidence"`
	PnL        float64            `json:"pnl"`
	WasCorrect bool               `json:"was_correct"`
}

// Result aggregates the replay outcome. Drawdown and the per-signal hit rates
// are percentages.
type Result struct {
	TotalTrades   int       `json:"total_trades"`
	WinningTrades int       `json:"winning_trades"`
	LosingTrades  int       `json:"losing_trades"`
	WinPercentage float64   `json:"win_percentage"`
	GrossProfit   float64   `json:"gross_profit"`
	GrossLoss     float64   `json:"gross_loss"`
	NetProfit     float64   `json:"net_profit"`
	ProfitFactor  float64   `json:"profit_factor"`
	MaxDrawdown   float64   `json:"max_drawdown"`
	SharpeRatio   float64   `json:"sharpe_ratio"`
	EquityCurve   []float64 `json:"equity_curve"`

	MaxConsecutive struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
	} `json:"max_consecutive"`

	SignalPerformance map[string]float64 `json:"signal_performance"`
	Trades            []Trade            `json:"trades"`
}

// Runner replays historical candles through an engine, validating each signal
// against the next bar and feeding the realized outcome back into the ranking.
type Runner struct {
	engine *engine.Engine
	cfg    Config
	logger zerolog.Logger
}

// NewRunner creates a replay runner over an already-built engine.
func NewRunner(e *engine.Engine, cfg Config) *Runner {
	if cfg.WindowSize < indicators.MinCandles {
		cfg.WindowSize = indicators.MinCandles
	}
	return &Runner{
		engine: e,
		cfg:    cfg,
		logger: log.With().Str("component", "backtest").Logger(),
	}
}

// Run walks the candle history one bar at a time: compute indicators over the
// trailing window, tick the engine, take the promoted signal and validate it
// against the following close. Neutral and chance-confidence signals are not
// traded.
func (r *Runner) Run(candles []models.Candle) (*Result, error) {
	if len(candles) < r.cfg.WindowSize+2 {
		return nil, fmt.Errorf("need at least %d candles, got %d", r.cfg.WindowSize+2, len(candles))
	}

	result := &Result{
		SignalPerformance: make(map[string]float64),
		EquityCurve:       []float64{r.cfg.InitialBalance},
	}

	signalStats := make(map[models.MarketState]*struct{ correct, total int })

	balance := r.cfg.InitialBalance
	highWaterMark := balance
	maxDrawdown := 0.0
	consecutiveWins, consecutiveLosses := 0, 0

	for i := r.cfg.WindowSize; i < len(candles)-1; i++ {
		window := candles[i-r.cfg.WindowSize : i]
		snap, err := indicators.Snapshot(window)
		if err != nil {
			return nil, fmt.Errorf("computing indicators at bar %d: %w", i, err)
		}
		if err := r.engine.ProcessTick(snap, candles[i-1].Timestamp); err != nil {
			r.logger.Warn().Int("bar", i).Err(err).Msg("tick skipped")
			continue
		}

		signal := r.engine.Signal()
		if signal == nil {
			continue
		}
		if signal.PredictedState == models.Neutral || signal.Confidence <= 1.0/models.NumStates {
			continue
		}

		long := signal.PredictedState > models.Neutral
		priceChange := candles[i].Close - candles[i-1].Close
		wasCorrect := (long && priceChange > 0) || (!long && priceChange < 0)

		pips := math.Abs(priceChange) * r.cfg.PipScale
		pnl := pips
		if !wasCorrect {
			pnl = -pips
		}

		result.TotalTrades++
		if wasCorrect {
			result.WinningTrades++
			result.GrossProfit += pips
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			result.LosingTrades++
			result.GrossLoss += pips
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > result.MaxConsecutive.Wins {
			result.MaxConsecutive.Wins = consecutiveWins
		}
		if consecutiveLosses > result.MaxConsecutive.Losses {
			result.MaxConsecutive.Losses = consecutiveLosses
		}

		balance += pnl
		result.EquityCurve = append(result.EquityCurve, balance)
		if balance > highWaterMark {
			highWaterMark = balance
		} else if highWaterMark > 0 {
			drawdown := (highWaterMark - balance) / highWaterMark
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}

		stats, ok := signalStats[signal.PredictedState]
		if !ok {
			stats = &struct{ correct, total int }{}
			signalStats[signal.PredictedState] = stats
		}
		stats.total++
		if wasCorrect {
			stats.correct++
		}

		result.Trades = append(result.Trades, Trade{
			Index:      i,
			Signal:     signal.PredictedState,
			Confidence: signal.Confidence,
			PnL:        pnl,
			WasCorrect: wasCorrect,
		})

		// Feed the realized outcome back so the ranking sees it on the next
		// bar, the same way live trade attribution works.
		if err := r.engine.RecordTradeOutcome(runningProfitFactor(result), pnl); err != nil {
			r.logger.Debug().Err(err).Msg("trade outcome not attributed")
		}
	}

	finalize(result, maxDrawdown, signalStats)
	return result, nil
}

func runningProfitFactor(r *Result) float64 {
	if r.GrossLoss > 0 {
		return r.GrossProfit / r.GrossLoss
	}
	return r.GrossProfit
}

func finalize(r *Result, maxDrawdown float64, signalStats map[models.MarketState]*struct{ correct, total int }) {
	r.NetProfit = r.GrossProfit - r.GrossLoss
	r.ProfitFactor = runningProfitFactor(r)
	r.MaxDrawdown = maxDrawdown * 100

	if r.TotalTrades > 0 {
		r.WinPercentage = float64(r.WinningTrades) / float64(r.TotalTrades) * 100
	}
	for state, stats := range signalStats {
		if stats.total > 0 {
			r.SignalPerformance[state.String()] = float64(stats.correct) / float64(stats.total) * 100
		}
	}
	r.SharpeRatio = sharpe(r.EquityCurve)
}

// sharpe is the annualized ratio over per-trade equity returns, assuming a
// zero risk-free rate and 252 trading days.
func sharpe(equity []float64) float64 {
	if len(equity) < 3 {
		return 0
	}
	var returns []float64
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, (equity[i]-equity[i-1])/equity[i-1])
	}
	m := mean(returns)
	sd := stdDev(returns, m)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(252)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}

// FormatResults creates a human-readable summary of a replay.
func FormatResults(r *Result) string {
	if r == nil {
		return "No backtest results available"
	}

	output := "\n===== BACKTEST RESULTS =====\n"
	output += fmt.Sprintf("Total trades: %d\n", r.TotalTrades)
	output += fmt.Sprintf("Winning trades: %d (%.2f%%)\n", r.WinningTrades, r.WinPercentage)
	output += fmt.Sprintf("Net profit: %.2f pips\n", r.NetProfit)
	output += fmt.Sprintf("Profit factor: %.2f\n", r.ProfitFactor)
	output += fmt.Sprintf("Maximum drawdown: %.2f%%\n", r.MaxDrawdown)
	output += fmt.Sprintf("Sharpe ratio: %.2f\n", r.SharpeRatio)
	output += fmt.Sprintf("Max consecutive wins: %d\n", r.MaxConsecutive.Wins)
	output += fmt.Sprintf("Max consecutive losses: %d\n", r.MaxConsecutive.Losses)

	if len(r.SignalPerformance) > 0 {
		output += "\nHit rate by signal:\n"
		for signal, rate := range r.SignalPerformance {
			output += fmt.Sprintf("- %s: %.2f%%\n", signal, rate)
		}
	}
	return output
}

package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/ring"
	"github.com/Alias1177/Oracle/internal/sphere"
	"github.com/Alias1177/Oracle/internal/trinity"
	"github.com/Alias1177/Oracle/models"
)

// Engine bundles the ring and the trinity core into one explicitly
// constructed, explicitly passed object. Each tick is processed to completion
// under a single lock, so observers never see a half-updated ranking or a
// stale Active selection.
type Engine struct {
	mu      sync.Mutex
	ring    *ring.Ring
	trinity *trinity.Core

	history    []models.MarketState
	historyCap int

	logger zerolog.Logger
}

// New wires a ring and a trinity core together. historyCap bounds the regime
// history used for persistence and the histogram.
func New(r *ring.Ring, t *trinity.Core, historyCap int) *Engine {
	if historyCap <= 0 {
		historyCap = 96
	}
	return &Engine{
		ring:       r,
		trinity:    t,
		historyCap: historyCap,
		logger:     log.With().Str("component", "engine").Logger(),
	}
}

// ProcessTick drives one bar through the whole system: every sphere
// classifies and learns, the ring re-ranks, and trinity re-evaluates its
// selection. Ranking and the Active swap happen atomically.
func (e *Engine) ProcessTick(indicators map[string]float64, ts time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	outcomes := e.ring.Tick(indicators, ts)
	if len(outcomes) == 0 {
		e.logger.Warn().Msg("no sphere produced a classification this tick")
		return fmt.Errorf("no classifications for tick at %s", ts.Format(time.RFC3339))
	}

	regime := consensusState(outcomes)
	e.history = append(e.history, regime)
	if len(e.history) > e.historyCap {
		e.history = e.history[len(e.history)-e.historyCap:]
	}

	ranked := e.ring.Rank(e.trinity.Memory().AnchorNetProfit)
	e.trinity.Evaluate(ranked, e.persistenceLocked(), ts)
	return nil
}

// RecordTradeOutcome attributes a closed trade to the sphere that was Active
// when it was opened.
func (e *Engine) RecordTradeOutcome(profitFactor, netProfit float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.trinity.Active()
	if active == nil {
		return fmt.Errorf("no active sphere to attribute trade to")
	}
	h, ok := e.ring.Sphere(active.SphereID)
	if !ok {
		return fmt.Errorf("active sphere %q no longer in ring", active.SphereID)
	}
	h.RecordTrade(profitFactor, netProfit)
	e.logger.Info().
		Str("sphere", h.Name()).
		Float64("profit_factor", profitFactor).
		Float64("net_profit", netProfit).
		Msg("trade outcome recorded")
	return nil
}

// consensusState is the confidence-weighted vote across every sphere that
// classified this tick.
func consensusState(outcomes []ring.TickOutcome) models.MarketState {
	var votes [models.NumStates]float64
	for _, o := range outcomes {
		weight := o.Classification.Confidence
		if weight <= 0 {
			weight = 1.0 / models.NumStates
		}
		votes[o.Classification.State] += weight
	}
	best := models.Neutral
	for i := range votes {
		if votes[i] > votes[best] {
			best = models.MarketState(i)
		}
	}
	return best
}

// persistenceLocked is the fraction of consecutive ticks where the consensus
// regime did not change. With fewer than two samples nothing has flipped yet.
func (e *Engine) persistenceLocked() float64 {
	if len(e.history) < 2 {
		return 1.0
	}
	same := 0
	for i := 1; i < len(e.history); i++ {
		if e.history[i] == e.history[i-1] {
			same++
		}
	}
	return float64(same) / float64(len(e.history)-1)
}

// Status reports ring health for the dashboard layer.
func (e *Engine) Status() models.StatusReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := 0
	for _, h := range e.ring.Spheres() {
		pending += h.PendingPredictions()
	}
	return models.StatusReport{
		NumSpheres:           e.ring.Size(),
		NumActivePredictions: pending,
		Healthy:              e.ring.Size() > 0 && !e.trinity.Degraded(),
		Degraded:             e.trinity.Degraded(),
	}
}

// Signal returns the promoted sphere's current forecast, or nil before any
// prediction exists.
func (e *Engine) Signal() *models.SignalReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.trinity.Active()
	if active == nil {
		return nil
	}
	h, ok := e.ring.Sphere(active.SphereID)
	if !ok {
		return nil
	}
	p := h.LastPrediction()
	if p == nil {
		return nil
	}
	return &models.SignalReport{
		SphereID:       active.SphereID,
		PredictedState: p.PredictedState,
		Distribution:   p.Distribution,
		Confidence:     p.Confidence,
	}
}

// Regime describes the consensus regime and its recent behavior.
func (e *Engine) Regime() models.RegimeReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := models.RegimeReport{
		CurrentState:  models.Neutral,
		Persistence:   e.persistenceLocked(),
		HistoryLength: len(e.history),
	}
	if len(e.history) > 0 {
		report.CurrentState = e.history[len(e.history)-1]
		for _, s := range e.history {
			report.Histogram[s] += 1.0 / float64(len(e.history))
		}
	}
	return report
}

// Trinity is the read-only projection of the meta-selection layer.
func (e *Engine) Trinity() models.TrinityReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	return models.TrinityReport{
		Memory:   e.trinity.Memory(),
		Active:   e.trinity.Active(),
		Heatmap:  e.trinity.Heatmap(),
		Stable:   !e.trinity.Degraded(),
		Degraded: e.trinity.Degraded(),
	}
}

// Stoic builds the five named checks for the active sphere, falling back to
// the current top-ranked member before any promotion.
func (e *Engine) Stoic() models.StoicReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	var subject *sphere.Hypersphere
	if active := e.trinity.Active(); active != nil {
		if h, ok := e.ring.Sphere(active.SphereID); ok {
			subject = h
		}
	}
	if subject == nil {
		subject = e.ring.Top(e.trinity.Memory().AnchorNetProfit)
		if subject == nil {
			return models.StoicReport{}
		}
	}
	return e.trinity.Stoic(subject, e.persistenceLocked())
}

// Snapshots captures every sphere's persistence envelope.
func (e *Engine) Snapshots() []models.SphereSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	spheres := e.ring.Spheres()
	out := make([]models.SphereSnapshot, 0, len(spheres))
	for _, h := range spheres {
		out = append(out, h.Snapshot())
	}
	return out
}

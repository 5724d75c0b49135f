package trinity

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/sphere"
	"github.com/Alias1177/Oracle/models"
)

// Config holds the selection thresholds. The stability and persistence gates
// are tunable constants, not derived values.
type Config struct {
	StabilityThreshold float64
	PersistenceFloor   float64
	NorthStarTarget    float64
	HeatmapSize        int
	Version            string
}

// DefaultConfig returns the standard gating thresholds.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold: 1.1,
		PersistenceFloor:   0.3,
		NorthStarTarget:    1.0,
		HeatmapSize:        50,
		Version:            "v1",
	}
}

// Core is the meta-selection layer: it consumes the ring's ranked order plus
// realized trade outcomes and decides which sphere's prediction is trusted.
// It is an explicitly constructed, explicitly passed object; there is no
// package-level instance.
type Core struct {
	cfg      Config
	memory   models.TrinityMemory
	active   *models.TrinityActive
	heatmap  []models.HeatmapEntry
	degraded bool
	lastCond float64
	logger   zerolog.Logger
}

// New creates an idle core with cold anchors.
func New(cfg Config) *Core {
	return &Core{
		cfg:      cfg,
		memory:   models.TrinityMemory{LastRegime: models.Neutral, Version: cfg.Version},
		lastCond: 0,
		logger:   log.With().Str("component", "trinity").Logger(),
	}
}

// SphereStability measures one sphere's learned geometry: the 1-norm
// condition number of its five stacked state embeddings. A nearly collinear
// or degenerate embedding matrix fails the gate.
func (c *Core) SphereStability(h *sphere.Hypersphere) (float64, bool) {
	var m matrix
	for _, s := range models.AllStates() {
		m[s] = h.StateEmbedding(s)
	}
	cond := conditionNumber(m)
	return cond, cond < c.cfg.StabilityThreshold
}

// Evaluate runs one selection pass over the ranked spheres. Promotion rules:
//   - NoSelection -> Active: the best-ranked stability-passing sphere wins.
//   - Active -> Active(new): a new top sphere additionally needs the regime
//     persistence above the intuitivity floor.
//   - No passing sphere: the previous Active is held unchanged and the core
//     reports degraded instead of emitting a fabricated signal.
func (c *Core) Evaluate(ranked []*sphere.Hypersphere, persistence float64, ts time.Time) {
	var top *sphere.Hypersphere
	var topCond float64
	for _, h := range ranked {
		cond, ok := c.SphereStability(h)
		if ok {
			top = h
			topCond = cond
			break
		}
	}

	if top == nil {
		c.degraded = true
		c.logger.Warn().Int("spheres", len(ranked)).Msg("no stability-passing sphere, holding previous active")
		return
	}
	c.degraded = false
	c.lastCond = topCond

	switch {
	case c.active == nil:
		c.promote(top, ts)
	case c.active.SphereID != top.ID():
		if persistence > c.cfg.PersistenceFloor {
			c.promote(top, ts)
		} else {
			// Regime is flip-flopping faster than the intuitivity floor
			// allows; keep the incumbent but refresh its live numbers.
			c.refresh(ranked)
		}
	default:
		c.refresh(ranked)
	}

	if c.active != nil {
		c.recordHeat(c.active.ProfitFactor, ts)
	}
}

func (c *Core) promote(h *sphere.Hypersphere, ts time.Time) {
	signal := models.Neutral
	confidence := 0.0
	if p := h.LastPrediction(); p != nil {
		signal = p.PredictedState
		confidence = p.Confidence
	}
	c.active = &models.TrinityActive{
		SphereID:     h.ID(),
		ProfitFactor: h.ProfitFactor(),
		NetProfit:    h.NetProfit(),
		Signal:       signal,
		Confidence:   confidence,
	}
	c.memory.LastRegime = signal

	// Anchors ratchet: normalization never drifts on transient
	// underperformance.
	if h.ProfitFactor() > c.memory.AnchorProfitFactor {
		c.memory.AnchorProfitFactor = h.ProfitFactor()
	}
	if h.NetProfit() > c.memory.AnchorNetProfit {
		c.memory.AnchorNetProfit = h.NetProfit()
	}

	c.logger.Info().
		Str("sphere", h.Name()).
		Str("id", h.ID()).
		Stringer("signal", signal).
		Float64("confidence", confidence).
		Msg("sphere promoted to active")
}

// refresh updates the incumbent's live numbers without changing selection.
func (c *Core) refresh(ranked []*sphere.Hypersphere) {
	if c.active == nil {
		return
	}
	for _, h := range ranked {
		if h.ID() != c.active.SphereID {
			continue
		}
		c.active.ProfitFactor = h.ProfitFactor()
		c.active.NetProfit = h.NetProfit()
		if p := h.LastPrediction(); p != nil {
			c.active.Signal = p.PredictedState
			c.active.Confidence = p.Confidence
		}
		if h.ProfitFactor() > c.memory.AnchorProfitFactor {
			c.memory.AnchorProfitFactor = h.ProfitFactor()
		}
		if h.NetProfit() > c.memory.AnchorNetProfit {
			c.memory.AnchorNetProfit = h.NetProfit()
		}
		return
	}
}

// recordHeat appends one realized performance sample to the bounded heatmap.
func (c *Core) recordHeat(value float64, ts time.Time) {
	below := 0
	for _, e := range c.heatmap {
		if e.Value <= value {
			below++
		}
	}
	percentile := 1.0
	if len(c.heatmap) > 0 {
		percentile = float64(below) / float64(len(c.heatmap))
	}

	color := "red"
	switch {
	case percentile >= 0.66:
		color = "green"
	case percentile >= 0.33:
		color = "yellow"
	}

	c.heatmap = append(c.heatmap, models.HeatmapEntry{
		Timestamp:  ts,
		Value:      value,
		Percentile: percentile,
		Color:      color,
	})
	if len(c.heatmap) > c.cfg.HeatmapSize {
		c.heatmap = c.heatmap[len(c.heatmap)-c.cfg.HeatmapSize:]
	}
}

// Stoic builds the five named checks for the given sphere. Only Stability and
// Intuitivity gate the state machine; the rest are read-only diagnostics.
func (c *Core) Stoic(h *sphere.Hypersphere, persistence float64) models.StoicReport {
	cond, stable := c.SphereStability(h)

	confidence := 0.0
	if p := h.LastPrediction(); p != nil {
		confidence = p.Confidence
	}
	history := float64(h.TransitionHistoryLen())

	return models.StoicReport{
		Stability:   models.StoicCheck{Name: "stability", Value: cond, Passed: stable},
		Tuning:      models.StoicCheck{Name: "tuning", Value: h.NorthStar(), Passed: h.NorthStar() >= c.cfg.NorthStarTarget},
		Opportunity: models.StoicCheck{Name: "opportunity", Value: confidence, Passed: confidence > 1.0/models.NumStates},
		Intuitivity: models.StoicCheck{Name: "intuitivity", Value: persistence, Passed: persistence > c.cfg.PersistenceFloor},
		Creativity:  models.StoicCheck{Name: "creativity", Value: history, Passed: history >= 10},
	}
}

// Memory returns the current memory sub-state.
func (c *Core) Memory() models.TrinityMemory { return c.memory }

// Active returns a copy of the live selection, or nil before any promotion.
func (c *Core) Active() *models.TrinityActive {
	if c.active == nil {
		return nil
	}
	cp := *c.active
	return &cp
}

// Heatmap returns the bounded performance history.
func (c *Core) Heatmap() []models.HeatmapEntry {
	out := make([]models.HeatmapEntry, len(c.heatmap))
	copy(out, c.heatmap)
	return out
}

// Degraded reports whether the last pass found no stability-passing sphere.
func (c *Core) Degraded() bool { return c.degraded }

// LastCondition is the condition number of the most recent passing sphere.
func (c *Core) LastCondition() float64 { return c.lastCond }

package sphere

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/classifier"
	"github.com/Alias1177/Oracle/models"
)

// logLossFloor keeps the log loss finite when the realized state was assigned
// zero probability.
const logLossFloor = 1e-10

// coldStartMinOutcomes is the number of resolved predictions required before
// Accuracy reports anything other than the uninformative 0.5 prior.
const coldStartMinOutcomes = 10

// ConfigError reports an invalid sphere configuration. Construction fails
// fast; nothing validates at runtime.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid sphere config: " + e.Reason
}

// Hypersphere is one competing Markov regime model: a state classifier plus a
// 5x5 transition-count matrix learned online from observed state changes.
// A Hypersphere is owned exclusively by the ring that created it and is never
// written from more than one tick at a time.
type Hypersphere struct {
	id         string
	config     models.SphereConfig
	classifier classifier.Classifier

	counts      [models.NumStates][models.NumStates]float64
	recent      []models.Transition
	predictions []*models.Prediction

	profitFactor float64
	netProfit    float64
	northStar    float64
	rank         int

	logger zerolog.Logger
}

// New builds a hypersphere from an immutable config, seeding every transition
// cell with the configured prior strength.
func New(cfg models.SphereConfig) (*Hypersphere, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	cls, err := classifier.New(classifier.Kind(cfg.Classifier), cfg.ClassifierParams)
	if err != nil {
		return nil, err
	}

	h := &Hypersphere{
		id:         uuid.NewString(),
		config:     cfg,
		classifier: cls,
		logger:     log.With().Str("component", "hypersphere").Str("sphere", cfg.Name).Logger(),
	}
	for i := range h.counts {
		for j := range h.counts[i] {
			h.counts[i][j] = cfg.PriorStrength
		}
	}
	return h, nil
}

func validate(cfg models.SphereConfig) error {
	if cfg.Name == "" {
		return &ConfigError{Reason: "name must not be empty"}
	}
	if cfg.LookbackWindow <= 0 {
		return &ConfigError{Reason: "lookback_window must be positive"}
	}
	if cfg.DecayFactor <= 0 || cfg.DecayFactor > 1 {
		return &ConfigError{Reason: "decay_factor must be in (0, 1]"}
	}
	if cfg.PriorStrength < 0 {
		return &ConfigError{Reason: "prior_strength must be non-negative"}
	}
	return nil
}

func (h *Hypersphere) ID() string                  { return h.id }
func (h *Hypersphere) Config() models.SphereConfig { return h.config }
func (h *Hypersphere) Name() string                { return h.config.Name }

// ClassifyState delegates to the owned classifier. No state mutation.
func (h *Hypersphere) ClassifyState(indicators map[string]float64) (models.StateClassification, error) {
	return h.classifier.Classify(indicators)
}

// Row returns the normalized transition row for state: counts divided by the
// row sum, with an all-zero row degenerately treated as uniform.
func (h *Hypersphere) Row(state models.MarketState) [models.NumStates]float64 {
	var row [models.NumStates]float64
	var sum float64
	for j, c := range h.counts[state] {
		row[j] = c
		sum += c
	}
	if sum <= 0 {
		h.logger.Debug().Stringer("state", state).Msg("degenerate transition row, substituting uniform")
		for j := range row {
			row[j] = 1.0 / models.NumStates
		}
		return row
	}
	for j := range row {
		row[j] /= sum
	}
	return row
}

// TransitionMatrix returns all five normalized rows.
func (h *Hypersphere) TransitionMatrix() [models.NumStates][models.NumStates]float64 {
	var m [models.NumStates][models.NumStates]float64
	for _, s := range models.AllStates() {
		m[s] = h.Row(s)
	}
	return m
}

// TransitionCounts returns the raw (decayed) count matrix.
func (h *Hypersphere) TransitionCounts() [models.NumStates][models.NumStates]float64 {
	return h.counts
}

// PredictNextState reads the normalized row for the current state, takes the
// argmax as the forecast and appends an outcome-less Prediction. Repeated
// calls without an intervening ObserveTransition never mutate the counts.
func (h *Hypersphere) PredictNextState(current models.MarketState) *models.Prediction {
	row := h.Row(current)
	best := models.StrongBear
	for j := range row {
		if row[j] > row[best] {
			best = models.MarketState(j)
		}
	}
	p := &models.Prediction{
		Timestamp:      time.Now(),
		CurrentState:   current,
		Distribution:   row,
		PredictedState: best,
		Confidence:     row[best],
	}
	h.predictions = append(h.predictions, p)
	return p
}

// ObserveTransition records one observed state change: decays all counts by
// the configured factor, increments the observed cell, trims the bounded
// transition history and back-fills the newest outcome-less prediction.
func (h *Hypersphere) ObserveTransition(from, to models.MarketState, ts time.Time) {
	if h.config.DecayFactor < 1 {
		for i := range h.counts {
			for j := range h.counts[i] {
				h.counts[i][j] *= h.config.DecayFactor
			}
		}
	}
	h.counts[from][to]++

	h.recent = append(h.recent, models.Transition{From: from, To: to, Timestamp: ts})
	if len(h.recent) > h.config.LookbackWindow {
		h.recent = h.recent[len(h.recent)-h.config.LookbackWindow:]
	}

	// Resolve the newest unresolved prediction, scanning past any already
	// resolved ones. Outcomes are written exactly once and never revisited.
	for i := len(h.predictions) - 1; i >= 0; i-- {
		p := h.predictions[i]
		if p.Resolved {
			continue
		}
		p.Resolved = true
		p.ActualState = to
		p.WasCorrect = p.PredictedState == to
		p.LogLoss = -math.Log(math.Max(p.Distribution[to], logLossFloor))
		break
	}
}

// Accuracy returns the fraction of the last window resolved predictions that
// were correct. With fewer than ten outcomes it returns the 0.5 cold-start
// prior.
func (h *Hypersphere) Accuracy(window int) float64 {
	correct, resolved := 0, 0
	for i := len(h.predictions) - 1; i >= 0 && resolved < window; i-- {
		p := h.predictions[i]
		if !p.Resolved {
			continue
		}
		resolved++
		if p.WasCorrect {
			correct++
		}
	}
	if resolved < coldStartMinOutcomes {
		return 0.5
	}
	return float64(correct) / float64(resolved)
}

// StateEmbedding projects the normalized row for state onto the unit
// hypersphere: element-wise square root, re-normalized to unit Euclidean
// length. Distances between embeddings approximate the Hellinger distance
// between the underlying distributions.
func (h *Hypersphere) StateEmbedding(state models.MarketState) [models.NumStates]float64 {
	row := h.Row(state)
	var emb [models.NumStates]float64
	var norm float64
	for j := range row {
		emb[j] = math.Sqrt(row[j])
		norm += emb[j] * emb[j]
	}
	norm = math.Sqrt(norm)
	if norm <= 0 {
		for j := range emb {
			emb[j] = 1.0 / math.Sqrt(models.NumStates)
		}
		return emb
	}
	for j := range emb {
		emb[j] /= norm
	}
	return emb
}

// CurrentPosition summarizes where the market sits in this sphere's learned
// geometry: the distribution-weighted sum of state embeddings re-normalized
// to unit length. Diagnostics only; ranking never reads it.
func (h *Hypersphere) CurrentPosition(distribution [models.NumStates]float64) [models.NumStates]float64 {
	var pos [models.NumStates]float64
	for _, s := range models.AllStates() {
		emb := h.StateEmbedding(s)
		for j := range emb {
			pos[j] += distribution[s] * emb[j]
		}
	}
	var norm float64
	for j := range pos {
		norm += pos[j] * pos[j]
	}
	norm = math.Sqrt(norm)
	if norm <= 0 {
		for j := range pos {
			pos[j] = 1.0 / math.Sqrt(models.NumStates)
		}
		return pos
	}
	for j := range pos {
		pos[j] /= norm
	}
	return pos
}

// RecordTrade attributes one closed trade to this sphere: the latest profit
// factor and the running net profit.
func (h *Hypersphere) RecordTrade(profitFactor, netProfit float64) {
	h.profitFactor = profitFactor
	h.netProfit += netProfit
}

func (h *Hypersphere) ProfitFactor() float64 { return h.profitFactor }
func (h *Hypersphere) NetProfit() float64    { return h.netProfit }

func (h *Hypersphere) NorthStar() float64     { return h.northStar }
func (h *Hypersphere) SetNorthStar(v float64) { h.northStar = v }
func (h *Hypersphere) Rank() int              { return h.rank }
func (h *Hypersphere) SetRank(r int)          { h.rank = r }

// LastPrediction returns the newest prediction, or nil before the first one.
func (h *Hypersphere) LastPrediction() *models.Prediction {
	if len(h.predictions) == 0 {
		return nil
	}
	return h.predictions[len(h.predictions)-1]
}

// PendingPredictions counts forecasts still waiting for their outcome.
func (h *Hypersphere) PendingPredictions() int {
	pending := 0
	for _, p := range h.predictions {
		if !p.Resolved {
			pending++
		}
	}
	return pending
}

// TransitionHistoryLen is the size of the bounded recent-transition window.
func (h *Hypersphere) TransitionHistoryLen() int {
	return len(h.recent)
}

package ring

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Oracle/internal/classifier"
	"github.com/Alias1177/Oracle/internal/sphere"
	"github.com/Alias1177/Oracle/models"
)

// RankingConfig holds the North-Star weighting. The 0.7/0.3 split and the
// reference profit scale are tunable, not derived.
type RankingConfig struct {
	ProfitFactorWeight float64
	NetProfitWeight    float64
	NetProfitReference float64
}

// DefaultRankingConfig returns the standard North-Star weighting.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		ProfitFactorWeight: 0.7,
		NetProfitWeight:    0.3,
		NetProfitReference: 1000.0,
	}
}

// TickOutcome is one sphere's result for a single tick.
type TickOutcome struct {
	SphereID       string
	Classification models.StateClassification
	Prediction     *models.Prediction
}

// Ring is the process-wide ensemble: an id-keyed set of hyperspheres driven
// together through classification, transition updates and ranking. A ring
// and its spheres are owned by exactly one tick loop.
type Ring struct {
	cfg       RankingConfig
	spheres   map[string]*sphere.Hypersphere
	lastState map[string]models.MarketState
	logger    zerolog.Logger
}

// New creates an empty ring.
func New(cfg RankingConfig) *Ring {
	return &Ring{
		cfg:       cfg,
		spheres:   make(map[string]*sphere.Hypersphere),
		lastState: make(map[string]models.MarketState),
		logger:    log.With().Str("component", "ring").Logger(),
	}
}

// Add constructs a new hypersphere from its config and joins it to the ring.
func (r *Ring) Add(cfg models.SphereConfig) (*sphere.Hypersphere, error) {
	h, err := sphere.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("adding sphere %q: %w", cfg.Name, err)
	}
	r.spheres[h.ID()] = h
	r.logger.Info().Str("sphere", cfg.Name).Str("id", h.ID()).Msg("sphere joined ring")
	return h, nil
}

// Adopt joins an already-built sphere, e.g. one restored from persistence.
func (r *Ring) Adopt(h *sphere.Hypersphere) {
	r.spheres[h.ID()] = h
}

// Remove retires a sphere. Retirement only ever happens through this explicit
// call, never as a side effect of ranking.
func (r *Ring) Remove(id string) error {
	h, ok := r.spheres[id]
	if !ok {
		return fmt.Errorf("no sphere with id %q", id)
	}
	delete(r.spheres, id)
	delete(r.lastState, id)
	r.logger.Info().Str("sphere", h.Name()).Str("id", id).Msg("sphere retired")
	return nil
}

// Sphere looks a member up by id.
func (r *Ring) Sphere(id string) (*sphere.Hypersphere, bool) {
	h, ok := r.spheres[id]
	return h, ok
}

// Size is the current member count.
func (r *Ring) Size() int { return len(r.spheres) }

// Spheres returns the members ordered by id for reproducible iteration.
func (r *Ring) Spheres() []*sphere.Hypersphere {
	out := make([]*sphere.Hypersphere, 0, len(r.spheres))
	for _, h := range r.spheres {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Tick runs one bar across every member: classify the snapshot, feed the
// observed transition into the matrix, then forecast the next state. A
// sphere whose classifier is missing an input is skipped for the tick and
// the rest of the ring carries on.
func (r *Ring) Tick(indicators map[string]float64, ts time.Time) []TickOutcome {
	outcomes := make([]TickOutcome, 0, len(r.spheres))
	for _, h := range r.Spheres() {
		classification, err := h.ClassifyState(indicators)
		if err != nil {
			if classifier.IsMissingIndicator(err) {
				r.logger.Warn().Str("sphere", h.Name()).Err(err).Msg("skipping sphere for this tick")
				continue
			}
			r.logger.Error().Str("sphere", h.Name()).Err(err).Msg("classification failed")
			continue
		}

		if prev, ok := r.lastState[h.ID()]; ok {
			h.ObserveTransition(prev, classification.State, ts)
		}
		r.lastState[h.ID()] = classification.State

		prediction := h.PredictNextState(classification.State)
		outcomes = append(outcomes, TickOutcome{
			SphereID:       h.ID(),
			Classification: classification,
			Prediction:     prediction,
		})
	}
	return outcomes
}

// northStar computes the ranking scalar for one sphere. Net profit is scaled
// into the same order of magnitude as the profit factor using the trinity
// memory anchor, falling back to the fixed reference when the anchor is cold.
func (r *Ring) northStar(h *sphere.Hypersphere, anchorNetProfit float64) float64 {
	scale := anchorNetProfit
	if scale < r.cfg.NetProfitReference {
		scale = r.cfg.NetProfitReference
	}
	normalized := h.NetProfit() / scale
	return r.cfg.ProfitFactorWeight*h.ProfitFactor() + r.cfg.NetProfitWeight*normalized
}

// Rank recomputes every member's North-Star score and returns the members in
// descending order. The tie-break chain (score, then 50-window accuracy, then
// lower id) is total, so identical inputs always produce identical order.
func (r *Ring) Rank(anchorNetProfit float64) []*sphere.Hypersphere {
	ranked := r.Spheres()
	for _, h := range ranked {
		h.SetNorthStar(r.northStar(h, anchorNetProfit))
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.NorthStar() != b.NorthStar() {
			return a.NorthStar() > b.NorthStar()
		}
		accA, accB := a.Accuracy(50), b.Accuracy(50)
		if accA != accB {
			return accA > accB
		}
		return a.ID() < b.ID()
	})
	for i, h := range ranked {
		h.SetRank(i + 1)
	}
	return ranked
}

// Top returns the member that currently wins the ranking without storing
// scores or rank positions on any sphere, for read-only callers. Uses the
// same tie-break chain as Rank.
func (r *Ring) Top(anchorNetProfit float64) *sphere.Hypersphere {
	var best *sphere.Hypersphere
	var bestScore, bestAcc float64
	for _, h := range r.Spheres() {
		score := r.northStar(h, anchorNetProfit)
		acc := h.Accuracy(50)
		switch {
		case best == nil:
		case score != bestScore:
			if score < bestScore {
				continue
			}
		case acc <= bestAcc:
			// Spheres() iterates in id order, so the incumbent already
			// carries the lower id on a full tie.
			continue
		}
		best, bestScore, bestAcc = h, score, acc
	}
	return best
}

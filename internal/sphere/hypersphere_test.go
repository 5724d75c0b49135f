package sphere

import (
	"math"
	"testing"
	"time"

	"github.com/Alias1177/Oracle/models"
)

func testConfig(prior, decay float64) models.SphereConfig {
	return models.SphereConfig{
		Name:           "test-sphere",
		Classifier:     "momentum",
		LookbackWindow: 50,
		DecayFactor:    decay,
		Timeframe:      "15min",
		PriorStrength:  prior,
	}
}

func mustNew(t *testing.T, cfg models.SphereConfig) *Hypersphere {
	t.Helper()
	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return h
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SphereConfig)
	}{
		{"empty name", func(c *models.SphereConfig) { c.Name = "" }},
		{"zero lookback", func(c *models.SphereConfig) { c.LookbackWindow = 0 }},
		{"negative lookback", func(c *models.SphereConfig) { c.LookbackWindow = -5 }},
		{"zero decay", func(c *models.SphereConfig) { c.DecayFactor = 0 }},
		{"decay above one", func(c *models.SphereConfig) { c.DecayFactor = 1.5 }},
		{"negative prior", func(c *models.SphereConfig) { c.PriorStrength = -1 }},
		{"unknown classifier", func(c *models.SphereConfig) { c.Classifier = "tarot" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(1.0, 1.0)
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("New() = nil error, want config error")
			}
		})
	}
}

func TestObservedTransitionCounts(t *testing.T) {
	// Bull -> Bull -> Bull -> Bear -> Bull: four transitions on top of a
	// prior of 1.0 in every cell.
	h := mustNew(t, testConfig(1.0, 1.0))

	seq := []models.MarketState{models.Bull, models.Bull, models.Bull, models.Bear, models.Bull}
	ts := time.Now()
	for i := 1; i < len(seq); i++ {
		h.ObserveTransition(seq[i-1], seq[i], ts.Add(time.Duration(i)*time.Minute))
	}

	counts := h.TransitionCounts()
	if got, want := counts[models.Bull][models.Bull], 3.0; got != want {
		t.Errorf("counts[Bull][Bull] = %v, want %v", got, want)
	}
	if got, want := counts[models.Bull][models.Bear], 2.0; got != want {
		t.Errorf("counts[Bull][Bear] = %v, want %v", got, want)
	}
	if got, want := counts[models.Bear][models.Bull], 2.0; got != want {
		t.Errorf("counts[Bear][Bull] = %v, want %v", got, want)
	}

	p := h.PredictNextState(models.Bull)
	if p.PredictedState != models.Bull {
		t.Errorf("PredictNextState(Bull) = %v, want Bull", p.PredictedState)
	}
}

func TestTransitionMatrixRowsSumToOne(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Hypersphere)
	}{
		{"cold sphere uniform fallback", func(h *Hypersphere) {}},
		{"after observations", func(h *Hypersphere) {
			ts := time.Now()
			h.ObserveTransition(models.Bull, models.Bull, ts)
			h.ObserveTransition(models.Bull, models.Bear, ts)
			h.ObserveTransition(models.Neutral, models.Bull, ts)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mustNew(t, testConfig(0, 1.0))
			tt.setup(h)

			matrix := h.TransitionMatrix()
			for _, s := range models.AllStates() {
				var sum float64
				for _, v := range matrix[s] {
					if v < 0 {
						t.Errorf("row %v has negative probability %v", s, v)
					}
					sum += v
				}
				if math.Abs(sum-1.0) > 1e-9 {
					t.Errorf("row %v sums to %v, want 1.0", s, sum)
				}
			}
		})
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 0.9))
	h.ObserveTransition(models.Bull, models.Bull, time.Now())
	before := h.TransitionCounts()

	for i := 0; i < 5; i++ {
		h.PredictNextState(models.Bull)
	}
	if h.TransitionCounts() != before {
		t.Error("PredictNextState mutated transition counts")
	}
}

func TestPredictionDistributionSumsToOne(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 1.0))
	p := h.PredictNextState(models.Neutral)

	var sum float64
	for _, v := range p.Distribution {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("prediction distribution sums to %v, want 1.0", sum)
	}
	if p.Confidence != p.Distribution[p.PredictedState] {
		t.Errorf("confidence %v != distribution[predicted] %v", p.Confidence, p.Distribution[p.PredictedState])
	}
}

func TestOutcomeBackfill(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 1.0))
	ts := time.Now()

	// Teach the sphere a strong Bull -> Bull tendency.
	for i := 0; i < 10; i++ {
		h.ObserveTransition(models.Bull, models.Bull, ts)
	}

	p := h.PredictNextState(models.Bull)
	if p.Resolved {
		t.Fatal("fresh prediction already resolved")
	}

	h.ObserveTransition(models.Bull, models.Bear, ts)
	if !p.Resolved {
		t.Fatal("prediction not resolved by ObserveTransition")
	}
	if p.ActualState != models.Bear {
		t.Errorf("actual state = %v, want Bear", p.ActualState)
	}
	if p.WasCorrect {
		t.Error("prediction marked correct, predicted Bull but observed Bear")
	}
	wantLoss := -math.Log(p.Distribution[models.Bear])
	if math.Abs(p.LogLoss-wantLoss) > 1e-12 {
		t.Errorf("log loss = %v, want %v", p.LogLoss, wantLoss)
	}

	// Outcomes are written once; a later transition must not touch it.
	h.ObserveTransition(models.Bear, models.Bull, ts)
	if p.ActualState != models.Bear {
		t.Error("resolved prediction was retroactively altered")
	}
}

func TestBackfillReachesOlderPending(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 1.0))
	ts := time.Now()

	// Two forecasts in flight: the newest resolves first, then the next
	// transition reaches past it to the older one.
	p1 := h.PredictNextState(models.Bull)
	p2 := h.PredictNextState(models.Bull)
	if h.PendingPredictions() != 2 {
		t.Fatalf("PendingPredictions() = %d, want 2", h.PendingPredictions())
	}

	h.ObserveTransition(models.Bull, models.Bear, ts)
	if !p2.Resolved || p1.Resolved {
		t.Fatalf("resolution order wrong: p1=%v p2=%v", p1.Resolved, p2.Resolved)
	}

	h.ObserveTransition(models.Bear, models.Bull, ts)
	if !p1.Resolved {
		t.Fatal("older pending prediction never resolved")
	}
	if p1.ActualState != models.Bull {
		t.Errorf("older prediction outcome = %v, want Bull", p1.ActualState)
	}
	if h.PendingPredictions() != 0 {
		t.Errorf("PendingPredictions() = %d, want 0", h.PendingPredictions())
	}
}

func TestAccuracyColdStart(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 1.0))
	if got := h.Accuracy(50); got != 0.5 {
		t.Errorf("Accuracy on cold sphere = %v, want 0.5", got)
	}

	// Nine resolved outcomes still sit below the cold-start floor.
	ts := time.Now()
	for i := 0; i < 9; i++ {
		h.PredictNextState(models.Bull)
		h.ObserveTransition(models.Bull, models.Bull, ts)
	}
	if got := h.Accuracy(50); got != 0.5 {
		t.Errorf("Accuracy with 9 outcomes = %v, want 0.5", got)
	}
}

func TestAccuracyAfterWarmup(t *testing.T) {
	h := mustNew(t, testConfig(0, 1.0))
	ts := time.Now()

	// First prediction comes off a uniform row (argmax ties resolve to the
	// lowest index) and misses; every later one predicts Bull correctly.
	for i := 0; i < 12; i++ {
		h.PredictNextState(models.Bull)
		h.ObserveTransition(models.Bull, models.Bull, ts)
	}

	want := 11.0 / 12.0
	if got := h.Accuracy(50); math.Abs(got-want) > 1e-9 {
		t.Errorf("Accuracy = %v, want %v", got, want)
	}
}

func TestDecayFactor(t *testing.T) {
	h := mustNew(t, testConfig(0, 0.5))
	ts := time.Now()

	h.ObserveTransition(models.Bull, models.Bull, ts)
	h.ObserveTransition(models.Bull, models.Bear, ts)

	counts := h.TransitionCounts()
	if got, want := counts[models.Bull][models.Bull], 0.5; got != want {
		t.Errorf("decayed counts[Bull][Bull] = %v, want %v", got, want)
	}
	if got, want := counts[models.Bull][models.Bear], 1.0; got != want {
		t.Errorf("counts[Bull][Bear] = %v, want %v", got, want)
	}
}

func TestRecentTransitionsBounded(t *testing.T) {
	cfg := testConfig(0, 1.0)
	cfg.LookbackWindow = 10
	h := mustNew(t, cfg)

	ts := time.Now()
	for i := 0; i < 25; i++ {
		h.ObserveTransition(models.Bull, models.Bull, ts.Add(time.Duration(i)*time.Minute))
	}
	if got := h.TransitionHistoryLen(); got != 10 {
		t.Errorf("TransitionHistoryLen() = %d, want 10", got)
	}
}

func TestStateEmbeddingUnitNorm(t *testing.T) {
	h := mustNew(t, testConfig(0, 1.0))
	ts := time.Now()
	h.ObserveTransition(models.Bull, models.Bull, ts)
	h.ObserveTransition(models.Bull, models.Bear, ts)
	h.ObserveTransition(models.Bull, models.Neutral, ts)

	for _, s := range models.AllStates() {
		emb := h.StateEmbedding(s)
		var norm float64
		for _, v := range emb {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if math.Abs(norm-1.0) > 1e-9 {
			t.Errorf("embedding norm for %v = %v, want 1.0", s, norm)
		}
	}
}

func TestCurrentPositionUnitNorm(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 1.0))
	pos := h.CurrentPosition([models.NumStates]float64{0.1, 0.2, 0.4, 0.2, 0.1})

	var norm float64
	for _, v := range pos {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("position norm = %v, want 1.0", norm)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	h := mustNew(t, testConfig(1.0, 0.95))
	ts := time.Now()
	h.ObserveTransition(models.Bull, models.Bull, ts)
	h.ObserveTransition(models.Bull, models.Bear, ts)
	h.ObserveTransition(models.Neutral, models.StrongBull, ts)
	h.RecordTrade(1.4, 250)

	data, err := h.EncodeSnapshot()
	if err != nil {
		t.Fatalf("EncodeSnapshot() error: %v", err)
	}
	restored, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error: %v", err)
	}

	if restored.ID() != h.ID() {
		t.Errorf("restored id = %q, want %q", restored.ID(), h.ID())
	}
	if restored.TransitionMatrix() != h.TransitionMatrix() {
		t.Error("restored transition matrix differs from original")
	}
	if restored.ProfitFactor() != h.ProfitFactor() || restored.NetProfit() != h.NetProfit() {
		t.Error("restored performance differs from original")
	}
}

func TestSnapshotVersionCheck(t *testing.T) {
	snap := mustNew(t, testConfig(1.0, 1.0)).Snapshot()
	snap.Version = 99
	if _, err := FromSnapshot(snap); err == nil {
		t.Error("FromSnapshot() with unknown version = nil error, want failure")
	}
}

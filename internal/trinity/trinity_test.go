package trinity

import (
	"math"
	"testing"
	"time"

	"github.com/Alias1177/Oracle/internal/sphere"
	"github.com/Alias1177/Oracle/models"
)

// stableSphere has pure self-transition counts, so every state embedding is a
// distinct unit basis vector and the embedding matrix is the identity.
func stableSphere(t *testing.T, name string) *sphere.Hypersphere {
	t.Helper()
	h, err := sphere.New(models.SphereConfig{
		Name:           name,
		Classifier:     "momentum",
		LookbackWindow: 50,
		DecayFactor:    1.0,
		Timeframe:      "15min",
		PriorStrength:  0,
	})
	if err != nil {
		t.Fatalf("sphere.New() error: %v", err)
	}
	ts := time.Now()
	for _, s := range models.AllStates() {
		h.ObserveTransition(s, s, ts)
	}
	return h
}

// unstableSphere keeps the uniform prior, so all five embeddings coincide and
// the embedding matrix is singular.
func unstableSphere(t *testing.T, name string) *sphere.Hypersphere {
	t.Helper()
	h, err := sphere.New(models.SphereConfig{
		Name:           name,
		Classifier:     "momentum",
		LookbackWindow: 50,
		DecayFactor:    1.0,
		Timeframe:      "15min",
		PriorStrength:  1.0,
	})
	if err != nil {
		t.Fatalf("sphere.New() error: %v", err)
	}
	return h
}

func TestSphereStability(t *testing.T) {
	c := New(DefaultConfig())

	cond, ok := c.SphereStability(stableSphere(t, "diag"))
	if !ok {
		t.Errorf("diagonal sphere failed the gate, cond = %v", cond)
	}
	if math.Abs(cond-1.0) > 1e-9 {
		t.Errorf("diagonal sphere cond = %v, want 1.0", cond)
	}

	cond, ok = c.SphereStability(unstableSphere(t, "uniform"))
	if ok {
		t.Error("uniform sphere passed the gate")
	}
	if !math.IsInf(cond, 1) {
		t.Errorf("uniform sphere cond = %v, want +Inf", cond)
	}
}

func TestPromotionFromIdle(t *testing.T) {
	c := New(DefaultConfig())
	h := stableSphere(t, "candidate")
	h.RecordTrade(1.8, 400)
	h.PredictNextState(models.Bull)

	c.Evaluate([]*sphere.Hypersphere{h}, 0.0, time.Now())

	active := c.Active()
	if active == nil {
		t.Fatal("no sphere promoted from idle")
	}
	if active.SphereID != h.ID() {
		t.Errorf("active = %s, want %s", active.SphereID, h.ID())
	}
	if active.Signal != models.Bull {
		t.Errorf("active signal = %v, want Bull", active.Signal)
	}
	if c.Degraded() {
		t.Error("core degraded after a successful promotion")
	}
	if c.Memory().LastRegime != models.Bull {
		t.Errorf("memory regime = %v, want Bull", c.Memory().LastRegime)
	}
}

func TestPromotionSkipsUnstableLeader(t *testing.T) {
	c := New(DefaultConfig())
	leader := unstableSphere(t, "leader")
	runner := stableSphere(t, "runner-up")
	runner.PredictNextState(models.Neutral)

	c.Evaluate([]*sphere.Hypersphere{leader, runner}, 0.0, time.Now())

	active := c.Active()
	if active == nil {
		t.Fatal("no promotion despite a stability-passing runner-up")
	}
	if active.SphereID != runner.ID() {
		t.Errorf("active = %s, want the runner-up %s", active.SphereID, runner.ID())
	}
}

func TestReplacementNeedsPersistence(t *testing.T) {
	c := New(DefaultConfig())
	incumbent := stableSphere(t, "incumbent")
	incumbent.PredictNextState(models.Bull)
	challenger := stableSphere(t, "challenger")
	challenger.PredictNextState(models.Bear)

	ts := time.Now()
	c.Evaluate([]*sphere.Hypersphere{incumbent}, 1.0, ts)

	// Choppy regime: the incumbent holds even though the challenger ranks
	// above it.
	c.Evaluate([]*sphere.Hypersphere{challenger, incumbent}, 0.1, ts)
	if got := c.Active().SphereID; got != incumbent.ID() {
		t.Fatalf("active = %s after choppy tick, want incumbent %s", got, incumbent.ID())
	}

	// Persistent regime: the challenger takes over.
	c.Evaluate([]*sphere.Hypersphere{challenger, incumbent}, 0.8, ts)
	if got := c.Active().SphereID; got != challenger.ID() {
		t.Errorf("active = %s after persistent tick, want challenger %s", got, challenger.ID())
	}
	if c.Memory().LastRegime != models.Bear {
		t.Errorf("memory regime = %v, want Bear", c.Memory().LastRegime)
	}
}

func TestDegradedHoldsPreviousActive(t *testing.T) {
	c := New(DefaultConfig())
	good := stableSphere(t, "good")
	good.PredictNextState(models.Bull)

	ts := time.Now()
	c.Evaluate([]*sphere.Hypersphere{good}, 1.0, ts)
	if c.Active() == nil {
		t.Fatal("no initial promotion")
	}

	c.Evaluate([]*sphere.Hypersphere{unstableSphere(t, "bad")}, 1.0, ts)
	if !c.Degraded() {
		t.Error("core not degraded with no passing sphere")
	}
	active := c.Active()
	if active == nil || active.SphereID != good.ID() {
		t.Error("previous active not held through the degraded pass")
	}

	// Recovery clears the flag.
	c.Evaluate([]*sphere.Hypersphere{good}, 1.0, ts)
	if c.Degraded() {
		t.Error("degraded flag not cleared after recovery")
	}
}

func TestDegradedWithEmptyRanking(t *testing.T) {
	c := New(DefaultConfig())
	c.Evaluate(nil, 1.0, time.Now())
	if !c.Degraded() {
		t.Error("core not degraded on an empty ranking")
	}
	if c.Active() != nil {
		t.Error("active fabricated from an empty ranking")
	}
}

func TestAnchorsRatchet(t *testing.T) {
	c := New(DefaultConfig())
	ts := time.Now()

	strong := stableSphere(t, "strong")
	strong.RecordTrade(2.0, 500)
	c.Evaluate([]*sphere.Hypersphere{strong}, 1.0, ts)

	mem := c.Memory()
	if mem.AnchorProfitFactor != 2.0 || mem.AnchorNetProfit != 500 {
		t.Fatalf("anchors = (%v, %v), want (2.0, 500)", mem.AnchorProfitFactor, mem.AnchorNetProfit)
	}

	// A weaker successor never pulls the anchors down.
	weak := stableSphere(t, "weak")
	weak.RecordTrade(1.1, 50)
	c.Evaluate([]*sphere.Hypersphere{weak, strong}, 1.0, ts)

	mem = c.Memory()
	if mem.AnchorProfitFactor != 2.0 || mem.AnchorNetProfit != 500 {
		t.Errorf("anchors moved down to (%v, %v)", mem.AnchorProfitFactor, mem.AnchorNetProfit)
	}

	// A stronger result ratchets them up.
	weak.RecordTrade(2.5, 800)
	c.Evaluate([]*sphere.Hypersphere{weak, strong}, 1.0, ts)
	mem = c.Memory()
	if mem.AnchorProfitFactor != 2.5 || mem.AnchorNetProfit != 850 {
		t.Errorf("anchors = (%v, %v), want (2.5, 850)", mem.AnchorProfitFactor, mem.AnchorNetProfit)
	}
}

func TestHeatmapBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeatmapSize = 5
	c := New(cfg)
	h := stableSphere(t, "heat")
	h.PredictNextState(models.Bull)

	ts := time.Now()
	for i := 0; i < 12; i++ {
		c.Evaluate([]*sphere.Hypersphere{h}, 1.0, ts.Add(time.Duration(i)*time.Minute))
	}

	heat := c.Heatmap()
	if len(heat) != 5 {
		t.Fatalf("heatmap length = %d, want 5", len(heat))
	}
	for _, e := range heat {
		if e.Percentile < 0 || e.Percentile > 1 {
			t.Errorf("percentile %v outside [0, 1]", e.Percentile)
		}
		switch e.Color {
		case "green", "yellow", "red":
		default:
			t.Errorf("unknown heatmap color %q", e.Color)
		}
	}
}

func TestStoicReport(t *testing.T) {
	c := New(DefaultConfig())
	h := stableSphere(t, "stoic")
	h.SetNorthStar(1.4)
	h.PredictNextState(models.Bull)

	report := c.Stoic(h, 0.6)

	if !report.Stability.Passed {
		t.Error("stability check failed for a diagonal sphere")
	}
	if !report.Tuning.Passed || report.Tuning.Value != 1.4 {
		t.Errorf("tuning = (%v, %v), want passing 1.4", report.Tuning.Value, report.Tuning.Passed)
	}
	// One observation per state gives a certain self-transition forecast.
	if !report.Opportunity.Passed || report.Opportunity.Value != 1.0 {
		t.Errorf("opportunity = (%v, %v), want passing 1.0", report.Opportunity.Value, report.Opportunity.Passed)
	}
	if !report.Intuitivity.Passed {
		t.Error("intuitivity failed at persistence 0.6")
	}
	// Five recorded transitions sit below the ten-sample floor.
	if report.Creativity.Passed || report.Creativity.Value != 5 {
		t.Errorf("creativity = (%v, %v), want failing 5", report.Creativity.Value, report.Creativity.Passed)
	}
}

func TestStoicOpportunityAtChanceFails(t *testing.T) {
	c := New(DefaultConfig())
	h := unstableSphere(t, "chance")
	h.PredictNextState(models.Neutral)

	report := c.Stoic(h, 0.6)
	// A uniform forecast's confidence is exactly 1/5, which is not an edge.
	if report.Opportunity.Passed {
		t.Errorf("opportunity passed at chance confidence %v", report.Opportunity.Value)
	}
}

package classifier

import (
	"testing"

	"github.com/Alias1177/Oracle/models"
)

func fullSnapshot() map[string]float64 {
	return map[string]float64{
		"rsi":        50,
		"rsi_7":      50,
		"rsi_14":     50,
		"rsi_28":     50,
		"roc":        0,
		"momentum":   0,
		"atr_ratio":  1.0,
		"bb_width":   0.02,
		"adx":        25,
		"plus_di":    20,
		"minus_di":   20,
		"stoch_k":    50,
		"stoch_d":    50,
		"williams_r": -50,
		"cmf":        0,
	}
}

func withValues(overrides map[string]float64) map[string]float64 {
	snapshot := fullSnapshot()
	for k, v := range overrides {
		snapshot[k] = v
	}
	return snapshot
}

func TestClassifierStates(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		params     map[string]float64
		indicators map[string]float64
		expected   models.MarketState
	}{
		{
			name:       "momentum strong uptrend",
			kind:       KindMomentum,
			indicators: withValues(map[string]float64{"rsi": 85, "roc": 0.06, "momentum": 0.06}),
			expected:   models.StrongBull,
		},
		{
			name:       "momentum strong downtrend",
			kind:       KindMomentum,
			indicators: withValues(map[string]float64{"rsi": 15, "roc": -0.06, "momentum": -0.06}),
			expected:   models.StrongBear,
		},
		{
			name:       "momentum flat market",
			kind:       KindMomentum,
			indicators: fullSnapshot(),
			expected:   models.Neutral,
		},
		{
			name:       "volatility directional expansion",
			kind:       KindVolatility,
			indicators: withValues(map[string]float64{"adx": 40, "plus_di": 30, "minus_di": 10, "atr_ratio": 1.6, "bb_width": 0.05}),
			expected:   models.StrongBull,
		},
		{
			name:       "volatility weak adx stays neutral",
			kind:       KindVolatility,
			indicators: withValues(map[string]float64{"adx": 10, "plus_di": 30, "minus_di": 10, "atr_ratio": 1.6, "bb_width": 0.05}),
			expected:   models.Neutral,
		},
		{
			name:       "volatility bearish bias",
			kind:       KindVolatility,
			indicators: withValues(map[string]float64{"adx": 35, "plus_di": 10, "minus_di": 32, "atr_ratio": 1.5, "bb_width": 0.05}),
			expected:   models.StrongBear,
		},
		{
			name:       "oscillator extreme high",
			kind:       KindOscillator,
			indicators: withValues(map[string]float64{"rsi": 90, "stoch_k": 95, "williams_r": -5}),
			expected:   models.StrongBull,
		},
		{
			name:       "oscillator extreme low",
			kind:       KindOscillator,
			indicators: withValues(map[string]float64{"rsi": 10, "stoch_k": 5, "williams_r": -95}),
			expected:   models.StrongBear,
		},
		{
			name:       "multi period aligned bullish",
			kind:       KindMultiPeriod,
			indicators: withValues(map[string]float64{"rsi_7": 80, "rsi_14": 75, "rsi_28": 70}),
			expected:   models.Bull,
		},
		{
			name:       "volume accumulation",
			kind:       KindVolume,
			indicators: withValues(map[string]float64{"cmf": 0.4}),
			expected:   models.StrongBull,
		},
		{
			name:       "volume distribution",
			kind:       KindVolume,
			indicators: withValues(map[string]float64{"cmf": -0.4}),
			expected:   models.StrongBear,
		},
		{
			name:       "composite blended bull",
			kind:       KindComposite,
			params:     map[string]float64{"momentum": 0.5, "oscillator": 0.5},
			indicators: withValues(map[string]float64{"rsi": 85, "roc": 0.06, "momentum": 0.06, "stoch_k": 90, "williams_r": -10}),
			expected:   models.StrongBull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.kind, tt.params)
			if err != nil {
				t.Fatalf("New(%s) error: %v", tt.kind, err)
			}
			result, err := c.Classify(tt.indicators)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if result.State != tt.expected {
				t.Errorf("Classify() state = %v, want %v", result.State, tt.expected)
			}
			if result.Confidence < 0 || result.Confidence > 1 {
				t.Errorf("Classify() confidence = %v, outside [0,1]", result.Confidence)
			}
		})
	}
}

func TestMissingIndicator(t *testing.T) {
	for _, kind := range Kinds() {
		if kind == KindComposite {
			continue
		}
		t.Run(string(kind), func(t *testing.T) {
			c, err := New(kind, nil)
			if err != nil {
				t.Fatalf("New(%s) error: %v", kind, err)
			}
			_, err = c.Classify(map[string]float64{})
			if err == nil {
				t.Fatalf("Classify() with empty snapshot, want MissingIndicator error")
			}
			if !IsMissingIndicator(err) {
				t.Errorf("Classify() error = %v, want MissingIndicatorError", err)
			}
		})
	}
}

func TestCompositeWeightValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]float64
		wantErr bool
	}{
		{
			name:   "weights sum to one",
			params: map[string]float64{"momentum": 0.6, "volume": 0.4},
		},
		{
			name:    "weights sum below one",
			params:  map[string]float64{"momentum": 0.5, "volume": 0.4},
			wantErr: true,
		},
		{
			name:    "negative weight",
			params:  map[string]float64{"momentum": 1.5, "volume": -0.5},
			wantErr: true,
		},
		{
			name:    "no members",
			params:  nil,
			wantErr: true,
		},
		{
			name:    "nested composite",
			params:  map[string]float64{"composite": 1.0},
			wantErr: true,
		},
		{
			name:    "unknown member kind",
			params:  map[string]float64{"astrology": 1.0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(KindComposite, tt.params)
			if tt.wantErr && err == nil {
				t.Errorf("New(composite) = nil error, want InvalidConfig")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("New(composite) error = %v, want nil", err)
			}
		})
	}
}

func TestCompositePropagatesMissingIndicator(t *testing.T) {
	c, err := New(KindComposite, map[string]float64{"momentum": 0.5, "volume": 0.5})
	if err != nil {
		t.Fatalf("New(composite) error: %v", err)
	}
	snapshot := withValues(nil)
	delete(snapshot, "cmf")

	_, err = c.Classify(snapshot)
	if !IsMissingIndicator(err) {
		t.Errorf("Classify() error = %v, want MissingIndicatorError", err)
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := New("sentiment", nil); err == nil {
		t.Error("New(sentiment) = nil error, want InvalidConfig")
	}
}

func TestEveryKindConstructs(t *testing.T) {
	for _, kind := range Kinds() {
		var params map[string]float64
		if kind == KindComposite {
			params = map[string]float64{"momentum": 0.5, "volume": 0.5}
		}
		c, err := New(kind, params)
		if err != nil {
			t.Errorf("New(%s) error: %v", kind, err)
			continue
		}
		if c.Kind() != kind {
			t.Errorf("Kind() = %s, want %s", c.Kind(), kind)
		}
	}
}

package classifier

import (
	"fmt"
	"math"

	"github.com/Alias1177/Oracle/models"
)

// Kind identifies one classifier variant. The set is closed: every kind maps
// to a registered constructor and nothing else can be instantiated.
type Kind string

const (
	KindMomentum    Kind = "momentum"
	KindVolatility  Kind = "volatility"
	KindOscillator  Kind = "oscillator"
	KindMultiPeriod Kind = "multi_period"
	KindVolume      Kind = "volume"
	KindComposite   Kind = "composite"
)

// Classifier maps an indicator snapshot into one of the five market states
// plus a confidence score.
type Classifier interface {
	Kind() Kind
	Classify(indicators map[string]float64) (models.StateClassification, error)
}

// scorer is the internal contract shared by all variants: per-state scores
// plus the raw per-indicator contributions. Composite blends sub-scorers
// through this rather than through their final classifications.
type scorer interface {
	scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error)
}

type constructor func(params map[string]float64) (Classifier, error)

var constructors map[Kind]constructor

// Registered in init rather than in the var initializer: newComposite calls
// New for its members, which reads this map.
func init() {
	constructors = map[Kind]constructor{
		KindMomentum:    newMomentum,
		KindVolatility:  newVolatility,
		KindOscillator:  newOscillator,
		KindMultiPeriod: newMultiPeriod,
		KindVolume:      newVolume,
		KindComposite:   newComposite,
	}
}

// New builds a classifier of the given kind with validated parameters.
func New(kind Kind, params map[string]float64) (Classifier, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, &InvalidConfigError{Reason: fmt.Sprintf("unknown classifier kind %q", kind)}
	}
	return ctor(params)
}

// Kinds returns every registered classifier kind.
func Kinds() []Kind {
	return []Kind{KindMomentum, KindVolatility, KindOscillator, KindMultiPeriod, KindVolume, KindComposite}
}

// require extracts the named indicators, failing with MissingIndicator on the
// first absent key so callers can skip the tick instead of scoring on partial
// data.
func require(indicators map[string]float64, keys ...string) ([]float64, error) {
	values := make([]float64, len(keys))
	for i, key := range keys {
		v, ok := indicators[key]
		if !ok {
			return nil, &MissingIndicatorError{Indicator: key}
		}
		values[i] = v
	}
	return values, nil
}

// param reads a tunable with a default when the key is absent.
func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stateCenters are the scalar positions of the five states on [-1, 1].
var stateCenters = [models.NumStates]float64{-1.0, -0.5, 0.0, 0.5, 1.0}

// scoreKernel spreads a directional scalar in [-1, 1] over the five states
// with a triangular kernel around each state center. Symmetric thresholds at
// the kernel midpoints partition the axis into the five buckets.
func scoreKernel(s float64) [models.NumStates]float64 {
	s = clamp(s, -1, 1)
	var scores [models.NumStates]float64
	for i, center := range stateCenters {
		d := math.Abs(s - center)
		if d < 0.5 {
			scores[i] = 1.0 - d/0.5
		}
	}
	return scores
}

// classify turns per-state scores into the final classification: argmax state
// and confidence equal to the winning score's share of the total.
func classify(scores [models.NumStates]float64, raw map[string]float64) models.StateClassification {
	var total float64
	best := models.Neutral
	for i, s := range scores {
		total += s
		if s > scores[best] {
			best = models.MarketState(i)
		}
	}
	confidence := 0.0
	if total > 0 {
		confidence = scores[best] / total
	}
	return models.StateClassification{State: best, Confidence: confidence, RawScores: raw}
}

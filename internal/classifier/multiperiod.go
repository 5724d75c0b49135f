package classifier

import (
	"fmt"

	"github.com/Alias1177/Oracle/models"
)

// MultiPeriod evaluates RSI at short, medium and long horizons and takes a
// weighted vote across the three groups, so divergence between timeframes
// dilutes the final call instead of flipping it.
type MultiPeriod struct {
	periods [3]int
	weights [3]float64
}

func newMultiPeriod(params map[string]float64) (Classifier, error) {
	short := int(param(params, "short_period", 7))
	medium := int(param(params, "medium_period", 14))
	long := int(param(params, "long_period", 28))
	if short <= 0 || medium <= 0 || long <= 0 {
		return nil, &InvalidConfigError{Reason: "multi_period periods must be positive"}
	}
	if !(short < medium && medium < long) {
		return nil, &InvalidConfigError{Reason: "multi_period periods must be strictly increasing"}
	}
	return &MultiPeriod{
		periods: [3]int{short, medium, long},
		weights: [3]float64{0.5, 0.3, 0.2},
	}, nil
}

func (m *MultiPeriod) Kind() Kind { return KindMultiPeriod }

func (m *MultiPeriod) scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error) {
	var scores [models.NumStates]float64
	raw := make(map[string]float64, 3)

	for i, period := range m.periods {
		key := fmt.Sprintf("rsi_%d", period)
		values, err := require(indicators, key)
		if err != nil {
			return [models.NumStates]float64{}, nil, err
		}
		scalar := clamp((values[0]-50.0)/50.0, -1, 1)
		raw[key] = scalar

		vote := scoreKernel(scalar)
		for s := range vote {
			scores[s] += m.weights[i] * vote[s]
		}
	}
	return scores, raw, nil
}

func (m *MultiPeriod) Classify(indicators map[string]float64) (models.StateClassification, error) {
	scores, raw, err := m.scores(indicators)
	if err != nil {
		return models.StateClassification{}, err
	}
	return classify(scores, raw), nil
}

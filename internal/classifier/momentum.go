package classifier

import "github.com/Alias1177/Oracle/models"

// Momentum combines RSI, rate of change and raw momentum into a directional
// scalar compared against symmetric thresholds around zero.
type Momentum struct {
	sensitivity float64
}

func newMomentum(params map[string]float64) (Classifier, error) {
	sensitivity := param(params, "sensitivity", 20.0)
	if sensitivity <= 0 {
		return nil, &InvalidConfigError{Reason: "momentum sensitivity must be positive"}
	}
	return &Momentum{sensitivity: sensitivity}, nil
}

func (m *Momentum) Kind() Kind { return KindMomentum }

func (m *Momentum) scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error) {
	values, err := require(indicators, "rsi", "roc", "momentum")
	if err != nil {
		return [models.NumStates]float64{}, nil, err
	}
	rsi, roc, momentum := values[0], values[1], values[2]

	// RSI centered on 50, rate-of-change and momentum are price fractions
	// stretched by sensitivity into the same [-1, 1] range.
	rsiScore := clamp((rsi-50.0)/50.0, -1, 1)
	rocScore := clamp(roc*m.sensitivity, -1, 1)
	momScore := clamp(momentum*m.sensitivity, -1, 1)

	scalar := 0.4*rsiScore + 0.3*rocScore + 0.3*momScore
	raw := map[string]float64{
		"rsi":      rsiScore,
		"roc":      rocScore,
		"momentum": momScore,
	}
	return scoreKernel(scalar), raw, nil
}

func (m *Momentum) Classify(indicators map[string]float64) (models.StateClassification, error) {
	scores, raw, err := m.scores(indicators)
	if err != nil {
		return models.StateClassification{}, err
	}
	return classify(scores, raw), nil
}

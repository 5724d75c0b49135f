package classifier

import "github.com/Alias1177/Oracle/models"

// Oscillator reads RSI, Stochastic %K and Williams %R extremity. Extreme-low
// readings map to StrongBear and extreme-high to StrongBull.
type Oscillator struct{}

func newOscillator(params map[string]float64) (Classifier, error) {
	return &Oscillator{}, nil
}

func (o *Oscillator) Kind() Kind { return KindOscillator }

func (o *Oscillator) scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error) {
	values, err := require(indicators, "rsi", "stoch_k", "williams_r")
	if err != nil {
		return [models.NumStates]float64{}, nil, err
	}
	rsi, stochK, williamsR := values[0], values[1], values[2]

	// Normalize every oscillator onto [0, 1]; Williams %R lives on [-100, 0].
	rsiNorm := clamp(rsi/100.0, 0, 1)
	stochNorm := clamp(stochK/100.0, 0, 1)
	williamsNorm := clamp((williamsR+100.0)/100.0, 0, 1)

	extremity := (rsiNorm + stochNorm + williamsNorm) / 3.0
	scalar := (extremity - 0.5) * 2.0

	raw := map[string]float64{
		"rsi":        rsiNorm,
		"stoch_k":    stochNorm,
		"williams_r": williamsNorm,
	}
	return scoreKernel(scalar), raw, nil
}

func (o *Oscillator) Classify(indicators map[string]float64) (models.StateClassification, error) {
	scores, raw, err := o.scores(indicators)
	if err != nil {
		return models.StateClassification{}, err
	}
	return classify(scores, raw), nil
}

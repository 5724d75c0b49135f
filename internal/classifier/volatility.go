package classifier

import "github.com/Alias1177/Oracle/models"

// Volatility combines the ATR ratio, Bollinger band width and ADX. High
// volatility with a directional ADX bias pushes toward the Strong states;
// a weak ADX pulls the classification back toward Neutral.
type Volatility struct {
	adxFloor float64
}

func newVolatility(params map[string]float64) (Classifier, error) {
	adxFloor := param(params, "adx_floor", 20.0)
	if adxFloor < 0 {
		return nil, &InvalidConfigError{Reason: "volatility adx_floor must be non-negative"}
	}
	return &Volatility{adxFloor: adxFloor}, nil
}

func (v *Volatility) Kind() Kind { return KindVolatility }

func (v *Volatility) scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error) {
	values, err := require(indicators, "atr_ratio", "bb_width", "adx", "plus_di", "minus_di")
	if err != nil {
		return [models.NumStates]float64{}, nil, err
	}
	atrRatio, bbWidth, adx, plusDI, minusDI := values[0], values[1], values[2], values[3], values[4]

	direction := clamp((plusDI-minusDI)/25.0, -1, 1)

	// Expansion above 1.0 in the short/long ATR ratio and a wide band both
	// count as elevated volatility.
	expansion := clamp((atrRatio-1.0)*2.0, 0, 1)
	width := clamp(bbWidth*25.0, 0, 1)
	volatility := 0.6*expansion + 0.4*width

	var scalar float64
	if adx < v.adxFloor {
		// Directionless market: keep the call near Neutral.
		scalar = direction * 0.2
	} else {
		scalar = direction * (0.4 + 0.6*volatility)
	}

	raw := map[string]float64{
		"atr_ratio": expansion,
		"bb_width":  width,
		"adx":       adx,
		"direction": direction,
	}
	return scoreKernel(scalar), raw, nil
}

func (v *Volatility) Classify(indicators map[string]float64) (models.StateClassification, error) {
	scores, raw, err := v.scores(indicators)
	if err != nil {
		return models.StateClassification{}, err
	}
	return classify(scores, raw), nil
}

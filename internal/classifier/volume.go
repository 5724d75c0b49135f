package classifier

import "github.com/Alias1177/Oracle/models"

// Volume reads the Chaikin Money Flow accumulation/distribution signal.
// Sustained accumulation reads bullish, distribution bearish.
type Volume struct {
	scale float64
}

func newVolume(params map[string]float64) (Classifier, error) {
	scale := param(params, "cmf_scale", 2.5)
	if scale <= 0 {
		return nil, &InvalidConfigError{Reason: "volume cmf_scale must be positive"}
	}
	return &Volume{scale: scale}, nil
}

func (v *Volume) Kind() Kind { return KindVolume }

func (v *Volume) scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error) {
	values, err := require(indicators, "cmf")
	if err != nil {
		return [models.NumStates]float64{}, nil, err
	}
	// CMF rarely leaves [-0.25, 0.25] in practice; stretch it to cover the
	// full state axis.
	scalar := clamp(values[0]*v.scale, -1, 1)
	raw := map[string]float64{"cmf": scalar}
	return scoreKernel(scalar), raw, nil
}

func (v *Volume) Classify(indicators map[string]float64) (models.StateClassification, error) {
	scores, raw, err := v.scores(indicators)
	if err != nil {
		return models.StateClassification{}, err
	}
	return classify(scores, raw), nil
}

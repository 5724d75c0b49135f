package classifier

import (
	"fmt"
	"math"
	"sort"

	"github.com/Alias1177/Oracle/models"
)

const weightTolerance = 1e-9

// Composite runs several sub-classifiers and blends their per-state scores
// with configured weights. Weights are the classifier params themselves,
// keyed by sub-classifier kind, and must sum to 1.0.
type Composite struct {
	members []compositeMember
}

type compositeMember struct {
	kind   Kind
	weight float64
	scorer scorer
}

func newComposite(params map[string]float64) (Classifier, error) {
	if len(params) == 0 {
		return nil, &InvalidConfigError{Reason: "composite requires at least one weighted sub-classifier"}
	}

	// Deterministic member order regardless of map iteration.
	kinds := make([]string, 0, len(params))
	for k := range params {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var members []compositeMember
	var sum float64
	for _, name := range kinds {
		kind := Kind(name)
		if kind == KindComposite {
			return nil, &InvalidConfigError{Reason: "composite cannot nest another composite"}
		}
		weight := params[name]
		if weight < 0 {
			return nil, &InvalidConfigError{Reason: fmt.Sprintf("negative weight for %q", name)}
		}
		sub, err := New(kind, nil)
		if err != nil {
			return nil, err
		}
		sc, ok := sub.(scorer)
		if !ok {
			return nil, &InvalidConfigError{Reason: fmt.Sprintf("%q cannot be used as a composite member", name)}
		}
		members = append(members, compositeMember{kind: kind, weight: weight, scorer: sc})
		sum += weight
	}

	if math.Abs(sum-1.0) > weightTolerance {
		return nil, &InvalidConfigError{Reason: fmt.Sprintf("composite weights sum to %v, want 1.0", sum)}
	}
	return &Composite{members: members}, nil
}

func (c *Composite) Kind() Kind { return KindComposite }

func (c *Composite) scores(indicators map[string]float64) ([models.NumStates]float64, map[string]float64, error) {
	var blended [models.NumStates]float64
	raw := make(map[string]float64)

	for _, member := range c.members {
		scores, memberRaw, err := member.scorer.scores(indicators)
		if err != nil {
			return [models.NumStates]float64{}, nil, err
		}
		for s := range scores {
			blended[s] += member.weight * scores[s]
		}
		for key, v := range memberRaw {
			raw[string(member.kind)+"."+key] = v
		}
	}
	return blended, raw, nil
}

func (c *Composite) Classify(indicators map[string]float64) (models.StateClassification, error) {
	scores, raw, err := c.scores(indicators)
	if err != nil {
		return models.StateClassification{}, err
	}
	return classify(scores, raw), nil
}

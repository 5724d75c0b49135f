package models

// SphereConfig is the immutable configuration of one hypersphere.
// Reconfiguration never mutates an existing sphere; it creates a new one.
type SphereConfig struct {
	Name             string             `json:"name"`
	Classifier       string             `json:"classifier"`
	ClassifierParams map[string]float64 `json:"classifier_params,omitempty"`
	LookbackWindow   int                `json:"lookback_window"`
	DecayFactor      float64            `json:"decay_factor"`
	Symbol           string             `json:"symbol,omitempty"`
	Timeframe        string             `json:"timeframe"`
	PriorStrength    float64            `json:"prior_strength"`
}

// SphereSnapshotVersion is the current envelope version for persisted spheres.
const SphereSnapshotVersion = 1

// SphereSnapshot is the versioned persistence envelope for one hypersphere:
// enough to reconstruct an identical transition matrix after a restart.
type SphereSnapshot struct {
	Version          int                           `json:"version"`
	ID               string                        `json:"id"`
	Config           SphereConfig                  `json:"config"`
	TransitionCounts [NumStates][NumStates]float64 `json:"transition_counts"`
	ProfitFactor     float64                       `json:"profit_factor"`
	NetProfit        float64                       `json:"net_profit"`
}

package models

import "time"

// TrinityMemory keeps the last promoted regime and the two performance
// anchors used to normalize net profit. Anchors only ever ratchet upward.
type TrinityMemory struct {
	LastRegime         MarketState `json:"last_regime"`
	Version            string      `json:"version"`
	AnchorProfitFactor float64     `json:"anchor_profit_factor"`
	AnchorNetProfit    float64     `json:"anchor_net_profit"`
}

// TrinityActive is the live view of the currently selected sphere.
type TrinityActive struct {
	SphereID     string      `json:"sphere_id"`
	ProfitFactor float64     `json:"profit_factor"`
	NetProfit    float64     `json:"net_profit"`
	Signal       MarketState `json:"signal"`
	Confidence   float64     `json:"confidence"`
}

// HeatmapEntry is one realized-performance sample mapped to a percentile and
// a display color. Observability only; nothing reads it back for ranking.
type HeatmapEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
	Percentile float64   `json:"percentile"`
	Color      string    `json:"color"`
}

// StoicCheck is one named diagnostic with its measured value.
type StoicCheck struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Passed bool    `json:"passed"`
}

// StoicReport carries the five named checks. Only Stability and Intuitivity
// gate selection; the rest are read-only diagnostics.
type StoicReport struct {
	Stability   StoicCheck `json:"stability"`
	Tuning      StoicCheck `json:"tuning"`
	Opportunity StoicCheck `json:"opportunity"`
	Intuitivity StoicCheck `json:"intuitivity"`
	Creativity  StoicCheck `json:"creativity"`
}

// StatusReport summarizes ring health for the dashboard layer.
type StatusReport struct {
	NumSpheres           int  `json:"num_spheres"`
	NumActivePredictions int  `json:"num_active_predictions"`
	Healthy              bool `json:"healthy"`
	Degraded             bool `json:"degraded"`
}

// SignalReport is the promoted sphere's current forecast, or absent when no
// prediction exists yet.
type SignalReport struct {
	SphereID       string             `json:"sphere_id"`
	PredictedState MarketState        `json:"predicted_state"`
	Distribution   [NumStates]float64 `json:"distribution"`
	Confidence     float64            `json:"confidence"`
}

// RegimeReport describes the consensus regime and its recent behavior.
type RegimeReport struct {
	CurrentState  MarketState        `json:"current_state"`
	Persistence   float64            `json:"persistence"`
	Histogram     [NumStates]float64 `json:"histogram"`
	HistoryLength int                `json:"history_length"`
}

// TrinityReport is the read-only projection of the trinity core.
type TrinityReport struct {
	Memory   TrinityMemory  `json:"memory"`
	Active   *TrinityActive `json:"active,omitempty"`
	Heatmap  []HeatmapEntry `json:"heatmap,omitempty"`
	Stable   bool           `json:"stable"`
	Degraded bool           `json:"degraded"`
}

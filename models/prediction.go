package models

import "time"

// Prediction is a next-state forecast made by one hypersphere. The forecast
// fields are fixed at creation; the outcome fields are filled in exactly once
// by the next observed transition and never touched again.
type Prediction struct {
	Timestamp      time.Time          `json:"timestamp"`
	CurrentState   MarketState        `json:"current_state"`
	Distribution   [NumStates]float64 `json:"distribution"`
	PredictedState MarketState        `json:"predicted_state"`
	Confidence     float64            `json:"confidence"`

	// Outcome, set at most once by ObserveTransition.
	Resolved    bool        `json:"resolved"`
	ActualState MarketState `json:"actual_state,omitempty"`
	WasCorrect  bool        `json:"was_correct,omitempty"`
	LogLoss     float64     `json:"log_loss,omitempty"`
}

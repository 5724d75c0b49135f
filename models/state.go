package models

import (
	"fmt"
	"time"
)

// MarketState is one of five discrete market-condition buckets ordered from
// strongly bearish to strongly bullish. The order matters: it indexes the
// rows and columns of every transition matrix.
type MarketState int

const (
	StrongBear MarketState = iota
	Bear
	Neutral
	Bull
	StrongBull
)

// NumStates is the size of the MarketState enumeration.
const NumStates = 5

var stateNames = [NumStates]string{"STRONG_BEAR", "BEAR", "NEUTRAL", "BULL", "STRONG_BULL"}

func (s MarketState) String() string {
	if s < 0 || s >= NumStates {
		return fmt.Sprintf("MarketState(%d)", int(s))
	}
	return stateNames[s]
}

// Valid reports whether s is inside the enumeration.
func (s MarketState) Valid() bool {
	return s >= 0 && s < NumStates
}

// AllStates returns the five states in index order.
func AllStates() [NumStates]MarketState {
	return [NumStates]MarketState{StrongBear, Bear, Neutral, Bull, StrongBull}
}

// StateClassification is the immutable result of a single classifier call.
type StateClassification struct {
	State      MarketState        `json:"state"`
	Confidence float64            `json:"confidence"`
	RawScores  map[string]float64 `json:"raw_scores,omitempty"`
}

// Transition records one observed state change.
type Transition struct {
	From      MarketState `json:"from"`
	To        MarketState `json:"to"`
	Timestamp time.Time   `json:"timestamp"`
}

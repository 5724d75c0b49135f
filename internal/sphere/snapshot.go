package sphere

import (
	"encoding/json"
	"fmt"

	"github.com/Alias1177/Oracle/models"
)

// Snapshot captures everything needed to reconstruct an identical transition
// matrix after a restart, wrapped in a versioned envelope.
func (h *Hypersphere) Snapshot() models.SphereSnapshot {
	return models.SphereSnapshot{
		Version:          models.SphereSnapshotVersion,
		ID:               h.id,
		Config:           h.config,
		TransitionCounts: h.counts,
		ProfitFactor:     h.profitFactor,
		NetProfit:        h.netProfit,
	}
}

// FromSnapshot rebuilds a hypersphere from a persisted envelope. The envelope
// version is checked so a future schema change cannot silently corrupt a
// restored sphere.
func FromSnapshot(snap models.SphereSnapshot) (*Hypersphere, error) {
	if snap.Version != models.SphereSnapshotVersion {
		return nil, fmt.Errorf("unsupported sphere snapshot version %d", snap.Version)
	}
	h, err := New(snap.Config)
	if err != nil {
		return nil, fmt.Errorf("restoring sphere %q: %w", snap.Config.Name, err)
	}
	if snap.ID != "" {
		h.id = snap.ID
	}
	h.counts = snap.TransitionCounts
	h.profitFactor = snap.ProfitFactor
	h.netProfit = snap.NetProfit
	return h, nil
}

// EncodeSnapshot serializes the sphere's envelope to JSON.
func (h *Hypersphere) EncodeSnapshot() ([]byte, error) {
	data, err := json.Marshal(h.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encoding sphere snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a JSON envelope and rebuilds the sphere.
func DecodeSnapshot(data []byte) (*Hypersphere, error) {
	var snap models.SphereSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding sphere snapshot: %w", err)
	}
	return FromSnapshot(snap)
}

package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"seismo-index-lab/internal/domain"
)

// ComputeEstimateID computes a deterministic estimate_id using SHA256.
// Formula: SHA256(dataset_id|b|mc|vstart|vend)
// The same dataset estimated with the same parameters always maps to the
// same ID; re-runs overwrite nothing and duplicate nothing.
// Returns hex-encoded hash (64 characters).
func ComputeEstimateID(datasetID string, params domain.FitParameters) string {
	data := fmt.Sprintf("%s|%g|%g|%g|%g",
		datasetID,
		params.BValue,
		params.MagnitudeCutoff,
		params.VolumeStart,
		params.VolumeEnd,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

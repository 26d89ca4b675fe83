package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeDatasetID computes a deterministic dataset_id using SHA256.
// Formula: SHA256(name|region|well_name)
// Returns hex-encoded hash (64 characters).
func ComputeDatasetID(name, region, wellName string) string {
	data := fmt.Sprintf("%s|%s|%s", name, region, wellName)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

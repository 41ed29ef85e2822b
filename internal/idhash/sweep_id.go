// Package idhash derives deterministic identifiers for sweeps and runs.
package idhash

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// ComputeSweepID computes a deterministic sweep_id from the canonical
// configuration fingerprint.
// Formula: base58(SHA256(fingerprint)). Identical configurations share an ID.
func ComputeSweepID(fingerprint []byte) string {
	hash := sha256.Sum256(fingerprint)
	return base58.Encode(hash[:])
}

package idhash

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"

	"econ-sim-lab/internal/domain"
)

// ComputeRunID computes a deterministic run_id for one repetition.
// Formula: base58(SHA256(sweep_id|stake_level|reputation_decay|collusion_size|sybil_cost|run_index|seed))
// Floats use the shortest round-trip representation.
func ComputeRunID(sweepID string, p domain.GridPoint, runIndex int, seed int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%s|%d|%d",
		sweepID,
		formatFloat(p.StakeLevel),
		formatFloat(p.ReputationDecay),
		p.CollusionSize,
		formatFloat(p.SybilCost),
		runIndex,
		seed,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

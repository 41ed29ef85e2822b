package engine

import (
	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
)

// Composition describes the population to create.
type Composition struct {
	TotalAgents   int
	Percentages   map[domain.Archetype]float64
	CollusionSize int
}

// CompositionFromConfig builds a Composition from the network section and a group size.
func CompositionFromConfig(n config.NetworkConfig, collusionSize int) Composition {
	return Composition{
		TotalAgents: n.TotalAgents,
		Percentages: map[domain.Archetype]float64{
			domain.ArchetypeHonest:   n.HonestPercentage,
			domain.ArchetypeColluder: n.ColluderPercentage,
			domain.ArchetypeGriefer:  n.GrieferPercentage,
			domain.ArchetypeHoarder:  n.HoarderPercentage,
		},
		CollusionSize: collusionSize,
	}
}

// Count returns floor(percentage * TotalAgents) for arch.
// The fractional remainder is dropped.
func (c Composition) Count(arch domain.Archetype) int {
	return int(c.Percentages[arch] * float64(c.TotalAgents))
}

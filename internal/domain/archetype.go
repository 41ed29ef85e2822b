package domain

// Archetype represents the behavioural class of an agent.
type Archetype string

const (
	ArchetypeHonest   Archetype = "honest"
	ArchetypeColluder Archetype = "colluder"
	ArchetypeGriefer  Archetype = "griefer"
	ArchetypeHoarder  Archetype = "hoarder"
)

// Archetypes lists all archetypes in population creation order.
var Archetypes = []Archetype{
	ArchetypeHonest,
	ArchetypeColluder,
	ArchetypeGriefer,
	ArchetypeHoarder,
}

// String returns the string representation of Archetype.
func (a Archetype) String() string {
	return string(a)
}

// IsValid checks if the archetype is a valid value.
func (a Archetype) IsValid() bool {
	switch a {
	case ArchetypeHonest, ArchetypeColluder, ArchetypeGriefer, ArchetypeHoarder:
		return true
	default:
		return false
	}
}

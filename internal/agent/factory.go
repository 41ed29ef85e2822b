package agent

import (
	"errors"
	"fmt"
	"math/rand"

	"econ-sim-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownArchetype   = errors.New("unknown archetype")
	ErrDuplicateArchetype = errors.New("archetype already registered")
	ErrNegativeStake      = errors.New("initial stake must be >= 0")
)

// Params are the per-agent inputs handed to a Constructor.
type Params struct {
	ID    int
	Stake float64
	Group []int // collusion group member ids, colluders only
}

// Constructor builds a fresh policy for one agent.
// rng is the run generator; constructors that draw from it do so in call order.
type Constructor func(p Params, rng *rand.Rand) Policy

// Spec registers an archetype.
type Spec struct {
	InitialReputation float64
	New               Constructor
}

// Registry maps archetypes to their constructors.
// A Registry is not safe for concurrent Register calls; build it before a sweep starts.
type Registry struct {
	specs map[domain.Archetype]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[domain.Archetype]Spec)}
}

// DefaultRegistry returns a registry holding the four built-in archetypes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(domain.ArchetypeHonest, Spec{
		InitialReputation: 1.0,
		New:               func(Params, *rand.Rand) Policy { return NewHonestPolicy() },
	})
	_ = r.Register(domain.ArchetypeColluder, Spec{
		InitialReputation: 0.8,
		New:               func(p Params, _ *rand.Rand) Policy { return NewColluderPolicy(p.Group) },
	})
	_ = r.Register(domain.ArchetypeGriefer, Spec{
		InitialReputation: 0.6,
		New:               func(_ Params, rng *rand.Rand) Policy { return NewGrieferPolicy(rng) },
	})
	_ = r.Register(domain.ArchetypeHoarder, Spec{
		InitialReputation: 0.9,
		New:               func(Params, *rand.Rand) Policy { return NewHoarderPolicy() },
	})
	return r
}

// Register adds an archetype. Registering the same archetype twice fails.
func (r *Registry) Register(arch domain.Archetype, spec Spec) error {
	if spec.New == nil {
		return fmt.Errorf("register %s: nil constructor", arch)
	}
	if _, ok := r.specs[arch]; ok {
		return fmt.Errorf("register %s: %w", arch, ErrDuplicateArchetype)
	}
	r.specs[arch] = spec
	return nil
}

// Has reports whether arch is registered.
func (r *Registry) Has(arch domain.Archetype) bool {
	_, ok := r.specs[arch]
	return ok
}

// New creates an agent of the given archetype.
func (r *Registry) New(arch domain.Archetype, p Params, rng *rand.Rand) (*Agent, error) {
	spec, ok := r.specs[arch]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, arch)
	}
	if p.Stake < 0 {
		return nil, ErrNegativeStake
	}

	policy := spec.New(p, rng)
	if policy.Archetype() != arch {
		return nil, fmt.Errorf("register %s: constructor returned %s policy", arch, policy.Archetype())
	}
	return NewAgent(p.ID, p.Stake, spec.InitialReputation, policy), nil
}

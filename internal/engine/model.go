// Package engine implements the epoch-driven economic model.
//
// An EconomicModel owns one population and one random generator.
// It is single-threaded; concurrent sweeps create one model per repetition.
package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"econ-sim-lab/internal/agent"
	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/domain"
)

// MinCollusionGroup is the smallest group kept when partitioning colluders.
const MinCollusionGroup = 2

// Options configures an EconomicModel.
type Options struct {
	// Registry supplies archetype constructors. Nil uses agent.DefaultRegistry().
	Registry *agent.Registry
}

// EconomicModel runs the simulation for one repetition.
type EconomicModel struct {
	cfg      *config.Config
	rng      *rand.Rand
	registry *agent.Registry

	agents []*agent.Agent
	groups [][]int

	epoch    int
	counters domain.Counters
}

// New creates a model over a private copy of cfg, drawing all randomness from rng.
func New(cfg *config.Config, rng *rand.Rand, opts Options) *EconomicModel {
	registry := opts.Registry
	if registry == nil {
		registry = agent.DefaultRegistry()
	}
	return &EconomicModel{
		cfg:      cfg.Clone(),
		rng:      rng,
		registry: registry,
	}
}

// InitializeAgents creates the population.
// Agents are created in archetype order (honest, colluder, griefer, hoarder,
// then any extra registered archetypes by name) with stakes drawn uniformly
// from stakeLevels. Colluder ids are shuffled and partitioned into groups of
// comp.CollusionSize; a trailing group smaller than MinCollusionGroup is discarded.
func (m *EconomicModel) InitializeAgents(stakeLevels []float64, comp Composition) error {
	if len(m.agents) > 0 {
		return ErrAlreadyInitialized
	}
	if len(stakeLevels) == 0 {
		return ErrNoStakeLevels
	}
	order := creationOrder(comp)
	for _, arch := range order {
		if comp.Count(arch) > 0 && !m.registry.Has(arch) {
			return fmt.Errorf("initialize %s agents: %w", arch, agent.ErrUnknownArchetype)
		}
	}

	nextID := 0
	for _, arch := range order {
		count := comp.Count(arch)
		if count <= 0 {
			continue
		}

		groupOf := map[int][]int{}
		if arch == domain.ArchetypeColluder {
			groupOf = m.partitionColluders(nextID, count, comp.CollusionSize)
		}

		for i := 0; i < count; i++ {
			id := nextID
			stake := stakeLevels[m.rng.Intn(len(stakeLevels))]
			a, err := m.registry.New(arch, agent.Params{ID: id, Stake: stake, Group: groupOf[id]}, m.rng)
			if err != nil {
				return fmt.Errorf("create agent %d: %w", id, err)
			}
			m.agents = append(m.agents, a)
			nextID++
		}
	}

	m.updateTotalStake()
	return nil
}

// creationOrder returns the built-in archetypes followed by any extra
// archetypes present in the composition, sorted by name.
func creationOrder(comp Composition) []domain.Archetype {
	order := append([]domain.Archetype(nil), domain.Archetypes...)
	var extra []domain.Archetype
	for arch := range comp.Percentages {
		if !arch.IsValid() {
			extra = append(extra, arch)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

// partitionColluders shuffles the colluder ids [first, first+count) and
// splits them into groups. Returns the group of each grouped id.
func (m *EconomicModel) partitionColluders(first, count, size int) map[int][]int {
	ids := make([]int, count)
	for i := range ids {
		ids[i] = first + i
	}
	m.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	if size < 1 {
		size = 1
	}
	groupOf := make(map[int][]int, count)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		if end-start < MinCollusionGroup {
			continue
		}
		group := append([]int(nil), ids[start:end]...)
		m.groups = append(m.groups, group)
		for _, id := range group {
			groupOf[id] = group
		}
	}
	return groupOf
}

// RunEpoch advances the model by one epoch.
func (m *EconomicModel) RunEpoch() (domain.EpochSummary, error) {
	if len(m.agents) == 0 {
		return domain.EpochSummary{}, ErrNotInitialized
	}

	m.epoch++
	m.counters.Epochs = m.epoch
	state := m.NetworkState()

	actions := make([]domain.Action, 0, len(m.agents))
	for _, a := range m.agents {
		if a.Active && a.Solvent() {
			actions = append(actions, a.Decide(m.epoch, state, m.rng))
		}
	}

	revenueBefore := m.counters.TotalRevenue
	outcomes := make([]domain.Outcome, 0, len(actions))
	rewards := 0.0
	for _, action := range actions {
		out := m.resolve(action)
		rewards += out.Reward
		outcomes = append(outcomes, out)
	}

	for _, out := range outcomes {
		a := m.agents[out.AgentID]
		a.Apply(out.Reward, out.Penalty, out.ReputationDelta)
		if err := checkAgent(a, m.epoch); err != nil {
			return domain.EpochSummary{}, err
		}
	}

	decay := m.cfg.Simulation.ReputationDecay
	for _, a := range m.agents {
		if !a.Active {
			continue
		}
		a.Decay(decay)
		if err := checkAgent(a, m.epoch); err != nil {
			return domain.EpochSummary{}, err
		}
	}

	if m.cfg.Simulation.DeactivateInsolvent {
		for _, a := range m.agents {
			if a.Active && !a.Solvent() {
				a.Active = false
			}
		}
	}

	m.updateTotalStake()

	if err := checkConservation(revenueBefore, m.counters.TotalRevenue, rewards, m.epoch); err != nil {
		return domain.EpochSummary{}, err
	}

	return domain.EpochSummary{
		Epoch:        m.epoch,
		TotalRevenue: m.counters.TotalRevenue,
		TotalStake:   m.counters.TotalStake,
		ActiveAgents: m.activeCount(),
		Outcomes:     outcomes,
	}, nil
}

// NetworkState returns the state agents observe at the start of an epoch.
func (m *EconomicModel) NetworkState() domain.NetworkState {
	active := 0
	repSum := 0.0
	for _, a := range m.agents {
		if a.Active {
			active++
			repSum += a.Reputation
		}
	}

	state := domain.NetworkState{
		ActiveAgents: active,
		TotalStake:   m.counters.TotalStake,
		Epoch:        m.epoch,
	}
	if active > 0 {
		state.AverageReputation = repSum / float64(active)
	}
	if len(m.agents) > 0 {
		state.Liveness = float64(active) / float64(len(m.agents))
	}
	return state
}

// Snapshot returns the final population and counters for the result aggregator.
func (m *EconomicModel) Snapshot() domain.RunSnapshot {
	agents := make([]domain.AgentState, len(m.agents))
	for i, a := range m.agents {
		agents[i] = a.State()
	}
	return domain.RunSnapshot{
		Agents:               agents,
		Counters:             m.counters,
		TransactionsPerEpoch: m.cfg.Simulation.TransactionsPerEpoch,
	}
}

// Agents returns the population in creation order.
func (m *EconomicModel) Agents() []*agent.Agent {
	return m.agents
}

// Groups returns the collusion groups kept at initialization.
func (m *EconomicModel) Groups() [][]int {
	out := make([][]int, len(m.groups))
	for i, g := range m.groups {
		out[i] = append([]int(nil), g...)
	}
	return out
}

// Epoch returns the number of epochs run.
func (m *EconomicModel) Epoch() int {
	return m.epoch
}

// Counters returns the engine-wide counters.
func (m *EconomicModel) Counters() domain.Counters {
	return m.counters
}

func (m *EconomicModel) updateTotalStake() {
	total := 0.0
	for _, a := range m.agents {
		if a.Active {
			total += a.Stake
		}
	}
	m.counters.TotalStake = total
}

func (m *EconomicModel) activeCount() int {
	n := 0
	for _, a := range m.agents {
		if a.Active {
			n++
		}
	}
	return n
}

// Package config loads and validates the simulation configuration document.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration document for a sweep.
type Config struct {
	// Seed is the base seed; repetition i is seeded with Seed + i.
	Seed int64 `yaml:"seed"`

	// Sweep grid axes.
	StakeLevels     []float64 `yaml:"stake_levels"`
	ReputationDecay []float64 `yaml:"reputation_decay"`
	CollusionSize   []int     `yaml:"collusion_size"`
	SybilCost       []float64 `yaml:"sybil_cost"`

	// RunsPerPoint is the number of repetitions per grid point.
	RunsPerPoint int `yaml:"runs_per_point"`

	Network    NetworkConfig    `yaml:"network"`
	Economic   EconomicConfig   `yaml:"economic"`
	Attacks    AttackConfig     `yaml:"attacks"`
	Simulation SimulationConfig `yaml:"simulation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
}

// NetworkConfig describes the population composition.
type NetworkConfig struct {
	TotalAgents        int     `yaml:"total_agents"`
	HonestPercentage   float64 `yaml:"honest_percentage"`
	ColluderPercentage float64 `yaml:"colluder_percentage"`
	GrieferPercentage  float64 `yaml:"griefer_percentage"`
	HoarderPercentage  float64 `yaml:"hoarder_percentage"`
}

// EconomicConfig holds reward-rule constants.
type EconomicConfig struct {
	BaseReward           float64 `yaml:"base_reward"`
	ReputationMultiplier float64 `yaml:"reputation_multiplier"`
	DisputeCost          float64 `yaml:"dispute_cost"`
	DisputePenalty       float64 `yaml:"dispute_penalty"`
}

// AttackConfig holds attack-rule constants.
type AttackConfig struct {
	CollusionDetectionProb     float64 `yaml:"collusion_detection_prob"`
	CollusionPenaltyMultiplier float64 `yaml:"collusion_penalty_multiplier"`
	GriefingCost               float64 `yaml:"griefing_cost"`
	GriefingEffectiveness      float64 `yaml:"griefing_effectiveness"`
	HoardingCost               float64 `yaml:"hoarding_cost"`
	HoardingEfficiency         float64 `yaml:"hoarding_efficiency"`
	SybilCost                  float64 `yaml:"sybil_cost"`
}

// SimulationConfig holds run-length controls.
type SimulationConfig struct {
	Epochs               int `yaml:"epochs"`
	WarmupEpochs         int `yaml:"warmup_epochs"`
	TransactionsPerEpoch int `yaml:"transactions_per_epoch"`

	// ReputationDecay is the per-epoch decay used by a single run.
	// The sweep driver overrides it with the grid point's value.
	ReputationDecay float64 `yaml:"reputation_decay"`

	// DeactivateInsolvent deactivates agents whose stake falls below
	// the solvency floor at the end of an epoch. Off by default.
	DeactivateInsolvent bool `yaml:"deactivate_insolvent"`
}

// OutputConfig holds destination paths for the persistence layer.
type OutputConfig struct {
	ResultsDir string `yaml:"results_dir"`
	PlotsDir   string `yaml:"plots_dir"`
}

// LoggingConfig configures log verbosity: "info" (default), "debug" or "warn".
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig selects where finished rows are persisted in addition to CSV files.
type StorageConfig struct {
	// Backend is one of "", "memory", "sqlite", "postgres", "clickhouse".
	Backend       string `yaml:"backend"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Default returns a Config with the reference parameter set.
func Default() *Config {
	return &Config{
		Seed:            42,
		StakeLevels:     []float64{0.5, 1.0, 2.0, 5.0, 10.0},
		ReputationDecay: []float64{0.01, 0.05},
		CollusionSize:   []int{3, 5},
		SybilCost:       []float64{0.1, 1.0},
		RunsPerPoint:    10,
		Network: NetworkConfig{
			TotalAgents:        100,
			HonestPercentage:   0.7,
			ColluderPercentage: 0.1,
			GrieferPercentage:  0.1,
			HoarderPercentage:  0.1,
		},
		Economic: EconomicConfig{
			BaseReward:           1.0,
			ReputationMultiplier: 0.5,
			DisputeCost:          0.1,
			DisputePenalty:       0.5,
		},
		Attacks: AttackConfig{
			CollusionDetectionProb:     0.3,
			CollusionPenaltyMultiplier: 2.0,
			GriefingCost:               0.2,
			GriefingEffectiveness:      0.3,
			HoardingCost:               0.05,
			HoardingEfficiency:         0.5,
			SybilCost:                  0.1,
		},
		Simulation: SimulationConfig{
			Epochs:               100,
			WarmupEpochs:         10,
			TransactionsPerEpoch: 100,
			ReputationDecay:      0.01,
		},
		Output: OutputConfig{
			ResultsDir: "sims/out",
			PlotsDir:   "sims/out/plots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document. Every key in RequiredKeys must be present;
// the remaining keys keep their Default values. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	root, err := checkDocument(data)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, decodeError(root, err)
	}
	return cfg, nil
}

// Load reads path (if non-empty), applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy so a run can own its snapshot.
func (c *Config) Clone() *Config {
	out := *c
	out.StakeLevels = append([]float64(nil), c.StakeLevels...)
	out.ReputationDecay = append([]float64(nil), c.ReputationDecay...)
	out.CollusionSize = append([]int(nil), c.CollusionSize...)
	out.SybilCost = append([]float64(nil), c.SybilCost...)
	return &out
}

// Fingerprint returns the canonical YAML encoding of the configuration
// fields that influence simulation output. Output and storage settings are excluded.
func (c *Config) Fingerprint() ([]byte, error) {
	clone := c.Clone()
	clone.Output = OutputConfig{}
	clone.Logging = LoggingConfig{}
	clone.Storage = StorageConfig{}
	data, err := yaml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("marshal config fingerprint: %w", err)
	}
	return data, nil
}

// ApplyEnvOverrides applies ECONSIM_* environment variable overrides.
func ApplyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ECONSIM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &ValidationError{Key: "seed", Reason: fmt.Sprintf("ECONSIM_SEED: %v", err)}
		}
		cfg.Seed = n
	}

	if v := os.Getenv("ECONSIM_RUNS_PER_POINT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Key: "runs_per_point", Reason: fmt.Sprintf("ECONSIM_RUNS_PER_POINT: %v", err)}
		}
		cfg.RunsPerPoint = n
	}

	if v := os.Getenv("ECONSIM_RESULTS_DIR"); v != "" {
		cfg.Output.ResultsDir = v
	}

	if v := os.Getenv("ECONSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ECONSIM_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("ECONSIM_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("ECONSIM_CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}

	return nil
}

// Validate checks that the configuration is usable before any simulation work starts.
func (c *Config) Validate() error {
	if c.RunsPerPoint < 1 {
		return invalid("runs_per_point", "must be >= 1, got %d", c.RunsPerPoint)
	}

	if err := validateAxis("stake_levels", c.StakeLevels, func(v float64) bool { return v >= 0 }); err != nil {
		return err
	}
	if err := validateAxis("reputation_decay", c.ReputationDecay, isProbability); err != nil {
		return err
	}
	if len(c.CollusionSize) == 0 {
		return invalid("collusion_size", "must list at least one value")
	}
	for i, size := range c.CollusionSize {
		if size < 1 {
			return invalid(fmt.Sprintf("collusion_size[%d]", i), "must be >= 1, got %d", size)
		}
	}
	if err := validateAxis("sybil_cost", c.SybilCost, func(v float64) bool { return v >= 0 }); err != nil {
		return err
	}

	if c.Network.TotalAgents < 1 {
		return invalid("network.total_agents", "must be >= 1, got %d", c.Network.TotalAgents)
	}
	percentages := []struct {
		key string
		val float64
	}{
		{"network.honest_percentage", c.Network.HonestPercentage},
		{"network.colluder_percentage", c.Network.ColluderPercentage},
		{"network.griefer_percentage", c.Network.GrieferPercentage},
		{"network.hoarder_percentage", c.Network.HoarderPercentage},
	}
	sum := 0.0
	for _, p := range percentages {
		if !isProbability(p.val) {
			return invalid(p.key, "must be in [0, 1], got %g", p.val)
		}
		sum += p.val
	}
	if sum > 1+1e-9 {
		return invalid("network", "percentages sum to %g, must not exceed 1", sum)
	}

	nonNegative := []struct {
		key string
		val float64
	}{
		{"economic.base_reward", c.Economic.BaseReward},
		{"economic.reputation_multiplier", c.Economic.ReputationMultiplier},
		{"economic.dispute_cost", c.Economic.DisputeCost},
		{"economic.dispute_penalty", c.Economic.DisputePenalty},
		{"attacks.collusion_penalty_multiplier", c.Attacks.CollusionPenaltyMultiplier},
		{"attacks.griefing_cost", c.Attacks.GriefingCost},
		{"attacks.hoarding_cost", c.Attacks.HoardingCost},
		{"attacks.sybil_cost", c.Attacks.SybilCost},
	}
	for _, f := range nonNegative {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) || f.val < 0 {
			return invalid(f.key, "must be a finite value >= 0, got %g", f.val)
		}
	}

	probabilities := []struct {
		key string
		val float64
	}{
		{"attacks.collusion_detection_prob", c.Attacks.CollusionDetectionProb},
		{"attacks.griefing_effectiveness", c.Attacks.GriefingEffectiveness},
		{"attacks.hoarding_efficiency", c.Attacks.HoardingEfficiency},
		{"simulation.reputation_decay", c.Simulation.ReputationDecay},
	}
	for _, p := range probabilities {
		if !isProbability(p.val) {
			return invalid(p.key, "must be in [0, 1], got %g", p.val)
		}
	}

	if c.Simulation.Epochs < 1 {
		return invalid("simulation.epochs", "must be >= 1, got %d", c.Simulation.Epochs)
	}
	if c.Simulation.WarmupEpochs < 0 || c.Simulation.WarmupEpochs > c.Simulation.Epochs {
		return invalid("simulation.warmup_epochs", "must be in [0, epochs], got %d", c.Simulation.WarmupEpochs)
	}
	if c.Simulation.TransactionsPerEpoch < 0 {
		return invalid("simulation.transactions_per_epoch", "must be >= 0, got %d", c.Simulation.TransactionsPerEpoch)
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level", "invalid level %q (valid: debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Storage.Backend {
	case "", "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return invalid("storage.sqlite_path", "required for sqlite backend")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return invalid("storage.postgres_dsn", "required for postgres backend")
		}
	case "clickhouse":
		if c.Storage.ClickhouseDSN == "" {
			return invalid("storage.clickhouse_dsn", "required for clickhouse backend")
		}
	default:
		return invalid("storage.backend", "unsupported backend %q (valid: memory, sqlite, postgres, clickhouse)", c.Storage.Backend)
	}

	return nil
}

func validateAxis(key string, values []float64, ok func(float64) bool) error {
	if len(values) == 0 {
		return invalid(key, "must list at least one value")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || !ok(v) {
			return invalid(fmt.Sprintf("%s[%d]", key, i), "value %g out of range", v)
		}
	}
	return nil
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

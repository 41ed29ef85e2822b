package domain

// SweepRecord describes one executed sweep.
// ConfigYAML holds the canonical configuration needed to re-execute it.
type SweepRecord struct {
	SweepID      string
	Seed         int64
	ConfigYAML   string
	GridPoints   int
	RunsPerPoint int
	TotalRuns    int // rows actually produced
	FailedRuns   int // repetitions skipped after an error
	SmokeTest    bool
	CreatedAt    int64 // Unix milliseconds
}

// Package stats persists cumulative dashboard metrics across analysis runs
// in a small JSON file.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Iron-Ham/council/internal/pipeline"
	"github.com/Iron-Ham/council/internal/schema"
)

// Snapshot is the dashboard view of all analyses so far. The average risk
// score is kept on a 0-100 scale.
type Snapshot struct {
	TotalContracts   int            `json:"total_contracts"`
	HighRiskClauses  int            `json:"high_risk_clauses"`
	AvgRiskScore     float64        `json:"avg_risk_score"`
	TotalClauses     int            `json:"total_clauses"`
	RiskDistribution map[string]int `json:"risk_distribution"`
}

// emptySnapshot returns the zero state with every known risk level present
// in the distribution.
func emptySnapshot() Snapshot {
	return Snapshot{
		RiskDistribution: map[string]int{
			schema.RiskHigh:     0,
			schema.RiskModerate: 0,
			schema.RiskLow:      0,
			schema.RiskNone:     0,
		},
	}
}

// Store reads and updates the persisted snapshot. Safe for concurrent use.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store backed by the given file path. The file is
// created on first Record.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the current snapshot, or the zero state when no file exists
// yet.
func (s *Store) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading stats file: %w", err)
	}

	snap := emptySnapshot()
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parsing stats file: %w", err)
	}
	if snap.RiskDistribution == nil {
		snap.RiskDistribution = emptySnapshot().RiskDistribution
	}
	return snap, nil
}

// Record folds one contract's results into the snapshot, persists it, and
// returns the updated state. The contract's mean clause score is rescaled
// to 0-100 before entering the running average.
func (s *Store) Record(results []pipeline.Result) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}

	snap.TotalContracts++

	var contractTotal float64
	for _, res := range results {
		snap.TotalClauses++
		level := res.RiskLevel
		if level == "" {
			level = schema.RiskNone
		}
		snap.RiskDistribution[level]++
		if level == schema.RiskHigh {
			snap.HighRiskClauses++
		}
		contractTotal += res.FinalScore
	}

	var contractAvg float64
	if len(results) > 0 {
		contractAvg = contractTotal / float64(len(results))
	}
	snap.AvgRiskScore = (snap.AvgRiskScore*float64(snap.TotalContracts-1) + contractAvg*10) / float64(snap.TotalContracts)

	raw, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding stats: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return Snapshot{}, fmt.Errorf("writing stats file: %w", err)
	}
	return snap, nil
}

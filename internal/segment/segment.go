// Package segment splits a contract into atomic clause units using the
// configured segmenter backend. Each unit then travels independently
// through the deliberation pipeline.
package segment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/prompt"
	"github.com/Iron-Ham/council/internal/retry"
	"github.com/Iron-Ham/council/internal/schema"
)

// segmentedClause is the wire shape the segmentation prompt requests. The
// heading is prompt scaffolding only and is not carried into the pipeline.
type segmentedClause struct {
	ID      string `json:"clause_id"`
	Heading string `json:"clause_heading"`
	Text    string `json:"clause_text"`
}

// Segmenter turns contract text into clause units.
type Segmenter struct {
	registry *backend.Registry
	executor *retry.Executor
	logger   *logging.Logger
}

// New creates a Segmenter.
func New(registry *backend.Registry, executor *retry.Executor, logger *logging.Logger) *Segmenter {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Segmenter{
		registry: registry,
		executor: executor,
		logger:   logger,
	}
}

// validateClauseList accepts any JSON array of objects. Per-entry problems
// are not validation failures; malformed entries are dropped after the call
// succeeds rather than burning retry budget on an otherwise usable list.
func validateClauseList(raw json.RawMessage) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return errors.NewBackendError(errors.KindMalformedOutput, "", "output is not a JSON list", err)
	}
	if len(entries) == 0 {
		return errors.NewValidationError("clauses", "segmentation produced an empty list")
	}
	return nil
}

// Segment asks the segmenter backend to split the contract and returns the
// usable units in the order the segmenter produced them. Entries without
// clause text are dropped with a warning; units missing an identifier get a
// positional one. When nothing usable remains the whole contract is
// unprocessable and ErrNoValidUnits is returned.
func (s *Segmenter) Segment(ctx context.Context, contractText string) ([]schema.Unit, error) {
	b, err := s.registry.Segmenter()
	if err != nil {
		return nil, err
	}

	raw, err := s.executor.Execute(ctx, func(ctx context.Context) (string, error) {
		return b.Complete(ctx, prompt.Segmentation(contractText))
	}, validateClauseList)
	if err != nil {
		return nil, fmt.Errorf("segmenting contract: %w", err)
	}

	var clauses []segmentedClause
	if err := json.Unmarshal(raw, &clauses); err != nil {
		return nil, errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "clause list entries are not objects", err)
	}

	units := make([]schema.Unit, 0, len(clauses))
	for i, c := range clauses {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			s.logger.Warn("dropping segmented clause without text", "index", i, "clause_id", c.ID)
			continue
		}
		id := strings.TrimSpace(c.ID)
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		units = append(units, schema.Unit{ID: id, Text: text})
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("%w: segmentation yielded %d entries, none usable", errors.ErrNoValidUnits, len(clauses))
	}

	s.logger.Info("contract segmented", "segmenter", b.Name(), "units", len(units), "dropped", len(clauses)-len(units))
	return units, nil
}

// Package backend provides the model backends the council draws its
// assessors, segmenter, and arbitrator from. Each backend implements one
// capability: a prompt in, raw text out. Backends are constructed once at
// startup from immutable configuration; there is no global mutable registry.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/errors"
)

// Backend is a single model backend capable of completing a prompt.
// Implementations must be safe for concurrent use by multiple in-flight
// calls.
type Backend interface {
	// Name returns the backend identifier ("openai", "claude", "gemini").
	Name() string
	// Complete sends the prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// sharedClient is reused by every backend so connections are pooled per
// process. Per-call deadlines come from the caller's context.
var sharedClient = &http.Client{}

// New constructs a Backend by identifier. The credential is resolved from
// the configured environment variable at construction time.
func New(name string, cfg config.BackendConfig) (Backend, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s requires %s", errors.ErrMissingCredential, name, cfg.APIKeyEnv)
	}

	switch strings.ToLower(name) {
	case "openai":
		return newOpenAI(cfg, apiKey), nil
	case "claude":
		return newClaude(cfg, apiKey), nil
	case "gemini":
		return newGemini(cfg, apiKey), nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownBackend, name)
	}
}

// Registry holds the constructed backends for a run. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	backends   map[string]Backend
	active     []string
	segmenter  string
	arbitrator string
}

// NewRegistry constructs every backend the configuration references: the
// active assessors plus the segmentation and arbitration roles.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	if len(cfg.Council.Active) == 0 {
		return nil, errors.ErrNoActiveAssessors
	}

	needed := slices.Clone(cfg.Council.Active)
	for _, role := range []string{cfg.Council.Segmenter, cfg.Council.Arbitrator} {
		if !slices.Contains(needed, role) {
			needed = append(needed, role)
		}
	}

	backends := make(map[string]Backend, len(needed))
	for _, name := range needed {
		bc, ok := cfg.Backend(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnknownBackend, name)
		}
		b, err := New(name, bc)
		if err != nil {
			return nil, err
		}
		backends[name] = b
	}

	return &Registry{
		backends:   backends,
		active:     slices.Clone(cfg.Council.Active),
		segmenter:  cfg.Council.Segmenter,
		arbitrator: cfg.Council.Arbitrator,
	}, nil
}

// NewRegistryFromBackends builds a registry from pre-constructed backends.
// Intended for tests with fake backends.
func NewRegistryFromBackends(active []string, segmenter, arbitrator string, backends map[string]Backend) *Registry {
	return &Registry{
		backends:   backends,
		active:     slices.Clone(active),
		segmenter:  segmenter,
		arbitrator: arbitrator,
	}
}

// Get returns the backend for the given identifier.
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// Active returns the ordered list of active assessor identifiers. The order
// is stable and is the single source of truth for anonymization labels.
func (r *Registry) Active() []string {
	return slices.Clone(r.active)
}

// Segmenter returns the backend assigned the segmentation role.
func (r *Registry) Segmenter() (Backend, error) {
	b, ok := r.backends[r.segmenter]
	if !ok {
		return nil, fmt.Errorf("%w: segmenter %s", errors.ErrUnknownBackend, r.segmenter)
	}
	return b, nil
}

// Arbitrator returns the backend assigned the arbitration role.
func (r *Registry) Arbitrator() (Backend, error) {
	b, ok := r.backends[r.arbitrator]
	if !ok {
		return nil, fmt.Errorf("%w: arbitrator %s", errors.ErrUnknownBackend, r.arbitrator)
	}
	return b, nil
}

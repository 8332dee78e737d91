package cmd

import (
	"fmt"

	"github.com/Iron-Ham/council/internal/arbiter"
	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/council"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/pipeline"
	"github.com/Iron-Ham/council/internal/retry"
	"github.com/Iron-Ham/council/internal/review"
	"github.com/Iron-Ham/council/internal/segment"
)

// app bundles the wired pipeline stages every command needs.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	segmenter *segment.Segmenter
	driver    *pipeline.Driver
}

// buildApp loads configuration and wires the backend registry, the retry
// executor, and the pipeline stages.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}

	registry, err := backend.NewRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("building backend registry: %w", err)
	}

	executor := retry.NewExecutor(retry.Policy{
		MaxRetries:  cfg.Retry.MaxRetries,
		BaseDelay:   cfg.Retry.BaseDelay(),
		CallTimeout: cfg.Retry.CallTimeout(),
	}, logger)

	driver := pipeline.NewDriver(
		council.NewPool(registry, executor, logger),
		review.NewCoordinator(registry, executor, logger),
		arbiter.New(registry, executor, logger),
		pipeline.Options{
			VarianceThreshold: cfg.Disagreement.VarianceThreshold,
			BatchSize:         cfg.Batch.Size,
			InterBatchDelay:   cfg.Batch.InterBatchDelay(),
		},
		logger,
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		segmenter: segment.New(registry, executor, logger),
		driver:    driver,
	}, nil
}

// Package core has the collection and analysis entry points.
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repometrics/core/synth"
	"github.com/huangsam/repometrics/internal/chart"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/outwriter"
	"github.com/huangsam/repometrics/schema"
)

// ExecutorFunc defines the function signature for executing the different modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

var writer = outwriter.NewOutWriter()

// ExecuteCollect harvests and summarizes repositories and prints them to stdout.
// It serves as the main entry point for the 'collect' mode.
func ExecuteCollect(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	repos, duration, err := GetCollectResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return writer.WriteRepositories(repos, cfg, duration)
}

// ExecuteAnalyze runs the full pipeline, persists the dataset, renders the
// charts and the report, and prints the correlations to stdout.
// It serves as the main entry point for the 'analyze' mode.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	ds, duration, err := GetAnalyzeResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	paths, err := writer.WriteDataset(ds, cfg)
	if err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if cfg.Charts {
		charts, err := chart.WritePieCharts(cfg.OutputDir, ds.Table)
		if err != nil {
			return fmt.Errorf("failed to write charts: %w", err)
		}
		paths = append(paths, charts...)
	}
	report, err := writer.WriteReport(ds, cfg)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	paths = append(paths, report)

	if !shouldSuppressHeader(ctx) {
		for _, p := range paths {
			_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %s\n", p)
		}
		if err := outwriter.PrintSummary(os.Stderr, ds); err != nil {
			return err
		}
	}
	return writer.WriteCorrelations(ds, cfg, duration)
}

// ExecuteMetrics prints the derivation of every synthesized metric.
// It serves as the main entry point for the 'metrics' mode.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return writer.WriteMetrics(synth.Definitions(), cfg)
}

// GetCollectResults runs the collection stages and returns the repositories
// with the elapsed time.
func GetCollectResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.Repository, time.Duration, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogCollectHeader(os.Stderr, cfg)
	}
	p, _ := newPipelineFromConfig(ctx, cfg, mgr)
	repos, _, err := p.CollectRepositories(ctx, cfg.Query, cfg.Population)
	if err != nil {
		return nil, 0, err
	}
	return repos, time.Since(start), nil
}

// GetAnalyzeResults runs the whole pipeline and records the run in the
// analysis store when one is configured.
func GetAnalyzeResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Dataset, time.Duration, error) {
	start := time.Now()
	p, seed := newPipelineFromConfig(ctx, cfg, mgr)
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalyzeHeader(os.Stderr, cfg, seed)
	}

	tracker := beginTracking(mgr, cfg, seed, loggerFromContext(ctx))
	ds, err := p.Run(ctx, optionsFromConfig(cfg))
	if err != nil {
		tracker.abort(err)
		return nil, 0, err
	}
	ds.RunUUID = tracker.uuid
	ds.Seed = seed
	tracker.finish(ds)
	return ds, time.Since(start), nil
}

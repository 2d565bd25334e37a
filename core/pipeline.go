package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/huangsam/repometrics/core/algo"
	"github.com/huangsam/repometrics/core/pager"
	"github.com/huangsam/repometrics/core/summary"
	"github.com/huangsam/repometrics/core/synth"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/forgeclient"
	"github.com/huangsam/repometrics/internal/logger"
	"github.com/huangsam/repometrics/schema"
)

// Collector is the paging stage of the pipeline.
type Collector interface {
	Collect(ctx context.Context, query schema.SearchQuery, target int) ([]json.RawMessage, error)
}

var _ Collector = &pager.Pager{} // Compile-time check

// PipelineOptions are the per-run inputs of the pipeline.
type PipelineOptions struct {
	Query          schema.SearchQuery
	Population     int
	Subset         int // 0 means every collected repository
	ProcessMetrics []string
	QualityMetrics []string
}

// optionsFromConfig extracts the pipeline options from the validated config.
func optionsFromConfig(cfg *contract.Config) PipelineOptions {
	return PipelineOptions{
		Query:          cfg.Query,
		Population:     cfg.Population,
		Subset:         cfg.Subset,
		ProcessMetrics: cfg.ProcessMetrics,
		QualityMetrics: cfg.QualityMetrics,
	}
}

// Pipeline sequences collection, summarization, synthesis and correlation.
// Each stage hands an owned value to the next one.
type Pipeline struct {
	collector   Collector
	summarizer  *summary.Summarizer
	synthesizer *synth.Synthesizer
	log         *logger.Logger
}

// NewPipeline wires the given stages together.
func NewPipeline(collector Collector, summarizer *summary.Summarizer, synthesizer *synth.Synthesizer, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{collector: collector, summarizer: summarizer, synthesizer: synthesizer, log: log}
}

// newPipelineFromConfig builds the production pipeline: HTTP client, page cache,
// rate-limited pager and a seeded synthesizer. The seed in use is returned.
func newPipelineFromConfig(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Pipeline, uint64) {
	log := loggerFromContext(ctx)
	client := withSearchCache(forgeclient.NewFromConfig(cfg), mgr, cfg, log)
	collector := pager.New(client, pager.OptionsFromConfig(cfg), log)
	src, seed := synth.NewSourceFromSeed(cfg.Seed)
	return NewPipeline(collector, summary.New(), synth.New(src), log), seed
}

// CollectRepositories harvests and summarizes up to population repositories.
// An API error that ends the collection early is logged and the partial
// collection is kept; any other collection error is returned. The second
// result counts the records that were skipped.
func (p *Pipeline) CollectRepositories(ctx context.Context, query schema.SearchQuery, population int) ([]schema.Repository, int, error) {
	raws, err := p.collector.Collect(ctx, query, population)
	if err != nil {
		var api *contract.APIError
		if !errors.As(err, &api) {
			return nil, 0, err
		}
		p.log.Warn("continuing with partial collection", "collected", len(raws), "error", err)
	}
	repos, skipped := SummarizeAll(p.summarizer, raws, p.log)
	p.log.Info("repositories collected", "query", query.String(), "repositories", len(repos), "skipped", skipped)
	return repos, skipped, nil
}

// Run executes the whole pipeline.
func (p *Pipeline) Run(ctx context.Context, opts PipelineOptions) (*schema.Dataset, error) {
	repos, skipped, err := p.CollectRepositories(ctx, opts.Query, opts.Population)
	if err != nil {
		return nil, err
	}

	table := p.synthesizer.SynthesizeAll(SelectSubset(repos, opts.Subset))

	matrix, pairErrs := algo.Correlate(table, opts.ProcessMetrics, opts.QualityMetrics)
	for _, err := range pairErrs {
		p.log.Warn("correlation pair omitted", "error", err)
	}
	p.log.Info("correlations computed", "rows", table.Len(), "pairs", len(matrix), "omitted", len(pairErrs))

	return &schema.Dataset{
		Repositories: repos,
		Table:        table,
		Correlations: matrix,
		Skipped:      skipped,
		Omitted:      len(pairErrs),
	}, nil
}

// SummarizeAll summarizes raws in order. Records that fail to parse, and
// records whose full name was already seen, are skipped with a warning.
func SummarizeAll(s *summary.Summarizer, raws []json.RawMessage, log *logger.Logger) ([]schema.Repository, int) {
	repos := make([]schema.Repository, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	skipped := 0
	for i, raw := range raws {
		repo, err := s.Summarize(raw)
		if err != nil {
			log.Warn("skipping unparseable record", "index", i, "error", err)
			skipped++
			continue
		}
		if _, dup := seen[repo.FullName]; dup {
			log.Warn("skipping duplicate repository", "index", i, "full_name", repo.FullName)
			skipped++
			continue
		}
		seen[repo.FullName] = struct{}{}
		repos = append(repos, repo)
	}
	return repos, skipped
}

// SelectSubset returns the first n repositories, or all of them when n is 0
// or exceeds the collection.
func SelectSubset(repos []schema.Repository, n int) []schema.Repository {
	if n <= 0 || n >= len(repos) {
		return repos
	}
	return repos[:n]
}

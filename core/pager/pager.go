// Package pager harvests search results page by page under the API rate limits.
package pager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/logger"
	"github.com/huangsam/repometrics/schema"
)

// Options controls page size and the three wait intervals.
type Options struct {
	PageSize   int
	Cooldown   time.Duration // wait after a throttling response
	RetryWait  time.Duration // wait after a transport error
	Pace       time.Duration // wait between successful pages
	MaxRetries uint64        // transport retries per page, 0 means unlimited
}

// OptionsFromConfig extracts the pager options from the validated config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		PageSize:   cfg.PageSize,
		Cooldown:   cfg.Cooldown,
		RetryWait:  cfg.RetryWait,
		Pace:       cfg.Pace,
		MaxRetries: cfg.MaxRetries,
	}
}

// Pager collects raw repository records from a SearchClient.
type Pager struct {
	client   contract.SearchClient
	opts     Options
	timer    backoff.Timer
	log      *logger.Logger
	requests int
}

// New returns a pager that waits on real timers.
func New(client contract.SearchClient, opts Options, log *logger.Logger) *Pager {
	if opts.PageSize <= 0 || opts.PageSize > contract.MaxPageSize {
		opts.PageSize = contract.DefaultPageSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pager{client: client, opts: opts, timer: &realTimer{}, log: log.With("component", "pager")}
}

// WithTimer replaces the timer used for every wait.
func (p *Pager) WithTimer(t backoff.Timer) *Pager {
	p.timer = t
	return p
}

// Requests returns how many page requests were issued, retries included.
func (p *Pager) Requests() int {
	return p.requests
}

// Collect accumulates up to target raw records in API order.
//
// It stops early on an empty page. A non-retryable API error also stops the
// collection; the records gathered so far are returned along with the error.
func (p *Pager) Collect(ctx context.Context, query schema.SearchQuery, target int) ([]json.RawMessage, error) {
	if target <= 0 {
		return nil, nil
	}
	// per_page stays constant so page offsets never overlap; the last page is truncated
	perPage := min(p.opts.PageSize, target)

	out := make([]json.RawMessage, 0, target)
	cached := false
	for page := 1; len(out) < target; page++ {
		// pacing only spaces out network requests
		if page > 1 && !cached {
			if err := p.wait(ctx, p.opts.Pace); err != nil {
				return out, err
			}
		}

		items, err := p.fetch(ctx, query, page, perPage)
		cached = err == nil && p.servedFromCache()
		if err != nil {
			var api *contract.APIError
			if errors.As(err, &api) {
				p.log.Warn("collection ended by api error", "page", page, "status", api.StatusCode, "collected", len(out), "error", err)
			}
			return out, err
		}
		if len(items) == 0 {
			p.log.Info("search results exhausted", "page", page, "collected", len(out))
			break
		}

		if remaining := target - len(out); len(items) > remaining {
			items = items[:remaining]
		}
		out = append(out, items...)
		p.log.Debug("page collected", "page", page, "items", len(items), "collected", len(out), "target", target)
	}
	return out, nil
}

// servedFromCache reports whether the client answered the last page from its cache.
func (p *Pager) servedFromCache() bool {
	r, ok := p.client.(contract.CacheReporter)
	return ok && r.ServedFromCache()
}

// fetch requests a single page, retrying throttling and transport errors on the same page.
func (p *Pager) fetch(ctx context.Context, query schema.SearchQuery, page, perPage int) ([]json.RawMessage, error) {
	policy := &waitPolicy{cooldown: p.opts.Cooldown, retryWait: p.opts.RetryWait, maxRetries: p.opts.MaxRetries}

	var items []json.RawMessage
	op := func() error {
		p.requests++
		res, err := p.client.SearchPage(ctx, query, page, perPage)
		policy.last = err
		if err == nil {
			items = res
			return nil
		}
		if !contract.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		p.log.Warn("retrying page", "page", page, "wait", wait, "error", err)
	}

	err := backoff.RetryNotifyWithTimer(op, backoff.WithContext(policy, ctx), notify, p.timer)
	if err == nil {
		return items, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if contract.IsRetryable(err) {
		return nil, fmt.Errorf("%w after %d transport retries: %w", contract.ErrRetriesExhausted, p.opts.MaxRetries, err)
	}
	return nil, err
}

// wait blocks for d or until ctx is done.
func (p *Pager) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	p.timer.Start(d)
	select {
	case <-ctx.Done():
		p.timer.Stop()
		return ctx.Err()
	case <-p.timer.C():
		return nil
	}
}

// waitPolicy picks the wait from the class of the last error. Throttling
// never counts against the retry ceiling.
type waitPolicy struct {
	cooldown   time.Duration
	retryWait  time.Duration
	maxRetries uint64
	failures   uint64
	last       error
}

var _ backoff.BackOff = &waitPolicy{} // Compile-time check

func (w *waitPolicy) NextBackOff() time.Duration {
	var rl *contract.RateLimitError
	if errors.As(w.last, &rl) {
		return w.cooldown
	}
	w.failures++
	if w.maxRetries > 0 && w.failures > w.maxRetries {
		return backoff.Stop
	}
	return w.retryWait
}

func (w *waitPolicy) Reset() {
	w.failures = 0
	w.last = nil
}

// realTimer implements backoff.Timer on top of time.Timer.
type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) Start(d time.Duration) {
	if t.timer == nil {
		t.timer = time.NewTimer(d)
		return
	}
	t.timer.Reset(d)
}

func (t *realTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *realTimer) C() <-chan time.Time {
	return t.timer.C
}

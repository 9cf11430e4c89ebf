// Package verify confirms that a processed document is visible in both stores.
// Store errors never escape: an unreachable store simply does not confirm.
package verify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// RelationalChecker looks up an invoice row by document name.
type RelationalChecker interface {
	Exists(ctx context.Context, name string, strict bool) (bool, error)
}

// DocumentChecker looks up a stored document by key.
type DocumentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Report is the result of one or more verification attempts.
type Report struct {
	Relational bool `json:"relational"`
	Document   bool `json:"document"`
	Attempts   int  `json:"attempts"`
}

// Confirmed reports whether both stores hold the document.
func (r Report) Confirmed() bool {
	return r.Relational && r.Document
}

// Options controls the retry budget and strictness of verification.
type Options struct {
	Attempts int
	Delay    time.Duration
	Strict   bool
}

const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

// Verifier runs existence checks against both stores.
type Verifier struct {
	relational RelationalChecker
	documents  DocumentChecker
	opts       Options
	logger     *slog.Logger
}

// New creates a Verifier. Zero options fall back to the defaults.
func New(rel RelationalChecker, docs DocumentChecker, opts Options, logger *slog.Logger) *Verifier {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Verifier{
		relational: rel,
		documents:  docs,
		opts:       opts,
		logger:     logger.With("system", "verify"),
	}
}

// Check runs both existence checks once, concurrently, using the configured strictness.
func (v *Verifier) Check(ctx context.Context, name string) Report {
	return v.check(ctx, name, v.opts.Strict)
}

// CheckStrict runs both checks once with strictness chosen by the caller.
func (v *Verifier) CheckStrict(ctx context.Context, name string, strict bool) Report {
	return v.check(ctx, name, strict)
}

func (v *Verifier) check(ctx context.Context, name string, strict bool) Report {
	var r Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ok, err := v.relational.Exists(gctx, name, strict)
		if err != nil {
			v.logger.Warn("relational check failed", "pdf_name", name, "error", err)
			return nil
		}
		r.Relational = ok
		return nil
	})

	g.Go(func() error {
		ok, err := v.documents.Exists(gctx, name)
		if err != nil {
			v.logger.Warn("document check failed", "pdf_name", name, "error", err)
			return nil
		}
		r.Document = ok
		return nil
	})

	g.Wait()
	r.Attempts = 1
	return r
}

// Confirm retries Check until both stores confirm, the attempt budget is
// spent, or ctx is done. An unconfirmed report means verification is delayed.
func (v *Verifier) Confirm(ctx context.Context, name string) Report {
	var r Report
	for attempt := 1; attempt <= v.opts.Attempts; attempt++ {
		r = v.Check(ctx, name)
		r.Attempts = attempt

		if r.Confirmed() {
			v.logger.Info("verification confirmed", "pdf_name", name, "attempts", attempt)
			return r
		}
		if attempt == v.opts.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			v.logger.Warn("verification interrupted", "pdf_name", name, "attempts", attempt, "error", ctx.Err())
			return r
		case <-time.After(v.opts.Delay):
		}
	}

	v.logger.Warn("verification delayed",
		"pdf_name", name,
		"attempts", r.Attempts,
		"relational", r.Relational,
		"document", r.Document,
	)
	return r
}

// Package reconcile scores a roster against the coach log server.
//
// Each record moves Pending → Scored exactly once: a blank identifier is
// skipped with an empty score, anything else is probed and scored full or
// zero credit. Records are processed one at a time, in roster order, with a
// fixed pause after every probe to keep the request rate polite. Writing the
// scored roster (Scored → Written) is left to the caller, which does it once
// after Run returns.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/flarebyte/coachgrade/internal/probe"
	"github.com/flarebyte/coachgrade/internal/roster"
)

// Config holds the scoring values and the throttle.
type Config struct {
	FullCredit int
	ZeroCredit int
	// Delay is slept after every probe, whatever its outcome. It is
	// independent of the probe timeout.
	Delay time.Duration
}

// Option customises a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for transport-failure warnings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress sets where per-record progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(r *Reconciler) {
		if w != nil {
			r.progress = w
		}
	}
}

// WithSleep replaces the throttle sleep.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// Reconciler probes every record of a roster and fills in its score.
type Reconciler struct {
	cfg      Config
	prober   probe.Prober
	logger   *zap.Logger
	progress io.Writer
	sleep    func(context.Context, time.Duration) error
}

// New returns a Reconciler. Without options it logs nothing and prints no progress.
func New(cfg Config, p probe.Prober, opts ...Option) *Reconciler {
	r := &Reconciler{
		cfg:      cfg,
		prober:   p,
		logger:   zap.NewNop(),
		progress: io.Discard,
		sleep:    sleepContext,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run scores ro in place and returns the run summary. Probe failures never
// fail the run; only context cancellation does, in which case the summary
// covers the records scored so far.
func (r *Reconciler) Run(ctx context.Context, ro *roster.Roster) (Summary, error) {
	s := Summary{Total: len(ro.Records)}
	for _, rec := range ro.Records {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		res := r.score(ctx, rec)
		s.add(res)
		if res.Status == Skipped {
			continue
		}
		if err := r.sleep(ctx, r.cfg.Delay); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (r *Reconciler) score(ctx context.Context, rec *roster.Record) RecordResult {
	id, name := rec.ID(), rec.Name()
	res := RecordResult{Line: rec.Line, ID: id, Name: rec.DisplayName()}

	if id == "" {
		rec.Set(roster.ScoreColumn, "")
		res.Status = Skipped
		res.Name = name
		fmt.Fprintf(r.progress, "  SKIP  (no ID): %s\n", name)
		return res
	}

	pr := r.prober.Probe(ctx, id)
	res.Outcome = pr.Outcome
	res.StatusCode = pr.StatusCode
	if pr.Found() {
		res.Status = Accessed
		res.Score = strconv.Itoa(r.cfg.FullCredit)
		fmt.Fprintf(r.progress, "  FOUND  %8s  %s\n", id, name)
	} else {
		res.Status = NotAccessed
		res.Score = strconv.Itoa(r.cfg.ZeroCredit)
		if pr.Outcome == probe.Unknown {
			r.logger.Warn("network error, scoring as not accessed",
				zap.String("student_num", id),
				zap.String("url", pr.URL),
				zap.Error(pr.Err))
			fmt.Fprintf(r.progress, "  MISSING %8s  %s  (network error)\n", id, name)
		} else {
			fmt.Fprintf(r.progress, "  MISSING %8s  %s\n", id, name)
		}
	}
	rec.Set(roster.ScoreColumn, res.Score)
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

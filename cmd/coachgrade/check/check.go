package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flarebyte/coachgrade/cmd/coachgrade/flags"
	"github.com/flarebyte/coachgrade/internal/config"
	"github.com/flarebyte/coachgrade/internal/probe"
)

type line struct {
	StudentNum string `json:"studentNum"`
	URL        string `json:"url"`
	Outcome    string `json:"outcome"`
	Status     int    `json:"status,omitempty"`
	ElapsedMs  int64  `json:"elapsedMs"`
	Error      string `json:"error,omitempty"`
}

type usageError struct{ error }

func (usageError) ExitCode() int { return 2 }

func (e usageError) Unwrap() error { return e.error }

// NewCmd builds a fresh `check` command.
func NewCmd() *cobra.Command {
	var (
		f            flags.Config
		flagJSON     bool
		flagParallel int
	)
	cmd := &cobra.Command{
		Use:           "check <student-num>...",
		Short:         "Probe the coach log of individual students without touching a roster",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagParallel < 1 {
				return usageError{fmt.Errorf("%w: --parallel must be at least 1, got %d", config.ErrInvalid, flagParallel)}
			}
			ids := make([]string, len(args))
			for i, a := range args {
				ids[i] = strings.TrimSpace(a)
				if ids[i] == "" {
					return usageError{fmt.Errorf("%w: student number %d is blank", config.ErrInvalid, i+1)}
				}
			}
			cfg, err := f.Resolve(cmd)
			if err != nil {
				if errors.Is(err, config.ErrInvalid) {
					return usageError{err}
				}
				return err
			}
			logger, err := f.Logger()
			if err != nil {
				return usageError{err}
			}
			defer func() { _ = logger.Sync() }()

			p := probe.NewHTTP(probe.HTTPConfig{
				BaseURL:   cfg.BaseURL,
				UserAgent: cfg.UserAgent,
				Timeout:   cfg.Timeout,
			}, logger)
			out := cmd.OutOrStdout()
			for _, res := range probeAll(cmd.Context(), p, ids, flagParallel) {
				if err := printResult(out, res, flagJSON); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f.BindProbe(cmd)
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Print one JSON object per student")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "Number of students probed at the same time")
	return cmd
}

// probeAll returns one result per id in argument order, running at most
// limit probes at once.
func probeAll(ctx context.Context, p probe.Prober, ids []string, limit int) []probe.Result {
	results := make([]probe.Result, len(ids))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = p.Probe(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printResult(w io.Writer, res probe.Result, asJSON bool) error {
	if asJSON {
		l := line{
			StudentNum: res.ID,
			URL:        res.URL,
			Outcome:    res.Outcome.String(),
			Status:     res.StatusCode,
			ElapsedMs:  res.Elapsed.Milliseconds(),
		}
		if res.Err != nil {
			l.Error = res.Err.Error()
		}
		b, err := json.Marshal(l)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	switch res.Outcome {
	case probe.Present:
		_, err := fmt.Fprintf(w, "FOUND   %s  %s (%d)\n", res.ID, res.URL, res.StatusCode)
		return err
	case probe.Absent:
		_, err := fmt.Fprintf(w, "MISSING %s  %s (%d)\n", res.ID, res.URL, res.StatusCode)
		return err
	default:
		_, err := fmt.Fprintf(w, "UNKNOWN %s  %s: %v\n", res.ID, res.URL, res.Err)
		return err
	}
}

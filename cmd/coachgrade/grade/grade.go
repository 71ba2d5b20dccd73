package grade

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flarebyte/coachgrade/cmd/coachgrade/flags"
	"github.com/flarebyte/coachgrade/internal/config"
	"github.com/flarebyte/coachgrade/internal/probe"
	"github.com/flarebyte/coachgrade/internal/reconcile"
	"github.com/flarebyte/coachgrade/internal/report"
	"github.com/flarebyte/coachgrade/internal/roster"
)

// NewCmd builds a fresh `grade` command with its own flag state.
func NewCmd() *cobra.Command {
	var f flags.Config
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Score a class roster by checking each student's coach log on the server",
		Long: `Checks which students accessed the Engineering Coach by looking for
{base-url}/student_logs/{Student Num}.txt, then writes a copy of the roster
with the Score column filled in: full points when the log exists, zero when it
does not or the server could not be reached. Rows without a Student Num are
left unscored.

Safe to rerun at any time; the output file is rewritten from scratch.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.Resolve(cmd)
			if err != nil {
				return evaluateRunExit(err)
			}
			logger, err := f.Logger()
			if err != nil {
				return runExitError{code: exitCodeUsageErr, msg: err.Error(), err: err}
			}
			defer func() { _ = logger.Sync() }()

			prober := probe.NewHTTP(probe.HTTPConfig{
				BaseURL:   cfg.BaseURL,
				UserAgent: cfg.UserAgent,
				Timeout:   cfg.Timeout,
			}, logger)
			return evaluateRunExit(execute(cmd.Context(), cfg, prober, logger, cmd.OutOrStdout()))
		},
	}
	f.BindGrade(cmd)
	return cmd
}

// execute loads the roster, scores every record, then writes the roster and
// reports once. Nothing is written if loading or scoring fails.
func execute(ctx context.Context, cfg config.Config, p probe.Prober, logger *zap.Logger, out io.Writer) error {
	ro, err := roster.Load(cfg.InputPath)
	if err != nil {
		return err
	}
	logger.Debug("roster loaded",
		zap.String("path", cfg.InputPath),
		zap.Int("records", len(ro.Records)),
		zap.Strings("columns", ro.Header))

	report.Banner(out, len(ro.Records), cfg.BaseURL, cfg.Points, cfg.ZeroPoints)
	rc := reconcile.New(reconcile.Config{
		FullCredit: cfg.Points,
		ZeroCredit: cfg.ZeroPoints,
		Delay:      cfg.Delay,
	}, p, reconcile.WithLogger(logger), reconcile.WithProgress(out))

	summary, err := rc.Run(ctx, ro)
	if err != nil {
		return err
	}
	if err := roster.Write(cfg.OutputPath, ro); err != nil {
		return err
	}
	if cfg.SummaryOut != "" {
		if err := report.WriteYAML(cfg.SummaryOut, summary, report.RunInfo{
			BaseURL:    cfg.BaseURL,
			InputPath:  cfg.InputPath,
			OutputPath: cfg.OutputPath,
			FullCredit: cfg.Points,
			ZeroCredit: cfg.ZeroPoints,
		}); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if cfg.MetricsOut != "" {
		if err := report.WriteMetrics(cfg.MetricsOut, summary, cfg.Points); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	report.Text(out, summary, cfg.OutputPath)
	return nil
}

// Package flags binds the configuration flags shared by the coachgrade
// subcommands and resolves them against the config file and environment.
package flags

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flarebyte/coachgrade/internal/config"
	"github.com/flarebyte/coachgrade/internal/logging"
)

// Config holds raw flag values. Only flags the user actually set override
// the file and environment.
type Config struct {
	ConfigPath  string
	BaseURL     string
	Input       string
	Output      string
	Points      int
	TimeoutSecs int
	Delay       time.Duration
	SummaryOut  string
	MetricsOut  string
	Verbose     bool
	LogFormat   string
}

// BindProbe registers the flags every command that talks to the server needs.
func (f *Config) BindProbe(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Config file (.cue, .yaml or .yml)")
	fs.StringVar(&f.BaseURL, "base-url", config.DefaultBaseURL, "Base URL of the coach deployment")
	fs.IntVar(&f.TimeoutSecs, "timeout", int(config.DefaultTimeout/time.Second), "HTTP request timeout in seconds")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging")
	fs.StringVar(&f.LogFormat, "log-format", logging.FormatConsole, "Log format: console or json")
}

// BindGrade registers the roster, scoring and report flags.
func (f *Config) BindGrade(cmd *cobra.Command) {
	f.BindProbe(cmd)
	fs := cmd.Flags()
	fs.StringVar(&f.Input, "csv", config.DefaultInputPath, "Input class roster CSV")
	fs.StringVar(&f.Output, "out", config.DefaultOutputPath, "Output graded CSV")
	fs.IntVar(&f.Points, "points", config.DefaultPoints, "Points for completing the assignment")
	fs.DurationVar(&f.Delay, "delay", config.DefaultDelay, "Pause after every request")
	fs.StringVar(&f.SummaryOut, "summary-out", "", "Optional YAML run summary path")
	fs.StringVar(&f.MetricsOut, "metrics-out", "", "Optional Prometheus textfile path")
}

// Resolve layers defaults, the config file, the environment and explicitly
// set flags, in that order, and validates the result.
func (f *Config) Resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}
	fs := cmd.Flags()
	if fs.Changed("base-url") {
		cfg.BaseURL = f.BaseURL
	}
	if fs.Changed("timeout") {
		cfg.Timeout = time.Duration(f.TimeoutSecs) * time.Second
	}
	if fs.Changed("csv") {
		cfg.InputPath = f.Input
	}
	if fs.Changed("out") {
		cfg.OutputPath = f.Output
	}
	if fs.Changed("points") {
		cfg.Points = f.Points
	}
	if fs.Changed("delay") {
		cfg.Delay = f.Delay
	}
	if fs.Changed("summary-out") {
		cfg.SummaryOut = f.SummaryOut
	}
	if fs.Changed("metrics-out") {
		cfg.MetricsOut = f.MetricsOut
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Logger builds the logger selected by --verbose and --log-format.
func (f *Config) Logger() (*zap.Logger, error) {
	return logging.New(f.LogFormat, f.Verbose)
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults used when neither a config file, the environment nor a flag sets a value.
const (
	DefaultBaseURL    = "https://psd1.net/gemini2"
	DefaultInputPath  = "s2p9PST.csv"
	DefaultOutputPath = "coach_accessed_s2p9PST.csv"
	DefaultPoints     = 10
	DefaultZeroPoints = 0
	DefaultTimeout    = 8 * time.Second
	DefaultDelay      = 100 * time.Millisecond

	// DefaultUserAgent is sent on every probe; the hosting WAF rejects
	// requests that do not look like a desktop browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBaseURL = "COACHGRADE_BASE_URL"
	EnvTimeout = "COACHGRADE_TIMEOUT"
)

// ErrInvalid is wrapped by every configuration error.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of values a grading run consumes.
type Config struct {
	BaseURL    string
	InputPath  string
	OutputPath string
	Points     int
	ZeroPoints int
	Timeout    time.Duration
	Delay      time.Duration
	UserAgent  string

	// SummaryOut and MetricsOut are optional report destinations; empty disables them.
	SummaryOut string
	MetricsOut string
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		InputPath:  DefaultInputPath,
		OutputPath: DefaultOutputPath,
		Points:     DefaultPoints,
		ZeroPoints: DefaultZeroPoints,
		Timeout:    DefaultTimeout,
		Delay:      DefaultDelay,
		UserAgent:  DefaultUserAgent,
	}
}

// Load returns the defaults overlaid with the config file at path.
// Supported formats are CUE (.cue) and YAML (.yaml, .yml).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to read config: %w", ErrInvalid, err)
	}
	var fv fileValues
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		fv, err = parseCUE(data)
	case ".yaml", ".yml":
		fv, err = parseYAML(data)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q: expected .cue, .yaml or .yml", ErrInvalid, filepath.Ext(path))
	}
	if err != nil {
		return Config{}, err
	}
	fv.apply(&cfg)
	return cfg, nil
}

// ApplyEnv overlays environment overrides onto c.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be a whole number of seconds, got %q", ErrInvalid, EnvTimeout, v)
		}
		c.Timeout = time.Duration(secs) * time.Second
	}
	return nil
}

// Validate reports the first problem that would make a run meaningless.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base url is empty", ErrInvalid)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base url must be an absolute http(s) URL, got %q", ErrInvalid, c.BaseURL)
	}
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path is empty", ErrInvalid)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalid)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Timeout)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative, got %s", ErrInvalid, c.Delay)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("%w: user agent is empty", ErrInvalid)
	}
	return nil
}

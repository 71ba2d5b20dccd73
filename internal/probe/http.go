package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AcceptHeader favours plain text, which is what the log files are served as.
const AcceptHeader = "text/plain,text/html,*/*;q=0.8"

// HTTPConfig configures an HTTPProber.
type HTTPConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// HTTPProber probes the deployment server over HTTP.
type HTTPProber struct {
	cfg    HTTPConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTP builds an HTTPProber. The client is created once and reused for every probe.
func NewHTTP(cfg HTTPConfig, logger *zap.Logger) *HTTPProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProber{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Probe issues one GET for id's log file. HEAD is not used because the
// hosting server does not answer it reliably. The response body is closed
// as soon as the status is known; it is never downloaded. There is no retry.
func (p *HTTPProber) Probe(ctx context.Context, id string) Result {
	u := URL(p.cfg.BaseURL, id)
	res := Result{ID: id, URL: u}
	start := time.Now()

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		res.Outcome = Unknown
		res.Err = fmt.Errorf("build request: %w", err)
		return res
	}
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}
	req.Header.Set("Accept", AcceptHeader)

	resp, err := p.client.Do(req)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Outcome = Unknown
		res.Err = err
		return res
	}
	// Closing an unread body drops the connection instead of draining it.
	_ = resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		res.Outcome = Present
	} else {
		res.Outcome = Absent
	}
	p.logger.Debug("probe",
		zap.String("student_num", id),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

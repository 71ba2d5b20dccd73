// Package probe checks whether a student's coach log file exists on the
// deployment server.
//
// A probe is a single GET for {base}/student_logs/{id}.txt. Only the status
// line matters: 200 means the student used the coach, any other status means
// they did not, and a transport failure means we could not tell. The body is
// never read, since some logs are large.
//
// HTTPProber is the production implementation; Fake serves tests that must
// not touch the network.
package probe

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// LogsSegment is the collection path under the base URL holding per-student logs.
const LogsSegment = "student_logs"

// Outcome classifies a single probe.
type Outcome int

const (
	// Absent means the server answered with a non-200 status.
	Absent Outcome = iota
	// Present means the server answered 200.
	Present
	// Unknown means the request failed before a status arrived.
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Present:
		return "present"
	case Absent:
		return "absent"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Result is the outcome of one probe plus what was observed along the way.
type Result struct {
	ID      string
	URL     string
	Outcome Outcome
	// StatusCode is 0 when Outcome is Unknown.
	StatusCode int
	Elapsed    time.Duration
	// Err is the transport failure behind an Unknown outcome.
	Err error
}

// Found reports whether the probe counts as the student having accessed the coach.
// Unknown counts as not found.
func (r Result) Found() bool { return r.Outcome == Present }

// Prober is the capability the reconciler depends on.
type Prober interface {
	Probe(ctx context.Context, id string) Result
}

// URL joins base, LogsSegment and "<id>.txt". Trailing slashes on base are
// dropped; id is escaped as a single path segment.
func URL(base, id string) string {
	return strings.TrimRight(base, "/") + "/" + LogsSegment + "/" + url.PathEscape(id) + ".txt"
}

package reconcile

import "github.com/flarebyte/coachgrade/internal/probe"

// Status is the summary bucket a record lands in.
type Status string

const (
	// Accessed records had a log file on the server and got full credit.
	Accessed Status = "accessed"
	// NotAccessed records had no log file, or the server could not be reached.
	NotAccessed Status = "not_accessed"
	// Skipped records had a blank student number and were not probed.
	Skipped Status = "skipped"
)

// RecordResult is what happened to one record.
type RecordResult struct {
	Line int
	ID   string
	// Name is the display name: the student name, or the identifier when the
	// name is blank. Skipped records keep the raw (possibly empty) name.
	Name       string
	Status     Status
	Outcome    probe.Outcome
	StatusCode int
	Score      string
}

// Summary collects the buckets of a run, in roster order.
type Summary struct {
	Total       int
	Accessed    []string
	NotAccessed []string
	Skipped     []string
	// NetworkErrors counts NotAccessed records whose probe failed in transport.
	NetworkErrors int
	Results       []RecordResult
}

func (s *Summary) add(r RecordResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case Accessed:
		s.Accessed = append(s.Accessed, r.Name)
	case NotAccessed:
		s.NotAccessed = append(s.NotAccessed, r.Name)
		if r.Outcome == probe.Unknown {
			s.NetworkErrors++
		}
	case Skipped:
		s.Skipped = append(s.Skipped, r.Name)
	}
}

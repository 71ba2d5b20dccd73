package probe

import (
	"context"
	"errors"
	"net/http"
)

// ErrFakeTransport is the error a Fake attaches to Unknown outcomes.
var ErrFakeTransport = errors.New("fake transport failure")

// Fake is a deterministic Prober driven by a map of identifier to outcome.
// Identifiers missing from the map probe as Absent. Calls records every
// identifier probed, in order.
type Fake struct {
	Outcomes map[string]Outcome
	Calls    []string
}

// Probe returns the configured outcome for id without touching the network.
func (f *Fake) Probe(_ context.Context, id string) Result {
	f.Calls = append(f.Calls, id)
	res := Result{ID: id, URL: URL("http://fake.invalid", id), Outcome: f.Outcomes[id]}
	switch res.Outcome {
	case Present:
		res.StatusCode = http.StatusOK
	case Unknown:
		res.Err = ErrFakeTransport
	default:
		res.StatusCode = http.StatusNotFound
	}
	return res
}

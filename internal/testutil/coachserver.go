// Package testutil holds fixtures shared by command and end-to-end tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// CoachServer is a fake coach host that serves a log file for every
// student number it knows and 404 for everything else.
type CoachServer struct {
	*httptest.Server
	// Base is the value to pass as --base-url.
	Base string

	hits    atomic.Int64
	mu      sync.Mutex
	present map[string]bool
	paths   []string
}

// NewCoachServer starts a server whose logs live under prefix, e.g. "/gemini2".
// The server is closed when the test ends.
func NewCoachServer(t testing.TB, prefix string, present ...string) *CoachServer {
	t.Helper()
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	s := &CoachServer{present: map[string]bool{}}
	for _, id := range present {
		s.present[prefix+"/student_logs/"+id+".txt"] = true
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	s.Base = s.URL + prefix
	t.Cleanup(s.Close)
	return s
}

func (s *CoachServer) serve(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()
	if r.Method == http.MethodGet && s.present[r.URL.Path] {
		_, _ = w.Write([]byte("session log\n"))
		return
	}
	http.NotFound(w, r)
}

// Hits reports how many requests the server has received.
func (s *CoachServer) Hits() int64 { return s.hits.Load() }

// Paths returns the request paths in arrival order.
func (s *CoachServer) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// UnreachableBase returns a base URL nothing is listening on.
func UnreachableBase(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	return base
}

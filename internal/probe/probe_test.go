package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestURL(t *testing.T) {
	tests := []struct {
		base, id, want string
	}{
		{"https://psd1.net/gemini2", "1001", "https://psd1.net/gemini2/student_logs/1001.txt"},
		{"https://psd1.net/gemini2/", "1001", "https://psd1.net/gemini2/student_logs/1001.txt"},
		{"https://psd1.net/gemini2//", "1001", "https://psd1.net/gemini2/student_logs/1001.txt"},
		{"https://psd1.net", "a b", "https://psd1.net/student_logs/a%20b.txt"},
		{"https://psd1.net", "../x", "https://psd1.net/student_logs/..%2Fx.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, URL(tt.base, tt.id), "base=%q id=%q", tt.base, tt.id)
	}
}

func TestHTTPProber_Classification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coach/student_logs/1001.txt":
			_, _ = w.Write([]byte("session log"))
		case "/coach/student_logs/1003.txt":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/coach/", Timeout: 2 * time.Second}, zap.NewNop())

	tests := []struct {
		id      string
		outcome Outcome
		status  int
	}{
		{"1001", Present, http.StatusOK},
		{"1002", Absent, http.StatusNotFound},
		{"1003", Absent, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		res := p.Probe(context.Background(), tt.id)
		assert.Equal(t, tt.outcome, res.Outcome, "id %s", tt.id)
		assert.Equal(t, tt.status, res.StatusCode, "id %s", tt.id)
		assert.NoError(t, res.Err, "id %s", tt.id)
		assert.Equal(t, tt.outcome == Present, res.Found())
	}
}

func TestHTTPProber_SendsBrowserHeadersWithGET(t *testing.T) {
	type seen struct{ method, ua, accept string }
	got := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- seen{r.Method, r.Header.Get("User-Agent"), r.Header.Get("Accept")}
	}))
	defer srv.Close()

	p := NewHTTP(HTTPConfig{BaseURL: srv.URL, UserAgent: "Mozilla/5.0 test", Timeout: 2 * time.Second}, nil)
	res := p.Probe(context.Background(), "1001")
	require.Equal(t, Present, res.Outcome)

	s := <-got
	assert.Equal(t, http.MethodGet, s.method)
	assert.Equal(t, "Mozilla/5.0 test", s.ua)
	assert.Equal(t, AcceptHeader, s.accept)
}

func TestHTTPProber_DoesNotDownloadBody(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("first chunk of a very large log\n"))
		w.(http.Flusher).Flush()
		// The rest of the body never arrives until the test ends.
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTP(HTTPConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)

	done := make(chan Result, 1)
	go func() { done <- p.Probe(context.Background(), "1001") }()

	select {
	case res := <-done:
		assert.Equal(t, Present, res.Outcome)
		assert.NoError(t, res.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("probe waited for the response body")
	}
}

func TestHTTPProber_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/student_logs/1001.txt", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/archive/1001.txt", http.StatusFound)
	})
	mux.HandleFunc("/archive/1001.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewHTTP(HTTPConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	res := p.Probe(context.Background(), "1001")
	assert.Equal(t, Present, res.Outcome)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHTTPProber_ConnectionRefusedIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	p := NewHTTP(HTTPConfig{BaseURL: base, Timeout: 2 * time.Second}, nil)
	res := p.Probe(context.Background(), "1001")

	assert.Equal(t, Unknown, res.Outcome)
	assert.Equal(t, 0, res.StatusCode)
	assert.Error(t, res.Err)
	assert.False(t, res.Found())
}

func TestHTTPProber_TimeoutIsUnknown(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTP(HTTPConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	res := p.Probe(context.Background(), "1001")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, Unknown, res.Outcome)
	var ue *url.Error
	require.True(t, errors.As(res.Err, &ue), "want *url.Error, got %T", res.Err)
	assert.True(t, ue.Timeout())
}

func TestFake(t *testing.T) {
	f := &Fake{Outcomes: map[string]Outcome{"1": Present, "3": Unknown}}
	ctx := context.Background()

	assert.Equal(t, Present, f.Probe(ctx, "1").Outcome)
	assert.Equal(t, http.StatusNotFound, f.Probe(ctx, "2").StatusCode)
	r3 := f.Probe(ctx, "3")
	assert.Equal(t, Unknown, r3.Outcome)
	assert.ErrorIs(t, r3.Err, ErrFakeTransport)
	assert.Equal(t, []string{"1", "2", "3"}, f.Calls)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "present", Present.String())
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "invalid", Outcome(9).String())
}

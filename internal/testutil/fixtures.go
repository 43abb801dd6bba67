// Package testutil provides test helper utilities for insight tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// StateDir creates a temporary state directory seeded with the given files
// and returns its path. Files is a map of relative path -> content. The
// directory is automatically cleaned up when the test finishes.
func StateDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0700); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0600); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// Session returns a canned slept-session payload for the fake hub. wake and
// sleep are RFC3339 timestamps; score may be 0 to omit the sleep index.
func Session(id, sleep, wake string, score float64) map[string]any {
	s := map[string]any{
		"id":               id,
		"start_time":       sleep,
		"sleep_time":       sleep,
		"wake_time":        wake,
		"sleep_latency":    600.0,
		"time_in_sleep":    25200.0,
		"time_in_deep":     5400.0,
		"time_in_rem":      6300.0,
		"time_in_snoring":  300.0,
		"sleep_efficiency": 0.88,
		"rem_ratio":        0.25,
		"deep_ratio":       0.21,
	}
	if score > 0 {
		s["sleep_index"] = score
	}
	return s
}

// FakeHub simulates the SleepHub API for tests: session listing, session
// detail, and token refresh, with a configurable set of valid access tokens.
type FakeHub struct {
	Server *httptest.Server

	mu sync.Mutex
	// Sessions is the listing payload returned for any window.
	Sessions []map[string]any
	// Details maps session id -> detail payload.
	Details map[string]map[string]any
	// ValidTokens is the set of access tokens the hub accepts.
	ValidTokens map[string]bool
	// RefreshToken is the refresh token the hub accepts; refreshing mints
	// NextAccessToken and marks it valid.
	RefreshToken    string
	NextAccessToken string

	ListCalls    int
	DetailCalls  int
	RefreshCalls int
}

// NewFakeHub starts a fake hub accepting the given access token. Callers
// must Close it (usually via t.Cleanup).
func NewFakeHub(t *testing.T, accessToken string) *FakeHub {
	t.Helper()
	h := &FakeHub{
		Details:         map[string]map[string]any{},
		ValidTokens:     map[string]bool{accessToken: true},
		RefreshToken:    "rt-valid",
		NextAccessToken: "at-refreshed",
	}
	h.Server = httptest.NewServer(http.HandlerFunc(h.handle))
	t.Cleanup(h.Server.Close)
	return h
}

// URL returns the fake hub's base URL.
func (h *FakeHub) URL() string {
	return h.Server.URL
}

func (h *FakeHub) handle(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if strings.HasSuffix(r.URL.Path, "/refresh") {
		h.RefreshCalls++
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != h.RefreshToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h.ValidTokens[h.NextAccessToken] = true
		writeResult(w, map[string]any{
			"access_token":  h.NextAccessToken,
			"refresh_token": h.RefreshToken,
			"expires_in":    3600,
		})
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !h.ValidTokens[token] {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case strings.Contains(r.URL.Path, "/sessions/"):
		h.DetailCalls++
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		detail, ok := h.Details[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeResult(w, detail)
	case strings.HasSuffix(r.URL.Path, "/average-stats"):
		h.ListCalls++
		writeResult(w, map[string]any{
			"slept_sessions": h.Sessions,
			"average_stats":  map[string]any{},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// SetSessions replaces the listing payload.
func (h *FakeHub) SetSessions(sessions ...map[string]any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Sessions = sessions
}

// InvalidateToken revokes an access token so subsequent calls get 401.
func (h *FakeHub) InvalidateToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.ValidTokens, token)
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

// Package auth manages SleepHub credentials: the on-disk store and the
// refresh-and-retry controller that keeps authenticated calls alive.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asleep-ai/skills/internal/atomicfile"
)

// ErrNotConfigured indicates no usable credential file exists. The caller
// should instruct the user to run `insight setup`.
var ErrNotConfigured = errors.New("no credentials configured; run 'insight setup' first")

// accessMargin is subtracted from the access-token expiry so a token that is
// about to lapse mid-request is refreshed proactively.
const accessMargin = 30 * time.Second

const credentialsFile = "user.json"

// Credentials is the persisted token triple for one user. Zero expiry
// timestamps mean the lifetime is unknown (setup does not know it); unknown
// tokens are assumed valid and the reactive 401 path handles the rest.
type Credentials struct {
	UserID           string    `json:"user_id"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at,omitzero"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitzero"`
}

// AccessValid reports whether the access token is still usable at now,
// with a small safety margin before the recorded expiry.
func (c *Credentials) AccessValid(now time.Time) bool {
	if c.AccessToken == "" {
		return false
	}
	if c.AccessExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.AccessExpiresAt.Add(-accessMargin))
}

// RefreshValid reports whether the refresh token is still usable at now.
func (c *Credentials) RefreshValid(now time.Time) bool {
	if c.RefreshToken == "" {
		return false
	}
	if c.RefreshExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.RefreshExpiresAt)
}

// Store persists Credentials as user.json inside a state directory.
// Writes are atomic (temp file + rename) and owner-only readable.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at the state directory dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the credential file path, for diagnostics.
func (s *Store) Path() string {
	return filepath.Join(s.dir, credentialsFile)
}

// Load reads the credential file. A missing, unreadable, or malformed file
// yields ErrNotConfigured: the store is a cache of material the user can
// re-supply, so corrupt state degrades to "not set up" rather than a crash.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, ErrNotConfigured
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, ErrNotConfigured
	}
	if creds.UserID == "" || creds.AccessToken == "" {
		return nil, ErrNotConfigured
	}

	return &creds, nil
}

// Save atomically overwrites the credential file. Tokens are long-lived
// secrets, so the file is restricted to the owning user.
func (s *Store) Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}
	if err := atomicfile.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Package ledger persists the set of session ids already reported to the
// agent, deduplicating discovery across heartbeat invocations.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asleep-ai/skills/internal/atomicfile"
)

const ledgerFile = "ledger.json"

// Ledger is the in-memory form of ledger.json. The id set grows
// monotonically; it never shrinks except by deleting the file.
type Ledger struct {
	SeenSessionIDs []string  `json:"seen_session_ids"`
	LastCheckedAt  time.Time `json:"last_checked_at,omitzero"`

	seen map[string]struct{}
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{seen: map[string]struct{}{}}
}

// Seen reports whether a session id has already been recorded.
func (l *Ledger) Seen(id string) bool {
	_, ok := l.seen[id]
	return ok
}

// Add records a session id. Duplicates are ignored; insertion order is
// preserved in the persisted list.
func (l *Ledger) Add(id string) {
	if l.seen == nil {
		l.seen = map[string]struct{}{}
	}
	if _, ok := l.seen[id]; ok {
		return
	}
	l.seen[id] = struct{}{}
	l.SeenSessionIDs = append(l.SeenSessionIDs, id)
}

// Len returns the number of recorded session ids.
func (l *Ledger) Len() int {
	return len(l.SeenSessionIDs)
}

// rebuildIndex syncs the lookup map with the persisted slice after load.
func (l *Ledger) rebuildIndex() {
	l.seen = make(map[string]struct{}, len(l.SeenSessionIDs))
	for _, id := range l.SeenSessionIDs {
		l.seen[id] = struct{}{}
	}
}

// Store persists a Ledger as ledger.json inside a state directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at the state directory dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the ledger file path, for diagnostics.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ledgerFile)
}

// Load reads the ledger. A missing or malformed file yields a fresh empty
// ledger: the ledger is a dedup cache, not a source of truth, so corruption
// degrades to possible duplicate reports rather than a crash.
func (s *Store) Load() *Ledger {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return New()
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return New()
	}
	l.rebuildIndex()
	return &l
}

// Save atomically replaces the ledger file: either the whole updated set is
// committed or the previous state is retained. A crash between reporting and
// committing therefore re-reports the same sessions next time, which is the
// documented never-lose tradeoff.
func (s *Store) Save(l *Ledger) error {
	if l.SeenSessionIDs == nil {
		// Keep the file-format contract: an array, not null.
		l.SeenSessionIDs = []string{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling ledger: %w", err)
	}
	if err := atomicfile.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}
	return nil
}

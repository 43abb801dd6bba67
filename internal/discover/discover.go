// Package discover computes which remotely listed sessions have not yet been
// reported, without any server-side cursor.
package discover

import (
	"time"

	"github.com/asleep-ai/skills/internal/ledger"
	"github.com/asleep-ai/skills/internal/sleephub"
)

// Result is the outcome of one discovery pass. Updated holds the ledger with
// every returned id absorbed; it is the caller's job to persist it, and to do
// so only after the new sessions have been reported. If that persist fails,
// the same sessions surface again on the next pass — duplicates are
// tolerable, drops are not.
type Result struct {
	New     []sleephub.Session
	Updated *ledger.Ledger
}

// Discover returns the remote sessions whose id is absent from l, preserving
// the remote ordering (assumed chronological). The updated ledger absorbs the
// ids of ALL returned sessions, not just the new ones: a session listed in an
// earlier window before its analysis finalized must not be re-reported once
// it stabilizes under the same id. An empty remote list leaves the ledger
// untouched.
//
// An empty ledger is not special-cased: on a first-ever run every session in
// the window counts as new. Bounding that initial flood is the orchestrator's
// job via the lookback window.
func Discover(remote []sleephub.Session, l *ledger.Ledger, now time.Time) Result {
	if len(remote) == 0 {
		return Result{Updated: l}
	}

	var fresh []sleephub.Session
	for _, s := range remote {
		if s.ID == "" {
			continue
		}
		if !l.Seen(s.ID) {
			fresh = append(fresh, s)
		}
		l.Add(s.ID)
	}
	l.LastCheckedAt = now

	return Result{New: fresh, Updated: l}
}

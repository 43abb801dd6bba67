package discover

import (
	"testing"
	"time"

	"github.com/asleep-ai/skills/internal/ledger"
	"github.com/asleep-ai/skills/internal/sleephub"
)

func sessions(ids ...string) []sleephub.Session {
	out := make([]sleephub.Session, len(ids))
	for i, id := range ids {
		out[i] = sleephub.Session{ID: id}
	}
	return out
}

func ids(ss []sleephub.Session) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDiscoverDeltaOrderPreserved(t *testing.T) {
	l := ledger.New()
	l.Add("S1")
	l.Add("S2")

	res := Discover(sessions("S1", "S2", "S3"), l, testNow)

	got := ids(res.New)
	if len(got) != 1 || got[0] != "S3" {
		t.Errorf("new sessions: got %v, want [S3]", got)
	}
	for _, id := range []string{"S1", "S2", "S3"} {
		if !res.Updated.Seen(id) {
			t.Errorf("updated ledger missing %s", id)
		}
	}
}

func TestDiscoverInterleavedOrdering(t *testing.T) {
	l := ledger.New()
	l.Add("S2")

	res := Discover(sessions("S1", "S2", "S3", "S4"), l, testNow)

	got := ids(res.New)
	want := []string{"S1", "S3", "S4"}
	if len(got) != len(want) {
		t.Fatalf("new sessions: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("new[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDiscoverEmptyRemoteLeavesLedgerUntouched(t *testing.T) {
	l := ledger.New()
	l.Add("S1")

	res := Discover(nil, l, testNow)

	if len(res.New) != 0 {
		t.Errorf("new sessions: got %v, want none", ids(res.New))
	}
	if res.Updated.Len() != 1 {
		t.Errorf("ledger size changed: %d", res.Updated.Len())
	}
	if !res.Updated.LastCheckedAt.IsZero() {
		t.Error("LastCheckedAt set despite empty remote list")
	}
}

func TestDiscoverAllKnownYieldsEmptyDelta(t *testing.T) {
	l := ledger.New()
	l.Add("S1")
	l.Add("S2")

	res := Discover(sessions("S1", "S2"), l, testNow)

	if len(res.New) != 0 {
		t.Errorf("new sessions: got %v, want none", ids(res.New))
	}
	if !res.Updated.LastCheckedAt.Equal(testNow) {
		t.Errorf("LastCheckedAt: got %v, want %v", res.Updated.LastCheckedAt, testNow)
	}
}

func TestDiscoverFirstRunReportsEverything(t *testing.T) {
	res := Discover(sessions("S1", "S2", "S3"), ledger.New(), testNow)

	if len(res.New) != 3 {
		t.Errorf("first run delta: got %v, want all three", ids(res.New))
	}
}

func TestDiscoverIdempotentAfterCommit(t *testing.T) {
	remote := sessions("S1", "S2", "S3")

	l := ledger.New()
	first := Discover(remote, l, testNow)
	if len(first.New) != 3 {
		t.Fatalf("first pass: got %v", ids(first.New))
	}

	second := Discover(remote, first.Updated, testNow.Add(time.Hour))
	if len(second.New) != 0 {
		t.Errorf("second pass with committed ledger: got %v, want none", ids(second.New))
	}
}

func TestDiscoverNeverDropAfterFailedCommit(t *testing.T) {
	remote := sessions("S1", "S2", "S3")

	// First pass runs but its ledger update is never persisted (simulated
	// by re-loading the old ledger state).
	stale := ledger.New()
	stale.Add("S1")
	first := Discover(remote, stale, testNow)
	wantReported := ids(first.New)

	reloaded := ledger.New()
	reloaded.Add("S1")
	second := Discover(remote, reloaded, testNow.Add(time.Minute))

	got := map[string]bool{}
	for _, id := range ids(second.New) {
		got[id] = true
	}
	for _, id := range wantReported {
		if !got[id] {
			t.Errorf("session %s dropped after failed commit", id)
		}
	}
}

func TestDiscoverAbsorbsUnreportedKnownIDs(t *testing.T) {
	// A session listed without an id (still uploading) is skipped entirely.
	l := ledger.New()
	remote := []sleephub.Session{{ID: "S1"}, {}}

	res := Discover(remote, l, testNow)
	if len(res.New) != 1 {
		t.Errorf("new sessions: got %v, want [S1]", ids(res.New))
	}
	if res.Updated.Len() != 1 {
		t.Errorf("ledger absorbed empty id: %v", res.Updated.SeenSessionIDs)
	}
}

func TestDiscoverDuplicateIDsInRemoteList(t *testing.T) {
	res := Discover(sessions("S1", "S1", "S2"), ledger.New(), testNow)

	got := ids(res.New)
	want := []string{"S1", "S2"}
	if len(got) != len(want) {
		t.Fatalf("new sessions: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("new[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
}

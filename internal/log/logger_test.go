package log

import (
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events := []LogEvent{
		{Event: EventTokenRefreshed, RunID: "r1"},
		{Event: EventSessionsDiscovered, RunID: "r1", SessionIDs: []string{"S1", "S2"}, Sessions: 2},
		{Event: EventReportGenerated, RunID: "r1", Days: 7},
	}
	for _, e := range events {
		if err := logger.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("events: got %d, want 3", len(got))
	}
	if got[1].Event != EventSessionsDiscovered || len(got[1].SessionIDs) != 2 {
		t.Errorf("event 1 mismatch: %+v", got[1])
	}
	if got[0].Time.IsZero() {
		t.Error("Append did not stamp event time")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events: got %d, want 0", len(events))
	}
}

func TestAppendPreservesExplicitTime(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	stamp := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := logger.Append(LogEvent{Event: EventCheckSkipped, Time: stamp}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !events[0].Time.Equal(stamp) {
		t.Errorf("time: got %v, want %v", events[0].Time, stamp)
	}
}

package audit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// recordingSink captures appended entries.
type recordingSink struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (s *recordingSink) Append(entry models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func TestRecordStampsTimestamp(t *testing.T) {
	l := NewLogger(nil)

	l.Record(models.AuditEntry{Actor: "test", Action: "did_thing"})

	got := l.Entries()
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Record did not stamp a zero timestamp")
	}
}

func TestRecordPreservesExplicitTimestamp(t *testing.T) {
	l := NewLogger(nil)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Record(models.AuditEntry{Timestamp: ts, Actor: "test", Action: "x"})

	if got := l.Entries()[0].Timestamp; !got.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got, ts)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := NewLogger(nil)
	l.Record(models.AuditEntry{Actor: "a", Action: "one"})

	snapshot := l.Entries()
	snapshot[0].Action = "mutated"

	if l.Entries()[0].Action != "one" {
		t.Error("mutating the returned slice changed the log")
	}
}

func TestByCorrelation(t *testing.T) {
	l := NewLogger(nil)
	l.Record(models.AuditEntry{CorrelationID: "c1", Action: "first"})
	l.Record(models.AuditEntry{CorrelationID: "c2", Action: "other"})
	l.Record(models.AuditEntry{CorrelationID: "c1", Action: "second"})

	got := l.ByCorrelation("c1")
	if len(got) != 2 {
		t.Fatalf("ByCorrelation(c1) = %d entries, want 2", len(got))
	}
	if got[0].Action != "first" || got[1].Action != "second" {
		t.Errorf("entries out of append order: %v", got)
	}
}

func TestRecordForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(sink)

	l.Record(models.AuditEntry{Actor: "a", Action: "one"})

	if len(sink.entries) != 1 {
		t.Fatalf("sink received %d entries, want 1", len(sink.entries))
	}
}

func TestSinkFailureNeverFailsRecord(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	l := NewLogger(sink)

	l.Record(models.AuditEntry{Actor: "a", Action: "one"})

	// The in-memory log is the source of truth for the running batch.
	if l.Len() != 1 {
		t.Errorf("len = %d, want 1 despite sink failure", l.Len())
	}
}

func TestConcurrentRecord(t *testing.T) {
	l := NewLogger(&recordingSink{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Record(models.AuditEntry{CorrelationID: "shared", Action: "concurrent"})
		}(i)
	}
	wg.Wait()

	if l.Len() != 50 {
		t.Errorf("len = %d, want 50 under concurrent writers", l.Len())
	}
}

// Package audit provides the append-only record of every decision the
// orchestration kernel makes. Entries are self-contained, carry their
// own timestamp and correlation id, and are never mutated post-write.
package audit

import (
	"log"
	"sync"
	"time"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Sink receives entries as they are recorded. The SQLite Store
// implements Sink; custom sinks can fan entries out elsewhere.
type Sink interface {
	Append(entry models.AuditEntry) error
}

// Logger is the in-memory append-only audit log. It is safe under
// concurrent writers.
type Logger struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	sink    Sink
}

// NewLogger creates a Logger. sink may be nil.
func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// Record appends an entry. A zero timestamp is stamped with the
// current time. Sink failures are logged and never fail the caller:
// the in-memory log is the source of truth for the running batch.
func (l *Logger) Record(entry models.AuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	if l.sink != nil {
		if err := l.sink.Append(entry); err != nil {
			log.Printf("[audit] warning: sink append failed: %v", err)
		}
	}
}

// Entries returns a copy of all recorded entries in append order.
func (l *Logger) Entries() []models.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByCorrelation returns all entries for one correlation id, in append
// order.
func (l *Logger) ByCorrelation(correlationID string) []models.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.AuditEntry
	for _, e := range l.entries {
		if e.CorrelationID == correlationID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded entries.
func (l *Logger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Store persists audit entries to SQLite so they outlive the batch.
// The audit_entries table is append-only: there are no update or
// delete paths.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultStorePath returns the XDG data path for the audit database.
func DefaultStorePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "planforge", "audit.db")
}

// OpenStore opens (creating if needed) the audit database at path.
// WAL mode is enabled for concurrent reads.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS audit_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			correlation_id TEXT NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			payload TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			metadata TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_audit_correlation
			ON audit_entries(correlation_id);
		CREATE INDEX IF NOT EXISTS idx_audit_action
			ON audit_entries(action);
	`)
	if err != nil {
		return fmt.Errorf("create audit_entries table: %w", err)
	}
	return nil
}

// Append writes one entry. Implements Sink.
func (s *Store) Append(entry models.AuditEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(`
		INSERT INTO audit_entries
			(timestamp, correlation_id, actor, action, payload, duration_ms, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.CorrelationID,
		entry.Actor,
		entry.Action,
		string(payload),
		entry.Duration.Milliseconds(),
		string(metadata),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByCorrelation returns persisted entries for one correlation id
// in insertion order.
func (s *Store) ListByCorrelation(correlationID string) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(`
		SELECT timestamp, correlation_id, actor, action, payload, duration_ms, metadata
		FROM audit_entries
		WHERE correlation_id = ?
		ORDER BY id
	`, correlationID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListRecent returns the most recent limit entries, newest first.
func (s *Store) ListRecent(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(`
		SELECT timestamp, correlation_id, actor, action, payload, duration_ms, metadata
		FROM audit_entries
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	for rows.Next() {
		var (
			entry      models.AuditEntry
			ts         string
			payload    sql.NullString
			durationMS int64
			metadata   sql.NullString
		)
		if err := rows.Scan(&ts, &entry.CorrelationID, &entry.Actor,
			&entry.Action, &payload, &durationMS, &metadata); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		entry.Timestamp = parsed
		entry.Duration = time.Duration(durationMS) * time.Millisecond

		if payload.Valid && payload.String != "" && payload.String != "null" {
			if err := json.Unmarshal([]byte(payload.String), &entry.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		if metadata.Valid && metadata.String != "" && metadata.String != "null" {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}

		out = append(out, entry)
	}
	return out, rows.Err()
}

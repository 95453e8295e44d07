package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/pkg/retry"
)

// SQLiteSink is an append-only audit store backed by SQLite.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the audit database with WAL mode
// enabled and the schema initialized.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapFatal(err, "AuditSink", "OpenSQLite", "open database")
	}

	// WAL for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "AuditSink", "OpenSQLite", "enable WAL")
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "AuditSink", "OpenSQLite", "initialize schema")
	}

	return &SQLiteSink{
		db:     db,
		logger: logger.With("component", "AuditSink"),
	}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS audit_records (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	turn INTEGER NOT NULL,
	rules_fired TEXT,
	derived_states TEXT,
	escalated INTEGER NOT NULL DEFAULT 0,
	escalation_category TEXT,
	advisory_level TEXT,
	ref TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_records(session_id, turn);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Append writes one record. Records are never updated or deleted.
// Inserts retry briefly on lock contention.
func (s *SQLiteSink) Append(ctx context.Context, rec Record) error {
	return retry.Do(ctx, retry.DefaultConfig(), func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_records
	(id, session_id, turn, rules_fired, derived_states, escalated, escalation_category, advisory_level, ref, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.SessionID, rec.Turn,
			joinList(rec.RulesFired), joinList(rec.DerivedStates),
			boolToInt(rec.Escalated), rec.EscalationCategory, rec.AdvisoryLevel,
			rec.Ref, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return errors.WrapTransient(err, "AuditSink", "Append", "insert record")
		}
		return nil
	})
}

// Session returns a session's records ordered by turn.
func (s *SQLiteSink) Session(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, turn, rules_fired, derived_states, escalated, escalation_category, advisory_level, ref, created_at
FROM audit_records WHERE session_id = ? ORDER BY turn, id`, sessionID)
	if err != nil {
		return nil, errors.WrapTransient(err, "AuditSink", "Session", "query records")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var rules, states, createdAt string
		var escalated int
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Turn, &rules, &states,
			&escalated, &rec.EscalationCategory, &rec.AdvisoryLevel, &rec.Ref, &createdAt); err != nil {
			return nil, errors.WrapTransient(err, "AuditSink", "Session", "scan record")
		}
		rec.RulesFired = splitList(rules)
		rec.DerivedStates = splitList(states)
		rec.Escalated = escalated != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "AuditSink", "Session", "iterate records")
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/pkg/retry"
)

// SQLiteStore persists session snapshots in a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the session database with WAL mode
// enabled and the schema initialized.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapFatal(err, "SQLiteStore", "OpenSQLite", "open database")
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "SQLiteStore", "OpenSQLite", "enable WAL")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "SQLiteStore", "OpenSQLite", "enable foreign keys")
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "SQLiteStore", "OpenSQLite", "initialize schema")
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "SQLiteStore"),
	}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	turn INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_facts (
	session_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	subject TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object TEXT NOT NULL,
	source_turn INTEGER NOT NULL DEFAULT 0,
	source_rule TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(session_id, position),
	FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Save replaces the session's stored facts with the snapshot, in one
// transaction. Fact order is preserved through the position column.
// The transaction retries briefly on lock contention.
func (s *SQLiteStore) Save(ctx context.Context, snap graph.Snapshot) error {
	return retry.Do(ctx, retry.DefaultConfig(), func() error {
		return s.save(ctx, snap)
	})
}

func (s *SQLiteStore) save(ctx context.Context, snap graph.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Save", "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO sessions (id, turn, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET turn = excluded.turn, updated_at = excluded.updated_at`,
		snap.SessionID, snap.Turn, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Save", "upsert session")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_facts WHERE session_id = ?`, snap.SessionID); err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Save", "clear facts")
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO session_facts (session_id, position, subject, predicate, object, source_turn, source_rule)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Save", "prepare insert")
	}
	defer stmt.Close()

	for i, f := range snap.Facts {
		if _, err := stmt.ExecContext(ctx, snap.SessionID, i,
			f.Subject, f.Predicate, f.Object, f.Source.Turn, f.Source.RuleID); err != nil {
			return errors.WrapTransient(err, "SQLiteStore", "Save", "insert fact")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Save", "commit")
	}
	return nil
}

// Load returns the session snapshot, facts in their original insertion
// order. A missing session yields ErrSessionNotFound.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (graph.Snapshot, error) {
	snap := graph.Snapshot{SessionID: sessionID}

	err := s.db.QueryRowContext(ctx,
		`SELECT turn FROM sessions WHERE id = ?`, sessionID).Scan(&snap.Turn)
	if err == sql.ErrNoRows {
		return graph.Snapshot{}, errors.WrapInvalid(
			errors.Newf("%w: %s", errors.ErrSessionNotFound, sessionID),
			"SQLiteStore", "Load", "find session")
	}
	if err != nil {
		return graph.Snapshot{}, errors.WrapTransient(err, "SQLiteStore", "Load", "query session")
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT subject, predicate, object, source_turn, source_rule
FROM session_facts WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return graph.Snapshot{}, errors.WrapTransient(err, "SQLiteStore", "Load", "query facts")
	}
	defer rows.Close()

	for rows.Next() {
		var f fact.Fact
		if err := rows.Scan(&f.Subject, &f.Predicate, &f.Object, &f.Source.Turn, &f.Source.RuleID); err != nil {
			return graph.Snapshot{}, errors.WrapTransient(err, "SQLiteStore", "Load", "scan fact")
		}
		snap.Facts = append(snap.Facts, f)
	}
	if err := rows.Err(); err != nil {
		return graph.Snapshot{}, errors.WrapTransient(err, "SQLiteStore", "Load", "iterate facts")
	}
	return snap, nil
}

// Sessions lists all stored session ids.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, errors.WrapTransient(err, "SQLiteStore", "Sessions", "query sessions")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WrapTransient(err, "SQLiteStore", "Sessions", "scan id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

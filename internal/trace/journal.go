// Package trace persists optimization change signals to a SQLite journal,
// so rewrite decisions can be inspected after the fact. The journal
// implements optimize.Sink.
package trace

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/viraptor/basalt/internal/optimize"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added col column on signals
const currentSchemaVersion = 1

// Journal is a durable change-signal log. SQLite in WAL mode, single
// writer.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at the given path, applying
// pragmas and migrations. Idempotent.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginRun registers a run token before its signals arrive.
func (j *Journal) BeginRun(runToken, source string) error {
	_, err := j.db.Exec(`
		INSERT INTO runs (token, source)
		VALUES (?, ?)
		ON CONFLICT(token) DO NOTHING
	`, runToken, source)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordChange appends one change signal. Duplicate (run, seq) pairs are
// silently ignored, which makes re-recording a replayed run idempotent.
func (j *Journal) RecordChange(runToken string, seq int, change optimize.Change) error {
	_, err := j.db.Exec(`
		INSERT INTO signals (run_token, seq, tags, file, line, col, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`,
		runToken,
		seq,
		change.Tags,
		change.Ref.File,
		change.Ref.Line,
		change.Ref.Column,
		change.Message,
	)
	if err != nil {
		return fmt.Errorf("record change: %w", err)
	}
	return nil
}

// Run summarizes one recorded optimization run.
type Run struct {
	Token     string
	Source    string
	StartedAt string
	Signals   int
}

// ListRuns returns all recorded runs, oldest first.
func (j *Journal) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT r.token, r.source, r.started_at, COUNT(s.seq)
		FROM runs r
		LEFT JOIN signals s ON s.run_token = r.token
		GROUP BY r.token
		ORDER BY r.started_at, r.token
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Token, &r.Source, &r.StartedAt, &r.Signals); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Signal is one recorded change, as stored.
type Signal struct {
	Seq     int
	Tags    string
	File    string
	Line    int
	Column  int
	Message string
}

// ListSignals returns a run's signals in emission order.
func (j *Journal) ListSignals(runToken string) ([]Signal, error) {
	rows, err := j.db.Query(`
		SELECT seq, tags, file, line, col, message
		FROM signals
		WHERE run_token = ?
		ORDER BY seq
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var signals []Signal
	for rows.Next() {
		var s Signal
		if err := rows.Scan(&s.Seq, &s.Tags, &s.File, &s.Line, &s.Column, &s.Message); err != nil {
			return nil, fmt.Errorf("list signals: %w", err)
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the col column for databases created before source
// columns were recorded. New databases get it from schema.sql.
func migrateToV1(db *sql.DB) error {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('signals') WHERE name = 'col'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE signals ADD COLUMN col INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

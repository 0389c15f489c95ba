// Package sqlite provides a SQLite-backed offload journal.
//
// The database is opened in WAL mode for crash recovery; all queries
// use prepared statements so SQL parsing and planning happen once, at
// open time. Each Record executes in its own implicit transaction,
// which is all an append-only journal needs.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/frobware/go-offload/journal"
)

//go:embed schema.sql
var schemaSQL string

type sqliteJournal struct {
	db     *sql.DB
	logger *slog.Logger

	stmtInsert *sql.Stmt
	stmtList   *sql.Stmt
}

// New opens the journal database at path, creating the file and parent
// directory as needed.
func New(ctx context.Context, path string, logger *slog.Logger) (journal.Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	pragmas := [][2]string{
		{"journal_mode", "WAL"},
		{"busy_timeout", "5000"},
	}
	db, err := sql.Open(driverName, dsn(path, pragmas))
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return open(ctx, db, logger)
}

// NewInMemory opens an in-memory journal. Used by tests.
func NewInMemory(ctx context.Context, logger *slog.Logger) (journal.Journal, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory journal: %w", err)
	}
	// A second connection would see a different empty database.
	db.SetMaxOpenConns(1)
	return open(ctx, db, logger)
}

func open(ctx context.Context, db *sql.DB, logger *slog.Logger) (journal.Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	j := &sqliteJournal{db: db, logger: logger.With("component", "journal")}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	if err := j.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *sqliteJournal) prepareStatements() error {
	var err error

	const sqlInsert = `
		INSERT INTO offload_journal
		(at, op, program_id, program_name, device_index, detail, err)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if j.stmtInsert, err = j.db.Prepare(sqlInsert); err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	const sqlList = `
		SELECT at, op, program_id, program_name, device_index, detail, err
		FROM offload_journal
		ORDER BY id`
	if j.stmtList, err = j.db.Prepare(sqlList); err != nil {
		return fmt.Errorf("prepare list: %w", err)
	}

	return nil
}

// Record appends one entry.
func (j *sqliteJournal) Record(ctx context.Context, e journal.Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.stmtInsert.ExecContext(ctx,
		at.UTC().Format(time.RFC3339Nano),
		e.Op, e.ProgramID, e.ProgramName, e.DeviceIndex, e.Detail, e.Err)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// List returns all entries in append order.
func (j *sqliteJournal) List(ctx context.Context) ([]journal.Entry, error) {
	rows, err := j.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var at string
		if err := rows.Scan(&at, &e.Op, &e.ProgramID, &e.ProgramName, &e.DeviceIndex, &e.Detail, &e.Err); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parse journal timestamp %q: %w", at, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the prepared statements and the database handle.
func (j *sqliteJournal) Close() error {
	j.stmtInsert.Close()
	j.stmtList.Close()
	return j.db.Close()
}

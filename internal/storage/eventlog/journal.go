// Package eventlog records scenario runs and the contract events they emit
// in a SQL database. SQLite (modernc) and PostgreSQL share one schema.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/LeJamon/goExilon/internal/core/chain"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// defaultTimeout bounds every statement
const defaultTimeout = 30 * time.Second

// Run is one row of the runs table.
type Run struct {
	ID         uuid.UUID
	Name       string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
}

// Record is one row of the events table.
type Record struct {
	RunID    uuid.UUID
	Seq      uint64
	Block    uint64
	Contract string
	Kind     string
	From     string
	To       string
	Amount   string
	Note     string
}

// Filter narrows an event query. Zero fields match everything.
type Filter struct {
	Kind    string
	FromSeq uint64
	Limit   int
}

// Journal is an open event database.
type Journal struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, maxOpenConns int) (*Journal, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if driver == DriverSQLite {
		// One writer; also keeps :memory: databases on a single connection
		maxOpenConns = 1
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	j := &Journal{db: db, driver: driver}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(36) PRIMARY KEY,
			name TEXT NOT NULL,
			started_at BIGINT NOT NULL,
			finished_at BIGINT NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			run_id VARCHAR(36) NOT NULL,
			seq BIGINT NOT NULL,
			block_number BIGINT NOT NULL,
			contract VARCHAR(42) NOT NULL,
			kind VARCHAR(64) NOT NULL,
			from_addr VARCHAR(42) NOT NULL,
			to_addr VARCHAR(42) NOT NULL,
			amount TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, seq)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(run_id, kind)`,
	}

	for _, query := range queries {
		if _, err := j.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (j *Journal) rebind(query string) string {
	if j.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// StartRun inserts a run with a fresh id.
func (j *Journal) StartRun(ctx context.Context, name string, startedAt time.Time) (Run, error) {
	if j.db == nil {
		return Run{}, ErrJournalClosed
	}
	run := Run{ID: uuid.New(), Name: name, StartedAt: startedAt}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := j.db.ExecContext(ctx, j.rebind(`INSERT INTO runs (run_id, name, started_at) VALUES (?, ?, ?)`),
		run.ID.String(), name, startedAt.UnixMilli())
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the outcome of a run.
func (j *Journal) FinishRun(ctx context.Context, id uuid.UUID, outcome string, finishedAt time.Time) error {
	if j.db == nil {
		return ErrJournalClosed
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := j.db.ExecContext(ctx, j.rebind(`UPDATE runs SET outcome = ?, finished_at = ? WHERE run_id = ?`),
		outcome, finishedAt.UnixMilli(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Append stores events of a run in one transaction.
func (j *Journal) Append(ctx context.Context, id uuid.UUID, events []chain.Event) error {
	if j.db == nil {
		return ErrJournalClosed
	}
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, j.rebind(`INSERT INTO events
		(run_id, seq, block_number, contract, kind, from_addr, to_addr, amount, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx, id.String(), int64(e.Seq), int64(e.Block), e.Contract.Hex(),
			string(e.Kind), e.From.Hex(), e.To.Hex(), e.Amount.String(), e.Note)
		if err != nil {
			return fmt.Errorf("failed to insert event %d: %w", e.Seq, err)
		}
	}
	return tx.Commit()
}

// Events returns the events of a run in sequence order.
func (j *Journal) Events(ctx context.Context, id uuid.UUID, f Filter) ([]Record, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}

	query := `SELECT seq, block_number, contract, kind, from_addr, to_addr, amount, note
		FROM events WHERE run_id = ? AND seq >= ?`
	args := []interface{}{id.String(), int64(f.FromSeq)}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	query += ` ORDER BY seq`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := j.db.QueryContext(ctx, j.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var seq, block int64
		r := Record{RunID: id}
		if err := rows.Scan(&seq, &block, &r.Contract, &r.Kind, &r.From, &r.To, &r.Amount, &r.Note); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		r.Seq, r.Block = uint64(seq), uint64(block)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Run returns one run by id.
func (j *Journal) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	runs, err := j.queryRuns(ctx, ` WHERE run_id = ?`, id.String())
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return runs[0], nil
}

// Runs returns every run, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	return j.queryRuns(ctx, ``)
}

func (j *Journal) queryRuns(ctx context.Context, where string, args ...interface{}) ([]Run, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT run_id, name, started_at, finished_at, outcome FROM runs` + where + ` ORDER BY started_at, run_id`
	rows, err := j.db.QueryContext(ctx, j.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id                string
			started, finished int64
			run               Run
		)
		if err := rows.Scan(&id, &run.Name, &started, &finished, &run.Outcome); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad run id %q: %w", id, err)
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		if finished > 0 {
			run.FinishedAt = time.UnixMilli(finished).UTC()
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Package runindex keeps a SQLite record of solver runs, one row per
// solve, written off the hot path by a single writer goroutine.
package runindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type Run struct {
	RecordedAt string
	Scenario   string
	Query      string
	Finder     string
	Found      bool
	Waypoints  int
	Cost       float64
	Expanded   int
	DurationUS int64
}

type Index struct {
	db *sql.DB

	ch   chan Run
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Index{
		db: db,
		ch: make(chan Run, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			scenario TEXT NOT NULL,
			query TEXT NOT NULL,
			finder TEXT NOT NULL,
			found INTEGER NOT NULL,
			waypoints INTEGER NOT NULL,
			cost REAL NOT NULL,
			expanded INTEGER NOT NULL,
			duration_us INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario, id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Index) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Record queues one run row. It never blocks the solver: rows are
// dropped when the writer falls behind.
func (s *Index) Record(r Run) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.RecordedAt == "" {
		r.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- r:
	default:
	}
}

// RecentRuns returns up to limit rows, newest first.
func (s *Index) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT recorded_at, scenario, query, finder, found, waypoints, cost, expanded, duration_us
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var found int
		if err := rows.Scan(&r.RecordedAt, &r.Scenario, &r.Query, &r.Finder, &found,
			&r.Waypoints, &r.Cost, &r.Expanded, &r.DurationUS); err != nil {
			return nil, err
		}
		r.Found = found != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Index) loop() {
	ctx := context.Background()

	insert, _ := s.db.Prepare(
		`INSERT INTO runs(recorded_at, scenario, query, finder, found, waypoints, cost, expanded, duration_us)
		 VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil || insert == nil {
			continue
		}
		found := 0
		if r.Found {
			found = 1
		}
		if _, err := tx.Stmt(insert).Exec(
			r.RecordedAt,
			r.Scenario,
			r.Query,
			r.Finder,
			found,
			r.Waypoints,
			r.Cost,
			r.Expanded,
			r.DurationUS,
		); err != nil {
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

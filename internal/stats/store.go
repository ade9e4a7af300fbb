// Package stats persists finished avalanches to SQLite so size
// distributions can be inspected after a run.
package stats

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math/bits"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sandpile/internal/control"
)

//go:embed schema.sql
var schema string

// Store records avalanches for one run. Every Store opened gets a fresh run
// id; earlier runs in the same file stay queryable.
type Store struct {
	db  *sql.DB
	run string
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, run: uuid.NewString()}, nil
}

// Run returns the id avalanches are recorded under.
func (s *Store) Run() string { return s.run }

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record implements control.Recorder.
func (s *Store) Record(ctx context.Context, a control.Avalanche) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO avalanches (
	run_id,
	generation,
	resolution,
	drop_x,
	drop_y,
	passes,
	topples,
	lost,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		s.run,
		int64(a.Generation),
		a.Resolution,
		a.DropX,
		a.DropY,
		a.Passes,
		a.Topples,
		a.Lost,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert avalanche: %w", err)
	}
	return nil
}

// Summary aggregates one run.
type Summary struct {
	Run        string
	Avalanches int
	Topples    int
	Lost       int
	MaxTopples int
	MaxPasses  int
}

// Summarize aggregates the avalanches of run. An empty run id means the
// store's own run.
func (s *Store) Summarize(ctx context.Context, run string) (Summary, error) {
	if run == "" {
		run = s.run
	}
	sum := Summary{Run: run}
	err := s.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COALESCE(SUM(topples), 0),
	COALESCE(SUM(lost), 0),
	COALESCE(MAX(topples), 0),
	COALESCE(MAX(passes), 0)
FROM avalanches
WHERE run_id = ?
`, run).Scan(&sum.Avalanches, &sum.Topples, &sum.Lost, &sum.MaxTopples, &sum.MaxPasses)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize run %s: %w", run, err)
	}
	return sum, nil
}

// Bucket counts avalanches whose topple count lies in [Lo, Hi].
type Bucket struct {
	Lo, Hi int
	Count  int
}

// Histogram buckets the avalanche sizes of run by powers of two: {0},
// {1}, [2,3], [4,7], ... Empty trailing buckets are omitted.
func (s *Store) Histogram(ctx context.Context, run string) ([]Bucket, error) {
	if run == "" {
		run = s.run
	}
	rows, err := s.db.QueryContext(ctx, `SELECT topples FROM avalanches WHERE run_id = ?`, run)
	if err != nil {
		return nil, fmt.Errorf("histogram run %s: %w", run, err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var size int
		if err := rows.Scan(&size); err != nil {
			return nil, fmt.Errorf("scan avalanche: %w", err)
		}
		i := bits.Len(uint(size))
		for len(buckets) <= i {
			n := len(buckets)
			b := Bucket{}
			if n > 0 {
				b.Lo, b.Hi = 1<<(n-1), 1<<n-1
			}
			buckets = append(buckets, b)
		}
		buckets[i].Count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate avalanches: %w", err)
	}
	return buckets, nil
}

// Runs lists the run ids in the database, oldest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id FROM avalanches GROUP BY run_id ORDER BY MIN(id)
`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

var _ control.Recorder = (*Store)(nil)

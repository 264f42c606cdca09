// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package benchmark

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Archive stores benchmark samples in sqlite for cross-session reporting.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens or creates the archive database.
func OpenArchive(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS samples (
			span_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			category TEXT NOT NULL,
			started_at TEXT NOT NULL,
			closed_at TEXT NOT NULL,
			phase_ms INTEGER NOT NULL,
			cost_usd REAL NOT NULL,
			api_calls INTEGER NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			cache_hit_kind TEXT,
			institution_type TEXT,
			success INTEGER NOT NULL,
			completeness_pct REAL NOT NULL,
			error_kind TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_session ON samples(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_category ON samples(category)`,
	}
	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Ingest inserts one sample, replacing a prior copy of the same span.
func (a *Archive) Ingest(ctx context.Context, s Sample) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO samples (
			span_id, session_id, category, started_at, closed_at, phase_ms,
			cost_usd, api_calls, input_tokens, output_tokens,
			cache_hit_kind, institution_type, success, completeness_pct, error_kind
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SpanID, s.SessionID, s.Category,
		s.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		s.ClosedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		s.PhaseMS, s.CostUSD, s.APICalls, s.InputTokens, s.OutputTokens,
		s.CacheHitKind, s.InstitutionType, s.Success, s.CompletenessPct, s.ErrorKind)
	if err != nil {
		return fmt.Errorf("inserting sample: %w", err)
	}
	return nil
}

// IngestJournal loads every sample from a session journal file. Corrupt
// lines are skipped; the count of ingested samples is returned.
func (a *Archive) IngestJournal(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	var n int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var s Sample
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			continue
		}
		if err := a.Ingest(ctx, s); err != nil {
			return n, err
		}
		n++
	}
	return n, scanner.Err()
}

// IngestDir loads every session journal under dir.
func (a *Archive) IngestDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "session_*.jsonl"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	var total int
	for _, path := range paths {
		n, err := a.IngestJournal(ctx, path)
		total += n
		if err != nil {
			return total, fmt.Errorf("ingesting %s: %w", filepath.Base(path), err)
		}
	}
	return total, nil
}

// CategoryReport is the per-category roll-up produced by Report.
type CategoryReport struct {
	Category    string  `json:"category" yaml:"category"`
	Samples     int     `json:"samples" yaml:"samples"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
	AvgMS       float64 `json:"avg_ms" yaml:"avg_ms"`
	TotalCost   float64 `json:"total_cost_usd" yaml:"total_cost_usd"`
	CacheHits   int     `json:"cache_hits" yaml:"cache_hits"`
}

// Report summarizes the archive across all sessions.
type Report struct {
	Sessions   int              `json:"sessions" yaml:"sessions"`
	Samples    int              `json:"samples" yaml:"samples"`
	TotalCost  float64          `json:"total_cost_usd" yaml:"total_cost_usd"`
	Categories []CategoryReport `json:"categories" yaml:"categories"`
}

// Report computes the cross-session roll-up.
func (a *Archive) Report(ctx context.Context) (Report, error) {
	var r Report
	row := a.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT session_id), COUNT(*), COALESCE(SUM(cost_usd), 0) FROM samples`)
	if err := row.Scan(&r.Sessions, &r.Samples, &r.TotalCost); err != nil {
		return Report{}, fmt.Errorf("querying totals: %w", err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT category, COUNT(*), AVG(success), AVG(phase_ms), SUM(cost_usd),
			SUM(CASE WHEN cache_hit_kind IN ('direct_hit', 'similarity_hit') THEN 1 ELSE 0 END)
		FROM samples GROUP BY category ORDER BY category`)
	if err != nil {
		return Report{}, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryReport
		if err := rows.Scan(&c.Category, &c.Samples, &c.SuccessRate, &c.AvgMS, &c.TotalCost, &c.CacheHits); err != nil {
			return Report{}, fmt.Errorf("scanning category row: %w", err)
		}
		r.Categories = append(r.Categories, c)
	}
	return r, rows.Err()
}

package indexdb

import (
	"context"
	"database/sql"
	"fmt"
)

type RunSummary struct {
	RunID      string
	Seed       int64
	Width      int
	Height     int
	Jewels     int
	Knowledge  string
	StartedAt  string
	FinishedAt string
	Ticks      uint64
	TotalMoves int
	Complete   bool
}

type AuditRow struct {
	Tick   uint64
	Actor  string
	Action string
	From   [2]int
	To     [2]int
	Jewel  int
}

// ListRuns returns the most recently started runs first.
func (s *SQLiteIndex) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,seed,width,height,jewels,knowledge,started_at,finished_at,ticks,total_moves,complete
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r        RunSummary
			finished sql.NullString
			ticks    int64
			complete int
		)
		if err := rows.Scan(&r.RunID, &r.Seed, &r.Width, &r.Height, &r.Jewels, &r.Knowledge, &r.StartedAt, &finished, &ticks, &r.TotalMoves, &complete); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.FinishedAt = finished.String
		r.Ticks = uint64(ticks)
		r.Complete = complete != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunAudits returns the audit rows of a run in tick order, optionally filtered by actor ("R", "G", "B").
func (s *SQLiteIndex) RunAudits(ctx context.Context, runID, actor string, limit int) ([]AuditRow, error) {
	if limit <= 0 {
		limit = 1000
	}
	q := `SELECT tick,actor,action,from_x,from_y,to_x,to_y,jewel FROM audits WHERE run_id=?`
	args := []any{runID}
	if actor != "" {
		q += ` AND actor=?`
		args = append(args, actor)
	}
	q += ` ORDER BY tick, seq LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var (
			a    AuditRow
			tick int64
		)
		if err := rows.Scan(&tick, &a.Actor, &a.Action, &a.From[0], &a.From[1], &a.To[0], &a.To[1], &a.Jewel); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		a.Tick = uint64(tick)
		out = append(out, a)
	}
	return out, rows.Err()
}

// TickDigests returns tick -> digest for a run.
func (s *SQLiteIndex) TickDigests(ctx context.Context, runID string) (map[uint64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick,digest FROM ticks WHERE run_id=? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64]string{}
	for rows.Next() {
		var (
			tick   int64
			digest string
		)
		if err := rows.Scan(&tick, &digest); err != nil {
			return nil, err
		}
		out[uint64(tick)] = digest
	}
	return out, rows.Err()
}

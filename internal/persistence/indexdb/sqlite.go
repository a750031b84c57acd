package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"jewelbots.ai/internal/persistence/snapshot"
	"jewelbots.ai/internal/sim/world"
)

// SQLiteIndex is a secondary, query-friendly index of runs. Tick and audit rows are
// written from a single goroutine; JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
	runID  atomic.Value // string

	dropTick  atomic.Uint64
	dropAudit atomic.Uint64
	dropFrame atomic.Uint64
}

type reqKind int

const (
	reqBeginRun reqKind = iota + 1
	reqTick
	reqAudit
	reqFrame
	reqFinishRun
)

type req struct {
	kind  reqKind
	runID string

	run    runRow
	tick   world.TickLogEntry
	audit  world.AuditEntry
	frame  frameRow
	finish finishRow
}

type runRow struct {
	Seed      int64
	Width     int
	Height    int
	Jewels    int
	Knowledge string
	Config    string
	StartedAt string
}

type frameRow struct {
	Tick       uint64
	Path       string
	TotalMoves int
	Complete   bool
}

type finishRow struct {
	Ticks      uint64
	TotalMoves int
	Complete   bool
	FinishedAt string
}

// Stats reports queue pressure. Drops only happen for tick, audit and frame rows.
type Stats struct {
	QueueDepth    int
	QueueCapacity int

	DropTickTotal  uint64
	DropAuditTotal uint64
	DropFrameTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
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

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.runID.Store("")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
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
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			jewels INTEGER NOT NULL,
			knowledge TEXT NOT NULL,
			config_json TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			ticks INTEGER NOT NULL DEFAULT 0,
			total_moves INTEGER NOT NULL DEFAULT 0,
			complete INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			digest TEXT NOT NULL,
			moves INTEGER NOT NULL,
			applied INTEGER NOT NULL,
			complete INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			from_x INTEGER NOT NULL,
			from_y INTEGER NOT NULL,
			to_x INTEGER NOT NULL,
			to_y INTEGER NOT NULL,
			jewel INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_actor_tick ON audits(run_id, actor, tick);`,
		`CREATE TABLE IF NOT EXISTS frames (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			path TEXT NOT NULL,
			total_moves INTEGER NOT NULL,
			complete INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) currentRun() string {
	id, _ := s.runID.Load().(string)
	return id
}

// BeginRun records a run and makes it the owner of subsequent tick/audit/frame rows.
func (s *SQLiteIndex) BeginRun(runID string, cfg world.Config) {
	if s == nil || s.closed.Load() {
		return
	}
	b, _ := json.Marshal(cfg)
	s.runID.Store(runID)
	s.ch <- req{kind: reqBeginRun, runID: runID, run: runRow{
		Seed:      cfg.Seed,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Jewels:    cfg.JewelCount(world.Red) + cfg.JewelCount(world.Green) + cfg.JewelCount(world.Blue),
		Knowledge: string(cfg.Knowledge),
		Config:    string(b),
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}}
}

func (s *SQLiteIndex) FinishRun(ticks uint64, totalMoves int, complete bool) {
	if s == nil || s.closed.Load() {
		return
	}
	s.ch <- req{kind: reqFinishRun, runID: s.currentRun(), finish: finishRow{
		Ticks:      ticks,
		TotalMoves: totalMoves,
		Complete:   complete,
		FinishedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, runID: s.currentRun(), tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, runID: s.currentRun(), audit: entry}:
	default:
		s.dropAudit.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordFrame(path string, fr snapshot.FrameV1) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqFrame, runID: s.currentRun(), frame: frameRow{
		Tick:       fr.Header.Tick,
		Path:       path,
		TotalMoves: fr.TotalMoves,
		Complete:   fr.Complete,
	}}:
	default:
		s.dropFrame.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropTickTotal:  s.dropTick.Load(),
		DropAuditTotal: s.dropAudit.Load(),
		DropFrameTotal: s.dropFrame.Load(),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,seed,width,height,jewels,knowledge,config_json,started_at) VALUES(?,?,?,?,?,?,?,?)`)
	finishRun, _ := s.db.Prepare(`UPDATE runs SET finished_at=?, ticks=?, total_moves=?, complete=? WHERE run_id=?`)
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(run_id,tick,digest,moves,applied,complete,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(run_id,tick,seq,actor,action,from_x,from_y,to_x,to_y,jewel,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertFrame, _ := s.db.Prepare(`INSERT OR REPLACE INTO frames(run_id,tick,path,total_moves,complete) VALUES(?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertRun, finishRun, insertTick, insertAudit, insertFrame} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastAuditTick uint64
		auditSeq      int
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
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqBeginRun:
			ru := r.run
			exec(insertRun, r.runID, ru.Seed, ru.Width, ru.Height, ru.Jewels, ru.Knowledge, ru.Config, ru.StartedAt)
			lastAuditTick, auditSeq = 0, 0
			// Run rows are committed right away so listings see running runs.
			commit()
			continue

		case reqTick:
			t := r.tick
			applied := 0
			for _, in := range t.Intents {
				if in.Applied {
					applied++
				}
			}
			raw, _ := json.Marshal(t)
			exec(insertTick, r.runID, int64(t.Tick), t.Digest, t.Moves, applied, boolInt(t.Complete), string(raw))

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			exec(insertAudit, r.runID, int64(a.Tick), seq, a.Actor.String(), a.Action,
				a.From[0], a.From[1], a.To[0], a.To[1], a.Jewel, string(raw))

		case reqFrame:
			f := r.frame
			exec(insertFrame, r.runID, int64(f.Tick), f.Path, f.TotalMoves, boolInt(f.Complete))

		case reqFinishRun:
			f := r.finish
			exec(finishRun, f.FinishedAt, int64(f.Ticks), f.TotalMoves, boolInt(f.Complete), r.runID)
			commit()
			continue
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}

package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"jewelbots.ai/internal/persistence/snapshot"
	"jewelbots.ai/internal/sim/world"
)

func TestSQLiteIndex_RunLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.sqlite")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	cfg := world.Config{Width: 7, Height: 7, RedJewels: 1, GreenJewels: 2, BlueJewels: 3, Seed: 42, Knowledge: world.KnowledgeShared}
	s.BeginRun("run-a", cfg)
	for tick := uint64(0); tick < 3; tick++ {
		_ = s.WriteTick(world.TickLogEntry{
			Tick:    tick,
			Intents: []world.RecordedIntent{{Robot: world.Red, Kind: "MOVE", Applied: true}, {Robot: world.Green, Kind: "IDLE"}},
			Moves:   int(tick + 1),
			Digest:  "digest",
		})
	}
	_ = s.WriteAudit(world.AuditEntry{Tick: 1, Actor: world.Red, Action: "MOVE", From: [2]int{0, 0}, To: [2]int{0, 1}})
	_ = s.WriteAudit(world.AuditEntry{Tick: 1, Actor: world.Green, Action: "PICK_UP", From: [2]int{2, 2}, To: [2]int{2, 3}, Jewel: 4})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2, Actor: world.Red, Action: "MOVE", From: [2]int{0, 1}, To: [2]int{0, 2}})
	s.RecordFrame("/tmp/2.frame.zst", snapshot.FrameV1{Header: snapshot.Header{Tick: 2}, TotalMoves: 3})
	s.FinishRun(3, 3, false)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs=%d want 1", len(runs))
	}
	r := runs[0]
	if r.RunID != "run-a" || r.Seed != 42 || r.Jewels != 6 || r.Ticks != 3 || r.TotalMoves != 3 || r.Complete || r.FinishedAt == "" {
		t.Fatalf("unexpected run summary: %+v", r)
	}

	audits, err := s.RunAudits(ctx, "run-a", "R", 0)
	if err != nil {
		t.Fatalf("RunAudits: %v", err)
	}
	if len(audits) != 2 || audits[0].Tick != 1 || audits[1].To != [2]int{0, 2} {
		t.Fatalf("unexpected audits: %+v", audits)
	}
	all, err := s.RunAudits(ctx, "run-a", "", 0)
	if err != nil {
		t.Fatalf("RunAudits(all): %v", err)
	}
	if len(all) != 3 || all[1].Jewel != 4 {
		t.Fatalf("unexpected audits: %+v", all)
	}

	digests, err := s.TickDigests(ctx, "run-a")
	if err != nil {
		t.Fatalf("TickDigests: %v", err)
	}
	if len(digests) != 3 || digests[2] != "digest" {
		t.Fatalf("unexpected digests: %v", digests)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})
	s.RecordFrame("/tmp/2.frame.zst", snapshot.FrameV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropAuditTotal != 1 || st.DropFrameTotal != 1 {
		t.Fatalf("unexpected drop stats: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_NilSafe(t *testing.T) {
	var s *SQLiteIndex
	if err := s.WriteTick(world.TickLogEntry{}); err != nil {
		t.Fatalf("nil WriteTick: %v", err)
	}
	if err := s.WriteAudit(world.AuditEntry{}); err != nil {
		t.Fatalf("nil WriteAudit: %v", err)
	}
	s.BeginRun("x", world.Config{})
	s.RecordFrame("", snapshot.FrameV1{})
	s.FinishRun(0, 0, false)
	if st := s.Stats(); st != (Stats{}) {
		t.Fatalf("nil stats: %+v", st)
	}
}

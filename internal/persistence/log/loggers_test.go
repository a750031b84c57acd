package log

import (
	"os"
	"path/filepath"
	"testing"

	"jewelbots.ai/internal/sim/world"
)

func TestTickLogger_SegmentsAndReadBack(t *testing.T) {
	dir := t.TempDir()
	var closed []string
	l := NewTickLoggerWithOptions(dir, LoggerOptions{
		SegmentTicks: 2,
		OnClose:      func(p string) { closed = append(closed, filepath.Base(p)) },
	})
	for tick := uint64(0); tick < 5; tick++ {
		e := world.TickLogEntry{Tick: tick, Moves: int(tick), Digest: "d"}
		if tick == 0 {
			e.Run = &world.RunInfo{RunID: "run-1", Config: world.Config{Width: 3, Height: 3, Seed: 9}}
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick(%d): %v", tick, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ents, err := os.ReadDir(filepath.Join(dir, "ticks"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(ents) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(ents))
	}
	if len(closed) != 3 || closed[0] != "ticks-000000.jsonl.zst" {
		t.Fatalf("unexpected OnClose calls: %v", closed)
	}

	got, err := ReadTickLog(dir)
	if err != nil {
		t.Fatalf("ReadTickLog: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("entries=%d want 5", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i) || e.Moves != i {
			t.Fatalf("entry %d out of order: %+v", i, e)
		}
	}
	if got[0].Run == nil || got[0].Run.RunID != "run-1" || got[0].Run.Config.Seed != 9 {
		t.Fatalf("run header lost: %+v", got[0].Run)
	}
	if got[1].Run != nil {
		t.Fatalf("run header should only be on tick 0")
	}
}

func TestAuditLogger_ReadBack(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	want := []world.AuditEntry{
		{Tick: 1, Actor: world.Red, Action: "PICK_UP", From: [2]int{0, 1}, To: [2]int{0, 0}, Jewel: 1},
		{Tick: 2, Actor: world.Red, Action: "MOVE", From: [2]int{0, 1}, To: [2]int{0, 2}, Jewel: 1},
	}
	for _, e := range want {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("WriteAudit: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := ReadAuditLog(dir)
	if err != nil {
		t.Fatalf("ReadAuditLog: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("entries=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestReadTickLog_MissingDir(t *testing.T) {
	got, err := ReadTickLog(t.TempDir())
	if err != nil {
		t.Fatalf("ReadTickLog: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}

package worldtest

import (
	"testing"

	"jewelbots.ai/internal/persistence/snapshot"
	world "jewelbots.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Step()/StepN() run ticks via RunTick()
// - every tick log entry and audit entry is recorded in memory
// - Frame() exports the current grid for comparisons
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T *testing.T
	W *world.World

	Ticks  []world.TickLogEntry
	Audits []world.AuditEntry
}

func NewHarness(t *testing.T, cfg world.Config) *Harness {
	t.Helper()

	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w)
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
func NewHarnessWithWorld(t *testing.T, w *world.World) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{T: t, W: w}
	w.SetTickLogger(recorder{h})
	w.SetAuditLogger(recorder{h})
	return h
}

type recorder struct{ h *Harness }

func (r recorder) WriteTick(e world.TickLogEntry) error {
	r.h.Ticks = append(r.h.Ticks, e)
	return nil
}

func (r recorder) WriteAudit(e world.AuditEntry) error {
	r.h.Audits = append(r.h.Audits, e)
	return nil
}

// Step runs one tick and returns its log entry.
func (h *Harness) Step() world.TickLogEntry {
	h.T.Helper()
	want := h.W.CurrentTick()
	tick, digest := h.W.RunTick()
	if tick != want {
		h.T.Fatalf("RunTick ran tick %d, want %d", tick, want)
	}
	last := h.Ticks[len(h.Ticks)-1]
	if last.Tick != tick || last.Digest != digest {
		h.T.Fatalf("tick log out of sync: %+v vs tick=%d digest=%s", last, tick, digest)
	}
	return last
}

func (h *Harness) StepN(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.Step()
	}
}

// StepUntilComplete runs ticks until the world reports completion and returns the number
// of ticks taken. It fails the test if max ticks pass first.
func (h *Harness) StepUntilComplete(max int) int {
	h.T.Helper()
	for i := 1; i <= max; i++ {
		if h.Step().Complete {
			return i
		}
	}
	h.T.Fatalf("world not complete after %d ticks (moves=%d)", max, h.W.TotalMoves())
	return 0
}

func (h *Harness) Frame() snapshot.FrameV1 {
	return h.W.ExportFrame(h.W.CurrentTick(), "")
}

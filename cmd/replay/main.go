package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "jewelbots.ai/internal/persistence/log"
	"jewelbots.ai/internal/persistence/snapshot"
	"jewelbots.ai/internal/render"
	"jewelbots.ai/internal/sim/world"
)

func main() {
	var (
		runDir     = flag.String("run", "", "run directory containing ticks/ (data/runs/<run_id>)")
		toTick     = flag.Uint64("to_tick", 0, "stop after tick (inclusive, optional)")
		showFrames = flag.Bool("frames", false, "print every frame file found under <run>/frames")
	)
	flag.Parse()

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	entries, err := persistlog.ReadTickLog(*runDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read tick log:", err)
		os.Exit(1)
	}
	res, err := replay(entries, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: run=%s seed=%d checked=%d ticks complete=%v total moves=%d\n",
		res.RunID, res.Seed, res.Checked, res.Complete, res.TotalMoves)

	if !*showFrames {
		return
	}
	paths, err := snapshot.ListFrames(filepath.Join(*runDir, "frames"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "list frames:", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fr, err := snapshot.ReadFrame(p)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read frame:", err)
			os.Exit(1)
		}
		fmt.Printf("tick %d moves=%d complete=%v digest=%s\n", fr.Header.Tick, fr.TotalMoves, fr.Complete, fr.Digest)
		if err := render.Frame(os.Stdout, fr); err != nil {
			fmt.Fprintln(os.Stderr, "render:", err)
			os.Exit(1)
		}
	}
}

type result struct {
	RunID      string
	Seed       int64
	Checked    uint64
	Complete   bool
	TotalMoves int
}

// replay rebuilds the world from the config logged on tick 0 and re-runs every logged
// tick, checking intents, move counts and digests.
func replay(entries []world.TickLogEntry, toTick uint64) (result, error) {
	var res result
	if len(entries) == 0 {
		return res, errors.New("empty tick log")
	}
	first := entries[0]
	if first.Tick != 0 || first.Run == nil {
		return res, fmt.Errorf("tick log does not start with run info (first tick=%d)", first.Tick)
	}

	cfg := first.Run.Config
	w, err := world.New(cfg)
	if err != nil {
		return res, fmt.Errorf("world: %w", err)
	}
	res.RunID = first.Run.RunID
	res.Seed = w.Seed()

	for _, entry := range entries {
		if toTick != 0 && entry.Tick > toTick {
			break
		}
		if entry.Tick != w.CurrentTick() {
			return res, fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}
		tick, gotDigest := w.RunTick()
		res.Checked++
		if gotDigest != entry.Digest {
			return res, fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, gotDigest, entry.Digest)
		}
		if got := w.TotalMoves(); got != entry.Moves {
			return res, fmt.Errorf("moves mismatch at tick %d: got=%d want=%d", tick, got, entry.Moves)
		}
	}
	res.Complete = w.IsComplete()
	res.TotalMoves = w.TotalMoves()
	return res, nil
}

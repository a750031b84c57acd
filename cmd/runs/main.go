package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jewelbots.ai/internal/persistence/indexdb"
)

func main() {
	cmd := "list"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/runs.sqlite)")
	limit := fs.Int("limit", 20, "result limit")
	actor := fs.String("actor", "", "robot filter for audits: R, G or B")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "runs.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx := context.Background()
	switch cmd {
	case "list":
		err = listRuns(ctx, os.Stdout, idx, *limit)
	case "audits":
		err = listAudits(ctx, os.Stdout, idx, fs.Arg(0), *actor, *limit)
	case "digests":
		err = listDigests(ctx, os.Stdout, idx, fs.Arg(0))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want list, audits or digests)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, cmd+":", err)
		os.Exit(1)
	}
}

func listRuns(ctx context.Context, out io.Writer, idx *indexdb.SQLiteIndex, limit int) error {
	runs, err := idx.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for _, r := range runs {
		if err := enc.Encode(map[string]any{
			"run_id":      r.RunID,
			"seed":        r.Seed,
			"grid":        fmt.Sprintf("%dx%d", r.Width, r.Height),
			"jewels":      r.Jewels,
			"knowledge":   r.Knowledge,
			"started_at":  r.StartedAt,
			"finished_at": r.FinishedAt,
			"ticks":       r.Ticks,
			"total_moves": r.TotalMoves,
			"complete":    r.Complete,
		}); err != nil {
			return err
		}
	}
	return nil
}

func listAudits(ctx context.Context, out io.Writer, idx *indexdb.SQLiteIndex, runID, actor string, limit int) error {
	if runID == "" {
		return fmt.Errorf("missing run id")
	}
	rows, err := idx.RunAudits(ctx, runID, strings.ToUpper(actor), limit)
	if err != nil {
		return err
	}
	for _, a := range rows {
		if _, err := fmt.Fprintf(out, "%6d %s %-7s (%d,%d)->(%d,%d) jewel=%d\n",
			a.Tick, a.Actor, a.Action, a.From[0], a.From[1], a.To[0], a.To[1], a.Jewel); err != nil {
			return err
		}
	}
	return nil
}

func listDigests(ctx context.Context, out io.Writer, idx *indexdb.SQLiteIndex, runID string) error {
	if runID == "" {
		return fmt.Errorf("missing run id")
	}
	digests, err := idx.TickDigests(ctx, runID)
	if err != nil {
		return err
	}
	ticks := make([]uint64, 0, len(digests))
	for t := range digests {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	for _, t := range ticks {
		if _, err := fmt.Fprintf(out, "%d %s\n", t, digests[t]); err != nil {
			return err
		}
	}
	return nil
}

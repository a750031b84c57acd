package main

import (
	"fmt"
	"io"
	"net/http"

	"jewelbots.ai/internal/persistence/indexdb"
	"jewelbots.ai/internal/sim/world"
)

func metricsHandler(w *world.World, idx *indexdb.SQLiteIndex, runID string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, w.Metrics(), idx.Stats(), idx != nil, runID)
	}
}

// writeMetrics emits a minimal Prometheus exposition.
func writeMetrics(rw io.Writer, m world.WorldMetrics, s indexdb.Stats, withIndex bool, runID string) {
	gauge := func(name, help string, v any) {
		fmt.Fprintf(rw, "# HELP jewelbots_%s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE jewelbots_%s gauge\n", name)
		fmt.Fprintf(rw, "jewelbots_%s{run=%q} %v\n", name, runID, v)
	}
	counter := func(name, help string, v any) {
		fmt.Fprintf(rw, "# HELP jewelbots_%s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE jewelbots_%s counter\n", name)
		fmt.Fprintf(rw, "jewelbots_%s{run=%q} %v\n", name, runID, v)
	}

	gauge("tick", "Next tick to run.", m.Tick)
	gauge("robots", "Robots on the grid.", m.Robots)
	gauge("observers", "Connected observer sessions.", m.Observers)
	gauge("jewels", "Jewels in the world.", m.Jewels)
	gauge("jewels_correct", "Jewels resting on a target of their color.", m.JewelsCorrect)
	gauge("jewels_carried", "Jewels currently carried.", m.JewelsCarried)
	gauge("known_cells", "Cells present in the knowledge caches.", m.KnownCells)
	gauge("complete", "1 once every jewel is sorted.", boolGauge(m.Complete))
	gauge("step_ms", "Last tick step duration in milliseconds.", fmt.Sprintf("%.3f", m.StepMS))
	counter("moves_total", "Successful robot moves.", m.TotalMoves)
	counter("actions_applied_total", "Actions that changed the grid.", m.ActionsTotal)
	counter("actions_rejected_total", "Non-idle actions dropped as invalid.", m.Rejected)

	if !withIndex {
		return
	}
	gauge("index_queue_depth", "Pending index writes.", s.QueueDepth)
	gauge("index_queue_capacity", "Index write queue capacity.", s.QueueCapacity)
	fmt.Fprintf(rw, "# HELP jewelbots_index_dropped_total Index rows dropped under backpressure.\n")
	fmt.Fprintf(rw, "# TYPE jewelbots_index_dropped_total counter\n")
	fmt.Fprintf(rw, "jewelbots_index_dropped_total{run=%q,kind=%q} %d\n", runID, "tick", s.DropTickTotal)
	fmt.Fprintf(rw, "jewelbots_index_dropped_total{run=%q,kind=%q} %d\n", runID, "audit", s.DropAuditTotal)
	fmt.Fprintf(rw, "jewelbots_index_dropped_total{run=%q,kind=%q} %d\n", runID, "frame", s.DropFrameTotal)
}

func boolGauge(b bool) int {
	if b {
		return 1
	}
	return 0
}

package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Robots    int `json:"robots"`
	Observers int `json:"observers"`

	Jewels        int `json:"jewels"`
	JewelsCorrect int `json:"jewels_correct"`
	JewelsCarried int `json:"jewels_carried"`

	TotalMoves   int `json:"total_moves"`
	ActionsTotal int `json:"actions_applied"`
	Rejected     int `json:"actions_rejected"`
	KnownCells   int `json:"known_cells"`

	Complete bool    `json:"complete"`
	StepMS   float64 `json:"step_ms"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) publishMetrics(stepMS float64) {
	carried := 0
	for _, j := range w.jewels {
		if j.Carried() {
			carried++
		}
	}
	known := 0
	if w.shared != nil {
		known = w.shared.Known()
	} else {
		for _, r := range w.robots {
			known += r.knowledge.Known()
		}
	}
	w.metrics.Store(WorldMetrics{
		Tick:          w.tick.Load(),
		Robots:        len(w.robots),
		Observers:     len(w.observers),
		Jewels:        len(w.jewels),
		JewelsCorrect: w.correctJewels(),
		JewelsCarried: carried,
		TotalMoves:    w.TotalMoves(),
		ActionsTotal:  w.actionsApplied,
		Rejected:      w.actionsRejected,
		KnownCells:    known,
		Complete:      w.complete,
		StepMS:        stepMS,
	})
}

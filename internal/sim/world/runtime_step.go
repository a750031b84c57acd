package world

import "time"

// step runs one tick: every robot senses, then every robot deliberates, then every robot
// acts. Each phase completes for all robots before the next starts.
func (w *World) step() (uint64, string) {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	for _, r := range w.robots {
		r.Sense(w)
	}
	for _, r := range w.robots {
		r.Deliberate()
	}
	results := make([]ActResult, 0, len(w.robots))
	for _, r := range w.robots {
		res := r.Act(w)
		if res.Intent.Kind() != IntentIdle {
			if res.Applied {
				w.actionsApplied++
			} else {
				w.actionsRejected++
			}
		}
		results = append(results, res)
	}

	w.complete = w.CheckCompletion()
	digest := w.stateDigest(nowTick)

	intents := make([]RecordedIntent, 0, len(results))
	var audits []AuditEntry
	for _, res := range results {
		intents = append(intents, RecordedIntent{
			Robot:   res.Robot,
			Kind:    res.Intent.Kind().String(),
			Target:  res.Intent.Target().ToArray(),
			Applied: res.Applied,
		})
		if !res.Applied {
			continue
		}
		audits = append(audits, AuditEntry{
			Tick:   nowTick,
			Actor:  res.Robot,
			Action: res.Intent.Kind().String(),
			From:   res.From.ToArray(),
			To:     res.To.ToArray(),
			Jewel:  res.Jewel,
		})
	}

	if w.tickLogger != nil {
		entry := TickLogEntry{Tick: nowTick, Intents: intents, Moves: w.TotalMoves(), Complete: w.complete, Digest: digest}
		if nowTick == 0 {
			entry.Run = &RunInfo{RunID: w.cfg.RunID, Config: w.Config()}
		}
		_ = w.tickLogger.WriteTick(entry)
	}
	if w.auditLogger != nil {
		for _, a := range audits {
			_ = w.auditLogger.WriteAudit(a)
		}
	}

	w.stepObservers(nowTick, intents, audits, digest)

	// Frames every N ticks, plus the tick that completes the run.
	if w.frameSink != nil && w.cfg.FrameEveryTicks > 0 {
		if nowTick%w.cfg.FrameEveryTicks == 0 || w.complete {
			select {
			case w.frameSink <- w.ExportFrame(nowTick, digest):
			default:
				// Drop frame if sink is backed up.
			}
		}
	}

	w.tick.Add(1)
	w.publishMetrics(float64(time.Since(stepStart).Microseconds()) / 1000.0)
	return nowTick, digest
}

// RunTick advances the world by a single tick and returns the tick number it ran along
// with the state digest taken at the end of it. Intended for drivers, replays and tests.
func (w *World) RunTick() (tick uint64, digest string) {
	return w.step()
}

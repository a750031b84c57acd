package world

import (
	"context"
	"time"
)

// Run drives the world until ctx is cancelled, Stop is called, MaxTicks is reached, or
// (with StopOnComplete) every jewel rests on its target. A non-positive TickInterval runs
// ticks back to back. Observer channels are closed on return.
func (w *World) Run(ctx context.Context) error {
	defer w.closeObservers()

	var tickC <-chan time.Time
	if w.cfg.TickInterval > 0 {
		ticker := time.NewTicker(w.cfg.TickInterval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		if w.finished() {
			return nil
		}
		if tickC == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.stop:
				return nil
			case req := <-w.observerJoin:
				w.handleObserverJoin(req)
				continue
			case id := <-w.observerLeave:
				w.handleObserverLeave(id)
				continue
			default:
			}
			w.step()
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case <-tickC:
			w.step()
		}
	}
}

func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

func (w *World) finished() bool {
	if w.cfg.StopOnComplete && w.complete {
		return true
	}
	return w.cfg.MaxTicks > 0 && w.tick.Load() >= w.cfg.MaxTicks
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

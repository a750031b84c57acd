package world

import (
	"encoding/json"

	"jewelbots.ai/internal/observerproto"
	"jewelbots.ai/internal/sim/encoding"
)

// ObserverJoinRequest registers a read-only observer session that receives one TICK
// message every EveryTicks ticks on TickOut.
//
// All observer state is maintained by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID  string
	TickOut    chan []byte
	EveryTicks int
}

type observerClient struct {
	id      string
	tickOut chan []byte
	every   uint64
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	every := uint64(1)
	if req.EveryTicks > 1 {
		every = uint64(req.EveryTicks)
	}
	if old := w.observers[req.SessionID]; old != nil {
		close(old.tickOut)
	}
	w.observers[req.SessionID] = &observerClient{id: req.SessionID, tickOut: req.TickOut, every: every}
}

func (w *World) handleObserverLeave(sessionID string) {
	c := w.observers[sessionID]
	if c == nil {
		return
	}
	delete(w.observers, sessionID)
	close(c.tickOut)
}

func (w *World) closeObservers() {
	for id, c := range w.observers {
		close(c.tickOut)
		delete(w.observers, id)
	}
}

func (w *World) stepObservers(nowTick uint64, intents []RecordedIntent, audits []AuditEntry, digest string) {
	if len(w.observers) == 0 {
		return
	}
	var b []byte
	for _, c := range w.observers {
		if nowTick%c.every != 0 && !w.complete {
			continue
		}
		if b == nil {
			var err error
			b, err = json.Marshal(w.buildTickMsg(nowTick, intents, audits, digest))
			if err != nil {
				return
			}
		}
		sendLatest(c.tickOut, b)
	}
}

func (w *World) buildTickMsg(nowTick uint64, intents []RecordedIntent, audits []AuditEntry, digest string) observerproto.TickMsg {
	msg := observerproto.TickMsg{
		Type:            observerproto.TypeTick,
		ProtocolVersion: observerproto.Version,
		Tick:            nowTick,
		Width:           w.cfg.Width,
		Height:          w.cfg.Height,
		Encoding:        observerproto.GridEncoding,
		Grid:            encoding.EncodeRLE(w.packedGrid()),
		Complete:        w.complete,
		TotalMoves:      w.TotalMoves(),
		Digest:          digest,
	}
	for _, r := range w.robots {
		v := r.view()
		msg.Robots = append(msg.Robots, observerproto.RobotState{
			Color:    v.Color.String(),
			Pos:      v.Pos.ToArray(),
			Carrying: v.Carrying.String(),
			Goal:     v.Goal,
			Moves:    v.Moves,
		})
	}
	for _, in := range intents {
		msg.Intents = append(msg.Intents, observerproto.IntentInfo{Robot: in.Robot.String(), Kind: in.Kind, Target: in.Target})
	}
	for _, a := range audits {
		msg.Audits = append(msg.Audits, observerproto.AuditEntry{
			Tick:   a.Tick,
			Actor:  a.Actor.String(),
			Action: a.Action,
			From:   a.From,
			To:     a.To,
			Jewel:  a.Jewel,
		})
	}
	return msg
}

// packedGrid returns one observerproto cell code per cell in grid order.
func (w *World) packedGrid() []uint8 {
	out := make([]uint8, len(w.grid))
	for i := range w.grid {
		c := &w.grid[i]
		out[i] = observerproto.PackCell(observerproto.Cell{
			State:    uint8(c.State),
			Target:   uint8(c.Target),
			Occupant: uint8(c.occupantColor()),
			Correct:  c.Correct,
		})
	}
	return out
}

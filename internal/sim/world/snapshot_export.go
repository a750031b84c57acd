package world

import "jewelbots.ai/internal/persistence/snapshot"

// ExportFrame copies the current grid into a presentation frame. It must run on the world
// goroutine (or while the world is not running).
func (w *World) ExportFrame(nowTick uint64, digest string) snapshot.FrameV1 {
	fr := snapshot.FrameV1{
		Header: snapshot.Header{
			Version: snapshot.FrameVersion,
			RunID:   w.cfg.RunID,
			Tick:    nowTick,
		},
		Width:      w.cfg.Width,
		Height:     w.cfg.Height,
		Seed:       w.cfg.Seed,
		Complete:   w.complete,
		TotalMoves: w.TotalMoves(),
		Digest:     digest,
	}

	fr.Cells = make([]snapshot.CellV1, 0, len(w.grid))
	for i := range w.grid {
		v := w.grid[i].view()
		fr.Cells = append(fr.Cells, snapshot.CellV1{
			X:        v.Pos.X,
			Y:        v.Pos.Y,
			State:    uint8(v.State),
			Target:   uint8(v.Target),
			Occupant: uint8(v.Occupant),
			Carrying: uint8(v.Carrying),
			Correct:  v.Correct,
		})
	}
	for _, r := range w.robots {
		v := r.view()
		fr.Robots = append(fr.Robots, snapshot.RobotV1{
			Color:    uint8(v.Color),
			X:        v.Pos.X,
			Y:        v.Pos.Y,
			Carrying: uint8(v.Carrying),
			Goal:     v.Goal,
			Moves:    v.Moves,
		})
	}
	for _, j := range w.jewels {
		fr.Jewels = append(fr.Jewels, snapshot.JewelV1{
			ID:      j.ID,
			Color:   uint8(j.Color),
			X:       j.Pos.X,
			Y:       j.Pos.Y,
			Carried: j.Carried(),
		})
	}
	return fr
}

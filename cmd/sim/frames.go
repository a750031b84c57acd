package main

import (
	"log"
	"os"

	"jewelbots.ai/internal/persistence/indexdb"
	"jewelbots.ai/internal/persistence/snapshot"
	"jewelbots.ai/internal/render"
)

type frameWriter struct {
	dir   string
	idx   *indexdb.SQLiteIndex
	print bool
	log   *log.Logger
}

func (fw frameWriter) write(fr snapshot.FrameV1) {
	path := snapshot.FramePath(fw.dir, fr.Header.Tick)
	if err := snapshot.WriteFrame(path, fr); err != nil {
		fw.log.Printf("frame write: %v", err)
		return
	}
	fw.idx.RecordFrame(path, fr)
	if fw.print {
		fw.log.Printf("tick %d moves=%d complete=%v", fr.Header.Tick, fr.TotalMoves, fr.Complete)
		if err := render.Frame(os.Stdout, fr); err != nil {
			fw.log.Printf("print: %v", err)
		}
	}
}

// drain writes frames that were queued before the world stopped.
func (fw frameWriter) drain(ch <-chan snapshot.FrameV1) {
	for {
		select {
		case fr := <-ch:
			fw.write(fr)
		default:
			return
		}
	}
}

package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// stateDigest hashes everything that can influence future ticks: grid occupancy and flags,
// robot state (position, carried jewel, goal, move count, heat map) and the shared knowledge.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, uint64(w.cfg.Width))
	digestWriteU64(h, &tmp, uint64(w.cfg.Height))
	digestWriteI64(h, &tmp, w.cfg.Seed)

	for i := range w.grid {
		c := &w.grid[i]
		jewelID := 0
		if c.Jewel != nil {
			jewelID = c.Jewel.ID
		}
		h.Write([]byte{byte(c.State), byte(c.Target), byte(c.occupantColor()), boolByte(c.Correct)})
		digestWriteU64(h, &tmp, uint64(jewelID))
	}

	for _, r := range w.robots {
		h.Write([]byte{byte(r.color), byte(r.goal)})
		digestWriteI64(h, &tmp, int64(r.pos.X))
		digestWriteI64(h, &tmp, int64(r.pos.Y))
		carried := 0
		if r.carrying != nil {
			carried = r.carrying.ID
		}
		digestWriteU64(h, &tmp, uint64(carried))
		digestWriteU64(h, &tmp, uint64(r.moves))
		if r.heat != nil {
			for _, n := range r.heat.counts {
				digestWriteU64(h, &tmp, uint64(n))
			}
		}
		if w.shared == nil {
			digestKnowledge(h, &tmp, r.knowledge)
		}
	}
	if w.shared != nil {
		digestKnowledge(h, &tmp, w.shared)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestKnowledge(h hashWriter, tmp *[8]byte, k *Knowledge) {
	for i, kc := range k.cells {
		if !k.seen[i] {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1, byte(kc.State), byte(kc.Target), byte(kc.JewelColor), boolByte(kc.Correct)})
		digestWriteU64(h, tmp, kc.SeenTick)
	}
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

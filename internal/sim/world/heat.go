package world

// HeatMap counts how often a robot has left each cell during its current goal.
type HeatMap struct {
	width  int
	height int
	counts []int
}

func newHeatMap(width, height int) *HeatMap {
	return &HeatMap{width: width, height: height, counts: make([]int, width*height)}
}

func (h *HeatMap) index(p Vec2i) int {
	if p.X < 0 || p.Y < 0 || p.X >= h.width || p.Y >= h.height {
		return -1
	}
	return p.X*h.height + p.Y
}

func (h *HeatMap) At(p Vec2i) int {
	if i := h.index(p); i >= 0 {
		return h.counts[i]
	}
	return 0
}

func (h *HeatMap) inc(p Vec2i) {
	if i := h.index(p); i >= 0 {
		h.counts[i]++
	}
}

// reset zeroes every count and seeds the robot's own cell so it does not hover.
func (h *HeatMap) reset(at Vec2i) {
	for i := range h.counts {
		h.counts[i] = 0
	}
	h.inc(at)
}

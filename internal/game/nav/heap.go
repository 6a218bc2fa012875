package nav

// openEntry is a handle into the node arena ordered by f. Arena indices grow
// in push order, so the index doubles as the tie-breaker: equal-f entries pop
// oldest first, which makes repeated searches over an unchanged grid return
// identical paths.
type openEntry struct {
	f   float64
	idx int32
}

type openHeap []openEntry

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].idx < h[j].idx
}

func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *openHeap) Push(x any) { *h = append(*h, x.(openEntry)) }

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

package nav

// openHeap is the open list: a min-heap over f with index maintenance so
// a node can be repositioned in place when its f improves.
type openHeap []*Node

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool { return h[i].f < h[j].f }

func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *openHeap) Push(x any) {
	n := x.(*Node)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}

func (h *openHeap) Pop() any {
	old := *h
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.heapIdx = -1
	*h = old[:last]
	return n
}

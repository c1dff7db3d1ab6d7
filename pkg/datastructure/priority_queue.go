package datastructure

import (
	"errors"

	"golang.org/x/exp/constraints"
)

var (
	ErrPriorityQueueEmpty = errors.New("priority queue is empty")
	ErrItemNotFound       = errors.New("item not found in priority queue")
)

// PriorityQueueNode orders by Rank first, then GScore, then Item. The
// secondary keys make extraction order fully deterministic when ranks tie,
// which the searches rely on for reproducible paths.
type PriorityQueueNode[T constraints.Ordered] struct {
	Rank   float64
	GScore float64
	Item   T
}

func (a PriorityQueueNode[T]) less(b PriorityQueueNode[T]) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	if a.GScore != b.GScore {
		return a.GScore < b.GScore
	}
	return a.Item < b.Item
}

// MinHeap is a binary min-heap with an item-position index so that
// DecreaseKey runs in O(log n). Items must be unique.
type MinHeap[T constraints.Ordered] struct {
	heap []PriorityQueueNode[T]
	pos  map[T]int
}

func NewMinHeap[T constraints.Ordered]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
		pos:  make(map[T]int),
	}
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.pos[item]
	return ok
}

func (h *MinHeap[T]) Insert(node PriorityQueueNode[T]) {
	h.heap = append(h.heap, node)
	h.pos[node.Item] = len(h.heap) - 1
	h.up(len(h.heap) - 1)
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrPriorityQueueEmpty
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrPriorityQueueEmpty
	}
	min := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	delete(h.pos, min.Item)
	if last > 0 {
		h.down(0)
	}
	return min, nil
}

// DecreaseKey lowers the rank of an item already in the heap. The node's
// GScore is updated alongside the rank.
func (h *MinHeap[T]) DecreaseKey(node PriorityQueueNode[T]) error {
	i, ok := h.pos[node.Item]
	if !ok {
		return ErrItemNotFound
	}
	if node.less(h.heap[i]) {
		h.heap[i] = node
		h.up(i)
	}
	return nil
}

func (h *MinHeap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.heap[i].less(h.heap[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *MinHeap[T]) down(i int) {
	n := len(h.heap)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < n && h.heap[left].less(h.heap[smallest]) {
			smallest = left
		}
		if right < n && h.heap[right].less(h.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

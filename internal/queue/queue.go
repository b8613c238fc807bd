// Package queue provides a bounded top-K accumulator backed by an
// array-based binary min-heap.
package queue

// Item is a scored candidate held by the accumulator.
// Value-based to avoid pointer indirection in the scan loop.
type Item struct {
	Index uint32  // position of the record in the index
	Score float64 // similarity score (higher is better)
}

// TopK retains the K highest-scoring items offered to it.
//
// It works in two phases: the first K items are appended unconditionally
// and heapified in one pass once the capacity is reached; afterwards each
// better-than-root candidate replaces the root and sifts down. The heap
// root is therefore always the weakest retained item, and a full scan of N
// candidates costs O(N log K).
type TopK struct {
	capacity int
	items    []Item
}

// NewTopK creates an accumulator retaining at most capacity items.
// Capacity must be positive.
func NewTopK(capacity int) *TopK {
	return &TopK{
		capacity: capacity,
		items:    make([]Item, 0, capacity),
	}
}

// Offer considers a candidate. Below capacity it is always retained; at
// capacity it is retained only if it beats the current weakest item.
func (q *TopK) Offer(score float64, index uint32) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, Item{Index: index, Score: score})
		if len(q.items) == q.capacity {
			q.heapify()
		}
		return
	}
	if score > q.items[0].Score {
		q.items[0] = Item{Index: index, Score: score}
		q.siftDown(0)
	}
}

// Len returns the number of retained items.
func (q *TopK) Len() int { return len(q.items) }

// Items returns the retained items in heap order, not rank order.
// The slice aliases internal storage and is only valid until the next Offer.
func (q *TopK) Items() []Item { return q.items }

// Min returns the weakest retained item.
func (q *TopK) Min() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	if len(q.items) == q.capacity {
		return q.items[0], true
	}
	// Fill phase: no heap invariant yet, scan for the minimum.
	min := q.items[0]
	for _, it := range q.items[1:] {
		if it.Score < min.Score {
			min = it
		}
	}
	return min, true
}

func (q *TopK) heapify() {
	for i := (len(q.items) - 2) / 2; i >= 0; i-- {
		q.siftDown(i)
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		smallest := l
		if r := l + 1; r < n && q.items[r].Score < q.items[l].Score {
			smallest = r
		}
		if q.items[smallest].Score >= q.items[i].Score {
			return
		}
		q.items[i], q.items[smallest] = q.items[smallest], q.items[i]
		i = smallest
	}
}

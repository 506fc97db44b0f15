// Package queue provides the fixed-capacity rings that connect pipeline
// stages. The device has small, fixed memory: a full ring drops the newest
// element and counts the drop instead of growing.
package queue

// Ring is a bounded FIFO. It is not safe for concurrent use; every ring is
// owned by exactly one consumer stage and pushed to from the same
// cooperative loop.
type Ring[T any] struct {
	head    int
	count   int
	dropped uint32
	slots   []T
}

// NewRing returns a ring holding up to capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{slots: make([]T, capacity)}
}

// Push appends v. When the ring is full the value is discarded (drop-newest)
// and Push returns false.
func (r *Ring[T]) Push(v T) bool {
	if r.count == len(r.slots) {
		r.dropped++
		return false
	}
	r.slots[(r.head+r.count)%len(r.slots)] = v
	r.count++
	return true
}

// Pop removes and returns the oldest element.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.slots[r.head]
	r.slots[r.head] = zero
	r.head = (r.head + 1) % len(r.slots)
	r.count--
	return v, true
}

// Len returns the number of queued elements.
func (r *Ring[T]) Len() int { return r.count }

// Dropped returns how many pushes were discarded on a full ring.
func (r *Ring[T]) Dropped() uint32 { return r.dropped }

package lib

// Ring is a fixed capacity FIFO that evicts the oldest item on overflow
// Used for both the bounded vote history and the status window of recent tick ids
type Ring[T any] struct {
	items []T // backing storage of len == capacity
	head  int // index of the oldest item
	size  int // number of resident items
}

// NewRing() constructs a ring with a fixed capacity
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push() appends an item at the newest end, returning the evicted oldest item if the ring was full
func (r *Ring[T]) Push(item T) (evicted T, ok bool) {
	capacity := len(r.items)
	if r.size == capacity {
		evicted, ok = r.items[r.head], true
		r.items[r.head] = item
		r.head = (r.head + 1) % capacity
		return
	}
	r.items[(r.head+r.size)%capacity] = item
	r.size++
	return
}

// Get() returns the i-th item where 0 is the oldest
func (r *Ring[T]) Get(i int) (item T, ok bool) {
	if i < 0 || i >= r.size {
		return
	}
	return r.items[(r.head+i)%len(r.items)], true
}

// Oldest() returns the oldest resident item
func (r *Ring[T]) Oldest() (T, bool) { return r.Get(0) }

// Newest() returns the most recently pushed item
func (r *Ring[T]) Newest() (T, bool) { return r.Get(r.size - 1) }

// Len() is the number of resident items
func (r *Ring[T]) Len() int { return r.size }

// Cap() is the fixed capacity
func (r *Ring[T]) Cap() int { return len(r.items) }

// Slice() copies the resident items ordered oldest to newest
func (r *Ring[T]) Slice() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		item, _ := r.Get(i)
		out = append(out, item)
	}
	return out
}

// Range() iterates oldest to newest until the callback returns false
func (r *Ring[T]) Range(cb func(i int, item T) bool) {
	for i := 0; i < r.size; i++ {
		item, _ := r.Get(i)
		if !cb(i, item) {
			return
		}
	}
}

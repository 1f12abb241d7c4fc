// Package buffer provides a fixed-capacity ring buffer used to retain the
// most recent inbound messages per session. Not safe for concurrent use;
// callers serialize access.
package buffer

type Ring[T any] struct {
	entries []T
	start   int
	count   int
}

func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		size = 1
	}
	return &Ring[T]{
		entries: make([]T, size),
	}
}

// Add appends an entry, evicting the oldest one once the buffer is full.
func (r *Ring[T]) Add(entry T) {
	if r == nil || len(r.entries) == 0 {
		return
	}

	if r.count < len(r.entries) {
		index := (r.start + r.count) % len(r.entries)
		r.entries[index] = entry
		r.count++
		return
	}

	r.entries[r.start] = entry
	r.start = (r.start + 1) % len(r.entries)
}

func (r *Ring[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.count
}

// List returns the retained entries in arrival order, oldest first.
func (r *Ring[T]) List() []T {
	if r == nil || r.count == 0 {
		return nil
	}

	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		index := (r.start + i) % len(r.entries)
		out[i] = r.entries[index]
	}
	return out
}

// Tail returns up to n of the most recent entries, oldest first.
func (r *Ring[T]) Tail(n int) []T {
	all := r.List()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Clear drops every retained entry, keeping the capacity.
func (r *Ring[T]) Clear() {
	if r == nil {
		return
	}
	var zero T
	for i := range r.entries {
		r.entries[i] = zero
	}
	r.start = 0
	r.count = 0
}

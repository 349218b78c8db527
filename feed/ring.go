package feed

// ring keeps the newest cap entries, newest first.
type ring[T any] struct {
	buf  []T
	head int
	size int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.head = (r.head + 1) % len(r.buf)
	r.buf[r.head] = v
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *ring[T]) items() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.head-i+len(r.buf))%len(r.buf)])
	}
	return out
}

func (r *ring[T]) len() int { return r.size }

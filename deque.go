package localsync

// deque is a FIFO ring buffer.
// The zero value is an empty deque ready to use.
type deque[E any] struct {
	buf  []E
	head int
	size int
}

func (q *deque[E]) Len() int {
	return q.size
}

func (q *deque[E]) Empty() bool {
	return q.size == 0
}

func (q *deque[E]) grow() {
	n := 2 * len(q.buf)
	if n == 0 {
		n = 4
	}
	buf := make([]E, n)
	i := copy(buf, q.buf[q.head:])
	copy(buf[i:], q.buf[:q.head])
	q.buf = buf
	q.head = 0
}

func (q *deque[E]) index(i int) int {
	i += q.head
	if n := len(q.buf); i >= n {
		i -= n
	}
	return i
}

func (q *deque[E]) PushBack(v E) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[q.index(q.size)] = v
	q.size++
}

func (q *deque[E]) Front() (v E, ok bool) {
	if q.size == 0 {
		return v, false
	}
	return q.buf[q.head], true
}

func (q *deque[E]) PopFront() (v E, ok bool) {
	if q.size == 0 {
		return v, false
	}
	var zero E
	v, q.buf[q.head] = q.buf[q.head], zero
	q.head = q.index(1)
	q.size--
	if q.size == 0 {
		q.head = 0
	}
	return v, true
}

// Remove removes the first element for which eq reports true, keeping
// the order of the others.
func (q *deque[E]) Remove(eq func(E) bool) bool {
	for i := 0; i < q.size; i++ {
		if !eq(q.buf[q.index(i)]) {
			continue
		}
		for j := i; j < q.size-1; j++ {
			q.buf[q.index(j)] = q.buf[q.index(j+1)]
		}
		var zero E
		q.buf[q.index(q.size-1)] = zero
		q.size--
		if q.size == 0 {
			q.head = 0
		}
		return true
	}
	return false
}

// Clear drops every element.
func (q *deque[E]) Clear() {
	clear(q.buf)
	q.head = 0
	q.size = 0
}

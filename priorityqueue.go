package localsync

type leveler interface {
	queueLevel() int
}

// priorityqueue pops elements with the least level first.
// Elements of the same level are popped in arrival order (FIFO).
type priorityqueue[E leveler] struct {
	levels []deque[E]
	size   int
	low    int // No non-empty level below this one.
}

func (q *priorityqueue[E]) Empty() bool {
	return q.size == 0
}

func (q *priorityqueue[E]) Len() int {
	return q.size
}

func (q *priorityqueue[E]) Push(v E) {
	l := v.queueLevel()
	if l >= len(q.levels) {
		q.levels = append(q.levels, make([]deque[E], l+1-len(q.levels))...)
	}
	q.levels[l].PushBack(v)
	if q.size == 0 || l < q.low {
		q.low = l
	}
	q.size++
}

func (q *priorityqueue[E]) Pop() (v E) {
	if q.size == 0 {
		panic("localsync: pop from empty priority queue")
	}
	for q.levels[q.low].Empty() {
		q.low++
	}
	v, _ = q.levels[q.low].PopFront()
	q.size--
	return v
}

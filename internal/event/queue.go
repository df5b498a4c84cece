package event

// Queue is a per-window FIFO of translated events. It is not safe for
// concurrent use; a window is pumped from one goroutine at a time.
type Queue struct {
	items []Event
}

func (q *Queue) Push(ev Event) {
	q.items = append(q.items, ev)
}

// Pop removes the oldest event.
func (q *Queue) Pop() (Event, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return ev, true
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Drain removes and returns all queued events in order.
func (q *Queue) Drain() []Event {
	out := q.items
	q.items = nil
	return out
}

package schedule

import (
	"container/heap"
	"sync"
	"time"

	"github.com/PabloGalante/pulsebot/internal/observability"
)

// Scheduler runs delayed callbacks for every session on one shared substrate:
// a min-heap of pending entries drained by a single background goroutine.
// Callbacks are dispatched on their own goroutine, so a slow callback never
// delays another session's deadline.
type Scheduler struct {
	mu      sync.Mutex
	queue   entryQueue
	seq     uint64
	stopped bool

	wake chan struct{}
	done chan struct{}

	now func() time.Time
}

// Handle identifies one scheduled callback and can be used to cancel it.
type Handle struct {
	e *entry
}

type entry struct {
	at        time.Time
	seq       uint64
	fn        func()
	cancelled bool
	index     int // position in the heap, -1 once popped
}

// NewScheduler starts the dispatch goroutine.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		now:  time.Now,
	}
	go s.run()
	return s
}

// ScheduleAt registers fn to run once, at or after at. The caller is never
// blocked waiting for the timer to fire.
func (s *Scheduler) ScheduleAt(at time.Time, fn func()) *Handle {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return &Handle{}
	}
	s.seq++
	e := &entry{at: at, seq: s.seq, fn: fn}
	heap.Push(&s.queue, e)
	s.mu.Unlock()

	s.kick()
	return &Handle{e: e}
}

// Cancel prevents a not-yet-fired callback from running. Cancelling an
// already-fired, already-cancelled or zero handle is a safe no-op.
func (s *Scheduler) Cancel(h *Handle) {
	if h == nil || h.e == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	h.e.cancelled = true
	if h.e.index >= 0 {
		heap.Remove(&s.queue, h.e.index)
	}
}

// Stop shuts the dispatch loop down. Entries still pending are dropped;
// callbacks already dispatched keep running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)
	observability.Logger().Info("scheduler stopped")
}

func (s *Scheduler) kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		var due []*entry
		wait := time.Duration(-1)
		now := s.now()
		for s.queue.Len() > 0 {
			next := s.queue[0]
			if next.at.After(now) {
				wait = next.at.Sub(now)
				break
			}
			e := heap.Pop(&s.queue).(*entry)
			if !e.cancelled {
				due = append(due, e)
			}
		}
		s.mu.Unlock()

		for _, e := range due {
			go e.fn()
		}

		if wait < 0 {
			select {
			case <-s.wake:
			case <-s.done:
				return
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		case <-s.done:
			timer.Stop()
			return
		}
	}
}

// entryQueue orders entries by due time, then insertion order for stability.
type entryQueue []*entry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *entryQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

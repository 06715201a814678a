package event

import (
	"sync"
	"time"
)

type handlerKey struct {
	t      Type
	target any
}

// Queue is a FIFO event queue with a handler table keyed by (type, target).
// AddEvent may be called from any goroutine (timers fire off-thread); dispatch
// happens only on the goroutine driving Run, DispatchNext or Drain.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	events   []Event
	handlers map[handlerKey]Handler
	stopped  bool
}

func NewQueue() *Queue {
	q := &Queue{handlers: make(map[handlerKey]Handler)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// AdoptHandler installs h for events of type t addressed to target,
// replacing any previous handler under the same key.
func (q *Queue) AdoptHandler(t Type, target any, h Handler) {
	q.mu.Lock()
	q.handlers[handlerKey{t, target}] = h
	q.mu.Unlock()
}

// RemoveHandler detaches the handler for (t, target). Removing a handler
// that was never adopted is a no-op.
func (q *Queue) RemoveHandler(t Type, target any) {
	q.mu.Lock()
	delete(q.handlers, handlerKey{t, target})
	q.mu.Unlock()
}

// AddEvent appends ev to the queue. Events are dispatched in post order.
func (q *Queue) AddEvent(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.cond.Signal()
	q.mu.Unlock()
}

// DispatchNext pops and dispatches one event. It returns false when the
// queue is empty. Events with no adopted handler are dropped.
func (q *Queue) DispatchNext() bool {
	q.mu.Lock()
	if len(q.events) == 0 {
		q.mu.Unlock()
		return false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	h := q.handlers[handlerKey{ev.Type, ev.Target}]
	q.mu.Unlock()

	if h != nil {
		h(ev)
	}
	return true
}

// Drain dispatches events until the queue is empty, including events posted
// by the handlers it runs.
func (q *Queue) Drain() {
	for q.DispatchNext() {
	}
}

// Run dispatches events until Stop is called, blocking when the queue is
// empty.
func (q *Queue) Run() {
	for {
		q.mu.Lock()
		for len(q.events) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if q.stopped {
			q.mu.Unlock()
			return
		}
		q.mu.Unlock()
		q.DispatchNext()
	}
}

// Stop makes Run return once the current handler finishes.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Timer is a one-shot timer created through a Queue. When it fires it posts
// a TypeTimer event against its target.
type Timer struct {
	target any
	t      *time.Timer
}

// Target returns the event target the timer posts against.
func (t *Timer) Target() any { return t.target }

// NewOneShotTimer schedules a TypeTimer event after d. If target is nil the
// timer handle itself is the target.
func (q *Queue) NewOneShotTimer(d time.Duration, target any) *Timer {
	tm := &Timer{}
	if target == nil {
		tm.target = tm
	} else {
		tm.target = target
	}
	tm.t = time.AfterFunc(d, func() {
		q.AddEvent(Event{Type: TypeTimer, Target: tm.target})
	})
	return tm
}

// DeleteTimer cancels t. A fire already queued is dropped once its handler
// is removed; calling DeleteTimer after the fire is safe.
func (q *Queue) DeleteTimer(t *Timer) {
	if t != nil {
		t.t.Stop()
	}
}

package eval

import (
	"context"
	"sync"

	"fortio.org/log"
	"github.com/edwingeng/deque"
	"zds.io/zds/object"
)

// eventQueue serializes callbacks coming from timers and key events (other
// goroutines) onto the goroutine running RunEvents.
type eventQueue struct {
	mu     sync.Mutex
	queue  deque.Deque // of func()
	timers int         // live timers, RunEvents waits while > 0.
	wake   chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		queue: deque.NewDeque(),
		wake:  make(chan struct{}, 1),
	}
}

func (q *eventQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default: // already signaled.
	}
}

// Post queues fn to run on the interpreter goroutine. Safe to call from any
// goroutine.
func (s *State) Post(fn func()) {
	q := s.events
	q.mu.Lock()
	q.queue.PushBack(fn)
	n := q.queue.Len()
	q.mu.Unlock()
	log.Debugf("Posted event, %d queued", n)
	q.signal()
}

// PostCall queues a call of fn with args. Errors are logged, there is no
// enclosing run to report them to.
func (s *State) PostCall(what string, fn object.Object, args ...object.Object) {
	s.Post(func() {
		res := s.CallFunction(fn, args)
		if err, ok := res.(object.Error); ok {
			log.Errf("Error in %s callback: %v", what, err)
		}
	})
}

func (s *State) next() (func(), bool) {
	q := s.events
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queue.Empty() {
		return nil, false
	}
	fn := q.queue.PopFront().(func())
	return fn, true
}

// TimerStarted and TimerDone track live timers. TimerDone must be called on
// the interpreter goroutine (from a posted event or a native) so RunEvents
// can't exit while a final tick is still being queued.
func (s *State) TimerStarted() {
	s.events.mu.Lock()
	s.events.timers++
	s.events.mu.Unlock()
}

func (s *State) TimerDone() {
	s.events.mu.Lock()
	if s.events.timers > 0 {
		s.events.timers--
	}
	s.events.mu.Unlock()
	s.events.signal()
}

// PendingTimers is the number of live timers.
func (s *State) PendingTimers() int {
	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	return s.events.timers
}

// PendingEvents is the number of queued callbacks.
func (s *State) PendingEvents() int {
	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	return s.events.queue.Len()
}

func (s *State) runEvent(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Critf("Caught panic in event: %v", r)
			s.Reset()
		}
	}()
	fn()
}

// RunEvents runs queued callbacks on the calling goroutine until the queue
// is empty and no timer is live, or ctx is done.
func (s *State) RunEvents(ctx context.Context) error {
	log.LogVf("Running events, %d timers live", s.PendingTimers())
	for {
		for fn, ok := s.next(); ok; fn, ok = s.next() {
			s.runEvent(fn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if s.PendingTimers() == 0 && s.PendingEvents() == 0 {
			log.LogVf("No more timers or events")
			return nil
		}
		select {
		case <-ctx.Done():
			log.LogVf("Events loop interrupted: %v", ctx.Err())
			return ctx.Err()
		case <-s.events.wake:
		}
	}
}

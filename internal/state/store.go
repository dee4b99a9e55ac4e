package state

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Change is delivered to subscribers after every applied event
type Change struct {
	Event   Event
	State   State
	Version uint64 // Increases by one per applied event
}

type Subscriber func(Change)

// Store owns the application state. Transitions are serialized and changes
// reach subscribers in version order, outside the state lock, so subscribers
// may dispatch. A dispatch made while another delivery is running is queued
// and delivered by that loop after the current change.
type Store interface {
	Dispatch(event Event) State
	Snapshot() State
	Version() uint64
	Subscribe(fn Subscriber) (unsubscribe func())
}

type subscription struct {
	id int
	fn Subscriber
}

type store struct {
	mutex   sync.Mutex
	state   State
	version uint64

	// Changes waiting for delivery, guarded by mutex
	pending    []Change
	delivering bool

	subMutex    sync.RWMutex
	subscribers []subscription
	nextSubID   int
}

func NewStore(initial State) Store {
	return &store{state: initial.Clone()}
}

func (s *store) Dispatch(event Event) State {
	s.mutex.Lock()
	s.state = Reduce(s.state, event)
	s.version++
	change := Change{
		Event:   event,
		State:   s.state.Clone(),
		Version: s.version,
	}
	s.pending = append(s.pending, change)
	deliver := !s.delivering
	s.delivering = true
	s.mutex.Unlock()

	log.Debugf("Applied %s (v%d): loading=%t page=%d/%d items=%d",
		event.EventType(), change.Version, change.State.Loading,
		change.State.CurrentPage, change.State.TotalPages, len(change.State.Items))

	if deliver {
		s.deliver()
	}
	return change.State.Clone()
}

// deliver notifies subscribers of queued changes until the queue is empty
func (s *store) deliver() {
	done := false
	defer func() {
		if !done {
			// A subscriber panicked; let the next dispatch resume delivery
			s.mutex.Lock()
			s.delivering = false
			s.mutex.Unlock()
		}
	}()

	for {
		s.mutex.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.delivering = false
			s.mutex.Unlock()
			done = true
			return
		}
		change := s.pending[0]
		s.pending = s.pending[1:]
		s.mutex.Unlock()

		s.notify(change)
	}
}

func (s *store) Snapshot() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state.Clone()
}

func (s *store) Version() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.version
}

func (s *store) Subscribe(fn Subscriber) func() {
	s.subMutex.Lock()
	defer s.subMutex.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *store) unsubscribe(id int) {
	s.subMutex.Lock()
	defer s.subMutex.Unlock()

	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return
		}
	}
}

func (s *store) notify(change Change) {
	s.subMutex.RLock()
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMutex.RUnlock()

	for _, sub := range subs {
		c := change
		c.State = change.State.Clone()
		sub.fn(c)
	}
}

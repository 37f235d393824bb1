package errorstore

import (
	"sync"

	"github.com/jrsteele09/go-pos-console/action"
)

// Listener receives the newly held error, nil when it was cleared.
type Listener func(err *action.ClassifiedError)

type subscription struct {
	id int
	fn Listener
}

// Store is a single slot holding the most recent user-facing error.
// There is no queue: every SetError replaces whatever was held.
type Store struct {
	lock    sync.RWMutex
	current *action.ClassifiedError

	notifyLock sync.Mutex
	listeners  []subscription
	nextID     int
}

func NewStore() *Store {
	return &Store{}
}

// Error returns the held error or nil.
func (s *Store) Error() *action.ClassifiedError {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current
}

// SetError replaces the held error. nil clears it.
func (s *Store) SetError(err *action.ClassifiedError) {
	s.notifyLock.Lock()
	defer s.notifyLock.Unlock()

	s.lock.Lock()
	prev := s.current
	s.current = err
	s.lock.Unlock()

	if prev == nil && err == nil {
		return
	}
	for _, sub := range s.listeners {
		sub.fn(err)
	}
}

// Report classifies err and holds it. A nil err is ignored rather than clearing the slot.
func (s *Store) Report(err error) {
	if c := action.Classify(err); c != nil {
		s.SetError(c)
	}
}

// Subscribe registers fn; listeners must not call SetError synchronously.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.notifyLock.Lock()
	defer s.notifyLock.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.notifyLock.Lock()
		defer s.notifyLock.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

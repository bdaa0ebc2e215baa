package dircollection

import "sync"

// listenerSet is a concurrency-safe set of change listeners that preserves
// registration order for notification.
type listenerSet struct {
	mu      sync.Mutex
	order   []DirsChangeListener
	members map[DirsChangeListener]struct{}
}

func newListenerSet() *listenerSet {
	return &listenerSet{
		members: make(map[DirsChangeListener]struct{}),
	}
}

// add returns true if the listener was not already registered
func (s *listenerSet) add(l DirsChangeListener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[l]; ok {
		return false
	}
	s.members[l] = struct{}{}
	s.order = append(s.order, l)
	return true
}

func (s *listenerSet) remove(l DirsChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[l]; !ok {
		return
	}
	delete(s.members, l)
	for i, registered := range s.order {
		if registered == l {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// snapshot returns the listeners in registration order. Registrations that
// race with an in-flight notification may or may not be included.
func (s *listenerSet) snapshot() []DirsChangeListener {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DirsChangeListener, len(s.order))
	copy(out, s.order)
	return out
}

package synchronizer

import "sync"

type rootLock struct {
	mu sync.Mutex
	// refs counts the runs holding or waiting for mu.
	refs int
}

// rootLockStore serializes runs that target the same root.
// An entry exists only while a run holds or waits for its lock.
type rootLockStore struct {
	locks map[string]*rootLock
	mu    sync.Mutex
}

// lock blocks until root is free and returns the function releasing it.
func (s *rootLockStore) lock(root string) func() {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*rootLock)
	}
	l, ok := s.locks[root]
	if !ok {
		l = &rootLock{}
		s.locks[root] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		defer s.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, root)
		}
	}
}

func (s *rootLockStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

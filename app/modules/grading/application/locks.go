package gradingservice

import "sync"

// gamesetLocks serializes grading passes on one gameset within the process.
// The row lock taken inside the transaction covers other processes.
type gamesetLocks struct {
	mu    sync.Mutex
	locks map[int64]*gamesetLock
}

type gamesetLock struct {
	mu   sync.Mutex
	refs int
}

func newGamesetLocks() *gamesetLocks {
	return &gamesetLocks{locks: make(map[int64]*gamesetLock)}
}

// Lock blocks until id is free and returns its release func.
func (l *gamesetLocks) Lock(id int64) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &gamesetLock{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

package game

import (
	"sync"

	"github.com/mcoot/paddlegame/internal/model"
)

// gameLocks serializes mutations per game id. Entries are dropped once no
// goroutine holds or waits on them.
type gameLocks struct {
	mu    sync.Mutex
	locks map[model.GameID]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{
		locks: make(map[model.GameID]*gameLock),
	}
}

// lock blocks until the caller holds the lock for id and returns its release
func (l *gameLocks) lock(id model.GameID) func() {
	l.mu.Lock()
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()

		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size returns the number of tracked ids
func (l *gameLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameLocksSerializeSameGame(t *testing.T) {
	locks := newGameLocks()
	unlock := locks.lock("G1")

	acquired := make(chan struct{})
	go func() {
		release := locks.lock("G1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired
}

func TestGameLocksIndependentGames(t *testing.T) {
	locks := newGameLocks()
	unlock := locks.lock("G1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		locks.lock("G2")()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another game blocked")
	}
}

func TestGameLocksAreReleased(t *testing.T) {
	locks := newGameLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.lock("G1")()
		}()
	}
	wg.Wait()

	assert.Zero(t, locks.size())
}

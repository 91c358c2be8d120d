package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLock_SameKeySameMutex(t *testing.T) {
	lm := NewLockManager()

	assert.Same(t, lm.GetLock("user-1"), lm.GetLock("user-1"))
	assert.NotSame(t, lm.GetLock("user-1"), lm.GetLock("user-2"))
}

func TestWithLock_SerializesAccess(t *testing.T) {
	lm := NewLockManager()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lm.WithLock("shared", func() {
				counter++
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLockPair_OppositeOrdersDoNotDeadlock(t *testing.T) {
	lm := NewLockManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release := lm.LockPair("alice", "bob")
			release()
		}()
		go func() {
			defer wg.Done()
			release := lm.LockPair("bob", "alice")
			release()
		}()
	}
	wg.Wait()
}

func TestLockPair_SameKey(t *testing.T) {
	lm := NewLockManager()

	release := lm.LockPair("alice", "alice")
	release()

	// Lock must be usable afterwards.
	lm.WithLock("alice", func() {})
}

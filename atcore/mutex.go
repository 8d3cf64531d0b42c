package atcore

import "time"

// boundedMutex is a mutual-exclusion lock that additionally supports
// acquisition with a timeout — FreeRTOS' xSemaphoreTake(timeout),
// re-expressed over a 1-buffered channel the same way this module
// re-expresses binary signals elsewhere (see Dispatcher.txDone/
// srMatched). A buffered channel of capacity 1 is both simpler and
// leak-free compared to spawning a goroutine per acquisition attempt to
// race a plain sync.Mutex against time.After.
type boundedMutex chan struct{}

func newBoundedMutex() boundedMutex {
	m := make(boundedMutex, 1)
	m <- struct{}{}
	return m
}

// Lock acquires the mutex, blocking indefinitely.
func (m boundedMutex) Lock() {
	<-m
}

// Unlock releases the mutex. Unlocking an already-unlocked mutex panics,
// same as sync.Mutex.
func (m boundedMutex) Unlock() {
	select {
	case m <- struct{}{}:
	default:
		panic("atcore: unlock of unlocked mutex")
	}
}

// TryLock attempts to acquire the mutex within timeout, returning false
// if it could not.
func (m boundedMutex) TryLock(timeout time.Duration) bool {
	select {
	case <-m:
		return true
	case <-time.After(timeout):
		return false
	}
}

package event

import "sync"

// Loop serializes work onto a single logical thread. Host callbacks, timer
// callbacks and user commands all enter through Run so no two mutations of the
// workspace store interleave. Run must not be called from inside Run.
type Loop struct {
	mu sync.Mutex
}

// Run executes fn while holding the loop.
func (l *Loop) Run(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// RunErr is Run for functions that return an error.
func (l *Loop) RunErr(fn func() error) error {
	var err error
	l.Run(func() { err = fn() })
	return err
}

// Wrap returns fn bound to the loop, for use as a timer callback.
func (l *Loop) Wrap(fn func()) func() {
	return func() { l.Run(fn) }
}

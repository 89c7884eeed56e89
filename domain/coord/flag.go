package coord

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStopped is the cause recorded when a recording is stopped normally.
var ErrStopped = errors.New("recording stopped")

// Flag is a set-once stop signal shared by the producers of one session.
// Producers poll IsSet once per loop iteration; Done may be used to cut a
// pacing sleep short. Once set it is never cleared. The zero value is not
// usable; construct with NewFlag.
type Flag struct {
	set   atomic.Bool
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	cause error
}

// NewFlag returns an unset flag.
func NewFlag() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set marks the flag. Only the first call records its cause and returns true.
func (f *Flag) Set(cause error) bool {
	if cause == nil {
		cause = ErrStopped
	}
	first := false
	f.once.Do(func() {
		f.mu.Lock()
		f.cause = cause
		f.mu.Unlock()
		f.set.Store(true)
		close(f.done)
		first = true
	})
	return first
}

// IsSet reports whether the flag has been set.
func (f *Flag) IsSet() bool { return f.set.Load() }

// Done is closed when the flag is set.
func (f *Flag) Done() <-chan struct{} { return f.done }

// Cause returns the error passed to the first Set, or nil while unset.
func (f *Flag) Cause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cause
}

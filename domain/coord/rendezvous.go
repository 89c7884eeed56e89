package coord

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrAborted is returned by Arrive when a participant gave up before every
// party reached the rendezvous.
var ErrAborted = errors.New("rendezvous aborted")

// RendezvousState describes where a Rendezvous is in its single use.
type RendezvousState int

const (
	Waiting RendezvousState = iota
	Released
	Aborted
)

func (s RendezvousState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Released:
		return "released"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("RendezvousState(%d)", int(s))
	}
}

// Rendezvous is a single-use barrier: every party blocks in Arrive until the
// last one arrives, then all are released together. A party that cannot start
// calls Abort instead, which releases the others with an error so nobody
// waits forever.
type Rendezvous struct {
	mu      sync.Mutex
	parties int
	arrived int
	state   RendezvousState
	cause   error
	release chan struct{}
}

// NewRendezvous returns a barrier for the given number of parties (minimum 1).
func NewRendezvous(parties int) *Rendezvous {
	if parties < 1 {
		parties = 1
	}
	return &Rendezvous{parties: parties, release: make(chan struct{})}
}

// Arrive registers the caller and blocks until all parties arrived, the
// rendezvous is aborted, or ctx is done. A caller whose ctx expires is not
// withdrawn: the remaining parties still count it as arrived.
func (r *Rendezvous) Arrive(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case Aborted:
		err := r.abortErr()
		r.mu.Unlock()
		return err
	case Released:
		r.mu.Unlock()
		return fmt.Errorf("%w: rendezvous already released", ErrAborted)
	}
	r.arrived++
	if r.arrived == r.parties {
		r.state = Released
		close(r.release)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	select {
	case <-r.release:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.state == Aborted {
			return r.abortErr()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Abort releases every waiting party with ErrAborted wrapping cause. It has
// no effect once the rendezvous was released; it returns whether it took
// effect.
func (r *Rendezvous) Abort(cause error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Waiting {
		return false
	}
	r.state = Aborted
	r.cause = cause
	close(r.release)
	return true
}

// State reports the current state.
func (r *Rendezvous) State() RendezvousState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Arrived reports how many parties have arrived so far.
func (r *Rendezvous) Arrived() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.arrived
}

func (r *Rendezvous) abortErr() error {
	if r.cause == nil {
		return ErrAborted
	}
	return fmt.Errorf("%w: %w", ErrAborted, r.cause)
}

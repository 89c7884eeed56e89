package coord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFlag_SetOnceKeepsFirstCause(t *testing.T) {
	f := NewFlag()
	if f.IsSet() || f.Cause() != nil {
		t.Fatalf("new flag should be unset")
	}
	first := errors.New("device gone")
	if !f.Set(first) {
		t.Fatalf("first Set should report true")
	}
	if f.Set(errors.New("second")) {
		t.Fatalf("second Set should report false")
	}
	if !f.IsSet() {
		t.Fatalf("flag should be set")
	}
	if !errors.Is(f.Cause(), first) {
		t.Fatalf("cause = %v, want %v", f.Cause(), first)
	}
	select {
	case <-f.Done():
	default:
		t.Fatalf("Done should be closed after Set")
	}
}

func TestFlag_NilCauseMeansStopped(t *testing.T) {
	f := NewFlag()
	f.Set(nil)
	if !errors.Is(f.Cause(), ErrStopped) {
		t.Fatalf("cause = %v, want ErrStopped", f.Cause())
	}
}

func TestRendezvous_NeitherProceedsAlone(t *testing.T) {
	r := NewRendezvous(2)
	passed := make(chan struct{})
	go func() {
		_ = r.Arrive(context.Background())
		close(passed)
	}()
	select {
	case <-passed:
		t.Fatalf("first party passed before the second arrived")
	case <-time.After(30 * time.Millisecond):
	}
	if r.State() != Waiting || r.Arrived() != 1 {
		t.Fatalf("state=%v arrived=%d, want waiting/1", r.State(), r.Arrived())
	}
	if err := r.Arrive(context.Background()); err != nil {
		t.Fatalf("second Arrive: %v", err)
	}
	select {
	case <-passed:
	case <-time.After(time.Second):
		t.Fatalf("first party was not released")
	}
	if r.State() != Released {
		t.Fatalf("state=%v, want released", r.State())
	}
}

func TestRendezvous_AllInterleavingsReleaseTogether(t *testing.T) {
	for i := 0; i < 50; i++ {
		r := NewRendezvous(2)
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for p := 0; p < 2; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				if p == i%2 {
					time.Sleep(time.Duration(i%3) * time.Millisecond)
				}
				errs[p] = r.Arrive(context.Background())
			}(p)
		}
		wg.Wait()
		if errs[0] != nil || errs[1] != nil {
			t.Fatalf("run %d: errs=%v", i, errs)
		}
	}
}

func TestRendezvous_AbortReleasesWaiter(t *testing.T) {
	r := NewRendezvous(2)
	cause := errors.New("no loopback device")
	got := make(chan error, 1)
	go func() { got <- r.Arrive(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	if !r.Abort(cause) {
		t.Fatalf("Abort should take effect while waiting")
	}
	select {
	case err := <-got:
		if !errors.Is(err, ErrAborted) || !errors.Is(err, cause) {
			t.Fatalf("err=%v, want ErrAborted wrapping cause", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter not released by Abort")
	}
	if r.State() != Aborted {
		t.Fatalf("state=%v, want aborted", r.State())
	}
}

func TestRendezvous_AbortBeforeAnyArrival(t *testing.T) {
	r := NewRendezvous(2)
	r.Abort(nil)
	if err := r.Arrive(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("err=%v, want ErrAborted", err)
	}
}

func TestRendezvous_AbortAfterReleaseIsNoop(t *testing.T) {
	r := NewRendezvous(1)
	if err := r.Arrive(context.Background()); err != nil {
		t.Fatalf("Arrive: %v", err)
	}
	if r.Abort(errors.New("late")) {
		t.Fatalf("Abort after release should be a no-op")
	}
	if r.State() != Released {
		t.Fatalf("state=%v, want released", r.State())
	}
}

func TestRendezvous_ContextCancel(t *testing.T) {
	r := NewRendezvous(2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := r.Arrive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want deadline exceeded", err)
	}
}

package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/screenrec/domain/coord"
	"github.com/soocke/screenrec/domain/mux"
)

// loopProducer arrives at the gate and spins until the flag is set.
type loopProducer struct {
	startErr error
	failErr  error
	iters    atomic.Int64
	passed   atomic.Bool
}

func (p *loopProducer) Run(ctx context.Context, flag *coord.Flag, gate *coord.Rendezvous) error {
	if p.startErr != nil {
		gate.Abort(p.startErr)
		flag.Set(p.startErr)
		return p.startErr
	}
	if err := gate.Arrive(ctx); err != nil {
		return err
	}
	p.passed.Store(true)
	for !flag.IsSet() {
		if p.iters.Add(1) == 5 && p.failErr != nil {
			flag.Set(p.failErr)
			return p.failErr
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not finish")
	}
}

func TestSession_StopEndsBothProducers(t *testing.T) {
	v, a := &loopProducer{}, &loopProducer{}
	s := NewSession(v, a, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start err=%v", err)
	}
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	waitDone(t, s)

	report, err := s.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !v.passed.Load() || !a.passed.Load() {
		t.Fatalf("producers did not pass the rendezvous")
	}
	if !errors.Is(report.Cause, coord.ErrStopped) {
		t.Fatalf("cause=%v, want ErrStopped", report.Cause)
	}
	if report.ID == "" || report.Duration() <= 0 {
		t.Fatalf("report=%+v", report)
	}
}

func TestSession_AudioStartFailureReleasesVideo(t *testing.T) {
	cause := errors.New("no loopback")
	v, a := &loopProducer{}, &loopProducer{startErr: cause}
	report, err := NewSession(v, a, nil).Run(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("err=%v, want %v", err, cause)
	}
	if v.passed.Load() {
		t.Fatalf("video passed an aborted rendezvous")
	}
	if !errors.Is(report.VideoErr, coord.ErrAborted) {
		t.Fatalf("video err=%v, want ErrAborted", report.VideoErr)
	}
}

func TestSession_ProducerFailureStopsSibling(t *testing.T) {
	cause := errors.New("sink broken")
	v, a := &loopProducer{failErr: cause}, &loopProducer{}
	report, err := NewSession(v, a, nil).Run(context.Background())
	if !errors.Is(err, cause) || !errors.Is(report.Cause, cause) {
		t.Fatalf("err=%v cause=%v", err, report.Cause)
	}
	if report.AudioErr != nil {
		t.Fatalf("audio err=%v, want clean stop", report.AudioErr)
	}
}

func TestSession_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession(&loopProducer{}, &loopProducer{}, nil)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	cancel()
	waitDone(t, s)
	if !s.Stopping() {
		t.Fatalf("flag not set after cancel")
	}
}

func TestSession_WaitBeforeStart(t *testing.T) {
	if _, err := NewSession(&loopProducer{}, &loopProducer{}, nil).Wait(); err == nil {
		t.Fatalf("expected error")
	}
}

type okRunner struct{ output string }

func (r *okRunner) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	r.output = args[len(args)-1]
	return nil, os.WriteFile(r.output, []byte("mp4"), 0o644)
}

func TestFinish_PicksFreeOutputName(t *testing.T) {
	dir := t.TempDir()
	art := mux.Artifacts{
		Video:      filepath.Join(dir, "aufnahme.avi"),
		Audio:      filepath.Join(dir, "aufnahme.wav"),
		Timestamps: filepath.Join(dir, "timestamps.json"),
	}
	ts, _ := json.Marshal([]float64{1, 1.5, 2})
	for p, b := range map[string][]byte{art.Video: nil, art.Audio: nil, art.Timestamps: ts} {
		if err := os.WriteFile(p, b, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	desired := filepath.Join(dir, "output.mp4")
	if err := os.WriteFile(desired, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := &okRunner{}
	res, err := Finish(context.Background(), mux.NewMuxer(mux.Options{Runner: r}), art, desired)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if want := filepath.Join(dir, "output_1.mp4"); res.Output != want || r.output != want {
		t.Fatalf("output=%q runner=%q, want %q", res.Output, r.output, want)
	}
	if res.Rate != 3 {
		t.Fatalf("rate=%v, want 3", res.Rate)
	}
}

// Package recorder drives one recording session: both producers share a
// stop flag and a start rendezvous, and the result is muxed once both have
// exited.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/soocke/screenrec/domain/coord"
	"github.com/soocke/screenrec/domain/mux"
)

// ErrAlreadyStarted is returned by a second Start.
var ErrAlreadyStarted = errors.New("session already started")

// Producer is one side of a recording (video or audio).
type Producer interface {
	Run(ctx context.Context, flag *coord.Flag, gate *coord.Rendezvous) error
}

// Report summarises a finished session. It is only built after both
// producers returned.
type Report struct {
	ID       string
	Started  time.Time
	Stopped  time.Time
	Cause    error
	VideoErr error
	AudioErr error
}

// Duration is the wall time between Start and the last producer exiting.
func (r Report) Duration() time.Duration { return r.Stopped.Sub(r.Started) }

// Err joins the producer errors.
func (r Report) Err() error { return errors.Join(r.VideoErr, r.AudioErr) }

// Session owns the shared flag and rendezvous of one recording.
type Session struct {
	id     string
	video  Producer
	audio  Producer
	flag   *coord.Flag
	gate   *coord.Rendezvous
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	started time.Time
	done    chan struct{}
	report  Report
}

// NewSession prepares a session. Nothing runs until Start.
func NewSession(video, audio Producer, logger *slog.Logger) *Session {
	id := uuid.NewString()
	if logger != nil {
		logger = logger.With("session", id)
	}
	return &Session{
		id:     id,
		video:  video,
		audio:  audio,
		flag:   coord.NewFlag(),
		gate:   coord.NewRendezvous(2),
		logger: logger,
		now:    time.Now,
	}
}

func (s *Session) ID() string { return s.id }

// Logger returns the session-scoped logger, possibly nil.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Start launches both producers. Cancelling ctx stops the session like Stop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = s.now()
	s.done = make(chan struct{})
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("session started")
	}

	go func() {
		select {
		case <-ctx.Done():
			s.flag.Set(nil)
		case <-s.flag.Done():
		}
	}()

	go func() {
		var videoErr, audioErr error
		var g errgroup.Group
		g.Go(func() error {
			videoErr = s.video.Run(ctx, s.flag, s.gate)
			if videoErr != nil {
				s.flag.Set(videoErr)
			}
			return videoErr
		})
		g.Go(func() error {
			audioErr = s.audio.Run(ctx, s.flag, s.gate)
			if audioErr != nil {
				s.flag.Set(audioErr)
			}
			return audioErr
		})
		_ = g.Wait()

		s.mu.Lock()
		s.report = Report{
			ID:       s.id,
			Started:  s.started,
			Stopped:  s.now(),
			Cause:    s.flag.Cause(),
			VideoErr: videoErr,
			AudioErr: audioErr,
		}
		report := s.report
		s.mu.Unlock()
		close(s.done)

		if s.logger != nil {
			s.logger.Info("session finished",
				"duration", report.Duration(),
				"cause", fmt.Sprint(report.Cause),
				"video_error", errString(videoErr),
				"audio_error", errString(audioErr),
			)
		}
	}()
	return nil
}

// Stop requests both producers to finish their current iteration and exit.
func (s *Session) Stop() { s.flag.Set(nil) }

// Stopping reports whether stop was requested or a producer failed.
func (s *Session) Stopping() bool { return s.flag.IsSet() }

// Elapsed returns the time since Start, or zero before it.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return s.now().Sub(s.started)
}

// Done is closed once both producers exited. It is nil before Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Wait blocks until both producers exited and returns the report.
func (s *Session) Wait() (Report, error) {
	done := s.Done()
	if done == nil {
		return Report{}, errors.New("session not started")
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report, s.report.Err()
}

// Run starts the session and waits for it.
func (s *Session) Run(ctx context.Context) (Report, error) {
	if err := s.Start(ctx); err != nil {
		return Report{}, err
	}
	return s.Wait()
}

// Finish muxes the artifacts of a successful session into the first free
// variant of desired.
func Finish(ctx context.Context, m *mux.Muxer, art mux.Artifacts, desired string) (mux.Result, error) {
	out, err := mux.NextAvailablePath(desired)
	if err != nil {
		return mux.Result{}, err
	}
	return m.Mux(ctx, art, out)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

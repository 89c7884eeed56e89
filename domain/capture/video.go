package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/screenrec/domain/coord"
	"github.com/soocke/screenrec/domain/timeline"
)

const (
	defaultFPS              = 30
	captureStatsLogInterval = 5 * time.Second
)

// SinkOpener creates the video sink for a region. It is called before the
// rendezvous so that the first grab follows the release immediately.
type SinkOpener func(Region) (VideoSink, error)

// VideoOptions configures a VideoCapturer.
type VideoOptions struct {
	Region        Region
	FPS           float64
	Grabber       Grabber
	OpenSink      SinkOpener
	TimestampPath string
	Logger        *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// VideoCapturer grabs the region at a target cadence, writes each frame to the
// sink and records its capture instant. Every timestamp is paired with
// exactly one successful frame write.
type VideoCapturer struct {
	region   Region
	interval time.Duration
	grabber  Grabber
	openSink SinkOpener
	tsPath   string
	logger   *slog.Logger
	now      func() time.Time
	// wait sleeps for d or until done closes; nil uses a reusable timer.
	wait func(d time.Duration, done <-chan struct{})

	log timeline.Log

	frames      atomic.Uint64
	skipped     atomic.Uint64
	overruns    atomic.Uint64
	grabNanos   atomic.Uint64
	lastCapture atomic.Int64
}

// NewVideoCapturer validates opts and returns a capturer ready to Run once.
func NewVideoCapturer(opts VideoOptions) (*VideoCapturer, error) {
	if err := opts.Region.Validate(); err != nil {
		return nil, err
	}
	if opts.Grabber == nil {
		return nil, errors.New("capture: nil grabber")
	}
	if opts.OpenSink == nil {
		return nil, errors.New("capture: nil sink opener")
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &VideoCapturer{
		region:   opts.Region,
		interval: time.Duration(float64(time.Second) / fps),
		grabber:  opts.Grabber,
		openSink: opts.OpenSink,
		tsPath:   opts.TimestampPath,
		logger:   opts.Logger,
		now:      now,
	}, nil
}

// Run opens the sink, waits at gate, then captures until flag is set. The
// sink is closed and the timestamp log persisted on every exit path after the
// sink was opened. A failing sink write is terminal and sets flag.
func (v *VideoCapturer) Run(ctx context.Context, flag *coord.Flag, gate *coord.Rendezvous) (err error) {
	sink, err := v.openSink(v.region)
	if err != nil {
		err = fmt.Errorf("capture: open video sink: %w", err)
		gate.Abort(err)
		flag.Set(err)
		return err
	}
	defer func() {
		err = errors.Join(err, v.finalize(sink))
	}()

	if err := gate.Arrive(ctx); err != nil {
		return fmt.Errorf("capture: video start: %w", err)
	}
	if v.logger != nil {
		v.logger.Info("video capture started", "region", v.region.String(), "interval", v.interval)
	}

	wait := v.wait
	if wait == nil {
		timer := time.NewTimer(v.interval)
		defer timer.Stop()
		wait = func(d time.Duration, done <-chan struct{}) {
			timer.Reset(d)
			select {
			case <-timer.C:
			case <-done:
			}
		}
	}
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()

	for !flag.IsSet() {
		start := v.now()
		if err := v.captureOnce(sink, start); err != nil {
			flag.Set(err)
			return err
		}

		select {
		case <-logTicker.C:
			v.logStats()
		default:
		}

		sleep := v.remaining(start)
		if sleep <= 0 {
			v.overruns.Add(1)
			continue
		}
		wait(sleep, flag.Done())
	}
	return nil
}

// remaining is the part of the frame interval left after an iteration that
// began at start. Zero or less means the grab overran the interval.
func (v *VideoCapturer) remaining(start time.Time) time.Duration {
	return v.interval - v.now().Sub(start)
}

// captureOnce performs one grab/convert/write/append step. Grab failures and
// frames of the wrong size are skipped; only sink failures are returned.
func (v *VideoCapturer) captureOnce(sink VideoSink, start time.Time) error {
	img, err := v.grabber.Grab(v.region.Rect())
	if err != nil {
		v.skipped.Add(1)
		if v.logger != nil {
			v.logger.Error("capture region", "error", err)
		}
		return nil
	}
	b := img.Bounds()
	if b.Dx() != v.region.Width || b.Dy() != v.region.Height {
		v.skipped.Add(1)
		if v.logger != nil {
			v.logger.Error("capture region", "error", fmt.Errorf("%w: got %dx%d", ErrFrameSize, b.Dx(), b.Dy()))
		}
		return nil
	}
	v.grabNanos.Add(uint64(v.now().Sub(start).Nanoseconds()))

	buf := acquireBGR(v.region.Width * v.region.Height * 3)
	defer releaseBGR(buf)
	if err := ToBGR(img, *buf); err != nil {
		v.skipped.Add(1)
		return nil
	}
	if err := sink.WriteFrame(*buf); err != nil {
		return fmt.Errorf("capture: video sink: %w", err)
	}
	v.log.Append(start)
	v.frames.Add(1)
	v.lastCapture.Store(start.UnixNano())
	return nil
}

func (v *VideoCapturer) finalize(sink VideoSink) error {
	var errs []error
	if err := sink.Close(); err != nil {
		errs = append(errs, err)
	}
	if v.tsPath != "" {
		if err := v.log.Save(v.tsPath); err != nil {
			errs = append(errs, err)
		}
	}
	if v.logger != nil {
		stats := v.Stats()
		v.logger.Info("video capture finished",
			"frames", stats.Frames,
			"skipped", stats.Skipped,
			"overruns", stats.Overruns,
			"avg_grab", stats.AvgGrab,
		)
	}
	return errors.Join(errs...)
}

// Timestamps returns the capture instants. Only call after Run returned.
func (v *VideoCapturer) Timestamps() []float64 { return v.log.Values() }

// Stats is safe to call while Run is active.
func (v *VideoCapturer) Stats() CaptureStats {
	frames := v.frames.Load()
	var avg time.Duration
	if frames > 0 {
		avg = time.Duration(v.grabNanos.Load() / frames)
	}
	var last time.Time
	if n := v.lastCapture.Load(); n != 0 {
		last = time.Unix(0, n)
	}
	return CaptureStats{
		Frames:      frames,
		Skipped:     v.skipped.Load(),
		AvgGrab:     avg,
		Overruns:    v.overruns.Load(),
		LastCapture: last,
	}
}

func (v *VideoCapturer) logStats() {
	if v.logger == nil {
		return
	}
	stats := v.Stats()
	v.logger.Debug("capture.stats",
		"frames", stats.Frames,
		"skipped", stats.Skipped,
		"overruns", stats.Overruns,
		"avg_grab", stats.AvgGrab,
	)
}

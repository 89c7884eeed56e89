package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/screenrec/config"
	"github.com/soocke/screenrec/debug"
	"github.com/soocke/screenrec/domain/audio"
	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/domain/mux"
	"github.com/soocke/screenrec/domain/recorder"
)

// Deps are the platform seams of a recording. Nil fields fall back to the
// real screen, ffmpeg and audio implementations where possible.
type Deps struct {
	Grabber  capture.Grabber
	OpenSink capture.SinkOpener
	Backend  audio.Backend
	Runner   mux.CommandRunner
	// Screen reports the capturable desktop; nil uses capture.ScreenBounds.
	Screen func() (image.Rectangle, error)
}

// Recording bundles one session with its producers.
type Recording struct {
	Session *recorder.Session
	Video   *capture.VideoCapturer
	Audio   *audio.AudioCapturer
}

// Artifacts returns the intermediate file set named by cfg.
func Artifacts(cfg *config.Config) mux.Artifacts {
	return mux.Artifacts{Video: cfg.VideoFile, Audio: cfg.AudioFile, Timestamps: cfg.TimestampFile}
}

// NewMuxer builds a muxer with the encode policy of cfg.
func NewMuxer(cfg *config.Config, deps Deps, logger *slog.Logger) *mux.Muxer {
	policy := mux.DefaultPolicy()
	policy.CRF = cfg.VideoCRF
	policy.Preset = cfg.VideoPreset
	policy.AudioBitrate = cfg.AudioBitrate
	return mux.NewMuxer(mux.Options{
		FFmpegPath: cfg.FFmpegPath,
		Policy:     policy,
		Runner:     deps.Runner,
		Logger:     logger,
	})
}

// NewRecording wires both producers for region. The region is clipped to
// the screen, since every frame of an off-screen part would be dropped, and
// trimmed to even dimensions.
func NewRecording(cfg *config.Config, region capture.Region, deps Deps, logger *slog.Logger) (*Recording, error) {
	if deps.Backend == nil {
		return nil, fmt.Errorf("%w: no audio backend", audio.ErrDeviceUnavailable)
	}
	region, err := fitToScreen(region, deps.Screen, logger)
	if err != nil {
		return nil, err
	}
	grabber := deps.Grabber
	if grabber == nil {
		grabber = capture.NewGrabber()
	}
	openSink := deps.OpenSink
	if openSink == nil {
		openSink = func(r capture.Region) (capture.VideoSink, error) {
			return capture.NewFFmpegSink(capture.SinkOptions{
				FFmpegPath: cfg.FFmpegPath,
				Path:       cfg.VideoFile,
				Width:      r.Width,
				Height:     r.Height,
				FPS:        cfg.FPS,
				Quality:    cfg.IntermediateQuality,
				Logger:     logger,
			})
		}
	}
	video, err := capture.NewVideoCapturer(capture.VideoOptions{
		Region:        region,
		FPS:           cfg.FPS,
		Grabber:       grabber,
		OpenSink:      openSink,
		TimestampPath: cfg.TimestampFile,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	aud, err := audio.NewAudioCapturer(audio.CapturerOptions{
		Backend:       deps.Backend,
		Format:        audio.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels},
		BlockDuration: time.Duration(cfg.BlockMS) * time.Millisecond,
		Path:          cfg.AudioFile,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return &Recording{
		Session: recorder.NewSession(video, aud, logger),
		Video:   video,
		Audio:   aud,
	}, nil
}

func fitToScreen(region capture.Region, screen func() (image.Rectangle, error), logger *slog.Logger) (capture.Region, error) {
	if screen == nil {
		screen = capture.ScreenBounds
	}
	bounds, err := screen()
	if err != nil {
		if logger != nil {
			logger.Warn("screen bounds unavailable, region not clipped", "error", err)
		}
		return region.Even(), region.Even().Validate()
	}
	clamped, err := region.ClampTo(bounds)
	if err != nil {
		return capture.Region{}, err
	}
	if clamped != region && logger != nil {
		logger.Warn("region clipped to screen", "selected", region.String(), "recorded", clamped.String())
	}
	clamped = clamped.Even()
	return clamped, clamped.Validate()
}

// Start launches the session and, in debug mode, the load logger.
func (r *Recording) Start(ctx context.Context, cfg *config.Config) error {
	if err := r.Session.Start(ctx); err != nil {
		return err
	}
	if cfg.Debug {
		statsCtx, cancel := context.WithCancel(context.Background())
		go func() {
			<-r.Session.Done()
			cancel()
		}()
		debug.StartStatsLogger(statsCtx, time.Duration(cfg.StatsIntervalSeconds)*time.Second, debug.StatsSource{
			Video:       r.Video.Stats,
			AudioBlocks: r.Audio.Blocks,
		}, r.Session.Logger())
	}
	return nil
}

// Finalize waits for both producers and muxes a successful session into
// the first free variant of the configured output path.
func (r *Recording) Finalize(ctx context.Context, cfg *config.Config, deps Deps, logger *slog.Logger) (recorder.Report, mux.Result, error) {
	report, err := r.Session.Wait()
	if err != nil {
		return report, mux.Result{}, err
	}
	res, err := recorder.Finish(ctx, NewMuxer(cfg, deps, logger), Artifacts(cfg), cfg.OutputFile)
	return report, res, err
}

// Record runs a session without a window. A positive duration stops it on
// its own; cancelling ctx stops it early. Muxing uses ctx, not the timer.
func Record(ctx context.Context, cfg *config.Config, region capture.Region, duration time.Duration, deps Deps, logger *slog.Logger) (recorder.Report, mux.Result, error) {
	rec, err := NewRecording(cfg, region, deps, logger)
	if err != nil {
		return recorder.Report{}, mux.Result{}, err
	}
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, duration)
	}
	defer cancel()
	if err := rec.Start(runCtx, cfg); err != nil {
		return recorder.Report{}, mux.Result{}, err
	}
	muxCtx := context.WithoutCancel(ctx)
	return rec.Finalize(muxCtx, cfg, deps, logger)
}

// ErrNoSession is returned by Controller.Finalize when nothing was recorded.
var ErrNoSession = errors.New("no recording was started")

// Controller adapts recordings to the presenter's Recorder contract. At most
// one recording is started per controller.
type Controller struct {
	ctx    context.Context
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	mu  sync.Mutex
	rec *Recording
}

func NewController(ctx context.Context, cfg *config.Config, deps Deps, logger *slog.Logger) *Controller {
	return &Controller{ctx: ctx, cfg: cfg, deps: deps, logger: logger}
}

// Start builds and launches a recording for region.
func (c *Controller) Start(region capture.Region) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rec != nil {
		return recorder.ErrAlreadyStarted
	}
	rec, err := NewRecording(c.cfg, region, c.deps, c.logger)
	if err != nil {
		return err
	}
	if err := rec.Start(c.ctx, c.cfg); err != nil {
		return err
	}
	c.rec = rec
	return nil
}

func (c *Controller) current() *Recording {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec
}

// Stop requests the running recording to stop.
func (c *Controller) Stop() {
	if rec := c.current(); rec != nil {
		rec.Session.Stop()
	}
}

// Stopping reports whether the running recording is shutting down.
func (c *Controller) Stopping() bool {
	rec := c.current()
	return rec != nil && rec.Session.Stopping()
}

// Finalize stops any running recording, waits for it and muxes the result.
func (c *Controller) Finalize(ctx context.Context) (recorder.Report, mux.Result, error) {
	rec := c.current()
	if rec == nil {
		return recorder.Report{}, mux.Result{}, ErrNoSession
	}
	rec.Session.Stop()
	return rec.Finalize(ctx, c.cfg, c.deps, c.logger)
}

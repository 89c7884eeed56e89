package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/screenrec/domain/coord"
)

const defaultBlockDuration = 250 * time.Millisecond

// CapturerOptions configures an AudioCapturer.
type CapturerOptions struct {
	Backend       Backend
	Format        Format
	BlockDuration time.Duration
	Path          string
	Sink          Sink
	Logger        *slog.Logger
}

// AudioCapturer pulls fixed-duration blocks from the loopback source until
// the session flag is set, then writes them in arrival order to the sink.
type AudioCapturer struct {
	backend     Backend
	format      Format
	blockFrames int
	path        string
	sink        Sink
	logger      *slog.Logger

	blocks  atomic.Uint64
	skipped atomic.Uint64
}

func NewAudioCapturer(opts CapturerOptions) (*AudioCapturer, error) {
	if opts.Backend == nil {
		return nil, errors.New("audio: nil backend")
	}
	if err := opts.Format.Validate(); err != nil {
		return nil, err
	}
	if opts.BlockDuration <= 0 {
		opts.BlockDuration = defaultBlockDuration
	}
	if opts.Sink == nil {
		opts.Sink = WAVSink{}
	}
	return &AudioCapturer{
		backend:     opts.Backend,
		format:      opts.Format,
		blockFrames: opts.Format.FramesFor(opts.BlockDuration),
		path:        opts.Path,
		sink:        opts.Sink,
		logger:      opts.Logger,
	}, nil
}

// Run resolves the loopback source, waits at gate and records until flag is
// set. A resolution failure aborts gate so the video side never waits for a
// partner that will not come. Device failures set flag and write nothing.
func (a *AudioCapturer) Run(ctx context.Context, flag *coord.Flag, gate *coord.Rendezvous) error {
	dev, err := Loopback(a.backend)
	if err != nil {
		gate.Abort(err)
		flag.Set(err)
		return err
	}
	if a.logger != nil {
		a.logger.Info("loopback source resolved", "device", dev.Name())
	}
	if err := gate.Arrive(ctx); err != nil {
		return fmt.Errorf("audio: start: %w", err)
	}

	var blocks []Block
	err = WithStream(dev, a.format, a.blockFrames, func(s Stream) error {
		for !flag.IsSet() {
			b, err := s.Record()
			if err != nil {
				if !errors.Is(err, ErrTransient) {
					return err
				}
				// A loopback endpoint may deliver nothing while the mix is
				// silent; only a stopped device ends the session.
				if n := a.skipped.Add(1); a.logger != nil && (n == 1 || n%40 == 0) {
					a.logger.Warn("audio block skipped", "error", err, "skipped", n)
				}
				continue
			}
			blocks = append(blocks, b)
			a.blocks.Add(1)
		}
		return nil
	})
	if err != nil {
		flag.Set(err)
		return err
	}
	if len(blocks) == 0 {
		return ErrNoAudio
	}

	samples := Concat(blocks)
	if err := a.sink.Write(a.path, a.format, samples); err != nil {
		return err
	}
	if a.logger != nil {
		a.logger.Info("audio capture finished",
			"blocks", len(blocks),
			"skipped", a.skipped.Load(),
			"samples", len(samples),
			"path", a.path,
		)
	}
	return nil
}

// Blocks returns the number of blocks captured so far.
func (a *AudioCapturer) Blocks() uint64 { return a.blocks.Load() }

// Skipped returns the number of lost blocks so far.
func (a *AudioCapturer) Skipped() uint64 { return a.skipped.Load() }

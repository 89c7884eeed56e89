// Package audio records the system output mix through a loopback capture
// device and stores it as a WAV file.
package audio

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDeviceUnavailable means no loopback source matched the output
	// device, or the matched source could not be opened or stopped working.
	ErrDeviceUnavailable = errors.New("loopback audio device unavailable")
	// ErrTransient marks a single failed block; the capture loop skips it.
	ErrTransient = errors.New("audio block not delivered")
	// ErrNoAudio is returned when a session ended before any block arrived.
	ErrNoAudio = errors.New("no audio blocks captured")
)

// Format is the fixed PCM shape of a session: signed 16-bit interleaved.
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports whether the format can be opened.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("audio: invalid format %d Hz x %d channels", f.SampleRate, f.Channels)
	}
	return nil
}

// FramesFor returns the number of frames covering d.
func (f Format) FramesFor(d time.Duration) int {
	n := int(int64(f.SampleRate) * int64(d) / int64(time.Second))
	if n < 1 {
		n = 1
	}
	return n
}

// Block is one capture call worth of interleaved samples.
type Block struct {
	Samples  []int16
	Channels int
}

// Frames returns the number of sample frames in the block.
func (b Block) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Device is an input-capable endpoint that can be opened as a stream.
type Device interface {
	Name() string
	Open(f Format, blockFrames int) (Stream, error)
}

// Stream delivers fixed-size blocks. Record blocks until a full block is
// available and returns a block the caller owns.
type Stream interface {
	Record() (Block, error)
	Close() error
}

// WithStream opens dev, runs fn and closes the stream on every exit path,
// including a panic inside fn.
func WithStream(dev Device, f Format, blockFrames int, fn func(Stream) error) (err error) {
	s, err := dev.Open(f, blockFrames)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrDeviceUnavailable, dev.Name(), err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("audio: close %q: %w", dev.Name(), cerr))
		}
	}()
	return fn(s)
}

// Record captures a single block of frames from dev.
func Record(dev Device, f Format, frames int) (Block, error) {
	var out Block
	err := WithStream(dev, f, frames, func(s Stream) error {
		b, err := s.Record()
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Concat joins blocks in order into one interleaved sample sequence.
func Concat(blocks []Block) []int16 {
	n := 0
	for _, b := range blocks {
		n += len(b.Samples)
	}
	out := make([]int16, 0, n)
	for _, b := range blocks {
		out = append(out, b.Samples...)
	}
	return out
}

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// ErrDeviceStopped is reported by a stream whose device stopped on its own,
// e.g. because it was unplugged.
var ErrDeviceStopped = fmt.Errorf("%w: device stopped", ErrDeviceUnavailable)

// MalgoBackend enumerates devices through miniaudio. On Windows playback
// endpoints are offered as loopback candidates; elsewhere the capture list
// contains the monitor sources of the sound server.
type MalgoBackend struct {
	ctx    *malgo.AllocatedContext
	logger *slog.Logger
}

// NewMalgoBackend initialises a miniaudio context. Close releases it.
func NewMalgoBackend(logger *slog.Logger) (*MalgoBackend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		if logger != nil {
			logger.Debug("miniaudio", "message", message)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}
	return &MalgoBackend{ctx: ctx, logger: logger}, nil
}

// Close frees the miniaudio context. Streams must be closed first.
func (b *MalgoBackend) Close() error {
	if b == nil || b.ctx == nil {
		return nil
	}
	err := b.ctx.Uninit()
	b.ctx.Free()
	b.ctx = nil
	return err
}

func (b *MalgoBackend) DefaultOutputName() (string, error) {
	infos, err := b.ctx.Devices(malgo.Playback)
	if err != nil {
		return "", fmt.Errorf("audio: list playback devices: %w", err)
	}
	if len(infos) == 0 {
		return "", errors.New("audio: no playback devices")
	}
	for _, info := range infos {
		if info.IsDefault != 0 {
			return info.Name(), nil
		}
	}
	return infos[0].Name(), nil
}

func (b *MalgoBackend) Candidates() ([]Device, error) {
	var out []Device
	if runtime.GOOS == "windows" {
		infos, err := b.ctx.Devices(malgo.Playback)
		if err != nil {
			return nil, fmt.Errorf("audio: list playback devices: %w", err)
		}
		for _, info := range infos {
			out = append(out, &malgoDevice{backend: b, info: info, loopback: true})
		}
	}
	infos, err := b.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("audio: list capture devices: %w", err)
	}
	for _, info := range infos {
		out = append(out, &malgoDevice{backend: b, info: info})
	}
	if b.logger != nil {
		b.logger.Debug("audio candidates", "count", len(out), "loopback_playback", runtime.GOOS == "windows")
	}
	return out, nil
}

type malgoDevice struct {
	backend  *MalgoBackend
	info     malgo.DeviceInfo
	loopback bool
}

func (d *malgoDevice) Name() string { return d.info.Name() }

func (d *malgoDevice) Open(f Format, blockFrames int) (Stream, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if blockFrames <= 0 {
		return nil, fmt.Errorf("audio: invalid block size %d", blockFrames)
	}
	kind := malgo.Capture
	if d.loopback {
		kind = malgo.Loopback
	}
	cfg := malgo.DefaultDeviceConfig(kind)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(f.Channels)
	cfg.Capture.DeviceID = d.info.ID.Pointer()
	cfg.SampleRate = uint32(f.SampleRate)
	cfg.Alsa.NoMMap = 1

	blockDur := time.Duration(blockFrames) * time.Second / time.Duration(f.SampleRate)
	s := &malgoStream{
		channels: f.Channels,
		need:     blockFrames * f.Channels * 2,
		notify:   make(chan struct{}, 1),
		timeout:  4 * blockDur,
		name:     d.Name(),
	}
	dev, err := malgo.InitDevice(d.backend.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: s.onData,
		Stop: s.onStop,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: init device %q: %w", d.Name(), err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return nil, fmt.Errorf("audio: start device %q: %w", d.Name(), err)
	}
	s.dev = dev
	return s, nil
}

// malgoStream buffers callback bytes and hands them out in whole blocks.
type malgoStream struct {
	dev      *malgo.Device
	channels int
	need     int
	timeout  time.Duration
	name     string

	mu      sync.Mutex
	buf     []byte
	stopped bool
	closed  bool
	notify  chan struct{}
}

func (s *malgoStream) onData(_, input []byte, _ uint32) {
	s.mu.Lock()
	s.buf = append(s.buf, input...)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *malgoStream) onStop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Record returns ErrTransient when no full block arrived within four block
// durations, and ErrDeviceStopped once the device stopped.
func (s *malgoStream) Record() (Block, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	for {
		s.mu.Lock()
		if len(s.buf) >= s.need {
			raw := s.buf[:s.need]
			samples := make([]int16, s.need/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
			}
			s.buf = append(s.buf[:0], s.buf[s.need:]...)
			s.mu.Unlock()
			return Block{Samples: samples, Channels: s.channels}, nil
		}
		stopped, closed := s.stopped, s.closed
		s.mu.Unlock()
		if closed {
			return Block{}, errors.New("audio: stream closed")
		}
		if stopped {
			return Block{}, fmt.Errorf("%w: %q", ErrDeviceStopped, s.name)
		}
		select {
		case <-s.notify:
		case <-timer.C:
			return Block{}, fmt.Errorf("%w: %q silent for %s", ErrTransient, s.name, s.timeout)
		}
	}
}

func (s *malgoStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Stop()
	s.dev.Uninit()
	if err != nil {
		return fmt.Errorf("audio: stop device %q: %w", s.name, err)
	}
	return nil
}

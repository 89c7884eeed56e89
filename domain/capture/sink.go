package capture

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/soocke/screenrec/internal/processutil"
)

// ErrFrameSize is returned when a frame does not match the sink geometry.
var ErrFrameSize = errors.New("frame size does not match sink")

// VideoSink receives packed BGR24 frames, one synchronous write per frame.
type VideoSink interface {
	WriteFrame(frame []byte) error
	Close() error
}

// SinkOptions configures the intermediate video file.
type SinkOptions struct {
	FFmpegPath string
	Path       string
	Width      int
	Height     int
	FPS        float64
	Quality    int // MJPEG -q:v, 2 (best) .. 31
	Logger     *slog.Logger
}

// FFmpegSink feeds raw frames over stdin to an ffmpeg process that stores
// them as an MJPEG AVI. The container rate is the nominal target; the muxer
// overrides it with the measured rate later.
type FFmpegSink struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	output    *processutil.LockedBuffer
	frameSize int
	frames    int
	logger    *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// SinkArgs returns the ffmpeg argument vector used by NewFFmpegSink.
func SinkArgs(opts SinkOptions) []string {
	q := opts.Quality
	if q < 2 || q > 31 {
		q = 3
	}
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.FormatFloat(opts.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-c:v", "mjpeg",
		"-q:v", strconv.Itoa(q),
		"-y",
		opts.Path,
	}
}

// NewFFmpegSink starts the encoder process. The caller owns Close.
func NewFFmpegSink(opts SinkOptions) (*FFmpegSink, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidRegion, opts.Width, opts.Height)
	}
	if strings.TrimSpace(opts.FFmpegPath) == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	args := SinkArgs(opts)
	cmd := exec.Command(opts.FFmpegPath, args...)
	processutil.HideConsoleWindow(cmd)
	processutil.OwnProcessGroup(cmd)
	out := &processutil.LockedBuffer{}
	cmd.Stdout = out
	cmd.Stderr = out
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("capture: ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("capture: start ffmpeg sink: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Debug("video sink started", "cmd", opts.FFmpegPath+" "+strings.Join(args, " "))
	}
	return &FFmpegSink{
		cmd:       cmd,
		stdin:     stdin,
		output:    out,
		frameSize: opts.Width * opts.Height * 3,
		logger:    opts.Logger,
	}, nil
}

// WriteFrame blocks until the whole frame has been handed to ffmpeg.
func (s *FFmpegSink) WriteFrame(frame []byte) error {
	if len(frame) != s.frameSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), s.frameSize)
	}
	if _, err := s.stdin.Write(frame); err != nil {
		return fmt.Errorf("capture: write frame %d: %w: %s", s.frames, err, s.output.Tail(240))
	}
	s.frames++
	return nil
}

// Frames returns the number of frames written.
func (s *FFmpegSink) Frames() int { return s.frames }

// Close flushes stdin and waits for ffmpeg to finalize the file.
func (s *FFmpegSink) Close() error {
	s.closeOnce.Do(func() {
		inErr := s.stdin.Close()
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = fmt.Errorf("capture: ffmpeg sink exited: %w: %s", err, s.output.Tail(400))
			return
		}
		if inErr != nil && !errors.Is(inErr, os.ErrClosed) {
			s.closeErr = inErr
		}
		if s.logger != nil {
			s.logger.Debug("video sink closed", "frames", s.frames)
		}
	})
	return s.closeErr
}

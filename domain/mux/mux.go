// Package mux merges the intermediate video and audio files into the final
// recording with an external ffmpeg process.
package mux

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/soocke/screenrec/domain/timeline"
	"github.com/soocke/screenrec/internal/processutil"
)

var (
	// ErrMissingArtifact means an input file was absent before muxing.
	ErrMissingArtifact = errors.New("recording artifact missing")
	// ErrEncoderFailed means ffmpeg could not be started or exited non-zero.
	ErrEncoderFailed = errors.New("encoder failed")
)

// MissingArtifactError lists the absent inputs.
type MissingArtifactError struct {
	Paths []string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingArtifact, strings.Join(e.Paths, ", "))
}

func (e *MissingArtifactError) Unwrap() error { return ErrMissingArtifact }

// EncoderError carries the exit status and the tail of the encoder output.
// ExitCode is -1 when the process never ran.
type EncoderError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *EncoderError) Error() string {
	return fmt.Sprintf("%v (exit %d): %v\n%s", ErrEncoderFailed, e.ExitCode, e.Err, e.Output)
}

func (e *EncoderError) Unwrap() []error { return []error{ErrEncoderFailed, e.Err} }

// EncodePolicy is the fixed quality policy of the final file.
type EncodePolicy struct {
	VideoCodec   string
	CRF          int
	Preset       string
	AudioCodec   string
	AudioBitrate string
	PixelFormat  string
}

// DefaultPolicy returns H.264 CRF 23 veryfast with 192k AAC in yuv420p.
func DefaultPolicy() EncodePolicy {
	return EncodePolicy{
		VideoCodec:   "libx264",
		CRF:          23,
		Preset:       "veryfast",
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		PixelFormat:  "yuv420p",
	}
}

// Args builds the ffmpeg argument vector. rate applies to the video input
// only; the output is cut to the shorter stream and always overwritten.
func Args(rate float64, video, audio, output string, p EncodePolicy) []string {
	return []string{
		"-r", strconv.FormatFloat(rate, 'f', -1, 64),
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", p.VideoCodec,
		"-crf", strconv.Itoa(p.CRF),
		"-preset", p.Preset,
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
		"-pix_fmt", p.PixelFormat,
		"-shortest",
		"-y",
		output,
	}
}

// Artifacts are the three intermediate files of a session.
type Artifacts struct {
	Video      string
	Audio      string
	Timestamps string
}

// Paths returns the artifact paths in a stable order.
func (a Artifacts) Paths() []string { return []string{a.Video, a.Audio, a.Timestamps} }

// Missing returns the artifact paths that do not exist.
func (a Artifacts) Missing() []string {
	var out []string
	for _, p := range a.Paths() {
		if _, err := os.Stat(p); err != nil {
			out = append(out, p)
		}
	}
	return out
}

// CommandRunner runs a process to completion and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	processutil.HideConsoleWindow(cmd)
	return cmd.CombinedOutput()
}

// Options configures a Muxer.
type Options struct {
	FFmpegPath string
	Policy     EncodePolicy
	Runner     CommandRunner
	Logger     *slog.Logger
}

// Muxer validates the artifacts, derives the measured frame rate and runs
// the encoder.
type Muxer struct {
	ffmpeg string
	policy EncodePolicy
	runner CommandRunner
	logger *slog.Logger
}

func NewMuxer(opts Options) *Muxer {
	if strings.TrimSpace(opts.FFmpegPath) == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Policy == (EncodePolicy{}) {
		opts.Policy = DefaultPolicy()
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	return &Muxer{
		ffmpeg: opts.FFmpegPath,
		policy: opts.Policy,
		runner: opts.Runner,
		logger: opts.Logger,
	}
}

// Policy returns the encode settings in use.
func (m *Muxer) Policy() EncodePolicy { return m.policy }

// Result describes a finished mux.
type Result struct {
	Output string
	Rate   float64
	Frames int
	Span   float64
}

// Mux writes output from the artifacts. On success the artifacts are
// removed; on any failure they stay on disk untouched.
func (m *Muxer) Mux(ctx context.Context, art Artifacts, output string) (Result, error) {
	if missing := art.Missing(); len(missing) > 0 {
		return Result{}, &MissingArtifactError{Paths: missing}
	}
	ts, err := timeline.Load(art.Timestamps)
	if err != nil {
		return Result{}, err
	}
	rate, err := timeline.CorrectedRate(ts)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Output: output,
		Rate:   rate,
		Frames: len(ts),
		Span:   ts[len(ts)-1] - ts[0],
	}

	args := Args(rate, art.Video, art.Audio, output, m.policy)
	if m.logger != nil {
		m.logger.Info("muxing", "rate", rate, "frames", res.Frames, "span", res.Span, "output", output)
		m.logger.Debug("ffmpeg args", "path", m.ffmpeg, "args", strings.Join(args, " "))
	}
	out, err := m.runner.Run(ctx, m.ffmpeg, args)
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		m.removePartial(output)
		return res, &EncoderError{
			ExitCode: code,
			Output:   processutil.TailString(strings.TrimSpace(string(out)), 4000),
			Err:      err,
		}
	}

	for _, p := range art.Paths() {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) && m.logger != nil {
			m.logger.Warn("remove artifact", "path", p, "error", err)
		}
	}
	return res, nil
}

// removePartial drops a truncated output file. The output path was unused
// before this invocation, so anything there was written by the failed run.
func (m *Muxer) removePartial(output string) {
	if err := os.Remove(output); err == nil && m.logger != nil {
		m.logger.Debug("removed partial output", "path", output)
	}
}

//go:build !windows

package capture

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return path
}

func startSink(t *testing.T, script string) *FFmpegSink {
	t.Helper()
	s, err := NewFFmpegSink(SinkOptions{
		FFmpegPath: fakeFFmpeg(t, script),
		Path:       filepath.Join(t.TempDir(), "aufnahme.avi"),
		Width:      4,
		Height:     2,
		FPS:        30,
	})
	if err != nil {
		t.Fatalf("NewFFmpegSink: %v", err)
	}
	return s
}

func TestFFmpegSink_RunsInOwnProcessGroup(t *testing.T) {
	s := startSink(t, "cat > /dev/null")
	pgid, err := syscall.Getpgid(s.cmd.Process.Pid)
	if err != nil {
		t.Fatalf("Getpgid: %v", err)
	}
	if pgid == syscall.Getpgrp() {
		t.Fatalf("sink pgid=%d equals ours, a terminal Ctrl+C would reach ffmpeg", pgid)
	}
	if err := s.WriteFrame(make([]byte, 4*2*3)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.Frames() != 1 {
		t.Fatalf("frames=%d want 1", s.Frames())
	}
}

func TestFFmpegSink_WriteFailsAfterEncoderExit(t *testing.T) {
	s := startSink(t, `echo "Unknown encoder 'mjpeg'" >&2; exit 1`)
	frame := make([]byte, 4*2*3)
	deadline := time.Now().Add(3 * time.Second)
	var werr error
	for time.Now().Before(deadline) {
		if werr = s.WriteFrame(frame); werr != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if werr == nil || !strings.Contains(werr.Error(), "write frame") {
		t.Fatalf("write err=%v, want a write failure once ffmpeg is gone", werr)
	}
	err := s.Close()
	if err == nil || !strings.Contains(err.Error(), "Unknown encoder") || !strings.Contains(err.Error(), "exit status 1") {
		t.Fatalf("Close err=%v, want exit status with stderr tail", err)
	}
}

func TestFFmpegSink_CloseSurfacesStderrTail(t *testing.T) {
	s := startSink(t, `cat > /dev/null; echo "aufnahme.avi: No space left on device" >&2; exit 1`)
	if err := s.WriteFrame(make([]byte, 4*2*3)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	err := s.Close()
	if err == nil || !strings.Contains(err.Error(), "No space left on device") {
		t.Fatalf("Close err=%v, want stderr tail", err)
	}
	if again := s.Close(); again != err {
		t.Fatalf("second Close=%v, want the first result", again)
	}
}

func TestFFmpegSink_RejectsWrongFrameSize(t *testing.T) {
	s := startSink(t, "cat > /dev/null")
	defer s.Close()
	if err := s.WriteFrame(make([]byte, 5)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("err=%v, want ErrFrameSize", err)
	}
}

package processutil

import (
	"bytes"
	"strings"
	"sync"
)

// LockedBuffer collects child process output that may be written from the
// exec package's copy goroutines while being read elsewhere.
type LockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far, trimmed.
func (b *LockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

// Tail returns at most the last n bytes of output.
func (b *LockedBuffer) Tail(n int) string {
	return TailString(b.String(), n)
}

// TailString shortens input to its last max bytes.
func TailString(input string, max int) string {
	if input == "" {
		return "no ffmpeg output"
	}
	if max <= 0 || len(input) <= max {
		return input
	}
	return input[len(input)-max:]
}

package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soocke/screenrec/domain/capture"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartStatsLogger_IncludesCaptureCounters(t *testing.T) {
	out := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartStatsLogger(ctx, 5*time.Millisecond, StatsSource{
		Video:       func() capture.CaptureStats { return capture.CaptureStats{Frames: 42, Skipped: 3} },
		AudioBlocks: func() uint64 { return 7 },
	}, logger)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := out.String()
		if strings.Contains(s, `"msg":"stats"`) {
			if !strings.Contains(s, `"frames":42`) || !strings.Contains(s, `"audio_blocks":7`) {
				t.Fatalf("missing counters in %s", s)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no stats line logged: %s", out.String())
}

func TestStartStatsLogger_NilLoggerIsNoop(t *testing.T) {
	StartStatsLogger(context.Background(), time.Millisecond, StatsSource{}, nil)
}

// Package timeline records per-frame capture instants and derives the frame
// rate the recording actually achieved.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrDegenerateLog is returned when a log cannot yield a frame rate: fewer
// than two entries, or a non-positive span between first and last entry.
var ErrDegenerateLog = errors.New("timestamp log too short to derive a frame rate")

// Log is an append-only sequence of capture instants in seconds. It is owned
// by a single writer; hand it off read-only once capture has finished.
type Log struct {
	ts []float64
}

// Seconds converts t to fractional Unix seconds.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Append records one capture instant.
func (l *Log) Append(t time.Time) { l.ts = append(l.ts, Seconds(t)) }

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.ts) }

// Values returns a copy of the recorded instants.
func (l *Log) Values() []float64 {
	out := make([]float64, len(l.ts))
	copy(out, l.ts)
	return out
}

// Save writes the log as a plain JSON array of seconds.
func (l *Log) Save(path string) error {
	ts := l.ts
	if ts == nil {
		ts = []float64{}
	}
	b, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("timeline: encode: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("timeline: write %q: %w", path, err)
	}
	return nil
}

// Load reads a JSON array of seconds written by Save.
func Load(path string) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("timeline: read %q: %w", path, err)
	}
	var ts []float64
	if err := json.Unmarshal(b, &ts); err != nil {
		return nil, fmt.Errorf("timeline: decode %q: %w", path, err)
	}
	return ts, nil
}

// CorrectedRate returns count/span where span is the distance between the
// first and last instant. The nominal capture rate is only a target; this is
// the rate that makes the video last as long as the wall time it covered.
func CorrectedRate(ts []float64) (float64, error) {
	if len(ts) < 2 {
		return 0, fmt.Errorf("%w: %d entries", ErrDegenerateLog, len(ts))
	}
	span := ts[len(ts)-1] - ts[0]
	if span <= 0 {
		return 0, fmt.Errorf("%w: span %.6fs over %d entries", ErrDegenerateLog, span, len(ts))
	}
	return float64(len(ts)) / span, nil
}

package capture

import "time"

// CaptureStats summarises pacing loop behaviour for instrumentation.
type CaptureStats struct {
	Frames      uint64
	Skipped     uint64
	AvgGrab     time.Duration
	Overruns    uint64 // iterations slower than the frame interval
	LastCapture time.Time
}

package model

import (
	"time"
)

// RecordingState is the UI-visible phase of a recording.
type RecordingState int

const (
	StateIdle RecordingState = iota
	StateRecording
	StateStopping
	StateFailed
)

func (s RecordingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionModel tracks the recording phase and its elapsed time.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	state   RecordingState
	start   time.Time
	elapsed time.Duration
	err     error
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// Begin moves idle -> recording. It reports false in any other state.
func (m *SessionModel) Begin(now time.Time) bool {
	if m == nil || m.state != StateIdle {
		return false
	}
	m.state = StateRecording
	m.start = now
	m.elapsed = 0
	return true
}

// Stop moves recording -> stopping and freezes the elapsed time.
func (m *SessionModel) Stop(now time.Time) bool {
	if m == nil || m.state != StateRecording {
		return false
	}
	m.elapsed = now.Sub(m.start)
	m.state = StateStopping
	return true
}

// Fail records err. A recording in progress keeps its elapsed time.
func (m *SessionModel) Fail(err error, now time.Time) {
	if m == nil {
		return
	}
	if m.state == StateRecording {
		m.elapsed = now.Sub(m.start)
	}
	m.state = StateFailed
	m.err = err
}

// OnTick advances the elapsed time while recording.
// Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(now time.Time) {
	if m == nil || m.state != StateRecording {
		return
	}
	m.elapsed = now.Sub(m.start)
}

// Values returns the current state and elapsed recording time.
func (m *SessionModel) Values() (RecordingState, time.Duration) {
	if m == nil {
		return StateIdle, 0
	}
	return m.state, m.elapsed
}

// Err returns the failure recorded by Fail.
func (m *SessionModel) Err() error {
	if m == nil {
		return nil
	}
	return m.err
}

package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Recording *RecordingPresenter
	Session   *SessionPresenter
	Schedule  func()
	now       func() time.Time
}

func NewLoop(rec *RecordingPresenter, sess *SessionPresenter, schedule func()) *Loop {
	return &Loop{Recording: rec, Session: sess, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.now != nil {
		now = l.now()
	}
	// Follow self-stopped sessions before rendering so the label is current.
	if l.Recording != nil {
		l.Recording.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}

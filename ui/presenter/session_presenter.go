package presenter

import (
	"time"

	"github.com/soocke/screenrec/ui/model"
)

// SessionView displays the recording state and elapsed time.
type SessionView interface {
	SetSession(state model.RecordingState, elapsed time.Duration)
}

// SessionPresenter formats the session model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.view == nil {
		return
	}
	p.sess.OnTick(now)
	st, d := p.sess.Values()
	p.view.SetSession(st, d)
}

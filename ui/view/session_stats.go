package view

import (
	"fmt"
	"time"

	"github.com/soocke/screenrec/ui/model"
	"github.com/soocke/screenrec/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the recording state and elapsed time.
type SessionStats interface {
	SetState(st model.RecordingState)
	SetElapsed(d time.Duration)
}

type sessionStats struct {
	stateLbl   *LabelWidget
	elapsedLbl *LabelWidget
}

// NewSessionStats creates the state and elapsed labels in a grid layout.
// The state label is placed at (row, startCol) and elapsed label at (row, startCol+1).
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{
		stateLbl:   Label(Width(10), Borderwidth(1), Relief("ridge"), Foreground("white")),
		elapsedLbl: Label(Width(14)),
	}
	if parent != nil {
		Grid(s.stateLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.elapsedLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.stateLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
		Grid(s.elapsedLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	}
	s.SetState(model.StateIdle)
	s.SetElapsed(0)
	return s
}

// SetState updates the state text and color.
func (s *sessionStats) SetState(st model.RecordingState) {
	if s == nil || s.stateLbl == nil {
		return
	}
	s.stateLbl.Configure(Txt(st.String()), Background(theme.StateColor(st)))
}

// SetElapsed updates the elapsed duration display.
func (s *sessionStats) SetElapsed(d time.Duration) {
	if s == nil || s.elapsedLbl == nil {
		return
	}
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	s.elapsedLbl.Configure(Txt(fmt.Sprintf("Elapsed: %02d:%02d", min, sec)))
}

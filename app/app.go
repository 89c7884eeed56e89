package app

import (
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/ui/model"
	"github.com/soocke/screenrec/ui/presenter"
)

const (
	tick = 100 * time.Millisecond
)

type app struct {
	c       *AppContainer
	afterID string
}

// NewApp prepares the window for c. Call Run to show it.
func NewApp(c *AppContainer) *app {
	if err := capture.EnableDPIAwareness(); err != nil && c.Logger != nil {
		c.Logger.Warn("dpi awareness", "error", err)
	}
	App.WmTitle("screenrec")
	return &app{c: c}
}

// Run builds the UI and blocks until the window is destroyed.
func (a *app) Run() {
	rp := a.c.RecordingPresenter
	a.c.RootView.Build(rp.Start, rp.Stop, a.exitHandler)
	a.c.Loop = presenter.NewLoop(rp, a.c.SessionPresenter, a.scheduleUpdate)
	a.scheduleUpdate()
	App.Wait()
}

func (a *app) exitHandler() {
	if st, _ := a.c.Session.Values(); st == model.StateRecording {
		// Stop closes the window once the status is shown.
		a.c.RecordingPresenter.Stop()
		return
	}
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

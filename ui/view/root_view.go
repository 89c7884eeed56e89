package view

import (
	"log/slog"
	"time"

	"github.com/soocke/screenrec/config"
	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/ui/model"
	"github.com/soocke/screenrec/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the recorder window. It starts as the translucent
// selection frame and collapses into a small stop panel once recording.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Overlay     *SelectionOverlay
	Session     SessionStats
	ConfigPanel ConfigPanel

	// Widgets
	StatusLabel *LabelWidget
	selectFrame *FrameWidget
	controls    *FrameWidget
	onStop      func()
	closing     bool
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	var initial capture.Region
	if cfg != nil && cfg.HasSelection() {
		initial = capture.Region{Left: cfg.SelectionX, Top: cfg.SelectionY, Width: cfg.SelectionW, Height: cfg.SelectionH}
	}
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger, Overlay: NewSelectionOverlay(initial, logger)}
}

// Build constructs the selection layout. Handlers are invoked on user actions.
func (rv *RootView) Build(onStart, onStop, onExit func()) {
	if rv == nil {
		return
	}
	rv.onStop = onStop
	theme.InitStyles()
	rv.Overlay.Open()
	WmProtocol(App, "WM_DELETE_WINDOW", onExit)
	GridRowConfigure(App, 0, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))

	rv.selectFrame = Frame()
	Grid(rv.selectFrame, Row(0), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	hint := TLabel(Txt("Move and resize this window over the area to record.\nClick Start to begin."), Style(theme.StyleHintLabel))
	Grid(hint, In(rv.selectFrame), Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	startBtn := TButton(Txt("Start Recording [Enter]"), Style(theme.StylePrimaryButton), Command(onStart))
	Grid(startBtn, In(rv.selectFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(onExit))
	Grid(exitBtn, In(rv.selectFrame), Row(1), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.ConfigPanel.Build(rv.selectFrame, 2)
	Bind(App, "<Return>", Command(onStart))

	rv.controls = Frame()
	Grid(rv.controls, Row(1), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	rv.Session = NewSessionStats(rv.controls, 0, 0)
	rv.StatusLabel = Label(Txt("Ready"), Anchor("w"))
	Grid(rv.StatusLabel, In(rv.controls), Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
}

// SelectedRegion satisfies presenter.RegionSource.
func (rv *RootView) SelectedRegion() (capture.Region, error) {
	return rv.Overlay.SelectedRegion()
}

// ShowRecording removes the selection widgets and shows the stop control.
func (rv *RootView) ShowRecording() {
	if rv == nil {
		return
	}
	if rv.selectFrame != nil {
		Destroy(rv.selectFrame)
		rv.selectFrame = nil
	}
	rv.Overlay.Collapse()
	stopBtn := TButton(Txt("Stop Recording"), Style(theme.StyleDangerButton), Command(rv.onStop))
	Grid(stopBtn, In(rv.controls), Row(0), Column(2), Sticky("e"), Padx("0.2m"), Pady("0.2m"))
	Bind(App, "<Return>", Command(rv.onStop))
}

// SetStatus updates the status line.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetSession satisfies presenter.SessionView.
func (rv *RootView) SetSession(st model.RecordingState, elapsed time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetState(st)
	rv.Session.SetElapsed(elapsed)
}

// CloseAfter destroys the main window after d on the Tk event loop.
func (rv *RootView) CloseAfter(d time.Duration) {
	if rv == nil || rv.closing {
		return
	}
	rv.closing = true
	TclAfter(d, func() { Destroy(App) })
}

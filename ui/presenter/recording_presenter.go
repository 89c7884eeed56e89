package presenter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/ui/model"
)

// CloseDelay is how long the window stays up after stop so the status
// change is visible.
const CloseDelay = 500 * time.Millisecond

// Recorder narrows what the presenter needs from the recording layer.
type Recorder interface {
	Start(region capture.Region) error
	Stop()
	// Stopping reports whether the session is shutting down, possibly
	// because a producer failed on its own.
	Stopping() bool
}

// RegionSource reads the region the user framed with the selection window.
type RegionSource interface {
	SelectedRegion() (capture.Region, error)
}

// RecordingView updates UI elements affected by starting and stopping.
type RecordingView interface {
	ShowRecording()
	SetStatus(text string)
	CloseAfter(d time.Duration)
}

// RecordingPresenter owns presentation logic for starting and stopping a
// recording.
type RecordingPresenter struct {
	model    *model.SessionModel
	rec      Recorder
	regions  RegionSource
	view     RecordingView
	remember func(capture.Region) error
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecordingPresenter wires the presenter. remember persists the chosen
// region and may be nil.
func NewRecordingPresenter(m *model.SessionModel, rec Recorder, regions RegionSource, view RecordingView, remember func(capture.Region) error, logger *slog.Logger) *RecordingPresenter {
	return &RecordingPresenter{model: m, rec: rec, regions: regions, view: view, remember: remember, logger: logger, now: time.Now}
}

func (p *RecordingPresenter) ready() bool {
	return p != nil && p.model != nil && p.rec != nil && p.regions != nil && p.view != nil
}

// Start freezes the selected region and launches the recording. Only valid
// from idle.
func (p *RecordingPresenter) Start() {
	if !p.ready() {
		return
	}
	if st, _ := p.model.Values(); st != model.StateIdle {
		return
	}
	region, err := p.regions.SelectedRegion()
	if err != nil {
		p.view.SetStatus(fmt.Sprintf("Invalid selection: %v", err))
		return
	}
	if err := p.rec.Start(region); err != nil {
		p.model.Fail(err, p.now())
		p.view.SetStatus(fmt.Sprintf("Start failed: %v", err))
		if p.logger != nil {
			p.logger.Error("start recording", "error", err)
		}
		return
	}
	p.model.Begin(p.now())
	p.view.ShowRecording()
	p.view.SetStatus("Recording " + region.String())
	if p.remember != nil {
		if err := p.remember(region); err != nil && p.logger != nil {
			p.logger.Warn("persist selection", "error", err)
		}
	}
}

// Stop requests the session to stop and closes the window shortly after.
// Idempotent.
func (p *RecordingPresenter) Stop() {
	if !p.ready() {
		return
	}
	if !p.model.Stop(p.now()) {
		return
	}
	p.rec.Stop()
	p.view.SetStatus("Stopping...")
	p.view.CloseAfter(CloseDelay)
}

// Toggle starts when idle and stops while recording.
func (p *RecordingPresenter) Toggle() {
	if !p.ready() {
		return
	}
	if st, _ := p.model.Values(); st == model.StateRecording {
		p.Stop()
		return
	}
	p.Start()
}

// Tick follows a session that stopped on its own, e.g. after a device
// failure, so the window does not stay in the recording state.
func (p *RecordingPresenter) Tick(time.Time) {
	if !p.ready() {
		return
	}
	if st, _ := p.model.Values(); st == model.StateRecording && p.rec.Stopping() {
		if p.logger != nil {
			p.logger.Warn("session stopped without user request")
		}
		p.Stop()
	}
}

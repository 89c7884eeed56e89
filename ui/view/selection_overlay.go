package view

import (
	"log/slog"

	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

const (
	overlayAlpha    = 0.5
	defaultGeometry = "800x600+100+100"
	// collapsedGeometry parks the control window away from the usual
	// recording area once capture runs.
	collapsedGeometry = "220x80+50+50"
)

// SelectionOverlay turns the main window into a translucent, always-on-top
// frame that the user moves and resizes over the area to record. The window
// geometry at Start time is the capture region.
type SelectionOverlay struct {
	logger  *slog.Logger
	initial string
}

// NewSelectionOverlay creates the overlay. A persisted region, if valid,
// becomes the initial geometry.
func NewSelectionOverlay(initial capture.Region, logger *slog.Logger) *SelectionOverlay {
	geom := defaultGeometry
	if initial.Validate() == nil {
		geom = model.FormatGeometry(initial)
	}
	return &SelectionOverlay{logger: logger, initial: geom}
}

// Open applies the selection look to the main window.
func (o *SelectionOverlay) Open() {
	App.WmTitle("Screen recorder: frame the area")
	WmGeometry(App, o.initial)
	WmAttributes(App, "-alpha", overlayAlpha)
	WmAttributes(App, "-topmost", 1)
}

// SelectedRegion reads the current window geometry.
func (o *SelectionOverlay) SelectedRegion() (capture.Region, error) {
	geom := WmGeometry(App)
	r, err := model.ParseGeometry(geom)
	if err != nil && o.logger != nil {
		o.logger.Error("selection geometry", "geometry", geom, "error", err)
	}
	return r, err
}

// Collapse shrinks the window to an opaque control strip.
func (o *SelectionOverlay) Collapse() {
	App.WmTitle("Screen recorder")
	WmAttributes(App, "-alpha", 1.0)
	WmGeometry(App, collapsedGeometry)
}

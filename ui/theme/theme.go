package theme

// Centralized styling for the recorder window.
// Provides palette constants and InitStyles to activate a base theme and
// configure semantic widget styles.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/screenrec/ui/model"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorPrimary   = "#2563eb" // start button
	ColorDanger    = "#dc2626" // stop button, recording state
	ColorAccent    = "#10b981"
	ColorWarn      = "#d97706"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleHintLabel     = "hint.TLabel"
)

// StateColor returns the background used for the state label.
func StateColor(st model.RecordingState) string {
	switch st {
	case model.StateRecording:
		return ColorDanger
	case model.StateStopping:
		return ColorWarn
	case model.StateFailed:
		return ColorTextMuted
	default:
		return ColorAccent
	}
}

// InitStyles applies the palette to the ttk styles used by the views.
func InitStyles() {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(ColorBg))

	StyleConfigure(StylePrimaryButton,
		Background(ColorPrimary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(ColorDanger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleHintLabel,
		Foreground(ColorText),
		Background(ColorSurface),
		Padding("4p 2p"),
	)
}

package view

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/screenrec/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the recording settings form shown while framing
// the area. It owns its widgets and writes back into *config.Config on
// ApplyChanges.
type ConfigPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	ApplyChanges()                                        // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	widgets map[string]*TextWidget // keyed by config key
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(parent *FrameWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("fps", "Target FPS", strconv.FormatFloat(c.FPS, 'f', -1, 64))
	makeRow("output_file", "Output File", c.OutputFile)
	makeRow("video_crf", "Video CRF (0-51)", strconv.Itoa(c.VideoCRF))
	makeRow("video_preset", "Video Preset", c.VideoPreset)
	makeRow("audio_bitrate", "Audio Bitrate", c.AudioBitrate)
	applyBtn := Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(applyBtn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	s := strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
	return s, s != ""
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	if s, ok := v.text("fps"); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			cfg.FPS = f
		}
	}
	if s, ok := v.text("video_crf"); ok {
		if i, err := strconv.Atoi(s); err == nil {
			cfg.VideoCRF = i
		}
	}
	if s, ok := v.text("output_file"); ok {
		cfg.OutputFile = s
	}
	if s, ok := v.text("video_preset"); ok {
		cfg.VideoPreset = s
	}
	if s, ok := v.text("audio_bitrate"); ok {
		cfg.AudioBitrate = s
	}
	if verr := cfg.Validate(); verr != nil {
		if v.logger != nil {
			v.logger.Error("config rejected", "error", verr)
		}
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else {
		if v.logger != nil {
			v.logger.Info("config saved", "path", v.cfgPath)
		}
	}
}

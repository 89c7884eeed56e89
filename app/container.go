package app

import (
	"context"
	"log/slog"

	"github.com/soocke/screenrec/config"
	"github.com/soocke/screenrec/domain/capture"
	"github.com/soocke/screenrec/ui/model"
	"github.com/soocke/screenrec/ui/presenter"
	"github.com/soocke/screenrec/ui/view"
)

// AppContainer assembles models, the recording controller, presenters and
// the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Session    *model.SessionModel
	Controller *Controller
	RootView   *view.RootView

	// Presenters
	RecordingPresenter *presenter.RecordingPresenter
	SessionPresenter   *presenter.SessionPresenter
	Loop               *presenter.Loop
}

// BuildContainer constructs all components. No window is created until the
// root view is built.
func BuildContainer(ctx context.Context, cfg *config.Config, cfgPath string, deps Deps, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.Session = model.NewSessionModel()
	c.Controller = NewController(ctx, cfg, deps, logger)
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.RecordingPresenter = presenter.NewRecordingPresenter(c.Session, c.Controller, c.RootView, c.RootView, c.rememberRegion, logger)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.RootView)
	return c
}

// rememberRegion persists the last selection so the next run reopens the
// frame at the same place.
func (c *AppContainer) rememberRegion(r capture.Region) error {
	c.Config.SelectionX = r.Left
	c.Config.SelectionY = r.Top
	c.Config.SelectionW = r.Width
	c.Config.SelectionH = r.Height
	return c.Config.Save(c.ConfigPath)
}

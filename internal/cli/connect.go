package cli

import (
	"context"
	"fmt"

	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/backend"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/query"
	"github.com/idilsaglam/tada/internal/transport"
	"github.com/idilsaglam/tada/internal/view"
)

// dial opens the configured transport. The returned func releases it.
func (app *App) dial(ctx context.Context) (transport.Transport, func() error, error) {
	switch app.cfg.Transport {
	case config.TransportHTTP, config.TransportWS:
		token := ""
		ti, err := auth.GetToken()
		if err != nil {
			return nil, nil, err
		}
		if ti != nil {
			token = ti.Token
		}
		if app.cfg.Transport == config.TransportHTTP {
			h, err := transport.NewHTTP(app.cfg.Endpoint, transport.WithToken(token))
			if err != nil {
				return nil, nil, err
			}
			return h, func() error { return nil }, nil
		}
		ws, err := transport.DialWS(ctx, app.cfg.Endpoint, token, app.log)
		if err != nil {
			return nil, nil, err
		}
		return ws, ws.Close, nil
	}
	store, err := backend.Open(ctx, app.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return backend.NewResolver(store, app.log), store.Close, nil
}

func (app *App) viewOptions() []view.Option {
	opts := []view.Option{view.WithLogger(app.log)}
	if app.cfg.PageSize > 0 {
		opts = append(opts, view.WithPageSize(app.cfg.PageSize))
	}
	return opts
}

// controller dials and mounts a view controller, which performs the initial load.
func (app *App) controller(ctx context.Context) (*view.Controller, func(), error) {
	t, closeT, err := app.dial(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	ctl := view.New(query.New(t), app.viewOptions()...)
	release := func() {
		ctl.Close()
		if err := closeT(); err != nil {
			app.log.Warn("close transport", "err", err)
		}
	}
	if err := ctl.Mount(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("load: %w", err)
	}
	return ctl, release, nil
}

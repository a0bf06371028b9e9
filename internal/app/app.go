// Package app builds the service from its config file and runs it until the
// context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/ordernotify/internal/pkg/background"
	"github.com/shandysiswandi/ordernotify/internal/pkg/config"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
)

const shutdownTimeout = 10 * time.Second

type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns every long-lived resource. Resources are closed in reverse order of
// creation once the HTTP server and background tasks have stopped.
type App struct {
	config config.Config
	ins    instrument.Instrumentation
	runner *background.Runner
	server *http.Server

	closers []closer
}

// New opens every resource the config asks for. Whatever was opened before a
// failure is closed again.
func New(ctx context.Context, configPath string) (*App, error) {
	a := &App{}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{name: "config", fn: func(context.Context) error { return a.loadConfig(configPath) }},
		{name: "instrument", fn: a.startInstrument},
		{name: "modules", fn: a.buildModules},
	}

	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return nil, errors.Join(fmt.Errorf("app: init %s: %w", step.name, err), a.abort(ctx))
		}
	}

	return a, nil
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) abort(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return a.close(ctx)
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

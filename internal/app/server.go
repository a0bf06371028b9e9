package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
)

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// down: the server first, then pending background tasks, then resources.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return errors.Join(err, a.abort(ctx))
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server listening", "address", ln.Addr().String())
		served <- a.server.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-served:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
	}

	return errors.Join(serveErr, a.shutdown(ctx))
}

func (a *App) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	slog.InfoContext(ctx, "waiting for background tasks", "dropped", a.runner.Dropped())
	if err := a.runner.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, a.close(ctx))
	slog.InfoContext(ctx, "application stopped")
	return errors.Join(errs...)
}

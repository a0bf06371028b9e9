package app

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"github.com/shandysiswandi/ordernotify/internal/order"
	"github.com/shandysiswandi/ordernotify/internal/pkg/background"
	"github.com/shandysiswandi/ordernotify/internal/pkg/router"
	"github.com/shandysiswandi/ordernotify/internal/pkg/uid"
	"github.com/shandysiswandi/ordernotify/internal/pkg/validator"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (a *App) buildModules(ctx context.Context) error {
	v, err := validator.New()
	if err != nil {
		return err
	}

	sender, err := a.openMail()
	if err != nil {
		return err
	}

	broker, err := a.openBroker(ctx)
	if err != nil {
		return err
	}

	store, err := a.openGuard(ctx)
	if err != nil {
		return err
	}

	a.runner = background.NewRunner(a.config.GetInt("app.server.max_background_tasks"))

	r := router.New(router.Config{
		Config:     a.config,
		NewID:      uid.NewV7,
		Instrument: a.ins,
	})
	r.GET("/health", func(*router.Request) (any, error) {
		return healthResponse{Status: "up"}, nil
	})

	dep := order.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		NewID:      uid.NewV7,
		Runner:     a.runner,
		Validator:  v,
		Router:     r,
		Mail:       sender,
		Messaging:  broker,
	}
	// A nil *Store must not become a non-nil Guard.
	if store != nil {
		dep.Guard = store
	}
	if err := order.New(dep); err != nil {
		return err
	}

	a.server = a.newServer(r)
	return nil
}

func (a *App) newServer(h http.Handler) *http.Server {
	withCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(h)

	return &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           withCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

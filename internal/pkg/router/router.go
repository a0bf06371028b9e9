// Package router serves JSON endpoints on httprouter behind the middleware
// every request of this service goes through.
package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/ordernotify/internal/pkg/config"
	"github.com/shandysiswandi/ordernotify/internal/pkg/goerror"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"github.com/shandysiswandi/ordernotify/internal/pkg/uid"
)

type errorResponse struct {
	Message string `json:"message" example:"Missing order data"`
}

type successResponse struct {
	Message string `json:"message" example:"Emails sent successfully!"`
	Data    any    `json:"data" swaggertype:"object"`
}

// Handler returns a payload to encode, or an error. A *goerror.Error picks the
// status and the public message. Any other error becomes a 500.
type Handler func(r *Request) (any, error)

type Config struct {
	// Config is read on every request for the maintenance switch.
	Config config.Config
	// NewID generates correlation ids. Defaults to UUIDv7.
	NewID      func() string
	Instrument instrument.Instrumentation
}

type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

func New(cfg Config) *Router {
	if cfg.NewID == nil {
		cfg.NewID = uid.NewV7
	}
	if cfg.Instrument == nil {
		cfg.Instrument = instrument.Noop{}
	}

	hr := httprouter.New()
	hr.SaveMatchedRoutePath = true
	hr.NotFound = statusHandler(http.StatusNotFound, "endpoint not found")
	hr.MethodNotAllowed = statusHandler(http.StatusMethodNotAllowed, "method not allowed")
	hr.PanicHandler = recoverPanic

	return &Router{
		hr: hr,
		mws: []Middleware{
			clientIP,
			correlationID(cfg.NewID),
			observe(cfg.Instrument),
			maintenance(cfg.Config),
		},
	}
}

func (r *Router) GET(path string, h Handler)  { r.handle(http.MethodGet, path, h) }
func (r *Router) POST(path string, h Handler) { r.handle(http.MethodPost, path, h) }

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func (r *Router) handle(method, path string, h Handler) {
	endpoint := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			fail(w, err)
			return
		}
		succeed(w, resp)
	})
	r.hr.Handler(method, path, Chain(endpoint, r.mws...))
}

func succeed(w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	msg := "OK"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}
	writeJSON(w, http.StatusOK, successResponse{Message: msg, Data: resp})
}

func fail(w http.ResponseWriter, err error) {
	if rec, ok := w.(*recorder); ok {
		rec.err = err
	}

	gerr, ok := goerror.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
		return
	}
	writeJSON(w, gerr.StatusCode(), errorResponse{Message: gerr.Msg()})
}

func statusHandler(code int, msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, code, errorResponse{Message: msg})
	})
}

func recoverPanic(w http.ResponseWriter, r *http.Request, rec any) {
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	slog.ErrorContext(r.Context(), "handler panicked", "panic", rec, "stack", string(debug.Stack()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

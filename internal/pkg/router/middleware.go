package router

import (
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/ordernotify/internal/pkg/config"
	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
)

type Middleware func(next http.Handler) http.Handler

// Chain wraps h so that mws[0] runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"

	maxCorrelationID = 128
)

// The storefront sits behind a CDN or proxy, so the socket peer is rarely the shopper.
var clientIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

func clientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientAddr(r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	for _, h := range clientIPHeaders {
		first, _, _ := strings.Cut(r.Header.Get(h), ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().String()
	}
	return ""
}

// correlationID reuses the caller's id so the checkout frontend and this
// service log under one id. Ids that could break a log line are replaced.
func correlationID(newID func() string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cID := acceptedID(r.Header.Get(HeaderCorrelationID))
			if cID == "" {
				cID = acceptedID(r.Header.Get(HeaderRequestID))
			}
			if cID == "" {
				cID = newID()
			}

			w.Header().Set(HeaderCorrelationID, cID)
			next.ServeHTTP(w, r.WithContext(instrument.WithCorrelationID(r.Context(), cID)))
		})
	}
}

func acceptedID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxCorrelationID {
		return ""
	}
	for _, c := range v {
		if c < 0x20 || c == 0x7f {
			return ""
		}
	}
	return v
}

const defaultMaintenanceMessage = "Service is under maintenance, please try again later"

// maintenance rejects writes while app.maintenance.enabled is set. The flag is
// read per request so flipping it in the watched config file takes effect
// without a restart. GET routes such as /health stay up.
func maintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg == nil || r.Method == http.MethodGet || !cfg.GetBool("app.maintenance.enabled") {
				next.ServeHTTP(w, r)
				return
			}

			if secs := cfg.GetInt("app.maintenance.retry_after_seconds"); secs > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			msg := cfg.GetString("app.maintenance.message")
			if msg == "" {
				msg = defaultMaintenanceMessage
			}
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: msg})
		})
	}
}

func routeOf(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

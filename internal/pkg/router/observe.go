package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/shandysiswandi/ordernotify/internal/pkg/instrument"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// maxLoggedBody caps how much of a body is kept for debug logs.
const maxLoggedBody = 8 << 10

// observe traces, measures and logs each request in one place so the span,
// the metrics and the log line agree on the route and the status.
func observe(ins instrument.Instrumentation) Middleware {
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("HTTP requests by route and status"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeOf(r)

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.ClientAddressKey.String(r.RemoteAddr),
					semconv.UserAgentOriginalKey.String(r.UserAgent()),
				),
			)
			defer span.End()

			verbose := slog.Default().Enabled(ctx, slog.LevelDebug)
			var reqBody []byte
			var reqCut bool
			if verbose {
				reqBody, reqCut = peekBody(r)
			}

			rec := &recorder{ResponseWriter: w, capture: verbose}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)

			span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(status))
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			set := metric.WithAttributeSet(attribute.NewSet(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			))
			if requests != nil {
				requests.Add(ctx, 1, set)
			}
			if duration != nil {
				duration.Record(ctx, elapsed.Seconds(), set)
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			args := []any{
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", rec.size,
				"latency_ms", elapsed.Milliseconds(),
				"client_ip", r.RemoteAddr,
			}
			if rec.err != nil {
				args = append(args, "error", rec.err.Error())
			}
			if verbose {
				args = append(args,
					"request_body", bodyText(reqBody, reqCut),
					"response_body", bodyText(rec.body.Bytes(), rec.cut),
				)
			}
			slog.Log(ctx, level, "http request", args...)
		})
	}
}

// recorder remembers what the handler wrote. The body is kept only when capture is set.
type recorder struct {
	http.ResponseWriter
	status  int
	size    int
	capture bool
	body    bytes.Buffer
	cut     bool
	err     error
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	if r.capture {
		room := maxLoggedBody - r.body.Len()
		if len(p) > room {
			r.body.Write(p[:max(room, 0)])
			r.cut = true
		} else {
			r.body.Write(p)
		}
	}
	n, err := r.ResponseWriter.Write(p)
	r.size += n
	return n, err
}

func (r *recorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// peekBody reads up to maxLoggedBody and puts everything back for the handler.
func peekBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	if len(head) > maxLoggedBody {
		return head[:maxLoggedBody], true
	}
	return head, false
}

// bodyText never returns a truncated body: a cut JSON document cannot be
// redacted by key, so only its size is logged.
func bodyText(b []byte, cut bool) string {
	switch {
	case len(b) == 0:
		return ""
	case cut:
		return "[truncated after " + strconv.Itoa(len(b)) + " bytes]"
	case !utf8.Valid(b):
		return "[binary " + strconv.Itoa(len(b)) + " bytes]"
	default:
		return string(b)
	}
}

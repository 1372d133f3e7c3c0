// Package httpmiddleware contains net/http middlewares shared by the servers.
package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares so that the first one is the outermost.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RouteFinder returns the route pattern serving r, or "" when none matches.
type RouteFinder func(r *http.Request) string

// MakeRouteFinder resolves routes registered on mux.
func MakeRouteFinder(mux *http.ServeMux) RouteFinder {
	return func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}
}

// InjectLogger stores lg in every request context for zctx.From.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(zctx.Base(r.Context(), lg)))
		})
	}
}

// Instrument traces requests and records otelhttp server metrics. Spans are
// named after the matched route.
func Instrument(service string, find RouteFinder, tp trace.TracerProvider, mp metric.MeterProvider) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if route := find(r); route != "" {
					return route
				}
				return r.Method + " unmatched"
			}),
		)
	}
}

// Labeler adds the matched route to otelhttp metric labels. It must run
// inside Instrument.
func Labeler(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if route := find(r); route != "" {
				labeler, _ := otelhttp.LabelerFromContext(r.Context())
				labeler.Add(attribute.String("http.route", route))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusWriter remembers the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// LogRequests logs one line per request with the context logger.
func LogRequests(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			lg := zctx.From(r.Context())
			if ce := lg.Check(levelFor(status), "Request"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("route", find(r)),
					zap.Int("status", status),
					zap.Int("size", sw.size),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zap.ErrorLevel
	case status >= http.StatusBadRequest:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

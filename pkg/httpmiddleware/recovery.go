package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 response in the service's error format.
// http.ErrAbortHandler is re-raised.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zctx.From(r.Context()).Error("Panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)

				var e jx.Encoder
				e.ObjStart()
				e.FieldStart("code")
				e.Int(http.StatusInternalServerError)
				e.FieldStart("message")
				e.Str("Unexpected error")
				e.ObjEnd()

				w.Header().Set("Connection", "close")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(e.Bytes())
			}()
			next.ServeHTTP(w, r)
		})
	}
}

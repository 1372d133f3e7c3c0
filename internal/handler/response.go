package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/orders/internal/domain/order"
)

// maxBodySize bounds request payloads.
const maxBodySize = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, invalidBody(err)
	}
	return body, nil
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// statusOf maps an error to its HTTP status and client-facing message.
func statusOf(err error) (int, string) {
	var (
		validationErr *order.ValidationError
		statusErr     *order.UnknownStatusError
		transitionErr *order.InvalidTransitionError
		reqErr        *requestError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Error()
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &statusErr):
		return http.StatusBadRequest, statusErr.Error()
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, order.ErrNotFound.Error()
	case errors.As(err, &transitionErr):
		return http.StatusConflict, transitionErr.Error()
	default:
		return http.StatusInternalServerError, "Unexpected error"
	}
}

// writeError writes {"code":N,"message":"..."}. Server errors are logged and
// their details are not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusOf(err)
	if code >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, code, e.Bytes())
}

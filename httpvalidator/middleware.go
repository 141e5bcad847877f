package httpvalidator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/erraggy/oasgate/oaserrors"
)

type contextKey struct{}

// RequestFromContext returns the validated Request stored by Middleware.
func RequestFromContext(ctx context.Context) (*Request, bool) {
	req, ok := ctx.Value(contextKey{}).(*Request)
	return req, ok
}

// Middleware validates every request before passing it to next. Failures
// are answered with a JSON body of the form
//
//	{"status": 400, "path": "/pets", "message": "...", "errors": [...]}
//
// Requests that match no operation are passed through unchanged. The
// validated Request, with coerced parameters, is available to next through
// RequestFromContext.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := v.FromHTTP(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			writeError(w, &oaserrors.RequestError{Status: status, Path: r.URL.Path, Message: err.Error()})
			return
		}

		if err := v.ValidateRequest(req); err != nil {
			if reqErr, ok := AsRequestError(err); ok {
				writeError(w, reqErr)
				return
			}
			v.logger.Error("request validation failed", "path", req.Path, "error", err)
			writeError(w, &oaserrors.RequestError{Status: http.StatusInternalServerError, Path: req.Path, Message: "validator unavailable"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, req)))
	})
}

func writeError(w http.ResponseWriter, reqErr *oaserrors.RequestError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reqErr.Status)
	_ = json.NewEncoder(w).Encode(reqErr)
}

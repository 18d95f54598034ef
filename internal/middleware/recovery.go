package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"erauchess-api/pkg/apierror"
	"erauchess-api/pkg/response"
)

// Recovery turns a panic into an Unknown failure envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "panic recovered",
				"component", "http",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			response.Error(w, r, apierror.Unknown("internal server error").
				WithCause(fmt.Errorf("panic: %v", rec)))
		}()

		next.ServeHTTP(w, r)
	})
}

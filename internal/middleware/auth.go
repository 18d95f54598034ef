package middleware

import (
	"context"
	"errors"
	"net/http"

	"erauchess-api/internal/session"
	"erauchess-api/pkg/apierror"
	"erauchess-api/pkg/response"
)

// SessionKey is the context key for the extracted session token.
const SessionKey contextKey = "session"

// RequireSession admits only requests whose session cookie satisfies tier.
// The extractor is injected so handlers never touch global state.
func RequireSession(extractor *session.Extractor, tier session.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := extractor.FromRequest(r, tier)
			if err != nil {
				response.Error(w, r, sessionError(err))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromContext returns the token stored by RequireSession.
func TokenFromContext(ctx context.Context) (session.Token, bool) {
	tok, ok := ctx.Value(SessionKey).(session.Token)
	return tok, ok
}

func sessionError(err error) *apierror.Error {
	if errors.Is(err, session.ErrPermissionDenied) {
		return apierror.PermissionDenied()
	}
	return apierror.NotAuthenticated()
}

package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/apperr"
	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/http/respond"
)

// Session resolves the bearer token into the current account and stores it
// on the request context. Requests without a valid token continue anonymous;
// handlers decide whether a session is required.
func Session(gate *auth.Gate, log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		account, err := gate.CurrentAccount(r.Context(), token)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), account)))
		case errors.Is(err, apperr.ErrUnauthenticated):
			next.ServeHTTP(w, r)
		default:
			log.Error("session lookup failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "failed to load session")
		}
	})
}

// ForcePasswordChange rejects accounts flagged must_change_password on every
// path except the allowed ones.
func ForcePasswordChange(allowed []string, next http.Handler) http.Handler {
	open := make(map[string]struct{}, len(allowed))
	for _, p := range allowed {
		open[p] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := auth.AccountFromContext(r.Context())
		if account != nil && account.MustChangePassword {
			if _, ok := open[r.URL.Path]; !ok {
				respond.Error(w, http.StatusForbidden, apperr.ErrPasswordChangeRequired.Error())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

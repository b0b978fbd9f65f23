package http

import (
	"context"
	"net/http"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/log"
)

type contextKey string

const identityKey contextKey = "identity"

// requireAuth rejects requests without a valid bearer token and stores the
// token's identity in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, r, core.ErrUnauthorized)
			return
		}
		id, err := s.auth.Authenticate(token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		ctx = log.WithLogger(ctx, log.FromContext(ctx).With(log.FieldUserID, id.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// identityFrom returns the identity stored by requireAuth.
func identityFrom(ctx context.Context) (core.Identity, bool) {
	id, ok := ctx.Value(identityKey).(core.Identity)
	return id, ok && id.UserID != ""
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/pkg/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware verifies the bearer token and stores its claims in
// the request context. Websocket clients cannot set headers, so a
// "token" query parameter is accepted as a fallback.
func AuthMiddleware(jwtManager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				writeError(w, apperr.New(apperr.KindAuth, "missing access token"))
				return
			}

			claims, err := jwtManager.Verify(token)
			if err != nil {
				writeError(w, apperr.Wrap(apperr.KindAuth, "invalid access token", err))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// accountIDFrom extracts the authenticated account ID placed in the
// context by AuthMiddleware.
func accountIDFrom(r *http.Request) (uuid.UUID, error) {
	claims, ok := r.Context().Value(claimsKey).(*jwt.Claims)
	if !ok {
		return uuid.Nil, apperr.New(apperr.KindAuth, "not authenticated")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindAuth, "invalid user id in token", err)
	}
	return id, nil
}

package middleware

import (
	"context"
	"net/http"

	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/utils"
)

// AuthMiddleware verifies the platform access token and puts the caller in the context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if utils.TokenFromRequest(r) == "" {
			utils.WriteError(w, http.StatusUnauthorized, "unauthorized", "No token provided")
			return
		}

		claims, err := utils.ExtractClaims(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		user := &domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated caller, or nil.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(domain.UserContextKey).(*domain.User)
	return user
}

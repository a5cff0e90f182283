package api

import (
	"net/http"
	"strings"

	"github.com/St1cky1/task-planner/internal/api/handlers"
	"github.com/St1cky1/task-planner/internal/entity"
)

// TokenValidator проверяет access token и возвращает claims
type TokenValidator interface {
	ValidateAccessToken(token string) (*entity.JWTClaims, error)
}

// Auth требует заголовок Authorization: Bearer <token> и кладет id пользователя в контекст
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := tokens.ValidateAccessToken(strings.TrimSpace(token))
			if err != nil {
				handlers.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// Файл: internal/api/middleware.go
package api

import (
	"context"
	"crypto/hmac"
	"net/http"

	"Backoffice/internal/constants"
)

// ActorContextKey - ключ для сохранения имени оператора в контексте запроса.
var ActorContextKey = &contextKey{"Actor"}

// RoleContextKey - ключ для сохранения роли оператора в контексте запроса.
var RoleContextKey = &contextKey{"Role"}

type contextKey struct {
	name string
}

// AuthMiddleware проверяет заголовок X-Api-Token сравнением, устойчивым
// к атакам по времени. Имя и роль оператора берутся из заголовков и
// сохраняются в контексте запроса.
func AuthMiddleware(secretToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Api-Token")
			if token == "" {
				http.Error(w, "Unauthorized: Missing X-Api-Token header", http.StatusUnauthorized)
				return
			}
			if !hmac.Equal([]byte(token), []byte(secretToken)) {
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			actor := r.Header.Get("X-Operator")
			if actor == "" {
				actor = "operator"
			}
			role := r.Header.Get("X-Operator-Role")
			if role == "" {
				role = constants.ROLE_OPERATOR
			}

			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			ctx = context.WithValue(ctx, RoleContextKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware проверяет, соответствует ли роль оператора требуемой.
func RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(RoleContextKey).(string)
			if !ok {
				http.Error(w, "Forbidden: Role data not found in context", http.StatusForbidden)
				return
			}
			if !constants.IsRoleOrHigher(role, requiredRole) {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestActor возвращает имя оператора из контекста запроса.
func requestActor(r *http.Request) string {
	if actor, ok := r.Context().Value(ActorContextKey).(string); ok {
		return actor
	}
	return "operator"
}

// requestRole возвращает роль оператора из контекста запроса.
func requestRole(r *http.Request) string {
	if role, ok := r.Context().Value(RoleContextKey).(string); ok {
		return role
	}
	return constants.ROLE_OPERATOR
}

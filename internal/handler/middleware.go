package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionMiddleware validates Bearer tokens and injects the live session
// into the request context.
func SessionMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			session, err := authSvc.SessionFromToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired session",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the authenticated session from context.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}

// RequireAdmin rejects sessions that lack the administrator role. Must run
// after SessionMiddleware.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil || !session.IsAdmin() {
				logger.Warn("forbidden: administrator role required",
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "Acesso reservado a administradores")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireActiveEvent rejects event-scoped requests until the session has an
// active event selected. Must run after SessionMiddleware.
func RequireActiveEvent(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil || session.ActiveEventID == "" {
				logger.Debug("no active event selected",
					zap.String("path", r.URL.Path),
				)
				handleServiceError(w, &domain.ErrNoActiveEvent{}, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

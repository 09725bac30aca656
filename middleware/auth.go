package middleware

import (
	"context"
	"net/http"

	"bank-auth/internal/session"
	"bank-auth/models"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type contextKey struct{}

var userKey contextKey

type Middleware struct {
	Store  sessions.Store
	logger *zap.Logger
}

func NewMiddleware(store sessions.Store, logger *zap.Logger) *Middleware {
	return &Middleware{Store: store, logger: logger}
}

// RequireSession redirects anonymous requests to the login page
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Store.Get(r, session.Name)
		if err != nil {
			m.logger.Debug("Discarding unreadable session cookie", zap.Error(err))
		}
		user := session.User(s)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	}
}

// UserFromContext returns the user placed on the request by RequireSession
func UserFromContext(ctx context.Context) *models.SessionUser {
	user, _ := ctx.Value(userKey).(*models.SessionUser)
	return user
}

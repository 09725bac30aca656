package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bank-auth/internal/session"
	"bank-auth/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/signup", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), fields["request_id"])
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequireSession(t *testing.T) {
	store := session.NewMemoryStore([]byte("secret"))
	m := NewMiddleware(store, zap.NewNop())

	var seen *models.SessionUser
	protected := m.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})

	t.Run("anonymous is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Nil(t, seen)
	})

	t.Run("forged cookie is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: session.Name, Value: "forged"})
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("session user reaches the handler", func(t *testing.T) {
		loginReq := httptest.NewRequest(http.MethodPost, "/login", nil)
		s, err := store.Get(loginReq, session.Name)
		require.NoError(t, err)
		loginRec := httptest.NewRecorder()
		require.NoError(t, session.SetUser(loginReq, loginRec, s, &models.SessionUser{ID: 1, Username: "alice"}))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		for _, c := range loginRec.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		protected(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "alice", seen.Username)
	})
}

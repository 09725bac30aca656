package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bank-auth/internal/config"
	"bank-auth/internal/testutils"
	"bank-auth/models"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWith(cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func login(t *testing.T, store sessions.Store, user *models.SessionUser) *http.Cookie {
	t.Helper()
	req := requestWith()
	s, err := store.Get(req, Name)
	require.NoError(t, err)
	assert.True(t, s.IsNew)
	assert.Nil(t, User(s))

	rec := httptest.NewRecorder()
	require.NoError(t, SetUser(req, rec, s, user))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, Name, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	return cookies[0]
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore([]byte("secret"))
	cookie := login(t, store, &models.SessionUser{ID: 7, Username: "alice"})

	// the cookie carries an opaque id, not the username
	assert.NotContains(t, cookie.Value, "alice")
	assert.Equal(t, 1, store.Len())

	s, err := store.Get(requestWith(cookie), Name)
	require.NoError(t, err)
	assert.False(t, s.IsNew)
	user := User(s)
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestMemoryStore_Destroy(t *testing.T) {
	store := NewMemoryStore([]byte("secret"))
	cookie := login(t, store, &models.SessionUser{ID: 1, Username: "alice"})

	req := requestWith(cookie)
	s, err := store.Get(req, Name)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, Destroy(req, rec, s))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.Zero(t, store.Len())

	// replaying the old cookie yields an anonymous session
	s, err = store.Get(requestWith(cookie), Name)
	require.NoError(t, err)
	assert.True(t, s.IsNew)
	assert.Nil(t, User(s))
}

func TestMemoryStore_TamperedCookie(t *testing.T) {
	store := NewMemoryStore([]byte("secret"))
	login(t, store, &models.SessionUser{ID: 1, Username: "alice"})

	s, err := store.Get(requestWith(&http.Cookie{Name: Name, Value: "forged"}), Name)
	assert.Error(t, err)
	require.NotNil(t, s)
	assert.Nil(t, User(s))

	other := NewMemoryStore([]byte("another-secret"))
	cookie := login(t, other, &models.SessionUser{ID: 2, Username: "bob"})
	s, err = store.Get(requestWith(cookie), Name)
	assert.Error(t, err)
	assert.Nil(t, User(s))
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore([]byte("secret"))
	store.TTL = time.Hour
	store.now = func() time.Time { return now }

	cookie := login(t, store, &models.SessionUser{ID: 1, Username: "alice"})
	assert.Zero(t, store.Prune())

	// activity keeps the session alive past its first deadline
	now = now.Add(50 * time.Minute)
	s, err := store.Get(requestWith(cookie), Name)
	require.NoError(t, err)
	assert.NotNil(t, User(s))

	now = now.Add(20 * time.Minute)
	s, err = store.Get(requestWith(cookie), Name)
	require.NoError(t, err)
	assert.NotNil(t, User(s))
	assert.Zero(t, store.Prune())

	// an idle hour ends it
	now = now.Add(61 * time.Minute)
	s, err = store.Get(requestWith(cookie), Name)
	require.NoError(t, err)
	assert.Nil(t, User(s))

	assert.Equal(t, 1, store.Prune())
	assert.Zero(t, store.Len())
}

func TestMemoryStore_StaleCookieGetsFreshID(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore([]byte("secret"))
	store.TTL = time.Hour
	store.now = func() time.Time { return now }

	stale := login(t, store, &models.SessionUser{ID: 1, Username: "alice"})
	var staleID string
	require.NoError(t, securecookie.DecodeMulti(Name, stale.Value, &staleID, store.Codecs...))

	now = now.Add(2 * time.Hour)
	require.Equal(t, 1, store.Prune())

	req := requestWith(stale)
	s, err := store.Get(req, Name)
	require.NoError(t, err)
	assert.True(t, s.IsNew)
	assert.Empty(t, s.ID)

	rec := httptest.NewRecorder()
	require.NoError(t, SetUser(req, rec, s, &models.SessionUser{ID: 2, Username: "bob"}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	var freshID string
	require.NoError(t, securecookie.DecodeMulti(Name, cookies[0].Value, &freshID, store.Codecs...))
	assert.NotEqual(t, staleID, freshID)

	// the old cookie does not reach bob's session
	s, err = store.Get(requestWith(stale), Name)
	require.NoError(t, err)
	assert.Nil(t, User(s))
}

func TestUser_MissingOrWrongTypes(t *testing.T) {
	assert.Nil(t, User(nil))

	s := sessions.NewSession(NewMemoryStore([]byte("secret")), Name)
	assert.Nil(t, User(s))

	s.Values["user_id"] = "7"
	s.Values["username"] = "alice"
	assert.Nil(t, User(s))

	s.Values["user_id"] = int64(7)
	s.Values["username"] = ""
	assert.Nil(t, User(s))
}

func TestNewStore(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.SessionSecure = true

	memory, ok := NewStore(cfg).(*MemoryStore)
	require.True(t, ok)
	assert.True(t, memory.Options.Secure)
	assert.True(t, memory.Options.HttpOnly)

	cfg.SessionStore = config.SessionStoreCookie
	cookieStore, ok := NewStore(cfg).(*sessions.CookieStore)
	require.True(t, ok)
	assert.True(t, cookieStore.Options.Secure)
	assert.Equal(t, "/", cookieStore.Options.Path)
}

func TestCookieStore_RoundTrip(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.SessionStore = config.SessionStoreCookie
	store := NewStore(cfg)

	cookie := login(t, store, &models.SessionUser{ID: 3, Username: "carol"})
	s, err := store.Get(requestWith(cookie), Name)
	require.NoError(t, err)
	user := User(s)
	require.NotNil(t, user)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "carol", user.Username)
}

package session

import (
	"net/http"
	"sync"
	"time"

	"bank-auth/internal/config"
	"bank-auth/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// DefaultTTL bounds how long an idle session is kept in memory. Every read restarts it.
const DefaultTTL = 24 * time.Hour

type entry struct {
	values  map[interface{}]interface{}
	expires time.Time
}

// MemoryStore keeps session values in process memory. The cookie only carries the
// signed session id, so nothing survives a restart.
type MemoryStore struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options
	TTL     time.Duration

	mu       sync.RWMutex
	sessions map[string]entry
	now      func() time.Time
}

// NewMemoryStore creates a store whose ids are signed with the given key pairs
func NewMemoryStore(keyPairs ...[]byte) *MemoryStore {
	return &MemoryStore{
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:     "/",
			HttpOnly: true,
		},
		TTL:      DefaultTTL,
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

// Get returns a cached session for the request, loading it on first use
func (s *MemoryStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session referenced by the request cookie, or starts an empty one
func (s *MemoryStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, err
	}
	values, ok := s.load(session.ID)
	if !ok {
		// the next Save issues a fresh id
		session.ID = ""
		return session, nil
	}
	session.Values = values
	session.IsNew = false
	return session, nil
}

// Save stores the session and writes its cookie. A negative MaxAge deletes it.
func (s *MemoryStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		s.delete(session.ID)
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	s.store(session.ID, session.Values)
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Prune drops expired sessions and returns how many were removed
func (s *MemoryStore) Prune() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.After(e.expires) {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

// Len is the number of sessions currently held
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// load returns a live session's values and pushes its expiry out by TTL
func (s *MemoryStore) load(id string) (map[interface{}]interface{}, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || now.After(e.expires) {
		return nil, false
	}
	e.expires = now.Add(s.TTL)
	s.sessions[id] = e
	return copyValues(e.values), true
}

func (s *MemoryStore) store(id string, values map[interface{}]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = entry{values: copyValues(values), expires: s.now().Add(s.TTL)}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

func (s *MemoryStore) delete(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

func copyValues(values map[interface{}]interface{}) map[interface{}]interface{} {
	out := make(map[interface{}]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// NewStore builds the session store selected by SESSION_STORE
func NewStore(cfg *config.Config) sessions.Store {
	if cfg.SessionStore == config.SessionStoreCookie {
		store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		store.Options = &sessions.Options{
			Path:     "/",
			HttpOnly: true,
			Secure:   cfg.SessionSecure,
		}
		return store
	}

	store := NewMemoryStore([]byte(cfg.SessionSecret))
	store.Options.Secure = cfg.SessionSecure
	return store
}

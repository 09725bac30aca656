package session

import (
	"net/http"

	"bank-auth/models"

	"github.com/gorilla/sessions"
)

// Name is the cookie that carries the session
const Name = "bank-session"

const (
	keyUserID   = "user_id"
	keyUsername = "username"
)

// User returns the authenticated user stored in the session, or nil
func User(s *sessions.Session) *models.SessionUser {
	if s == nil {
		return nil
	}
	id, ok := s.Values[keyUserID].(int64)
	if !ok {
		return nil
	}
	username, ok := s.Values[keyUsername].(string)
	if !ok || username == "" {
		return nil
	}
	return &models.SessionUser{ID: id, Username: username}
}

// SetUser attaches the user to the session and saves it
func SetUser(r *http.Request, w http.ResponseWriter, s *sessions.Session, user *models.SessionUser) error {
	s.Values[keyUserID] = user.ID
	s.Values[keyUsername] = user.Username
	return s.Save(r, w)
}

// Destroy empties the session and expires its cookie
func Destroy(r *http.Request, w http.ResponseWriter, s *sessions.Session) error {
	s.Values = make(map[interface{}]interface{})
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

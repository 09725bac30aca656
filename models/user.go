package models

// User represents an account row in the users table
type User struct {
	ID       int64  `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Password string `json:"-" bson:"password"` // Never serialize password
}

// SessionUser is the copy of a user kept in a browser session
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SessionUser returns the session view of the user
func (u *User) SessionUser() *SessionUser {
	return &SessionUser{ID: u.ID, Username: u.Username}
}

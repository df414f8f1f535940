// Package models defines the core data structures shared by the budgeting
// client and the reference backend: users, sessions, categories and
// transactions, plus the JSON payloads exchanged between them.
package models

// NoUser is the user id stored when nobody is signed in.
const NoUser int64 = -1

// User represents an account on the backend.
type User struct {
	// ID is the backend-assigned identifier of the user.
	ID int64 `json:"id"`
	// Name is the display name chosen at registration.
	Name string `json:"name"`
	// Email is the login of the user.
	Email string `json:"email"`
	// APIToken is the bearer token issued on login or registration.
	APIToken string `json:"api_token"`
	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash []byte `json:"-"`
}

// Session holds the credentials of the signed-in user.
type Session struct {
	// Token is the bearer token sent with every authenticated request.
	Token string `json:"api_token"`
	// UserID identifies the owner of cached rows.
	UserID int64 `json:"user_id"`
}

// EmptySession is the session of a signed-out client.
var EmptySession = Session{UserID: NoUser}

// Valid reports whether both the token and the user id are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID > 0
}

// SessionOf builds the session that results from a successful login.
func SessionOf(u User) Session {
	return Session{Token: u.APIToken, UserID: u.ID}
}

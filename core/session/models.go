package session

import (
	"crypto/subtle"
	"fmt"
	"time"
)

// AuthState is the authentication state of a browser session.
type AuthState int

const (
	LoggedOut AuthState = iota
	LoggedIn
)

func (s AuthState) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case LoggedIn:
		return "logged_in"
	}
	return fmt.Sprintf("AuthState(%d)", int(s))
}

func (s AuthState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *AuthState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "logged_out":
		*s = LoggedOut
	case "logged_in":
		*s = LoggedIn
	default:
		return fmt.Errorf("unknown auth state %q", b)
	}
	return nil
}

// Session is the explicit per-browser context handed to every dashboard action.
type Session struct {
	ID        string    `json:"id"`
	State     AuthState `json:"state"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Session) IsAuthenticated() bool {
	return s.State == LoggedIn
}

// Credentials is the single username/password pair allowed in.
type Credentials struct {
	Username string
	Password string
}

// Match reports whether uname and pwd are exactly the expected pair.
func (c Credentials) Match(uname, pwd string) bool {
	u := subtle.ConstantTimeCompare([]byte(uname), []byte(c.Username))
	p := subtle.ConstantTimeCompare([]byte(pwd), []byte(c.Password))
	return u&p == 1
}

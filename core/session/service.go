package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/rekodi/core"
)

var (
	// errors
	ErrNotFound        = errors.New("session not found")
	ErrUnauthenticated = errors.New("session not authenticated")

	nowFunc = time.Now // mockable
)

// AuthenticationError is returned for a wrong username/password pair.
type AuthenticationError struct {
	Username string
}

func (e *AuthenticationError) Error() string {
	return "invalid username or password"
}

type (
	Repository interface {
		// SaveSession stores s for ttl; a zero ttl never expires.
		SaveSession(ctx context.Context, s Session, ttl time.Duration) error
		GetSession(ctx context.Context, id string) (Session, error)
		// TouchSession restarts the ttl of the session with the given ID.
		TouchSession(ctx context.Context, id string, ttl time.Duration) error
		DeleteSession(ctx context.Context, id string) error
	}

	// Gate guards the dashboard behind the configured credentials.
	Gate struct {
		creds Credentials
		repo  Repository
		ttl   time.Duration
	}
)

func NewGate(conf *core.Config, repo Repository) *Gate {
	return &Gate{
		creds: Credentials{Username: conf.Auth.Username, Password: conf.Auth.Password},
		repo:  repo,
		ttl:   conf.Server.SessionExpirationDelta,
	}
}

// New returns a fresh LoggedOut session. It is not persisted.
func New() Session {
	now := nowFunc().UTC()
	return Session{ID: uuid.New().String(), State: LoggedOut, CreatedAt: now, UpdatedAt: now}
}

// AttemptLogin logs `current` in when uname and pwd match the credentials.
// On failure `current` is returned unchanged along with an *AuthenticationError.
func (g *Gate) AttemptLogin(ctx context.Context, current Session, uname, pwd string) (Session, error) {
	if !g.creds.Match(uname, pwd) {
		return current, &AuthenticationError{Username: uname}
	}

	s := current
	if s.ID == "" {
		s = New()
	}
	s.State = LoggedIn
	s.Username = uname
	s.UpdatedAt = nowFunc().UTC()
	if err := g.repo.SaveSession(ctx, s, g.ttl); err != nil {
		return current, err
	}
	return s, nil
}

// Resume returns the stored session with the given ID.
// A logged-in session starts a new TTL on every resume.
func (g *Gate) Resume(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotFound
	}
	s, err := g.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.IsAuthenticated() {
		if err := g.repo.TouchSession(ctx, id, g.ttl); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

// Logout forgets `current` and returns it LoggedOut.
func (g *Gate) Logout(ctx context.Context, current Session) (Session, error) {
	if current.ID != "" {
		if err := g.repo.DeleteSession(ctx, current.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return current, err
		}
	}
	s := current
	s.State = LoggedOut
	s.Username = ""
	s.UpdatedAt = nowFunc().UTC()
	return s, nil
}

// TTL is how long a logged-in session (and its view) lives without activity.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

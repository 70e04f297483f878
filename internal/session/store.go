// Package session holds the authenticated identity of the running client.
// The backend is the source of truth; the store mirrors it after each
// session call.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
)

// Authenticator is the slice of the backend API the store needs.
// *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, r models.Registration) (models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, firstName, lastName string) (models.UserPatch, error)
}

// Store is safe for concurrent use
type Store struct {
	auth   Authenticator
	logger *slog.Logger

	mu   sync.RWMutex
	user *models.User
}

func NewStore(auth Authenticator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{auth: auth, logger: logger}
}

// Current returns a copy of the session user, or nil when logged out
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) LoggedIn() bool {
	return s.Current() != nil
}

func (s *Store) set(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// Check asks the backend who is logged in. Any failure, a 401 included,
// leaves the store logged out and yields nil.
func (s *Store) Check(ctx context.Context) *models.User {
	u, err := s.auth.Profile(ctx)
	if err != nil {
		s.logger.Debug("session check failed", "error", err)
		s.set(nil)
		return nil
	}
	s.set(&u)
	return s.Current()
}

// Refresh re-reads the profile. Unlike Check, a failure is returned and
// the session is left as it was.
func (s *Store) Refresh(ctx context.Context) (*models.User, error) {
	u, err := s.auth.Profile(ctx)
	if err != nil {
		return nil, err
	}
	s.set(&u)
	return s.Current(), nil
}

// Login replaces the session on success. On failure the session is left
// as it was.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, &Error{Message: api.Message(err, MsgLoginFailed), Err: err}
	}
	s.set(&u)
	s.logger.Info("logged in", "user", u.ID)
	return s.Current(), nil
}

func (s *Store) Register(ctx context.Context, r models.Registration) (*models.User, error) {
	u, err := s.auth.Register(ctx, r)
	if err != nil {
		return nil, &Error{Message: api.Message(err, MsgRegisterFailed), Err: err}
	}
	s.set(&u)
	s.logger.Info("registered", "user", u.ID)
	return s.Current(), nil
}

// Logout always clears the local session. A failed server call is logged
// and otherwise ignored.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Debug("logout call failed", "error", err)
	}
	s.set(nil)
}

// UpdateProfile merges the fields returned by the backend into the
// current session. Fields missing from the response keep their values.
func (s *Store) UpdateProfile(ctx context.Context, firstName, lastName string) (*models.User, error) {
	patch, err := s.auth.UpdateProfile(ctx, firstName, lastName)
	if err != nil {
		return nil, &Error{Message: api.Message(err, MsgUpdateFailed), Err: err}
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil, &Error{Message: MsgUpdateFailed, Err: ErrNoSession}
	}
	merged := patch.Apply(*s.user)
	s.user = &merged
	s.mu.Unlock()

	return s.Current(), nil
}

// Clear drops the session without calling the backend. Used when the
// backend has already rejected the session cookies.
func (s *Store) Clear() {
	s.set(nil)
}

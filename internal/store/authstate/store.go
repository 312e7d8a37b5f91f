// Package authstate holds the client-side authentication state: who is
// signed in, with which session, and whether a credential operation is
// running.
package authstate

import (
	"context"
	"errors"
	"sync"

	"click-collect/internal/apperr"
	"click-collect/internal/dto/request"
	"click-collect/internal/session"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

// ErrBusy is returned when a login, sign-up or logout is started while
// another one is still in flight.
var ErrBusy = errors.New("auth operation already in progress")

// Authenticator is the remote identity provider as seen from the client.
type Authenticator interface {
	SignIn(ctx context.Context, req *request.LoginRequest) (*session.Identity, *session.Session, error)
	SignUp(ctx context.Context, req *request.SignUpRequest) (*session.Identity, *session.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*session.Identity, *session.Session, error)
}

// State is a copy of the store's state. User and Session are both set or
// both nil.
type State struct {
	User    *session.Identity
	Session *session.Session
	Loading bool
	Error   string
}

func (s State) Authenticated() bool {
	return s.User != nil && s.Session != nil
}

type Store struct {
	api Authenticator
	log *zap.Logger

	mu    sync.Mutex
	state State
	busy  bool   // a credential operation is in flight
	gen   uint64 // bumped by every operation start and credential completion
	subs  map[int]func(State)
	subID int
}

func New(api Authenticator, log *zap.Logger) *Store {
	return &Store{
		api:  api,
		log:  log.With(zap.String("store", "auth")),
		subs: make(map[int]func(State)),
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with the new state after every
// change. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.subID
	s.subID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) Login(ctx context.Context, req *request.LoginRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}
	return s.credential(ctx, "login", func(ctx context.Context) (*session.Identity, *session.Session, error) {
		return s.api.SignIn(ctx, req)
	})
}

func (s *Store) SignUp(ctx context.Context, req *request.SignUpRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}
	return s.credential(ctx, "signup", func(ctx context.Context) (*session.Identity, *session.Session, error) {
		return s.api.SignUp(ctx, req)
	})
}

// credential runs a sign-in style call. On failure User and Session are
// restored to what they were when the call started.
func (s *Store) credential(ctx context.Context, op string, call func(context.Context) (*session.Identity, *session.Session, error)) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.gen++
	prevUser, prevSession := s.state.User, s.state.Session
	s.state.Loading = true
	s.state.Error = ""
	s.publishLocked()

	user, sess, err := call(ctx)

	s.mu.Lock()
	defer s.publishLocked()

	s.busy = false
	s.gen++
	s.state.Loading = false

	if err == nil && (user == nil || sess == nil) {
		err = apperr.ErrUnauthenticated
	}
	if err != nil {
		s.state.User, s.state.Session = prevUser, prevSession
		s.state.Error = err.Error()
		s.log.Warn("Credential operation failed", zap.String("op", op), zap.Error(err))
		return err
	}

	s.state.User, s.state.Session = user, sess
	s.log.Info("Signed in", zap.String("op", op), zap.String("user_id", user.ID))
	return nil
}

// Logout revokes the current session remotely, then clears it locally. A
// failed revoke keeps the session and records the error.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state.Session == nil {
		s.state.User = nil
		s.state.Error = ""
		s.publishLocked()
		return nil
	}
	s.busy = true
	s.gen++
	token := s.state.Session.AccessToken
	s.state.Loading = true
	s.state.Error = ""
	s.publishLocked()

	err := s.api.SignOut(ctx, token)

	s.mu.Lock()
	defer s.publishLocked()

	s.busy = false
	s.gen++
	s.state.Loading = false

	// an already revoked session is as good as a successful logout
	if err != nil && !errors.Is(err, apperr.ErrUnauthenticated) {
		s.state.Error = err.Error()
		s.log.Warn("Logout failed", zap.Error(err))
		return err
	}

	s.state.User, s.state.Session = nil, nil
	return nil
}

// Refresh re-validates the current session with the provider. A rejected or
// unreachable session leaves the store anonymous. The result is dropped when
// another operation started after this one.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state.Session == nil {
		s.mu.Unlock()
		return nil
	}
	return s.validateLocked(ctx, s.state.Session.AccessToken)
}

// Restore adopts a previously issued session. Nothing is published until the
// provider confirms the token, and the identity comes from that answer.
func (s *Store) Restore(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return apperr.Validation("no session to restore")
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	return s.validateLocked(ctx, sess.AccessToken)
}

// validateLocked must be called with s.mu held and releases it. It asks the
// provider who owns token and sets User and Session together from the
// answer, or clears both.
func (s *Store) validateLocked(ctx context.Context, token string) error {
	s.gen++
	gen := s.gen
	s.state.Loading = true
	s.publishLocked()

	user, sess, err := s.api.CurrentUser(ctx, token)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("Discarding stale session check")
		return nil
	}
	defer s.publishLocked()

	s.state.Loading = false
	if err == nil && (user == nil || sess == nil) {
		err = apperr.ErrUnauthenticated
	}
	if err != nil {
		s.state.User, s.state.Session = nil, nil
		if !errors.Is(err, apperr.ErrUnauthenticated) {
			s.state.Error = err.Error()
		}
		s.log.Info("Session no longer valid", zap.Error(err))
		return err
	}

	s.state.User, s.state.Session = user, sess
	return nil
}

func (s *Store) ClearError() {
	s.mu.Lock()
	if s.state.Error == "" {
		s.mu.Unlock()
		return
	}
	s.state.Error = ""
	s.publishLocked()
}

// publishLocked releases the lock and notifies subscribers with the state
// as of the release.
func (s *Store) publishLocked() {
	state := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Package session owns the staff authentication state of one client installation:
// login, logout, restoring a remembered login and role checks.
//
// Public operations never return errors. Every outcome is reported through the
// returned domain.AuthState so callers can render from state alone.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/domain"
)

// Phase is the coarse position of an AuthSession in its lifecycle.
type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseInitializing    Phase = "initializing"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseFailed          Phase = "failed"
)

// Dependencies are the collaborators an AuthSession is built from.
type Dependencies struct {
	Store     Store
	Directory CredentialDirectory
	Verifier  PasswordVerifier
	Tokens    TokenIssuer
	Logger    *zap.Logger
	Now       func() time.Time
}

// AuthSession is the single authority for one installation's authentication state.
// The mutex guards state only and is never held across store or directory calls,
// so overlapping operations resolve as last writer wins.
type AuthSession struct {
	store     Store
	directory CredentialDirectory
	verify    PasswordVerifier
	tokens    TokenIssuer
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   domain.AuthState
	phase   Phase
	lastErr error
}

// New constructs an unauthenticated AuthSession.
func New(deps Dependencies) *AuthSession {
	s := &AuthSession{
		store:     deps.Store,
		directory: deps.Directory,
		verify:    deps.Verifier,
		tokens:    deps.Tokens,
		logger:    deps.Logger,
		now:       deps.Now,
		phase:     PhaseUnauthenticated,
	}
	if s.verify == nil {
		s.verify = PlainEqual
	}
	if s.tokens == nil {
		s.tokens = LegacyTokenIssuer{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Init rebuilds state from the persisted record. A record that no longer resolves
// to an active member is cleared.
func (s *AuthSession) Init(ctx context.Context) domain.AuthState {
	s.begin(PhaseInitializing)

	user, err := s.restore(ctx)
	if err != nil {
		s.logger.Warn("session init failed", zap.Error(err))
		return s.finish(nil, PhaseUnauthenticated, infrastructureError(MsgInitFailed, err))
	}
	if user == nil {
		return s.finish(nil, PhaseUnauthenticated, nil)
	}
	return s.finish(user, PhaseAuthenticated, nil)
}

// Login authenticates credentials against the directory and remembers the login.
func (s *AuthSession) Login(ctx context.Context, creds domain.Credentials) domain.AuthState {
	s.begin("")

	user, err := s.authenticate(ctx, creds)
	if err != nil {
		return s.finish(nil, PhaseFailed, err)
	}
	s.logger.Info("staff logged in", zap.String("staff_id", user.ID), zap.String("role", string(user.Role)))
	return s.finish(user, PhaseAuthenticated, nil)
}

// Logout forgets the remembered login. Calling it while logged out is not an error.
func (s *AuthSession) Logout(ctx context.Context) domain.AuthState {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear session record", zap.Error(err))
	}
	return s.finish(nil, PhaseUnauthenticated, nil)
}

// CurrentUser returns the in-memory member, restoring from the store when none is set.
func (s *AuthSession) CurrentUser(ctx context.Context) *domain.StaffMember {
	s.mu.Lock()
	user := cloneMember(s.state.User)
	s.mu.Unlock()
	if user != nil {
		return user
	}

	restored, err := s.restore(ctx)
	if err != nil {
		s.logger.Warn("session restore failed", zap.Error(err))
		return nil
	}
	if restored == nil {
		return nil
	}
	s.finish(restored, PhaseAuthenticated, nil)
	return cloneMember(restored)
}

// HasRole reports whether the current member's role is at least minimum.
func (s *AuthSession) HasRole(minimum domain.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return false
	}
	return s.state.User.Role.Satisfies(minimum)
}

// IsStaff holds for every authenticated member with a known role.
func (s *AuthSession) IsStaff() bool { return s.HasRole(domain.RoleStaff) }

func (s *AuthSession) IsAdmin() bool { return s.HasRole(domain.RoleAdmin) }

func (s *AuthSession) IsDirector() bool { return s.HasRole(domain.RoleDirector) }

// State returns a snapshot of the current state.
func (s *AuthSession) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Phase returns the lifecycle phase.
func (s *AuthSession) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the classified cause of the last failed Init or Login, if any.
func (s *AuthSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *AuthSession) authenticate(ctx context.Context, creds domain.Credentials) (*domain.StaffMember, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, validationError(MsgLoginFailed)
	}

	user, err := s.directory.FindActiveByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, authenticationError(MsgAccountNotFound)
		}
		s.logger.Error("credential lookup failed", zap.Error(err))
		return nil, infrastructureError(MsgLoginFailed, err)
	}
	if user == nil || !user.IsActive {
		return nil, authenticationError(MsgAccountNotFound)
	}

	if !s.verify(user.PasswordHash, creds.Password) {
		return nil, authenticationError(MsgInvalidPassword)
	}

	now := s.now()
	if err := s.directory.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last login", zap.String("staff_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	token, err := s.tokens.Issue(user.Email, now)
	if err != nil {
		return nil, infrastructureError(MsgLoginFailed, err)
	}
	if err := s.store.Write(ctx, user.Email, token); err != nil {
		s.logger.Error("persist session record", zap.Error(err))
		return nil, infrastructureError(MsgLoginFailed, err)
	}
	return user, nil
}

// restore resolves the persisted record. It returns (nil, nil) when there is no
// usable login and clears any record that failed to resolve.
func (s *AuthSession) restore(ctx context.Context) (*domain.StaffMember, error) {
	rec, err := s.store.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrMalformedSession) {
			s.clearStale(ctx, "malformed")
			return nil, nil
		}
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	user, err := s.directory.FindActiveByEmail(ctx, rec.Email)
	if err != nil {
		s.clearStale(ctx, "lookup failed")
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user == nil || !user.IsActive {
		s.clearStale(ctx, "inactive")
		return nil, nil
	}
	return user, nil
}

func (s *AuthSession) clearStale(ctx context.Context, reason string) {
	s.logger.Debug("clearing session record", zap.String("reason", reason))
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear session record", zap.Error(err))
	}
}

func (s *AuthSession) begin(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
	if phase != "" {
		s.phase = phase
	}
}

func (s *AuthSession) finish(user *domain.StaffMember, phase Phase, err error) domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.AuthState{
		User:            cloneMember(user),
		IsAuthenticated: user != nil,
	}
	s.lastErr = err
	var sessErr *Error
	if errors.As(err, &sessErr) {
		s.state.Error = sessErr.Message
	}
	s.phase = phase
	return s.snapshot()
}

func (s *AuthSession) snapshot() domain.AuthState {
	out := s.state
	out.User = cloneMember(s.state.User)
	return out
}

func cloneMember(m *domain.StaffMember) *domain.StaffMember {
	if m == nil {
		return nil
	}
	c := *m
	if m.LastLogin != nil {
		t := *m.LastLogin
		c.LastLogin = &t
	}
	return &c
}

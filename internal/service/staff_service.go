package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/session"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// Postgres error codes treated as worth another signup attempt.
const (
	pgTooManyConnections  = "53300"
	pgSerializationFailed = "40001"
	pgCannotConnectNow    = "57P03"
	pgUniqueViolation     = "23505"
)

// StaffService manages staff members on behalf of admins and directors.
type StaffService struct {
	staff       repository.StaffRepository
	encoder     auth.PasswordEncoder
	verify      session.PasswordVerifier
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	minPassword int
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// StaffDependencies bundles collaborators for the staff service.
type StaffDependencies struct {
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// StaffCreateInput describes a new member.
type StaffCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// StaffUpdateInput carries optional changes; nil fields are left untouched.
type StaffUpdateInput struct {
	Name     *string
	Role     *domain.Role
	IsActive *bool
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		staff:       deps.StaffRepo,
		encoder:     auth.PasswordEncoder{Scheme: cfg.Auth.PasswordScheme, Cost: cfg.Auth.BcryptCost},
		verify:      auth.VerifierFor(cfg.Auth.PasswordScheme),
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		minPassword: cfg.Auth.MinPasswordLength,
		maxAttempts: cfg.Auth.SignupMaxAttempts,
		retryDelay:  cfg.Auth.SignupRetryDelay(),
		sleep:       sleepContext,
	}
}

// List returns members matching filter.
func (s *StaffService) List(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	list, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// Get fetches a member by id.
func (s *StaffService) Get(ctx context.Context, id string) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, staffLookupError(err, id)
	}
	return member, nil
}

// Create registers a member. Transient database failures are retried with a
// linear backoff of attempt * retryDelay.
func (s *StaffService) Create(ctx context.Context, actor *domain.StaffMember, input StaffCreateInput) (*domain.StaffMember, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	stored, err := s.encoder.Encode(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	member := &domain.StaffMember{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: stored,
		Role:         input.Role,
		IsActive:     true,
	}

	for attempt := 1; ; attempt++ {
		err = s.staff.Create(ctx, member)
		if err == nil {
			break
		}
		if pgCode(err) == pgUniqueViolation {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
		}
		if !isTransientPgError(err) {
			return nil, apperrors.MapError(err)
		}
		if attempt >= s.maxAttempts {
			return nil, apperrors.NewUnavailable("staff directory busy, try again later", err)
		}
		delay := time.Duration(attempt) * s.retryDelay
		s.logger.Warn("staff signup retry",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("pg_code", pgCode(err)))
		if err := s.sleep(ctx, delay); err != nil {
			return nil, apperrors.NewUnavailable("staff signup cancelled", err)
		}
	}

	s.logger.Info("staff member created",
		zap.String("staff_id", member.ID),
		zap.String("role", string(member.Role)),
		zap.String("created_by", actorID(actor)))
	publish(ctx, s.dispatcher, events.New(events.EventStaffMemberCreated, member.ID, actorRef(actor),
		events.StaffMemberCreatedPayload{Email: member.Email, Role: member.Role}))
	return member, nil
}

// Update applies changes to a member. A director cannot demote or deactivate
// themselves, which would leave the portal without anyone able to undo it.
func (s *StaffService) Update(ctx context.Context, actor *domain.StaffMember, id string, input StaffUpdateInput) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, staffLookupError(err, id)
	}

	self := actor != nil && actor.ID == member.ID
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		member.Name = name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		if self && *input.Role != member.Role {
			return nil, apperrors.NewForbidden("cannot change your own role")
		}
		member.Role = *input.Role
	}
	if input.IsActive != nil {
		if self && !*input.IsActive {
			return nil, apperrors.NewForbidden("cannot deactivate your own account")
		}
		member.IsActive = *input.IsActive
	}

	if err := s.staff.Update(ctx, member); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *StaffService) ChangePassword(ctx context.Context, actor *domain.StaffMember, current, next string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if len(next) < s.minPassword {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": s.minPassword})
	}
	member, err := s.staff.GetByID(ctx, actor.ID)
	if err != nil {
		return staffLookupError(err, actor.ID)
	}
	if !s.verify(member.PasswordHash, current) {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	stored, err := s.encoder.Encode(next)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return apperrors.MapError(s.staff.UpdatePassword(ctx, member.ID, stored))
}

func (s *StaffService) validateCreate(input StaffCreateInput) error {
	details := map[string]any{}
	if input.Name == "" {
		details["name"] = "required"
	}
	if !validEmail(input.Email) {
		details["email"] = "invalid email address"
	}
	if len(input.Password) < s.minPassword {
		details["password"] = "too short"
	}
	if !input.Role.Valid() {
		details["role"] = "must be staff, admin or director"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid staff member", details)
	}
	return nil
}

// validEmail accepts a bare address only, rejecting display-name forms.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func staffLookupError(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("staff member", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isTransientPgError(err error) bool {
	switch pgCode(err) {
	case pgTooManyConnections, pgSerializationFailed, pgCannotConnectNow:
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

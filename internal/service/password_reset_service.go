package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/session"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

const invalidResetToken = "reset token is invalid or expired"

// PasswordResetService issues and redeems password reset tokens.
type PasswordResetService struct {
	staff       repository.StaffRepository
	resets      repository.PasswordResetRepository
	encoder     auth.PasswordEncoder
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	ttl         time.Duration
	minPassword int
	now         func() time.Time
}

// PasswordResetDependencies bundles collaborators.
type PasswordResetDependencies struct {
	StaffRepo  repository.StaffRepository
	ResetRepo  repository.PasswordResetRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewPasswordResetService constructs the service.
func NewPasswordResetService(cfg config.Config, deps PasswordResetDependencies) *PasswordResetService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordResetService{
		staff:       deps.StaffRepo,
		resets:      deps.ResetRepo,
		encoder:     auth.PasswordEncoder{Scheme: cfg.Auth.PasswordScheme, Cost: cfg.Auth.BcryptCost},
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		ttl:         time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		minPassword: cfg.Auth.MinPasswordLength,
		now:         time.Now,
	}
}

// RequestReset starts a reset for email. Only a malformed request is reported
// to the caller; unknown addresses and storage failures are logged so the
// response never reveals whether an account exists.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	member, err := s.staff.FindActiveByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Error("password reset lookup failed", zap.Error(err))
		}
		return nil
	}

	token := &repository.PasswordResetToken{
		StaffID:   member.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		s.logger.Error("persist password reset token", zap.String("staff_id", member.ID), zap.Error(err))
		return nil
	}

	publish(ctx, s.dispatcher, events.New(events.EventPasswordResetRequested, member.ID, nil,
		events.PasswordResetRequestedPayload{
			Email:     member.Email,
			Name:      member.Name,
			Token:     token.Token,
			ExpiresAt: token.ExpiresAt,
		}))
	return nil
}

// ConfirmReset redeems token and stores newPassword. The token is claimed
// before the password changes so it can be used at most once.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, tokenStr, newPassword string) error {
	if _, err := uuid.Parse(tokenStr); err != nil {
		return apperrors.NewValidationError(invalidResetToken, nil)
	}
	if len(newPassword) < s.minPassword {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": s.minPassword})
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError(invalidResetToken, nil)
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || !s.now().Before(token.ExpiresAt) {
		return apperrors.NewValidationError(invalidResetToken, nil)
	}

	stored, err := s.encoder.Encode(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError(invalidResetToken, nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.staff.UpdatePassword(ctx, token.StaffID, stored); err != nil {
		return apperrors.MapError(err)
	}

	s.logger.Info("password reset completed", zap.String("staff_id", token.StaffID))
	publish(ctx, s.dispatcher, events.New(events.EventPasswordResetCompleted, token.StaffID, nil, nil))
	return nil
}

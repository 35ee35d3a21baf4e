package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/repository"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

const maxStackTraceBytes = 64 * 1024

var knownPlatforms = map[string]struct{}{
	"windows": {},
	"macos":   {},
	"linux":   {},
}

// CrashReportService ingests desktop-app crash reports and lets staff triage them.
type CrashReportService struct {
	reports    repository.CrashReportRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CrashReportInput is the payload posted by the desktop app.
type CrashReportInput struct {
	AppVersion   string
	Platform     string
	OSVersion    string
	ErrorMessage string
	StackTrace   string
	UserEmail    string
}

// NewCrashReportService constructs the service.
func NewCrashReportService(reports repository.CrashReportRepository, dispatcher events.Dispatcher, logger *zap.Logger) *CrashReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrashReportService{reports: reports, dispatcher: dispatcher, logger: logger}
}

// Submit validates and stores a report.
func (s *CrashReportService) Submit(ctx context.Context, input CrashReportInput) (*domain.CrashReport, error) {
	report := &domain.CrashReport{
		AppVersion:   strings.TrimSpace(input.AppVersion),
		Platform:     strings.ToLower(strings.TrimSpace(input.Platform)),
		OSVersion:    strings.TrimSpace(input.OSVersion),
		ErrorMessage: strings.TrimSpace(input.ErrorMessage),
		StackTrace:   input.StackTrace,
		UserEmail:    strings.TrimSpace(input.UserEmail),
	}

	details := map[string]any{}
	if report.AppVersion == "" {
		details["app_version"] = "required"
	}
	if _, ok := knownPlatforms[report.Platform]; !ok {
		details["platform"] = "must be windows, macos or linux"
	}
	if report.ErrorMessage == "" {
		details["error_message"] = "required"
	}
	if report.UserEmail != "" && !validEmail(report.UserEmail) {
		details["user_email"] = "invalid email address"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid crash report", details)
	}
	if len(report.StackTrace) > maxStackTraceBytes {
		report.StackTrace = report.StackTrace[:maxStackTraceBytes]
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("crash report received",
		zap.String("report_id", report.ID),
		zap.String("app_version", report.AppVersion),
		zap.String("platform", report.Platform))
	publish(ctx, s.dispatcher, events.New(events.EventCrashReportReceived, report.ID, nil,
		events.CrashReportReceivedPayload{
			AppVersion:   report.AppVersion,
			Platform:     report.Platform,
			ErrorMessage: report.ErrorMessage,
		}))
	return report, nil
}

// List returns reports matching filter.
func (s *CrashReportService) List(ctx context.Context, filter repository.CrashReportFilter) ([]domain.CrashReport, error) {
	list, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// Resolve marks a report handled by actor. Resolving twice keeps the first resolution.
func (s *CrashReportService) Resolve(ctx context.Context, actor *domain.StaffMember, id string) (*domain.CrashReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("crash report", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if report.Resolved {
		return report, nil
	}
	report.ResolvedBy = actorRef(actor)
	if err := s.reports.MarkResolved(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

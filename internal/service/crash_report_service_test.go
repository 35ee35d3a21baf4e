package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

func TestCrashReportSubmit(t *testing.T) {
	repo := newFakeCrashRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewCrashReportService(repo, dispatcher, nil)

	report, err := svc.Submit(context.Background(), CrashReportInput{
		AppVersion:   "2.4.1",
		Platform:     " MacOS ",
		ErrorMessage: "nil pointer",
		StackTrace:   strings.Repeat("x", maxStackTraceBytes+10),
	})
	require.NoError(t, err)
	assert.Equal(t, "c-new", report.ID)
	assert.Equal(t, "macos", report.Platform)
	assert.Len(t, report.StackTrace, maxStackTraceBytes)
	assert.Equal(t, []events.EventType{events.EventCrashReportReceived}, dispatcher.types())
}

func TestCrashReportSubmitValidation(t *testing.T) {
	svc := NewCrashReportService(newFakeCrashRepo(), nil, nil)

	_, err := svc.Submit(context.Background(), CrashReportInput{Platform: "beos", UserEmail: "nope"})
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "app_version")
	assert.Contains(t, details, "platform")
	assert.Contains(t, details, "error_message")
	assert.Contains(t, details, "user_email")
}

func TestCrashReportResolveIsIdempotent(t *testing.T) {
	repo := newFakeCrashRepo(domain.CrashReport{ID: "c1", Platform: "linux"})
	svc := NewCrashReportService(repo, nil, nil)
	actor := &domain.StaffMember{ID: "s1"}

	report, err := svc.Resolve(context.Background(), actor, "c1")
	require.NoError(t, err)
	assert.True(t, report.Resolved)
	require.NotNil(t, report.ResolvedBy)
	assert.Equal(t, "s1", *report.ResolvedBy)

	_, err = svc.Resolve(context.Background(), &domain.StaffMember{ID: "s2"}, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.resolved)

	_, err = svc.Resolve(context.Background(), actor, "missing")
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

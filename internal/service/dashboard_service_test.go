package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/repository"
)

func TestBuildDashboardStats(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	members := []domain.StaffMember{
		{Role: domain.RoleStaff, IsActive: true},
		{Role: domain.RoleStaff, IsActive: false},
		{Role: domain.RoleDirector, IsActive: true},
	}
	tickets := []domain.SupportTicket{
		{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityUrgent},
		{Status: domain.TicketStatusInProgress, Priority: domain.TicketPriorityUrgent},
		{Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityUrgent},
		{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow},
	}
	crashes := []domain.CrashReport{
		{Platform: "windows", CreatedAt: now.Add(-time.Hour)},
		{Platform: "windows", CreatedAt: now.Add(-48 * time.Hour), Resolved: true},
		{Platform: "macos", CreatedAt: now.Add(-23 * time.Hour)},
	}

	stats := BuildDashboardStats(members, tickets, crashes, now)

	assert.Equal(t, map[domain.Role]int{domain.RoleStaff: 2, domain.RoleDirector: 1}, stats.StaffByRole)
	assert.Equal(t, 2, stats.ActiveStaff)
	assert.Equal(t, 2, stats.TicketsByStatus[domain.TicketStatusOpen])
	assert.Equal(t, 3, stats.TicketsByPriority[domain.TicketPriorityUrgent])
	assert.Equal(t, 2, stats.OpenUrgentTickets)
	assert.Equal(t, map[string]int{"windows": 2, "macos": 1}, stats.CrashesByPlatform)
	assert.Equal(t, 2, stats.CrashesLast24Hours)
	assert.Equal(t, 2, stats.UnresolvedCrashes)
	assert.Equal(t, now, stats.GeneratedAt)
}

func TestBuildDashboardStatsEmpty(t *testing.T) {
	stats := BuildDashboardStats(nil, nil, nil, time.Now())
	assert.NotNil(t, stats.StaffByRole)
	assert.NotNil(t, stats.CrashesByPlatform)
	assert.Zero(t, stats.OpenUrgentTickets)
}

func TestDashboardStatsCountsEveryPage(t *testing.T) {
	members := make([]domain.StaffMember, 2*dashboardPageSize+3)
	for i := range members {
		members[i] = domain.StaffMember{ID: fmt.Sprintf("s%d", i), Role: domain.RoleStaff, IsActive: i%2 == 0}
	}
	var offsets []int
	staff := &fakeStaffRepo{ListFunc: func(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
		offsets = append(offsets, filter.Offset)
		if filter.Offset >= len(members) {
			return nil, nil
		}
		end := min(filter.Offset+filter.Limit, len(members))
		return members[filter.Offset:end], nil
	}}
	svc := NewDashboardService(staff, newFakeTicketRepo(), newFakeCrashRepo())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(members), stats.StaffByRole[domain.RoleStaff])
	assert.Equal(t, dashboardPageSize+2, stats.ActiveStaff)
	assert.Equal(t, []int{0, dashboardPageSize, 2 * dashboardPageSize}, offsets)
}

func TestDashboardStatsPropagatesListError(t *testing.T) {
	staff := &fakeStaffRepo{ListFunc: func(context.Context, repository.StaffFilter) ([]domain.StaffMember, error) {
		return nil, errors.New("connection reset")
	}}
	svc := NewDashboardService(staff, newFakeTicketRepo(), newFakeCrashRepo())

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}

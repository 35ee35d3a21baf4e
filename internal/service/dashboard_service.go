package service

import (
	"context"
	"time"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/repository"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// dashboardPageSize is the page size used while walking each table for the stats page.
const dashboardPageSize = 500

// DashboardStats summarises the portal's current workload.
type DashboardStats struct {
	StaffByRole        map[domain.Role]int
	ActiveStaff        int
	TicketsByStatus    map[domain.TicketStatus]int
	TicketsByPriority  map[domain.TicketPriority]int
	OpenUrgentTickets  int
	CrashesByPlatform  map[string]int
	CrashesLast24Hours int
	UnresolvedCrashes  int
	GeneratedAt        time.Time
}

// DashboardService aggregates lists already exposed by the other services.
type DashboardService struct {
	staff   repository.StaffRepository
	tickets repository.TicketRepository
	crashes repository.CrashReportRepository
	now     func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(staff repository.StaffRepository, tickets repository.TicketRepository, crashes repository.CrashReportRepository) *DashboardService {
	return &DashboardService{staff: staff, tickets: tickets, crashes: crashes, now: time.Now}
}

// Stats walks every page of each list and aggregates them in memory.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	members, err := collectPages(ctx, func(ctx context.Context, limit, offset int) ([]domain.StaffMember, error) {
		return s.staff.List(ctx, repository.StaffFilter{Limit: limit, Offset: offset})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := collectPages(ctx, func(ctx context.Context, limit, offset int) ([]domain.SupportTicket, error) {
		return s.tickets.ListWithFilter(ctx, repository.TicketFilter{Limit: limit, Offset: offset})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	crashes, err := collectPages(ctx, func(ctx context.Context, limit, offset int) ([]domain.CrashReport, error) {
		return s.crashes.List(ctx, repository.CrashReportFilter{Limit: limit, Offset: offset})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats := BuildDashboardStats(members, tickets, crashes, s.now())
	return &stats, nil
}

// collectPages fetches pages until one comes back short.
func collectPages[T any](ctx context.Context, fetch func(ctx context.Context, limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, dashboardPageSize, len(all))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < dashboardPageSize {
			return all, nil
		}
	}
}

// BuildDashboardStats is the pure aggregation behind Stats.
func BuildDashboardStats(members []domain.StaffMember, tickets []domain.SupportTicket, crashes []domain.CrashReport, now time.Time) DashboardStats {
	stats := DashboardStats{
		StaffByRole:       map[domain.Role]int{},
		TicketsByStatus:   map[domain.TicketStatus]int{},
		TicketsByPriority: map[domain.TicketPriority]int{},
		CrashesByPlatform: map[string]int{},
		GeneratedAt:       now,
	}

	for _, m := range members {
		stats.StaffByRole[m.Role]++
		if m.IsActive {
			stats.ActiveStaff++
		}
	}

	for _, t := range tickets {
		stats.TicketsByStatus[t.Status]++
		stats.TicketsByPriority[t.Priority]++
		if t.Priority == domain.TicketPriorityUrgent &&
			(t.Status == domain.TicketStatusOpen || t.Status == domain.TicketStatusInProgress) {
			stats.OpenUrgentTickets++
		}
	}

	since := now.Add(-24 * time.Hour)
	for _, c := range crashes {
		stats.CrashesByPlatform[c.Platform]++
		if c.CreatedAt.After(since) {
			stats.CrashesLast24Hours++
		}
		if !c.Resolved {
			stats.UnresolvedCrashes++
		}
	}
	return stats
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/repository"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// TicketService coordinates support ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	staff      repository.StaffRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes a ticket logged by staff on a customer's behalf.
type TicketCreateInput struct {
	CompanyName    string
	SubmitterEmail string
	Subject        string
	Description    string
	Priority       domain.TicketPriority
}

// TicketUpdateInput carries optional changes. UnassignAssignee clears the
// assignee and takes precedence over AssigneeID.
type TicketUpdateInput struct {
	Status           *domain.TicketStatus
	Priority         *domain.TicketPriority
	AssigneeID       *string
	UnassignAssignee bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		staff:      deps.StaffRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Create records a new open ticket.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.SupportTicket, error) {
	ticket := &domain.SupportTicket{
		CompanyName:    strings.TrimSpace(input.CompanyName),
		SubmitterEmail: strings.TrimSpace(input.SubmitterEmail),
		Subject:        strings.TrimSpace(input.Subject),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	details := map[string]any{}
	if ticket.CompanyName == "" {
		details["company_name"] = "required"
	}
	if !validEmail(ticket.SubmitterEmail) {
		details["submitter_email"] = "invalid email address"
	}
	if ticket.Subject == "" {
		details["subject"] = "required"
	}
	if !ticket.Priority.Valid() {
		details["priority"] = "invalid"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", details)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// List returns tickets matching filter.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.SupportTicket, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": status})
		}
	}
	for _, priority := range filter.Priorities {
		if !priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": priority})
		}
	}
	list, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// Get fetches a ticket by id.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Update applies status, priority and assignee changes made by actor.
func (s *TicketService) Update(ctx context.Context, actor *domain.StaffMember, id string, input TicketUpdateInput) (*domain.SupportTicket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssigneeID

	if input.Status != nil && *input.Status != ticket.Status {
		if err := checkTransition(actor, ticket.Status, *input.Status); err != nil {
			return nil, err
		}
		ticket.Status = *input.Status
		if ticket.Status == domain.TicketStatusClosed {
			now := s.now()
			ticket.ClosedAt = &now
		} else {
			ticket.ClosedAt = nil
		}
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	switch {
	case input.UnassignAssignee:
		ticket.AssigneeID = nil
	case input.AssigneeID != nil:
		assignee, err := s.staff.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			return nil, staffLookupError(err, *input.AssigneeID)
		}
		if !assignee.IsActive {
			return nil, apperrors.NewConflict("assignee is inactive", map[string]any{"assignee_id": assignee.ID})
		}
		ticket.AssigneeID = &assignee.ID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		publish(ctx, s.dispatcher, events.New(events.EventTicketStatusChanged, ticket.ID, actorRef(actor),
			events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status}))
	}
	if !sameAssignee(oldAssignee, ticket.AssigneeID) {
		publish(ctx, s.dispatcher, events.New(events.EventTicketAssigned, ticket.ID, actorRef(actor),
			events.TicketAssignedPayload{AssigneeStaffID: ticket.AssigneeID}))
	}
	return ticket, nil
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusOpen, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {domain.TicketStatusOpen, domain.TicketStatusInProgress},
}

// checkTransition enforces the status graph. Leaving closed requires admin.
func checkTransition(actor *domain.StaffMember, current, next domain.TicketStatus) error {
	if !next.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": next})
	}
	if !isValidTransition(current, next) {
		return apperrors.NewConflict("invalid status transition", map[string]any{"from": current, "to": next})
	}
	if current == domain.TicketStatusClosed && (actor == nil || !actor.Role.Satisfies(domain.RoleAdmin)) {
		return apperrors.NewForbidden("only admins can reopen closed tickets")
	}
	return nil
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

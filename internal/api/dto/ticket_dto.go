package dto

import (
	"time"

	"github.com/ontimely/admin-portal/internal/domain"
)

// TicketCreateRequest payload.
type TicketCreateRequest struct {
	CompanyName    string                `json:"company_name"`
	SubmitterEmail string                `json:"submitter_email"`
	Subject        string                `json:"subject"`
	Description    string                `json:"description"`
	Priority       domain.TicketPriority `json:"priority"`
}

// TicketUpdateRequest payload. An empty assignee_id unassigns the ticket.
type TicketUpdateRequest struct {
	Status     *domain.TicketStatus   `json:"status"`
	Priority   *domain.TicketPriority `json:"priority"`
	AssigneeID *string                `json:"assignee_id"`
}

// TicketResponse payload.
type TicketResponse struct {
	ID             string                `json:"id"`
	CompanyName    string                `json:"company_name"`
	SubmitterEmail string                `json:"submitter_email"`
	Subject        string                `json:"subject"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	AssigneeID     *string               `json:"assignee_id"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	ClosedAt       *time.Time            `json:"closed_at"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.SupportTicket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		CompanyName:    t.CompanyName,
		SubmitterEmail: t.SubmitterEmail,
		Subject:        t.Subject,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		AssigneeID:     t.AssigneeID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ClosedAt:       t.ClosedAt,
	}
}

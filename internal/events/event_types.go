package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ontimely/admin-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventStaffMemberCreated     EventType = "staff_member_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventCrashReportReceived    EventType = "crash_report_received"
	EventPaymentReceived        EventType = "payment_received"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID string, actorID *string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// PasswordResetRequestedPayload carries what the mailer needs to send the link.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StaffMemberCreatedPayload payload.
type StaffMemberCreatedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeStaffID *string `json:"assignee_staff_id,omitempty"`
}

// CrashReportReceivedPayload payload.
type CrashReportReceivedPayload struct {
	AppVersion   string `json:"app_version"`
	Platform     string `json:"platform"`
	ErrorMessage string `json:"error_message"`
}

// PaymentReceivedPayload payload.
type PaymentReceivedPayload struct {
	ProviderEventID string `json:"provider_event_id"`
	EventType       string `json:"event_type"`
	CustomerEmail   string `json:"customer_email"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
}

package dto

import (
	"time"

	"github.com/ontimely/admin-portal/internal/domain"
)

// CrashReportRequest is posted by the desktop app.
type CrashReportRequest struct {
	AppVersion   string `json:"app_version"`
	Platform     string `json:"platform"`
	OSVersion    string `json:"os_version"`
	ErrorMessage string `json:"error_message"`
	StackTrace   string `json:"stack_trace"`
	UserEmail    string `json:"user_email"`
}

// CrashReportResponse payload.
type CrashReportResponse struct {
	ID           string     `json:"id"`
	AppVersion   string     `json:"app_version"`
	Platform     string     `json:"platform"`
	OSVersion    string     `json:"os_version"`
	ErrorMessage string     `json:"error_message"`
	StackTrace   string     `json:"stack_trace,omitempty"`
	UserEmail    string     `json:"user_email,omitempty"`
	Resolved     bool       `json:"resolved"`
	ResolvedBy   *string    `json:"resolved_by"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at"`
}

// NewCrashReportResponse maps a report.
func NewCrashReportResponse(r *domain.CrashReport) CrashReportResponse {
	return CrashReportResponse{
		ID:           r.ID,
		AppVersion:   r.AppVersion,
		Platform:     r.Platform,
		OSVersion:    r.OSVersion,
		ErrorMessage: r.ErrorMessage,
		StackTrace:   r.StackTrace,
		UserEmail:    r.UserEmail,
		Resolved:     r.Resolved,
		ResolvedBy:   r.ResolvedBy,
		CreatedAt:    r.CreatedAt,
		ResolvedAt:   r.ResolvedAt,
	}
}

// DocumentEmailRequest payload.
type DocumentEmailRequest struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	DocumentType string `json:"document_type"`
	DocumentURL  string `json:"document_url"`
	Message      string `json:"message"`
}

// UploadResponse payload.
type UploadResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardStatsResponse payload.
type DashboardStatsResponse struct {
	Staff struct {
		ByRole map[domain.Role]int `json:"by_role"`
		Active int                 `json:"active"`
	} `json:"staff"`
	Tickets struct {
		ByStatus   map[domain.TicketStatus]int   `json:"by_status"`
		ByPriority map[domain.TicketPriority]int `json:"by_priority"`
		OpenUrgent int                           `json:"open_urgent"`
	} `json:"tickets"`
	Crashes struct {
		ByPlatform map[string]int `json:"by_platform"`
		Last24h    int            `json:"last_24h"`
		Unresolved int            `json:"unresolved"`
	} `json:"crashes"`
	GeneratedAt time.Time `json:"generated_at"`
}

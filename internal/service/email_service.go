package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

const emailProviderTimeout = 10 * time.Second

// EmailMessage is one outbound email.
type EmailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// EmailSender delivers messages through a provider.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NewEmailSender returns the HTTP provider client, or a sender that only logs
// when no provider URL is configured.
func NewEmailSender(cfg config.NotificationConfig, logger *zap.Logger) EmailSender {
	if strings.TrimSpace(cfg.EmailAPIURL) == "" {
		return logEmailSender{logger: logger}
	}
	return NewHTTPEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey, emailProviderTimeout)
}

// HTTPEmailSender posts messages as JSON to the provider's send endpoint.
type HTTPEmailSender struct {
	url     string
	apiKey  string
	timeout time.Duration
}

// NewHTTPEmailSender builds a sender for the given endpoint.
func NewHTTPEmailSender(endpoint, apiKey string, timeout time.Duration) *HTTPEmailSender {
	return &HTTPEmailSender{url: endpoint, apiKey: apiKey, timeout: timeout}
}

// Send posts msg. Any non-2xx answer is an error.
func (h *HTTPEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	timeout := h.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	agent := fiber.Post(h.url)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+h.apiKey)
	agent.JSON(msg)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("email provider request: %w", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("email provider: %w", errs[0])
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("email provider returned %d: %s", status, truncate(string(body), 200))
	}
	return nil
}

type logEmailSender struct {
	logger *zap.Logger
}

func (l logEmailSender) Send(_ context.Context, msg EmailMessage) error {
	l.logger.Info("email provider not configured; message logged only",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// DocumentEmailInput describes a document shared with a customer.
type DocumentEmailInput struct {
	To           string
	Subject      string
	DocumentType string
	DocumentURL  string
	Message      string
}

// EmailService sends staff-initiated document emails.
type EmailService struct {
	sender EmailSender
	from   string
	logger *zap.Logger
}

// NewEmailService constructs the service.
func NewEmailService(sender EmailSender, from string, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{sender: sender, from: from, logger: logger}
}

// SendDocument validates input and forwards it to the provider. The sending
// member becomes the reply-to address.
func (s *EmailService) SendDocument(ctx context.Context, actor *domain.StaffMember, input DocumentEmailInput) error {
	details := map[string]any{}
	if !validEmail(strings.TrimSpace(input.To)) {
		details["to"] = "invalid email address"
	}
	if strings.TrimSpace(input.Subject) == "" {
		details["subject"] = "required"
	}
	if strings.TrimSpace(input.DocumentType) == "" {
		details["document_type"] = "required"
	}
	if u, err := url.Parse(input.DocumentURL); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		details["document_url"] = "must be an absolute http(s) URL"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid document email", details)
	}

	msg := EmailMessage{
		From:    s.from,
		To:      strings.TrimSpace(input.To),
		Subject: strings.TrimSpace(input.Subject),
		Text:    documentEmailBody(input),
	}
	if actor != nil {
		msg.ReplyTo = actor.Email
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("document email failed", zap.String("to", msg.To), zap.Error(err))
		return apperrors.NewUnavailable("email provider unavailable", err)
	}
	s.logger.Info("document email sent",
		zap.String("to", msg.To),
		zap.String("document_type", input.DocumentType),
		zap.String("sent_by", actorID(actor)))
	return nil
}

func documentEmailBody(input DocumentEmailInput) string {
	var b strings.Builder
	if msg := strings.TrimSpace(input.Message); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Your %s is available here:\n%s\n", input.DocumentType, input.DocumentURL)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

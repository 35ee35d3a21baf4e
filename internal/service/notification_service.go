package service

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/events"
)

// NotificationService turns domain events into emails and log entries.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     EmailSender
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender EmailSender, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventStaffMemberCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.logEvent)
	n.dispatcher.Subscribe(events.EventCrashReportReceived, n.logEvent)
	n.dispatcher.Subscribe(events.EventPaymentReceived, n.logEvent)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if n.sender == nil {
		return nil
	}

	link, err := ResetLink(n.cfg.ResetLinkBase, payload.Token)
	if err != nil {
		return err
	}
	greeting := "Hello"
	if payload.Name != "" {
		greeting = "Hello " + payload.Name
	}
	return n.sender.Send(ctx, EmailMessage{
		From:    n.cfg.EmailFrom,
		To:      payload.Email,
		Subject: "Reset your OnTimely admin password",
		Text: fmt.Sprintf("%s,\n\nUse the link below to choose a new password. It expires at %s.\n\n%s\n\n"+
			"If you did not ask for this, you can ignore this email.\n",
			greeting, payload.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"), link),
	})
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	return nil
}

// ResetLink appends token as the "token" query parameter of base.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset link base: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

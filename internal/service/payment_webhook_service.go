package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
	"github.com/ontimely/admin-portal/internal/repository"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

const signaturePrefix = "sha256="

// PaymentWebhookService verifies and records payment provider deliveries.
type PaymentWebhookService struct {
	events     repository.PaymentEventRepository
	dispatcher events.Dispatcher
	secret     []byte
	logger     *zap.Logger
}

// PaymentWebhookResult reports what happened to a delivery.
type PaymentWebhookResult struct {
	EventID   string
	Duplicate bool
}

type paymentNotification struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		CustomerEmail string `json:"customer_email"`
		AmountCents   int64  `json:"amount_cents"`
		Currency      string `json:"currency"`
	} `json:"data"`
}

// NewPaymentWebhookService constructs the service.
func NewPaymentWebhookService(repo repository.PaymentEventRepository, dispatcher events.Dispatcher, secret string, logger *zap.Logger) *PaymentWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWebhookService{events: repo, dispatcher: dispatcher, secret: []byte(secret), logger: logger}
}

// Sign returns the signature header value for body.
func (s *PaymentWebhookService) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks an HMAC-SHA256 hex signature, with or without the
// "sha256=" prefix. Without a configured secret nothing verifies.
func (s *PaymentWebhookService) VerifySignature(body []byte, signature string) bool {
	if len(s.secret) == 0 || signature == "" {
		return false
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		signature = signaturePrefix + signature
	}
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(s.Sign(body)))
}

// Handle verifies body and records it once per provider event id.
func (s *PaymentWebhookService) Handle(ctx context.Context, body []byte, signature string) (*PaymentWebhookResult, error) {
	if !s.VerifySignature(body, signature) {
		s.logger.Warn("payment webhook signature mismatch")
		return nil, apperrors.NewUnauthorized("invalid signature")
	}

	var note paymentNotification
	if err := json.Unmarshal(body, &note); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if note.ID == "" || note.Type == "" {
		return nil, apperrors.NewValidationError("id and type required", nil)
	}

	event := &domain.PaymentEvent{
		ProviderEventID: note.ID,
		EventType:       note.Type,
		CustomerEmail:   note.Data.CustomerEmail,
		AmountCents:     note.Data.AmountCents,
		Currency:        strings.ToUpper(note.Data.Currency),
		Payload:         body,
	}
	inserted, err := s.events.Insert(ctx, event)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !inserted {
		s.logger.Info("duplicate payment webhook", zap.String("provider_event_id", note.ID))
		return &PaymentWebhookResult{Duplicate: true}, nil
	}

	publish(ctx, s.dispatcher, events.New(events.EventPaymentReceived, event.ID, nil,
		events.PaymentReceivedPayload{
			ProviderEventID: event.ProviderEventID,
			EventType:       event.EventType,
			CustomerEmail:   event.CustomerEmail,
			AmountCents:     event.AmountCents,
			Currency:        event.Currency,
		}))
	return &PaymentWebhookResult{EventID: event.ID}, nil
}

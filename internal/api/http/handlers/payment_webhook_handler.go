package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/service"
)

// SignatureHeader carries the HMAC of the raw webhook body.
const SignatureHeader = "X-Signature"

// PaymentWebhookHandler receives payment provider notifications.
type PaymentWebhookHandler struct {
	payments *service.PaymentWebhookService
}

// NewPaymentWebhookHandler constructs handler.
func NewPaymentWebhookHandler(payments *service.PaymentWebhookService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{payments: payments}
}

// Receive handles POST /webhooks/payments.
func (h *PaymentWebhookHandler) Receive(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	result, err := h.payments.Handle(c.UserContext(), body, c.Get(SignatureHeader))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"received":  true,
		"duplicate": result.Duplicate,
		"event_id":  result.EventID,
	}})
}

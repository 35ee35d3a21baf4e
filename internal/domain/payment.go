package domain

import "time"

// PaymentEvent is a webhook notification received from the payment provider.
type PaymentEvent struct {
	ID              string
	ProviderEventID string
	EventType       string
	CustomerEmail   string
	AmountCents     int64
	Currency        string
	Payload         []byte
	ReceivedAt      time.Time
}

package models

import "encoding/json"

const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// DeliveryLog records one delivery attempt for one outbound task. The raw
// payload is not stored here; only its digest, to bound storage.
type DeliveryLog struct {
	ID            string `json:"id"`
	WebhookID     string `json:"webhook_id"`
	DeliveryID    string `json:"delivery_id"`
	AttemptNumber int    `json:"attempt_number"`
	Status        string `json:"status"`
	HTTPStatus    int    `json:"http_status,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	PayloadDigest string `json:"payload_digest"`
	CreatedAt     int64  `json:"created_at"`
}

// DeadLetter is a delivery that exhausted its retry budget. The original
// payload is retained verbatim so the delivery can be retried manually.
type DeadLetter struct {
	ID           string          `json:"id"`
	WebhookID    string          `json:"webhook_id"`
	WalkerName   string          `json:"walker_name"`
	Payload      json.RawMessage `json:"payload"`
	AttemptsMade int             `json:"attempts_made"`
	LastError    string          `json:"last_error,omitempty"`
	CreatedAt    int64           `json:"created_at"`
}

// WebhookStats aggregates delivery outcomes for one subscription.
type WebhookStats struct {
	WebhookID string `json:"webhook_id"`
	Success   int    `json:"success"`
	Failed    int    `json:"failed"`
	Pending   int    `json:"pending"`
}

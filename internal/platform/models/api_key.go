package models

type APIKey struct {
	ID        string `json:"id"`
	WebhookID string `json:"webhook_id"`
	Name      string `json:"name"`
	KeyHash   string `json:"-"`
	KeyPrefix string `json:"key_prefix"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
	RevokedAt *int64 `json:"revoked_at,omitempty"`
}

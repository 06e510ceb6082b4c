package webhooks

import "hookd/internal/platform/models"

// The stores below are the persistence seams of the webhook subsystem. The
// sql repositories in internal/platform/repositories satisfy them; the
// storage layer owns record-level atomicity and is the single source of
// truth for subscription state.

type SubscriptionStore interface {
	Create(webhook *models.Webhook) error
	GetByID(id string) (*models.Webhook, error)
	List(walkerName string) ([]*models.Webhook, error)
	ListEnabled(walkerName, direction string) ([]*models.Webhook, error)
	Update(webhook *models.Webhook) error
	Delete(id string) error
}

type KeyStore interface {
	Create(key *models.APIKey) error
	GetByID(id string) (*models.APIKey, error)
	ListByWebhook(webhookID string) ([]*models.APIKey, error)
	Revoke(id string) error
}

type DeliveryLogStore interface {
	Insert(entry *models.DeliveryLog) error
	ListByWebhook(webhookID string) ([]*models.DeliveryLog, error)
	CountByStatus(webhookID string) (success, failed int, err error)
}

type DeadLetterStore interface {
	Insert(entry *models.DeadLetter) error
	GetByID(id string) (*models.DeadLetter, error)
	List() ([]*models.DeadLetter, error)
	Delete(id string) error
}

package repositories

import (
	"testing"
	"time"

	"hookd/internal/platform/models"
)

func TestAPIKeyRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	webhookRepo := NewWebhookRepository(db)
	repo := NewAPIKeyRepository(db)

	webhook := &models.Webhook{WalkerName: "PaymentReceived", Direction: models.DirectionInbound, Enabled: true}
	webhookRepo.Create(webhook)

	exp := time.Now().Add(time.Hour).Unix()
	key := &models.APIKey{
		WebhookID: webhook.ID,
		Name:      "ci",
		KeyHash:   "deadbeef",
		KeyPrefix: "whk_live_dea...",
		ExpiresAt: &exp,
	}
	if err := repo.Create(key); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(key.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "ci" || got.KeyHash != "deadbeef" || got.ExpiresAt == nil || *got.ExpiresAt != exp {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.RevokedAt != nil {
		t.Error("fresh key should not be revoked")
	}

	missing, err := repo.GetByID("key_missing")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func TestAPIKeyRepositoryListByWebhook(t *testing.T) {
	db := setupTestDB(t)
	webhookRepo := NewWebhookRepository(db)
	repo := NewAPIKeyRepository(db)

	webhook := &models.Webhook{WalkerName: "PaymentReceived", Direction: models.DirectionInbound, Enabled: true}
	webhookRepo.Create(webhook)
	other := &models.Webhook{WalkerName: "Other", Direction: models.DirectionInbound, Enabled: true}
	webhookRepo.Create(other)

	repo.Create(&models.APIKey{WebhookID: webhook.ID, Name: "a", KeyHash: "h1", KeyPrefix: "p1"})
	repo.Create(&models.APIKey{WebhookID: webhook.ID, Name: "b", KeyHash: "h2", KeyPrefix: "p2"})
	repo.Create(&models.APIKey{WebhookID: other.ID, Name: "c", KeyHash: "h3", KeyPrefix: "p3"})

	keys, err := repo.ListByWebhook(webhook.ID)
	if err != nil {
		t.Fatalf("ListByWebhook() error = %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("ListByWebhook() = %d keys, want 2", len(keys))
	}
}

func TestAPIKeyRepositoryRevokeIdempotent(t *testing.T) {
	db := setupTestDB(t)
	webhookRepo := NewWebhookRepository(db)
	repo := NewAPIKeyRepository(db)

	webhook := &models.Webhook{WalkerName: "PaymentReceived", Direction: models.DirectionInbound, Enabled: true}
	webhookRepo.Create(webhook)

	key := &models.APIKey{WebhookID: webhook.ID, Name: "ci", KeyHash: "h", KeyPrefix: "p"}
	repo.Create(key)

	if err := repo.Revoke(key.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	first, _ := repo.GetByID(key.ID)
	if first.RevokedAt == nil {
		t.Fatal("key should be revoked")
	}

	// Second revocation succeeds and keeps the original timestamp.
	time.Sleep(1100 * time.Millisecond)
	if err := repo.Revoke(key.ID); err != nil {
		t.Fatalf("Revoke() second call error = %v", err)
	}
	second, _ := repo.GetByID(key.ID)
	if *second.RevokedAt != *first.RevokedAt {
		t.Errorf("revocation timestamp changed: %d -> %d", *first.RevokedAt, *second.RevokedAt)
	}
}

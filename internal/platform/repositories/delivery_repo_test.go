package repositories

import (
	"encoding/json"
	"fmt"
	"testing"

	"hookd/internal/platform/models"
)

func TestDeliveryLogRepository(t *testing.T) {
	db := setupTestDB(t)
	webhookRepo := NewWebhookRepository(db)
	repo := NewDeliveryLogRepository(db)

	webhook := &models.Webhook{WalkerName: "CreateOrder", Direction: models.DirectionOutbound, URL: "https://example.com/hook", Enabled: true}
	webhookRepo.Create(webhook)

	for i := 1; i <= 3; i++ {
		status := models.DeliveryStatusFailed
		httpStatus := 500
		errMsg := "HTTP 500"
		if i == 3 {
			status = models.DeliveryStatusSuccess
			httpStatus = 200
			errMsg = ""
		}
		err := repo.Insert(&models.DeliveryLog{
			ID:            fmt.Sprintf("log_%d", i),
			WebhookID:     webhook.ID,
			DeliveryID:    "dlv_1",
			AttemptNumber: i,
			Status:        status,
			HTTPStatus:    httpStatus,
			ErrorMessage:  errMsg,
			PayloadDigest: "digest",
		})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	logs, err := repo.ListByWebhook(webhook.ID)
	if err != nil {
		t.Fatalf("ListByWebhook() error = %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("ListByWebhook() = %d entries, want 3", len(logs))
	}
	if logs[0].AttemptNumber != 1 || logs[0].Status != models.DeliveryStatusFailed || logs[0].ErrorMessage != "HTTP 500" {
		t.Errorf("unexpected first entry: %+v", logs[0])
	}
	if logs[2].Status != models.DeliveryStatusSuccess || logs[2].HTTPStatus != 200 {
		t.Errorf("unexpected last entry: %+v", logs[2])
	}

	success, failed, err := repo.CountByStatus(webhook.ID)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if success != 1 || failed != 2 {
		t.Errorf("CountByStatus() = %d success, %d failed, want 1, 2", success, failed)
	}

	success, failed, err = repo.CountByStatus("wh_missing")
	if err != nil || success != 0 || failed != 0 {
		t.Errorf("CountByStatus(missing) = %d, %d, %v, want zeros", success, failed, err)
	}
}

func TestDeadLetterRepository(t *testing.T) {
	db := setupTestDB(t)
	webhookRepo := NewWebhookRepository(db)
	repo := NewDeadLetterRepository(db)

	webhook := &models.Webhook{WalkerName: "CreateOrder", Direction: models.DirectionOutbound, URL: "https://example.com/hook", Enabled: true}
	webhookRepo.Create(webhook)

	payload := json.RawMessage(`{"order_id":"ORD-1"}`)
	entry := &models.DeadLetter{
		WebhookID:    webhook.ID,
		WalkerName:   "CreateOrder",
		Payload:      payload,
		AttemptsMade: 3,
		LastError:    "HTTP 503",
	}
	if err := repo.Insert(entry); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if string(got.Payload) != string(payload) {
		t.Errorf("payload = %s, want verbatim original", got.Payload)
	}
	if got.AttemptsMade != 3 || got.LastError != "HTTP 503" {
		t.Errorf("GetByID() = %+v", got)
	}

	entries, err := repo.List()
	if err != nil || len(entries) != 1 {
		t.Fatalf("List() = %d entries, %v, want 1", len(entries), err)
	}

	if err := repo.Delete(entry.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := repo.GetByID(entry.ID); got != nil {
		t.Error("entry should be gone after delete")
	}
}

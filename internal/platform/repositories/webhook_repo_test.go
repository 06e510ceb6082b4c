package repositories

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"

	"hookd/internal/platform/database"
	"hookd/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestWebhookRepositoryCreateAndGet(t *testing.T) {
	repo := NewWebhookRepository(setupTestDB(t))

	webhook := &models.Webhook{
		WalkerName: "CreateOrder",
		Direction:  models.DirectionOutbound,
		URL:        "https://example.com/hook",
		Secret:     "s3cr3t",
		Enabled:    true,
		Metadata:   map[string]interface{}{"env": "prod"},
	}
	if err := repo.Create(webhook); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if webhook.ID == "" || webhook.CreatedAt == 0 || webhook.UpdatedAt == 0 {
		t.Error("Create() should assign id and timestamps")
	}

	got, err := repo.GetByID(webhook.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.WalkerName != "CreateOrder" || got.URL != "https://example.com/hook" || !got.Enabled {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.Metadata["env"] != "prod" {
		t.Errorf("metadata not round-tripped: %+v", got.Metadata)
	}

	missing, err := repo.GetByID("wh_missing")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func TestWebhookRepositoryList(t *testing.T) {
	repo := NewWebhookRepository(setupTestDB(t))

	for i := 0; i < 3; i++ {
		walker := "CreateOrder"
		if i == 2 {
			walker = "PaymentReceived"
		}
		if err := repo.Create(&models.Webhook{
			ID:         fmt.Sprintf("wh_%d", i),
			WalkerName: walker,
			Direction:  models.DirectionOutbound,
			URL:        "https://example.com/hook",
			Enabled:    i != 1,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List("")
	if err != nil || len(all) != 3 {
		t.Fatalf("List(\"\") = %d entries, %v, want 3", len(all), err)
	}
	// Insertion order is creation order.
	if all[0].ID != "wh_0" || all[2].ID != "wh_2" {
		t.Errorf("unexpected ordering: %v, %v", all[0].ID, all[2].ID)
	}

	filtered, err := repo.List("CreateOrder")
	if err != nil || len(filtered) != 2 {
		t.Fatalf("List(CreateOrder) = %d entries, %v, want 2", len(filtered), err)
	}

	enabled, err := repo.ListEnabled("CreateOrder", models.DirectionOutbound)
	if err != nil || len(enabled) != 1 || enabled[0].ID != "wh_0" {
		t.Fatalf("ListEnabled() = %+v, %v, want only wh_0", enabled, err)
	}
}

func TestWebhookRepositoryUpdateDelete(t *testing.T) {
	repo := NewWebhookRepository(setupTestDB(t))

	webhook := &models.Webhook{WalkerName: "CreateOrder", Direction: models.DirectionOutbound, URL: "https://example.com/hook", Enabled: true}
	repo.Create(webhook)

	webhook.URL = "https://example.org/hook2"
	webhook.Enabled = false
	if err := repo.Update(webhook); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := repo.GetByID(webhook.ID)
	if got.URL != "https://example.org/hook2" || got.Enabled {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.Delete(webhook.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := repo.GetByID(webhook.ID); got != nil {
		t.Error("webhook should be gone after delete")
	}
}

func TestWebhookRepositoryStorageFault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM webhooks WHERE id").
		WillReturnError(fmt.Errorf("disk I/O error"))

	repo := NewWebhookRepository(db)
	if _, err := repo.GetByID("wh_x"); err == nil {
		t.Error("storage fault should propagate as an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

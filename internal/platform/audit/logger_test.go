package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apiContext "hookd/internal/api/context"
	"hookd/internal/platform/auth"
	"hookd/internal/platform/database"
)

func TestRecord(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	logger := NewLogger(db)
	ctx := context.WithValue(context.Background(), apiContext.Claims, &auth.Claims{Subject: "ops"})
	logger.Record(ctx, "webhook.create", "webhook", "wh_1", map[string]interface{}{"walker": "CreateOrder"})

	// The write is asynchronous.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var actor, action, resourceID string
		err := db.QueryRow(`SELECT actor, action, resource_id FROM audit_logs LIMIT 1`).Scan(&actor, &action, &resourceID)
		if err == nil {
			if actor != "ops" || action != "webhook.create" || resourceID != "wh_1" {
				t.Errorf("audit row = %q, %q, %q", actor, action, resourceID)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit row never appeared: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

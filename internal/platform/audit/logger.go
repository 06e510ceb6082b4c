package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	apiContext "hookd/internal/api/context"
	"hookd/internal/platform/auth"
)

type Entry struct {
	ID           string                 `json:"id"`
	Actor        string                 `json:"actor"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    int64                  `json:"created_at"`
}

// Logger records management-API mutations (subscription edits, key
// issuance and revocation, dead-letter retries) for audit. Writes are
// fire-and-forget so a slow audit insert never delays the response.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Record(ctx context.Context, action, resourceType, resourceID string, metadata map[string]interface{}) {
	var actor string
	if claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims); ok {
		actor = claims.Subject
	}

	metaJSON, _ := json.Marshal(metadata)
	entry := &Entry{
		ID:           "audit_" + uuid.New().String(),
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    time.Now().Unix(),
	}

	go func() {
		query := `
			INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := l.db.Exec(query, entry.ID, entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.CreatedAt); err != nil {
			zlog.Error().Err(err).Str("action", action).Msg("audit write failed")
		}
	}()
}

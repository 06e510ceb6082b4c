package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"hookd/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(webhook *models.Webhook) error {
	if webhook.ID == "" {
		webhook.ID = "wh_" + uuid.New().String()
	}
	now := time.Now().Unix()
	webhook.CreatedAt = now
	webhook.UpdatedAt = now

	metadataJSON, err := json.Marshal(webhook.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhooks (id, walker_name, direction, url, secret, enabled, static, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, webhook.ID, webhook.WalkerName, webhook.Direction, webhook.URL, webhook.Secret,
		webhook.Enabled, webhook.Static, string(metadataJSON), webhook.CreatedAt, webhook.UpdatedAt)
	return err
}

const webhookColumns = `id, walker_name, direction, url, secret, enabled, static, metadata, created_at, updated_at`

func scanWebhook(row interface{ Scan(...interface{}) error }) (*models.Webhook, error) {
	var w models.Webhook
	var url, secret, metadataStr sql.NullString

	err := row.Scan(&w.ID, &w.WalkerName, &w.Direction, &url, &secret, &w.Enabled, &w.Static, &metadataStr, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	w.URL = url.String
	w.Secret = secret.String
	if metadataStr.Valid && metadataStr.String != "" && metadataStr.String != "null" {
		json.Unmarshal([]byte(metadataStr.String), &w.Metadata)
	}
	return &w, nil
}

// GetByID returns (nil, nil) when no subscription exists with the id.
func (r *WebhookRepository) GetByID(id string) (*models.Webhook, error) {
	row := r.db.QueryRow(`SELECT `+webhookColumns+` FROM webhooks WHERE id = ?`, id)
	w, err := scanWebhook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

// List returns subscriptions ordered by creation time, optionally filtered
// by walker name.
func (r *WebhookRepository) List(walkerName string) ([]*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks ORDER BY created_at ASC, id ASC`
	args := []interface{}{}
	if walkerName != "" {
		query = `SELECT ` + webhookColumns + ` FROM webhooks WHERE walker_name = ? ORDER BY created_at ASC, id ASC`
		args = append(args, walkerName)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// ListEnabled returns enabled subscriptions for a walker in one direction.
func (r *WebhookRepository) ListEnabled(walkerName, direction string) ([]*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE walker_name = ? AND direction = ? AND enabled = 1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(query, walkerName, direction)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

func (r *WebhookRepository) Update(webhook *models.Webhook) error {
	webhook.UpdatedAt = time.Now().Unix()

	metadataJSON, err := json.Marshal(webhook.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE webhooks
		SET url = ?, secret = ?, enabled = ?, metadata = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query, webhook.URL, webhook.Secret, webhook.Enabled, string(metadataJSON), webhook.UpdatedAt, webhook.ID)
	return err
}

func (r *WebhookRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM webhooks WHERE id = ?`, id)
	return err
}

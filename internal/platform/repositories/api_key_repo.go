package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookd/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
	}
	key.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO api_keys (id, webhook_id, name, key_hash, key_prefix, created_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, key.ID, key.WebhookID, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt, key.ExpiresAt, key.RevokedAt)
	return err
}

func scanAPIKey(row interface{ Scan(...interface{}) error }) (*models.APIKey, error) {
	var k models.APIKey
	var expiresAt, revokedAt sql.NullInt64

	err := row.Scan(&k.ID, &k.WebhookID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.CreatedAt, &expiresAt, &revokedAt)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Int64
	}
	if revokedAt.Valid {
		k.RevokedAt = &revokedAt.Int64
	}
	return &k, nil
}

const apiKeyColumns = `id, webhook_id, name, key_hash, key_prefix, created_at, expires_at, revoked_at`

// GetByID returns (nil, nil) when no key exists with the id.
func (r *APIKeyRepository) GetByID(id string) (*models.APIKey, error) {
	row := r.db.QueryRow(`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id)
	k, err := scanAPIKey(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return k, err
}

func (r *APIKeyRepository) ListByWebhook(webhookID string) ([]*models.APIKey, error) {
	rows, err := r.db.Query(`SELECT `+apiKeyColumns+` FROM api_keys WHERE webhook_id = ? ORDER BY created_at ASC, id ASC`, webhookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke marks a key revoked. Revoking an already-revoked key keeps the
// original revocation timestamp.
func (r *APIKeyRepository) Revoke(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, time.Now().Unix(), id)
	return err
}

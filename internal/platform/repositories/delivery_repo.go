package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookd/internal/platform/models"
)

type DeliveryLogRepository struct {
	db *sql.DB
}

func NewDeliveryLogRepository(db *sql.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

func (r *DeliveryLogRepository) Insert(entry *models.DeliveryLog) error {
	if entry.ID == "" {
		entry.ID = "log_" + uuid.New().String()
	}
	entry.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO delivery_logs (id, webhook_id, delivery_id, attempt_number, status, http_status, error_message, payload_digest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, entry.ID, entry.WebhookID, entry.DeliveryID, entry.AttemptNumber, entry.Status,
		entry.HTTPStatus, entry.ErrorMessage, entry.PayloadDigest, entry.CreatedAt)
	return err
}

func (r *DeliveryLogRepository) ListByWebhook(webhookID string) ([]*models.DeliveryLog, error) {
	query := `
		SELECT id, webhook_id, delivery_id, attempt_number, status, http_status, error_message, payload_digest, created_at
		FROM delivery_logs WHERE webhook_id = ? ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(query, webhookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.DeliveryLog
	for rows.Next() {
		var e models.DeliveryLog
		var httpStatus sql.NullInt64
		var errorMessage sql.NullString

		if err := rows.Scan(&e.ID, &e.WebhookID, &e.DeliveryID, &e.AttemptNumber, &e.Status, &httpStatus, &errorMessage, &e.PayloadDigest, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.HTTPStatus = int(httpStatus.Int64)
		e.ErrorMessage = errorMessage.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountByStatus returns success and failure attempt counts for a webhook.
func (r *DeliveryLogRepository) CountByStatus(webhookID string) (success, failed int, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM delivery_logs WHERE webhook_id = ?
	`
	err = r.db.QueryRow(query, models.DeliveryStatusSuccess, models.DeliveryStatusFailed, webhookID).Scan(&success, &failed)
	return success, failed, err
}

type DeadLetterRepository struct {
	db *sql.DB
}

func NewDeadLetterRepository(db *sql.DB) *DeadLetterRepository {
	return &DeadLetterRepository{db: db}
}

func (r *DeadLetterRepository) Insert(entry *models.DeadLetter) error {
	if entry.ID == "" {
		entry.ID = "dl_" + uuid.New().String()
	}
	entry.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO dead_letters (id, webhook_id, walker_name, payload, attempts_made, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, entry.ID, entry.WebhookID, entry.WalkerName, []byte(entry.Payload), entry.AttemptsMade, entry.LastError, entry.CreatedAt)
	return err
}

// GetByID returns (nil, nil) when no entry exists with the id.
func (r *DeadLetterRepository) GetByID(id string) (*models.DeadLetter, error) {
	row := r.db.QueryRow(`SELECT id, webhook_id, walker_name, payload, attempts_made, last_error, created_at FROM dead_letters WHERE id = ?`, id)
	entry, err := scanDeadLetter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return entry, err
}

func (r *DeadLetterRepository) List() ([]*models.DeadLetter, error) {
	rows, err := r.db.Query(`SELECT id, webhook_id, walker_name, payload, attempts_made, last_error, created_at FROM dead_letters ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.DeadLetter
	for rows.Next() {
		entry, err := scanDeadLetter(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *DeadLetterRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM dead_letters WHERE id = ?`, id)
	return err
}

func scanDeadLetter(row interface{ Scan(...interface{}) error }) (*models.DeadLetter, error) {
	var entry models.DeadLetter
	var payload []byte
	var lastError sql.NullString

	err := row.Scan(&entry.ID, &entry.WebhookID, &entry.WalkerName, &payload, &entry.AttemptsMade, &lastError, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	entry.Payload = payload
	entry.LastError = lastError.String
	return &entry, nil
}

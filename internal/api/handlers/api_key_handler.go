package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"hookd/internal/engine/webhooks"
	"hookd/internal/pkg/errors"
	"hookd/internal/platform/audit"
	"hookd/internal/platform/models"
)

type APIKeyHandler struct {
	manager *webhooks.Manager
	audit   *audit.Logger
}

func NewAPIKeyHandler(manager *webhooks.Manager, auditLog *audit.Logger) *APIKeyHandler {
	return &APIKeyHandler{manager: manager, audit: auditLog}
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	webhookID := params(r).ByName("webhook_id")

	var req struct {
		Name          string `json:"name"`
		ExpiresInDays int    `json:"expires_in_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	var expiresIn time.Duration
	if req.ExpiresInDays > 0 {
		expiresIn = time.Duration(req.ExpiresInDays) * 24 * time.Hour
	}

	key, rawKey, err := h.manager.IssueKey(webhookID, req.Name, expiresIn)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("webhook_id", webhookID).Msg("api key issue failed")
		}
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "api_key.issue", "api_key", key.ID, map[string]interface{}{"webhook_id": webhookID})

	// The raw key is shown exactly once.
	response := struct {
		*models.APIKey
		Key string `json:"key"`
	}{APIKey: key, Key: rawKey}
	writeJSON(w, http.StatusCreated, response)
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	webhookID := params(r).ByName("webhook_id")

	keys, err := h.manager.ListKeys(webhookID)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("webhook_id", webhookID).Msg("api key list failed")
		}
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	webhookID := params(r).ByName("webhook_id")
	keyID := params(r).ByName("key_id")

	if err := h.manager.RevokeKey(webhookID, keyID); err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("key_id", keyID).Msg("api key revoke failed")
		}
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "api_key.revoke", "api_key", keyID, map[string]interface{}{"webhook_id": webhookID})
	w.WriteHeader(http.StatusNoContent)
}

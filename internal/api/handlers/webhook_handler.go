package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "hookd/internal/api/context"
	"hookd/internal/engine/webhooks"
	"hookd/internal/pkg/errors"
	"hookd/internal/platform/audit"
)

type WebhookHandler struct {
	manager    *webhooks.Manager
	dispatcher *webhooks.Dispatcher
	logs       webhooks.DeliveryLogStore
	audit      *audit.Logger
}

func NewWebhookHandler(manager *webhooks.Manager, dispatcher *webhooks.Dispatcher, logs webhooks.DeliveryLogStore, auditLog *audit.Logger) *WebhookHandler {
	return &WebhookHandler{manager: manager, dispatcher: dispatcher, logs: logs, audit: auditLog}
}

func params(r *http.Request) httprouter.Params {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req webhooks.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	webhook, err := h.manager.Create(req)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Msg("webhook create failed")
		}
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "webhook.create", "webhook", webhook.ID, map[string]interface{}{"walker": webhook.WalkerName, "direction": webhook.Direction})
	writeJSON(w, http.StatusCreated, webhook)
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.manager.List(r.URL.Query().Get("walker_name"))
	if err != nil {
		log.Error().Err(err).Msg("webhook list failed")
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := params(r).ByName("webhook_id")

	webhook, err := h.manager.Get(id)
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := params(r).ByName("webhook_id")

	var req webhooks.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	webhook, err := h.manager.Update(id, req)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("webhook_id", id).Msg("webhook update failed")
		}
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "webhook.update", "webhook", id, nil)
	writeJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := params(r).ByName("webhook_id")

	if err := h.manager.Delete(id); err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("webhook_id", id).Msg("webhook delete failed")
		}
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "webhook.delete", "webhook", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id := params(r).ByName("webhook_id")

	if _, err := h.manager.Get(id); err != nil {
		errors.Write(w, err)
		return
	}

	entries, err := h.logs.ListByWebhook(id)
	if err != nil {
		log.Error().Err(err).Str("webhook_id", id).Msg("delivery log list failed")
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *WebhookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := params(r).ByName("webhook_id")

	if _, err := h.manager.Get(id); err != nil {
		errors.Write(w, err)
		return
	}

	stats, err := h.dispatcher.Stats(id)
	if err != nil {
		log.Error().Err(err).Str("webhook_id", id).Msg("webhook stats failed")
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

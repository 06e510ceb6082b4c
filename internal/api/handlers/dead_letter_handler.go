package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"hookd/internal/engine/webhooks"
	"hookd/internal/pkg/errors"
	"hookd/internal/platform/audit"
)

type DeadLetterHandler struct {
	dispatcher *webhooks.Dispatcher
	dead       webhooks.DeadLetterStore
	audit      *audit.Logger
}

func NewDeadLetterHandler(dispatcher *webhooks.Dispatcher, dead webhooks.DeadLetterStore, auditLog *audit.Logger) *DeadLetterHandler {
	return &DeadLetterHandler{dispatcher: dispatcher, dead: dead, audit: auditLog}
}

func (h *DeadLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dead.List()
	if err != nil {
		log.Error().Err(err).Msg("dead letter list failed")
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Retry consumes the entry and re-submits its payload as a fresh delivery
// task; the retried delivery then follows the normal retry cycle.
func (h *DeadLetterHandler) Retry(w http.ResponseWriter, r *http.Request) {
	entryID := params(r).ByName("entry_id")

	if err := h.dispatcher.RetryDeadLetter(entryID); err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("entry_id", entryID).Msg("dead letter retry failed")
		}
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "dead_letter.retry", "dead_letter", entryID, nil)
	w.WriteHeader(http.StatusAccepted)
}

func (h *DeadLetterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entryID := params(r).ByName("entry_id")

	entry, err := h.dead.GetByID(entryID)
	if err != nil {
		log.Error().Err(err).Str("entry_id", entryID).Msg("dead letter lookup failed")
		errors.Write(w, err)
		return
	}
	if entry == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "dead letter entry not found", nil)
		return
	}

	if err := h.dead.Delete(entryID); err != nil {
		log.Error().Err(err).Str("entry_id", entryID).Msg("dead letter delete failed")
		errors.Write(w, err)
		return
	}

	h.audit.Record(r.Context(), "dead_letter.delete", "dead_letter", entryID, nil)
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"hookd/internal/engine/walkers"
	"hookd/internal/engine/webhooks"
	"hookd/internal/pkg/errors"
	"hookd/internal/platform/metrics"
)

const maxInboundBody = 1 << 20 // 1 MiB

// InboundHandler serves POST /webhook/{walker}: authenticates the supplied
// API key against the walker's inbound subscription and, only on success,
// invokes the walker with the request body.
type InboundHandler struct {
	manager *webhooks.Manager
	runner  *walkers.Runner
}

func NewInboundHandler(manager *webhooks.Manager, runner *walkers.Runner) *InboundHandler {
	return &InboundHandler{manager: manager, runner: runner}
}

func (h *InboundHandler) Handle(w http.ResponseWriter, r *http.Request) {
	walkerName := params(r).ByName("walker_name")

	_, err := h.manager.AuthenticateInbound(walkerName, r.Header.Get("X-Api-Key"))
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("walker", walkerName).Msg("inbound authentication failed")
		}
		metrics.InboundRequests.WithLabelValues(walkerName, "rejected").Inc()
		errors.Write(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBody))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read request body", nil)
		return
	}

	result, err := h.runner.Invoke(r.Context(), walkerName, body)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			log.Error().Err(err).Str("walker", walkerName).Msg("walker invocation failed")
		}
		metrics.InboundRequests.WithLabelValues(walkerName, "error").Inc()
		errors.Write(w, err)
		return
	}

	metrics.InboundRequests.WithLabelValues(walkerName, "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

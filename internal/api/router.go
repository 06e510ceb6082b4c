package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "hookd/internal/api/context"
	"hookd/internal/api/handlers"
	"hookd/internal/api/middleware"
	"hookd/internal/pkg/errors"
)

type Dependencies struct {
	WebhookHandler    *handlers.WebhookHandler
	APIKeyHandler     *handlers.APIKeyHandler
	DeadLetterHandler *handlers.DeadLetterHandler
	InboundHandler    *handlers.InboundHandler
	HealthHandler     *handlers.HealthHandler
	MetricsHandler    *handlers.MetricsHandler
	AuthMiddleware    *middleware.AuthMiddleware
	RateLimiter       *middleware.RateLimiter
}

// NewRouter wires the management API and the inbound delivery endpoint.
//
// httprouter cannot mix static and wildcard segments at the same position,
// and the dead-letter collection lives under the same /webhooks prefix as
// subscription ids. Routes below therefore register the wildcard shape and
// dispatch on the segment value.
func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware

	// Inbound delivery: API-key authenticated, never bearer-token.
	router.POST("/webhook/:walker_name",
		chain(deps.InboundHandler.Handle, deps.RateLimiter.Handle))

	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle))

	router.GET("/api/v1/webhooks/:webhook_id",
		chain(dispatchID(deps, deps.WebhookHandler.Get), authMid.Handle))
	router.PUT("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Update, authMid.Handle))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle))

	router.GET("/api/v1/webhooks/:webhook_id/:resource",
		chain(dispatchSubGet(deps), authMid.Handle))
	router.POST("/api/v1/webhooks/:webhook_id/:resource",
		chain(dispatchSubPost(deps), authMid.Handle))
	router.DELETE("/api/v1/webhooks/:webhook_id/:resource",
		chain(dispatchSubDelete(deps), authMid.Handle))
	router.POST("/api/v1/webhooks/:webhook_id/:resource/:action",
		chain(dispatchActionPost(deps), authMid.Handle))
	router.DELETE("/api/v1/webhooks/:webhook_id/:resource/:key_id",
		chain(dispatchKeyDelete(deps), authMid.Handle))

	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	return router
}

const deadLetterSegment = "dead-letters"

// GET /webhooks/dead-letters | GET /webhooks/{id}
func dispatchID(deps *Dependencies, get http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if routeParams(r).ByName("webhook_id") == deadLetterSegment {
			deps.DeadLetterHandler.List(w, r)
			return
		}
		get(w, r)
	}
}

// GET /webhooks/{id}/api-keys | /webhooks/{id}/logs | /webhooks/{id}/stats
func dispatchSubGet(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch routeParams(r).ByName("resource") {
		case "api-keys":
			deps.APIKeyHandler.List(w, r)
		case "logs":
			deps.WebhookHandler.Logs(w, r)
		case "stats":
			deps.WebhookHandler.Stats(w, r)
		default:
			notFound(w)
		}
	}
}

// POST /webhooks/{id}/api-keys
func dispatchSubPost(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if routeParams(r).ByName("resource") == "api-keys" {
			deps.APIKeyHandler.Create(w, r)
			return
		}
		notFound(w)
	}
}

// DELETE /webhooks/dead-letters/{entry_id}
func dispatchSubDelete(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := routeParams(r)
		if ps.ByName("webhook_id") == deadLetterSegment {
			deps.DeadLetterHandler.Delete(w, renameParam(r, "resource", "entry_id"))
			return
		}
		notFound(w)
	}
}

// POST /webhooks/dead-letters/{entry_id}/retry
func dispatchActionPost(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := routeParams(r)
		if ps.ByName("webhook_id") == deadLetterSegment && ps.ByName("action") == "retry" {
			deps.DeadLetterHandler.Retry(w, renameParam(r, "resource", "entry_id"))
			return
		}
		notFound(w)
	}
}

// DELETE /webhooks/{id}/api-keys/{key_id}
func dispatchKeyDelete(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if routeParams(r).ByName("resource") == "api-keys" {
			deps.APIKeyHandler.Revoke(w, r)
			return
		}
		notFound(w)
	}
}

func notFound(w http.ResponseWriter) {
	errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Resource not found", nil)
}

func routeParams(r *http.Request) httprouter.Params {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps
}

// renameParam exposes a route parameter under the name the target handler
// reads, leaving the original params intact.
func renameParam(r *http.Request, from, to string) *http.Request {
	ps := routeParams(r)
	renamed := append(httprouter.Params{}, ps...)
	renamed = append(renamed, httprouter.Param{Key: to, Value: ps.ByName(from)})
	ctx := context.WithValue(r.Context(), apiContext.Params, renamed)
	return r.WithContext(ctx)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

package walkers

import (
	"context"
	"encoding/json"
	"testing"

	"hookd/internal/platform/models"
)

func noopHandler(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return nil, nil
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Registration{Name: "CreateOrder", Handler: noopHandler}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(Registration{Name: "CreateOrder", Handler: noopHandler}); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := r.Register(Registration{Handler: noopHandler}); err == nil {
		t.Error("registration without a name should fail")
	}
	if err := r.Register(Registration{Name: "NoHandler"}); err == nil {
		t.Error("registration without a handler should fail")
	}

	if _, ok := r.Get("CreateOrder"); !ok {
		t.Error("Get() should find registered walker")
	}
	if _, ok := r.Get("Missing"); ok {
		t.Error("Get() should miss unregistered walker")
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register(Registration{Name: "Zeta", Handler: noopHandler})
	r.Register(Registration{Name: "Alpha", Handler: noopHandler})

	names := r.Names()
	if len(names) != 2 || names[0] != "Alpha" || names[1] != "Zeta" {
		t.Errorf("Names() = %v, want sorted [Alpha Zeta]", names)
	}
}

func TestRegistryStaticWebhooks(t *testing.T) {
	r := NewRegistry()
	r.Register(Registration{Name: "Plain", Handler: noopHandler})
	r.Register(Registration{
		Name:    "CreateOrder",
		Handler: noopHandler,
		Webhook: &WebhookSpec{Direction: models.DirectionOutbound, URL: "https://example.com/hook", Secret: "s3cr3t"},
	})

	seeds := r.StaticWebhooks()
	if len(seeds) != 1 {
		t.Fatalf("StaticWebhooks() returned %d seeds, want 1", len(seeds))
	}
	if seeds[0].Walker != "CreateOrder" || seeds[0].URL != "https://example.com/hook" {
		t.Errorf("unexpected seed: %+v", seeds[0])
	}
}

package walkers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"hookd/internal/platform/config"
)

// Func is the unit of work a webhook triggers or notifies about. The
// payload is the raw JSON request body; the returned value is JSON-encoded
// as the walker's result.
type Func func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// WebhookSpec is declarative webhook configuration attached to a walker at
// registration time, seeded into the manager as a static subscription.
type WebhookSpec struct {
	Direction string
	URL       string
	Secret    string
}

type Registration struct {
	Name    string
	Handler Func
	Webhook *WebhookSpec
}

// Registry maps walker names to their registered implementations. It is
// populated once during startup and read-only afterwards, but guarded
// anyway since tests register concurrently with runs.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("walker name is required")
	}
	if reg.Handler == nil {
		return fmt.Errorf("walker %q has no handler", reg.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[reg.Name]; exists {
		return fmt.Errorf("walker %q already registered", reg.Name)
	}
	r.entries[reg.Name] = reg
	return nil
}

func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StaticWebhooks collects the declarative webhook specs of all registered
// walkers, in the shape the manager seeds from.
func (r *Registry) StaticWebhooks() []config.StaticWebhook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var seeds []config.StaticWebhook
	for name, reg := range r.entries {
		if reg.Webhook == nil {
			continue
		}
		seeds = append(seeds, config.StaticWebhook{
			Walker:    name,
			Direction: reg.Webhook.Direction,
			URL:       reg.Webhook.URL,
			Secret:    reg.Webhook.Secret,
		})
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Walker < seeds[j].Walker })
	return seeds
}

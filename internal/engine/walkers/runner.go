package walkers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"hookd/internal/pkg/errors"
)

// Completion is published after a walker run finishes successfully. The
// payload is the JSON-encoded result and becomes the body of outbound
// webhook deliveries.
type Completion struct {
	Walker  string
	Payload []byte
}

// CompletionFunc consumes completion events; the dispatcher's Enqueue is
// wired here at startup.
type CompletionFunc func(Completion)

// Runner executes walkers with bounded concurrency and decouples outbound
// notification from walker latency: completions are published after the
// result is returned to the caller.
type Runner struct {
	registry   *Registry
	sem        chan struct{}
	onComplete CompletionFunc
}

func NewRunner(registry *Registry, maxConcurrent int, onComplete CompletionFunc) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	return &Runner{
		registry:   registry,
		sem:        make(chan struct{}, maxConcurrent),
		onComplete: onComplete,
	}
}

// Invoke runs a walker synchronously and returns its result. The completion
// event is published asynchronously so a slow dispatcher cannot delay the
// caller's response.
func (r *Runner) Invoke(ctx context.Context, name string, payload json.RawMessage) (interface{}, error) {
	reg, ok := r.registry.Get(name)
	if !ok {
		return nil, errors.NotFound("unknown walker")
	}

	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-r.sem }()

	result, err := reg.Handler(ctx, payload)
	if err != nil {
		return nil, err
	}

	r.publish(name, result)
	return result, nil
}

// Submit runs a walker fire-and-forget.
func (r *Runner) Submit(name string, payload json.RawMessage) error {
	if _, ok := r.registry.Get(name); !ok {
		return errors.NotFound("unknown walker")
	}

	go func() {
		if _, err := r.Invoke(context.Background(), name, payload); err != nil {
			log.Error().Err(err).Str("walker", name).Msg("walker run failed")
		}
	}()
	return nil
}

func (r *Runner) publish(name string, result interface{}) {
	if r.onComplete == nil {
		return
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("walker", name).Msg("failed to encode walker result")
		return
	}
	go r.onComplete(Completion{Walker: name, Payload: encoded})
}

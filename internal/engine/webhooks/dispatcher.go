package webhooks

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hookd/internal/pkg/errors"
	"hookd/internal/platform/config"
	"hookd/internal/platform/metrics"
	"hookd/internal/platform/models"
)

// deliveryTask is one attempted notification of one outbound subscription
// for one completion event. Attempts for a task are strictly sequential;
// tasks run concurrently with no cross-task ordering.
type deliveryTask struct {
	deliveryID string
	webhookID  string
	walker     string
	payload    []byte
	attempt    int // 1-based number of the attempt about to run
}

// Dispatcher performs asynchronous outbound delivery with bounded retry.
// Failed attempts are re-enqueued by per-task timers; exhausted tasks are
// written to the dead-letter store.
type Dispatcher struct {
	subs   SubscriptionStore
	logs   DeliveryLogStore
	dead   DeadLetterStore
	client *http.Client
	cfg    config.WebhooksConfig

	tasks chan *deliveryTask
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	pending map[string]int         // webhook id -> tasks not yet terminal
	timers  map[string]*time.Timer // delivery id -> scheduled retry
	stopped bool
}

func NewDispatcher(subs SubscriptionStore, logs DeliveryLogStore, dead DeadLetterStore, cfg config.WebhooksConfig) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 60 * time.Second
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = 2
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = time.Hour
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return &Dispatcher{
		subs:    subs,
		logs:    logs,
		dead:    dead,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		cfg:     cfg,
		tasks:   make(chan *deliveryTask, 256),
		quit:    make(chan struct{}),
		pending: make(map[string]int),
		timers:  make(map[string]*time.Timer),
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop cancels scheduled retries and waits for in-flight attempts to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
	d.mu.Unlock()

	close(d.quit)
	d.wg.Wait()
}

// Enqueue creates one independent delivery task for every enabled outbound
// subscription bound to the walker. It returns the number of tasks created.
func (d *Dispatcher) Enqueue(walkerName string, payload []byte) (int, error) {
	if !d.cfg.Enabled {
		return 0, errors.Disabled("webhook dispatch is disabled")
	}

	subs, err := d.subs.ListEnabled(walkerName, models.DirectionOutbound)
	if err != nil {
		return 0, err
	}

	for _, sub := range subs {
		d.submit(&deliveryTask{
			deliveryID: "dlv_" + uuid.New().String(),
			webhookID:  sub.ID,
			walker:     walkerName,
			payload:    payload,
			attempt:    1,
		})
	}
	return len(subs), nil
}

// RetryDeadLetter re-enters a dead letter into the dispatch pipeline as a
// fresh task. The entry is consumed at submission time, not on eventual
// delivery outcome.
func (d *Dispatcher) RetryDeadLetter(entryID string) error {
	if !d.cfg.Enabled {
		return errors.Disabled("webhook dispatch is disabled")
	}

	entry, err := d.dead.GetByID(entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return errors.NotFound("dead letter entry not found")
	}

	if err := d.dead.Delete(entryID); err != nil {
		return err
	}

	d.submit(&deliveryTask{
		deliveryID: "dlv_" + uuid.New().String(),
		webhookID:  entry.WebhookID,
		walker:     entry.WalkerName,
		payload:    []byte(entry.Payload),
		attempt:    1,
	})
	return nil
}

// Stats combines persisted attempt counts with the in-memory count of tasks
// that have not reached a terminal state yet.
func (d *Dispatcher) Stats(webhookID string) (*models.WebhookStats, error) {
	success, failed, err := d.logs.CountByStatus(webhookID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	pending := d.pending[webhookID]
	d.mu.Unlock()

	return &models.WebhookStats{
		WebhookID: webhookID,
		Success:   success,
		Failed:    failed,
		Pending:   pending,
	}, nil
}

func (d *Dispatcher) submit(t *deliveryTask) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if t.attempt == 1 {
		d.pending[t.webhookID]++
	}
	d.mu.Unlock()

	select {
	case d.tasks <- t:
	case <-d.quit:
		d.release(t.webhookID)
	}
}

func (d *Dispatcher) release(webhookID string) {
	d.mu.Lock()
	if d.pending[webhookID] > 1 {
		d.pending[webhookID]--
	} else {
		delete(d.pending, webhookID)
	}
	d.mu.Unlock()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		case t := <-d.tasks:
			d.attempt(t)
		}
	}
}

func (d *Dispatcher) attempt(t *deliveryTask) {
	// The store is the source of truth for enabled state; re-check before
	// every attempt so a disable or delete stops pending retries.
	sub, err := d.subs.GetByID(t.webhookID)
	if err != nil {
		log.Error().Err(err).Str("webhook_id", t.webhookID).Msg("webhook lookup failed, dropping delivery task")
		d.release(t.webhookID)
		return
	}
	if sub == nil || !sub.Enabled || sub.Direction != models.DirectionOutbound {
		log.Debug().Str("webhook_id", t.webhookID).Str("delivery_id", t.deliveryID).Msg("subscription gone or disabled, dropping delivery task")
		d.release(t.webhookID)
		return
	}

	start := time.Now()
	status, deliveryErr := d.send(sub, t)
	latency := time.Since(start)

	entry := &models.DeliveryLog{
		WebhookID:     t.webhookID,
		DeliveryID:    t.deliveryID,
		AttemptNumber: t.attempt,
		Status:        models.DeliveryStatusSuccess,
		HTTPStatus:    status,
		PayloadDigest: PayloadDigest(t.payload),
	}

	if deliveryErr == nil {
		if err := d.logs.Insert(entry); err != nil {
			log.Error().Err(err).Str("delivery_id", t.deliveryID).Msg("failed to record delivery log")
		}
		metrics.Deliveries.WithLabelValues(t.walker, "delivered").Inc()
		metrics.DeliveryLatency.WithLabelValues(t.walker, "delivered").Observe(float64(latency.Milliseconds()))
		d.release(t.webhookID)
		return
	}

	entry.Status = models.DeliveryStatusFailed
	entry.ErrorMessage = deliveryErr.Error()
	if err := d.logs.Insert(entry); err != nil {
		log.Error().Err(err).Str("delivery_id", t.deliveryID).Msg("failed to record delivery log")
	}
	metrics.Deliveries.WithLabelValues(t.walker, "failed").Inc()
	metrics.DeliveryLatency.WithLabelValues(t.walker, "failed").Observe(float64(latency.Milliseconds()))

	if t.attempt >= d.cfg.MaxAttempts {
		d.deadLetter(t, deliveryErr)
		return
	}

	delay := d.backoffDelay(t.attempt)
	t.attempt++
	log.Warn().Str("delivery_id", t.deliveryID).Str("webhook_id", t.webhookID).
		Int("next_attempt", t.attempt).Dur("delay", delay).Err(deliveryErr).Msg("delivery failed, retry scheduled")
	d.scheduleRetry(t, delay)
}

// send performs one HTTP delivery attempt. A non-2xx response, network
// error, or timeout is a delivery failure; the error drives retry
// classification only and is never surfaced to API callers.
func (d *Dispatcher) send(sub *models.Webhook, t *deliveryTask) (int, error) {
	req, err := http.NewRequest(http.MethodPost, sub.URL, bytes.NewReader(t.payload))
	if err != nil {
		return 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", t.deliveryID)
	req.Header.Set("X-Event", t.walker)
	if sub.Secret != "" {
		ts := time.Now().Unix()
		req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
		req.Header.Set("X-Signature", Sign(sub.Secret, t.payload, ts))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (d *Dispatcher) deadLetter(t *deliveryTask, deliveryErr error) {
	entry := &models.DeadLetter{
		WebhookID:    t.webhookID,
		WalkerName:   t.walker,
		Payload:      t.payload,
		AttemptsMade: t.attempt,
		LastError:    deliveryErr.Error(),
	}
	if err := d.dead.Insert(entry); err != nil {
		log.Error().Err(err).Str("delivery_id", t.deliveryID).Msg("failed to persist dead letter")
	} else {
		log.Warn().Str("delivery_id", t.deliveryID).Str("webhook_id", t.webhookID).
			Int("attempts", t.attempt).Msg("delivery exhausted, dead-lettered")
	}
	metrics.Deliveries.WithLabelValues(t.walker, "dead_lettered").Inc()
	d.release(t.webhookID)
}

func (d *Dispatcher) scheduleRetry(t *deliveryTask, delay time.Duration) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.release(t.webhookID)
		return
	}
	d.timers[t.deliveryID] = time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.timers, t.deliveryID)
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return
		}
		select {
		case d.tasks <- t:
		case <-d.quit:
			d.release(t.webhookID)
		}
	})
	d.mu.Unlock()
}

// backoffDelay returns the wait before the attempt after attempt n:
// initial × multiplier^(n−1), capped at the configured maximum.
func (d *Dispatcher) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(d.cfg.InitialDelay) * math.Pow(d.cfg.BackoffMultiplier, float64(attempt-1)))
	if delay <= 0 || delay > d.cfg.MaxDelay {
		delay = d.cfg.MaxDelay
	}
	return delay
}

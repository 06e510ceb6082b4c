package webhooks

import (
	"crypto/hmac"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hookd/internal/pkg/errors"
	"hookd/internal/platform/config"
	"hookd/internal/platform/models"
)

// Transport is how a walker is reachable: via the standard request path or
// exclusively through its inbound webhook endpoint.
const (
	TransportStandard = "standard"
	TransportWebhook  = "webhook"
)

// Manager owns subscription and API-key lifecycle. It holds no state of its
// own beyond the stores it was constructed with.
type Manager struct {
	subs SubscriptionStore
	keys KeyStore
}

func NewManager(subs SubscriptionStore, keys KeyStore) *Manager {
	return &Manager{subs: subs, keys: keys}
}

type CreateParams struct {
	WalkerName string                 `json:"walker_name"`
	Direction  string                 `json:"direction"`
	URL        string                 `json:"url"`
	Secret     string                 `json:"secret"`
	Metadata   map[string]interface{} `json:"metadata"`
}

func validateOutboundURL(raw string) error {
	if raw == "" {
		return errors.Validation("url is required for outbound webhooks")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.Validation("url must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Validation("url must use http or https")
	}
	return nil
}

func (m *Manager) Create(p CreateParams) (*models.Webhook, error) {
	if p.WalkerName == "" {
		return nil, errors.Validation("walker_name is required")
	}

	switch p.Direction {
	case models.DirectionOutbound:
		if err := validateOutboundURL(p.URL); err != nil {
			return nil, err
		}
	case models.DirectionInbound:
		// Inbound subscriptions are addressed by API keys, not a URL.
		p.URL = ""
	default:
		return nil, errors.Validation("direction must be inbound or outbound")
	}

	webhook := &models.Webhook{
		WalkerName: p.WalkerName,
		Direction:  p.Direction,
		URL:        p.URL,
		Secret:     p.Secret,
		Enabled:    true,
		Metadata:   p.Metadata,
	}
	if err := m.subs.Create(webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

type UpdateParams struct {
	URL      *string                `json:"url"`
	Secret   *string                `json:"secret"`
	Enabled  *bool                  `json:"enabled"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (m *Manager) Update(id string, p UpdateParams) (*models.Webhook, error) {
	webhook, err := m.subs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if webhook == nil {
		return nil, errors.NotFound("webhook not found")
	}
	if webhook.Static {
		return nil, errors.Validation("static webhook is config-managed and cannot be modified")
	}

	if p.URL != nil {
		if webhook.Direction == models.DirectionOutbound {
			if err := validateOutboundURL(*p.URL); err != nil {
				return nil, err
			}
			webhook.URL = *p.URL
		}
	}
	if p.Secret != nil {
		webhook.Secret = *p.Secret
	}
	if p.Enabled != nil {
		webhook.Enabled = *p.Enabled
	}
	if p.Metadata != nil {
		webhook.Metadata = p.Metadata
	}

	if err := m.subs.Update(webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

// Delete removes the subscription row only. API keys and delivery logs are
// retained for audit; dead letters stay until explicitly deleted.
func (m *Manager) Delete(id string) error {
	webhook, err := m.subs.GetByID(id)
	if err != nil {
		return err
	}
	if webhook == nil {
		return errors.NotFound("webhook not found")
	}
	if webhook.Static {
		return errors.Validation("static webhook is config-managed and cannot be deleted")
	}
	return m.subs.Delete(id)
}

func (m *Manager) Get(id string) (*models.Webhook, error) {
	webhook, err := m.subs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if webhook == nil {
		return nil, errors.NotFound("webhook not found")
	}
	return webhook, nil
}

func (m *Manager) List(walkerName string) ([]*models.Webhook, error) {
	return m.subs.List(walkerName)
}

// IssueKey creates an API key for an inbound subscription. The raw key is
// returned exactly once; only its SHA-256 digest is persisted.
func (m *Manager) IssueKey(webhookID, name string, expiresIn time.Duration) (*models.APIKey, string, error) {
	webhook, err := m.subs.GetByID(webhookID)
	if err != nil {
		return nil, "", err
	}
	if webhook == nil || webhook.Direction != models.DirectionInbound {
		return nil, "", errors.NotFound("inbound webhook not found")
	}

	rawKey := "whk_live_" + uuid.New().String()
	key := &models.APIKey{
		WebhookID: webhookID,
		Name:      name,
		KeyHash:   HashKey(rawKey),
		KeyPrefix: rawKey[:12] + "...",
	}
	if expiresIn > 0 {
		exp := time.Now().Add(expiresIn).Unix()
		key.ExpiresAt = &exp
	}

	if err := m.keys.Create(key); err != nil {
		return nil, "", err
	}
	return key, rawKey, nil
}

func (m *Manager) ListKeys(webhookID string) ([]*models.APIKey, error) {
	webhook, err := m.subs.GetByID(webhookID)
	if err != nil {
		return nil, err
	}
	if webhook == nil {
		return nil, errors.NotFound("webhook not found")
	}
	return m.keys.ListByWebhook(webhookID)
}

// RevokeKey is idempotent: revoking an already-revoked key succeeds.
func (m *Manager) RevokeKey(webhookID, keyID string) error {
	key, err := m.keys.GetByID(keyID)
	if err != nil {
		return err
	}
	if key == nil || key.WebhookID != webhookID {
		return errors.NotFound("api key not found")
	}
	return m.keys.Revoke(keyID)
}

// AuthenticateInbound resolves the inbound subscription a supplied key
// grants access to. Key digests are compared in constant time, and key
// failures yield one uniform error so callers cannot probe for key
// existence.
func (m *Manager) AuthenticateInbound(walkerName, rawKey string) (*models.Webhook, error) {
	subs, err := m.subs.ListEnabled(walkerName, models.DirectionInbound)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, errors.NotFound("no inbound webhook for walker")
	}

	suppliedHash := []byte(HashKey(rawKey))
	now := time.Now().Unix()

	for _, sub := range subs {
		keys, err := m.keys.ListByWebhook(sub.ID)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			if !hmac.Equal(suppliedHash, []byte(key.KeyHash)) {
				continue
			}
			if key.RevokedAt != nil {
				continue
			}
			if key.ExpiresAt != nil && *key.ExpiresAt <= now {
				continue
			}
			return sub, nil
		}
	}
	return nil, errors.Unauthorized("invalid API key")
}

// TransportFor reports whether a walker is invoked via the standard request
// path or exclusively through its inbound webhook endpoint.
func (m *Manager) TransportFor(walkerName string) (string, error) {
	subs, err := m.subs.ListEnabled(walkerName, models.DirectionInbound)
	if err != nil {
		return "", err
	}
	if len(subs) > 0 {
		return TransportWebhook, nil
	}
	return TransportStandard, nil
}

// SeedStatic upserts config-defined subscriptions at startup. An existing
// static entry for the same walker and direction is left untouched.
func (m *Manager) SeedStatic(seeds []config.StaticWebhook) error {
	for _, seed := range seeds {
		existing, err := m.subs.List(seed.Walker)
		if err != nil {
			return err
		}

		found := false
		for _, w := range existing {
			if w.Static && w.Direction == seed.Direction {
				found = true
				break
			}
		}
		if found {
			continue
		}

		if seed.Direction == models.DirectionOutbound {
			if err := validateOutboundURL(seed.URL); err != nil {
				return err
			}
		}
		webhook := &models.Webhook{
			WalkerName: seed.Walker,
			Direction:  seed.Direction,
			URL:        seed.URL,
			Secret:     seed.Secret,
			Enabled:    true,
			Static:     true,
		}
		if seed.Direction == models.DirectionInbound {
			webhook.URL = ""
		}
		if err := m.subs.Create(webhook); err != nil {
			return err
		}
		log.Info().Str("walker", seed.Walker).Str("direction", seed.Direction).Msg("seeded static webhook")
	}
	return nil
}

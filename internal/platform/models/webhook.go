package models

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Webhook binds a walker to an inbound or outbound webhook configuration.
// Inbound webhooks are resolved via API keys; outbound webhooks carry the
// receiver URL and an optional signing secret.
type Webhook struct {
	ID         string                 `json:"id"`
	WalkerName string                 `json:"walker_name"`
	Direction  string                 `json:"direction"`
	URL        string                 `json:"url,omitempty"`
	Secret     string                 `json:"secret,omitempty"`
	Enabled    bool                   `json:"enabled"`
	Static     bool                   `json:"static"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  int64                  `json:"created_at"`
	UpdatedAt  int64                  `json:"updated_at"`
}

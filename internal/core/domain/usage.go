package domain

import "time"

// UsageLog records one metered call to a collaborator-backed endpoint.
type UsageLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	Kind       string    `json:"kind,omitempty"`
	TokensUsed int       `json:"tokens_used"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"created_at"`
}

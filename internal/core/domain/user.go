package domain

import "time"

// User represents an account holder.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	IsActive     bool      `json:"is_active"`
	// LLMAPIKey is an optional per-user key for the language model
	// collaborator. Stored encrypted at rest, never serialized.
	LLMAPIKey string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// UpdateUserRequest carries the mutable user fields.
type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty"`
	LLMAPIKey *string `json:"llm_api_key,omitempty"`
}

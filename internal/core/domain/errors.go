package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidChunkConfig indicates a chunk overlap >= chunk size,
	// which would prevent the chunking loop from advancing
	ErrInvalidChunkConfig = errors.New("chunk overlap must be smaller than chunk size")

	// ErrFetchFailed indicates the page could not be fetched from its URL
	ErrFetchFailed = errors.New("fetch failed")

	// ErrExtractFailed indicates content extraction could not produce a result
	ErrExtractFailed = errors.New("extraction failed")

	// ErrLLMUnavailable indicates the language model service could not be reached
	ErrLLMUnavailable = errors.New("language model unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service could not be reached
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the per-user request budget is exhausted
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrChatLimitReached indicates the user already has the maximum number of chats
	ErrChatLimitReached = errors.New("chat limit reached")
)

// SensitiveContentError rejects a page containing sensitive input fields.
// It reports which kinds were found, never the field values themselves.
type SensitiveContentError struct {
	Kinds []SensitiveKind
}

func (e *SensitiveContentError) Error() string {
	kinds := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		kinds[i] = string(k)
	}
	return fmt.Sprintf("page contains sensitive fields: %s", strings.Join(kinds, ", "))
}

// AsSensitiveContent reports whether err is a sensitive-field rejection
// and returns the detected kinds if so.
func AsSensitiveContent(err error) (*SensitiveContentError, bool) {
	var sce *SensitiveContentError
	if errors.As(err, &sce) {
		return sce, true
	}
	return nil, false
}

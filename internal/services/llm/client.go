package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned before any I/O when the client has no API key.
	ErrMissingCredentials = errors.New("llm: missing API credentials")
	// ErrTransport wraps network failures and timeouts.
	ErrTransport = errors.New("llm: request failed")
	// ErrMalformedResponse means the response carried no assistant message.
	ErrMalformedResponse = errors.New("llm: malformed response from model")
)

// StatusError is returned when the endpoint answers with an error-class status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Body)
}

// Options tune a single completion.
type Options struct {
	Temperature float64
	// MaxTokens of zero leaves the limit to the provider.
	MaxTokens int
	// WebSearch asks providers that support it for a search-augmented answer.
	WebSearch bool
}

// Request is one chat completion: an optional system prompt plus one user turn.
type Request struct {
	System  string
	User    string
	Options Options
}

// Gateway sends prompts to a hosted chat-completion model.
type Gateway interface {
	// Complete returns the assistant message content.
	Complete(ctx context.Context, req Request) (string, error)
	// Configured reports whether credentials are present.
	Configured() bool
}

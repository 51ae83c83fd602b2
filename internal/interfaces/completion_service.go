package interfaces

import (
	"context"
)

// LLMMode represents the operational mode of the completion service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"

	// LLMModeMock indicates the service uses a canned in-process responder
	// (used in tests and offline development)
	LLMModeMock LLMMode = "mock"
)

// Message represents a single message in a completion conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// CompletionRequest is a provider-agnostic completion request. It is built
// once per query by the prompt builder and consumed exactly once by the
// completion service.
type CompletionRequest struct {
	// System framing: fixed instructional preamble, never user-modifiable
	System string

	// Conversation messages in chronological order
	Messages []Message

	// Maximum tokens in the generated response (process-wide configuration)
	MaxTokens int

	// Sampling temperature in [0,1] (process-wide configuration)
	Temperature float32
}

// CompletionService defines the capability contract for generating text from
// a prompt. Implementations wrap cloud providers (Claude, Gemini); test
// doubles substitute canned responses without touching pipeline logic.
type CompletionService interface {
	// Complete executes the completion request and returns the raw answer
	// text. Fails with ErrCompletionFailed on network failure, non-2xx
	// response, or missing answer content, and with ErrCompletionTimeout
	// when the configured deadline is exceeded. Never retries.
	Complete(ctx context.Context, request *CompletionRequest) (string, error)

	// HealthCheck verifies the provider is reachable and can serve requests
	HealthCheck(ctx context.Context) error

	// GetMode returns the current operational mode
	GetMode() LLMMode

	// Close releases provider resources
	Close() error
}

package llm

import (
	"context"
	"fmt"
	"time"
)

// Message roles understood by all providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider is an interface for LLM API providers
type Provider interface {
	// Call makes a single LLM API call
	Call(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// Provider returns the provider name
	Provider() string
}

// Message represents one role-tagged entry in a chat request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest contains the request parameters for one LLM call
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatResponse contains the extracted response from the LLM
type ChatResponse struct {
	Content string
	Model   string
	Usage   *TokenUsage
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Reply is the result of a resilient Send, including attribution
// for which model ultimately answered and how long it took.
type Reply struct {
	Content  string
	Model    string
	Latency  time.Duration
	Attempts int
}

// ProviderFactory creates LLM providers
type ProviderFactory struct{}

// NewProvider creates a new LLM provider by name
func (f *ProviderFactory) NewProvider(name, apiKey string) (Provider, error) {
	switch name {
	case "groq":
		return NewGroqProvider(apiKey), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

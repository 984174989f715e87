// Package llm defines the model-facing types and the provider
// abstraction the agent loop talks to.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Message is one conversation item. Role is one of "system", "user",
// "assistant", "tool".
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCallResponse // assistant messages only
	ToolCallID string             // tool messages only
}

// ToolCallResponse is a model-issued tool call after normalization.
// Args is always a non-nil object; malformed argument payloads degrade
// to an empty object rather than failing the turn.
type ToolCallResponse struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// ToolDef is the schema of one tool surfaced to the model.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest carries the full conversation plus the tool schema.
type ChatRequest struct {
	Messages  []Message
	Tools     []ToolDef
	MaxTokens int
}

// ChatResponse is the normalized model response: text plus zero or more
// tool calls. Every provider shape is folded into this at the adapter
// boundary; nothing downstream branches on provider-specific types.
type ChatResponse struct {
	Content      string
	Thinking     string
	ToolCalls    []ToolCallResponse
	StopReason   string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Provider is the single blocking boundary to a language model.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// RetryConfig controls retry behavior for transient provider errors.
type RetryConfig struct {
	MaxRetries  int
	InitBackoff time.Duration
	MaxBackoff  time.Duration
}

// ProviderConfig configures provider construction.
type ProviderConfig struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Retry     RetryConfig
}

// Validate checks the required fields.
func (c *ProviderConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	return nil
}

// ApplyDefaults fills unset fields.
func (c *ProviderConfig) ApplyDefaults() {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
}

package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over text-generation backends.
// Feedback drafting sends a system/user message pair and reads back prose;
// the provider treats the backend as an opaque, possibly-failing remote call.
type Provider interface {
	// Generate sends a prompt to the backend and returns its response.
	// When the request carries a Schema, the provider uses its native
	// structured-output mechanism and the response Content is validated
	// JSON. Without a Schema the Content is the raw generated text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured with.
	ModelID() string
}

// Request describes a single generation call.
type Request struct {
	// System sets the backend's role and constraints.
	System string

	// Messages is the conversation. Feedback generation is single-turn,
	// so this normally holds one user message.
	Messages []Message

	// Schema, when set, constrains the response to a JSON structure.
	// The feedback pipeline leaves this nil and relies on its own
	// delimiter contract instead.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero means deterministic.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines a JSON structure expected from the backend.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI-compatible APIs). Kebab-case.
	Name string

	// Description guides the backend's generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the backend's output.
type Response struct {
	// Content is the generated output: validated JSON when the request
	// carried a Schema, raw text bytes otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text.
func (r *Response) Text() string {
	return string(r.Content)
}

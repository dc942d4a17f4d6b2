package types

// Role identifies the author of a chat message sent to a language model.
type Role string

// Message is a single chat message exchanged with a language model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is a language model completion.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
}

// Context keys for request-scoped metadata carried through logging and
// telemetry handlers.
type contextKey string

const (
	ContextKeyJobID         contextKey = "job_id"
	ContextKeyRequestSource contextKey = "request_source"
)

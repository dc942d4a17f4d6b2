package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docugraph/docugraph/pkg/types"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"
	defaultAnthropicTokens  = 4096
)

// AnthropicClient implements the Client interface for Anthropic Claude models.
type AnthropicClient struct {
	apiKey     string
	config     Config
	httpClient *http.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string, config Config) *AnthropicClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		apiKey: apiKey,
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float32           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Chat implements the Client interface for Anthropic.
func (a *AnthropicClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	// Anthropic takes the system prompt outside the message list.
	anthropicMessages := make([]anthropicMessage, 0, len(messages))
	var systemMessage string
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			systemMessage = msg.Content
			continue
		}
		anthropicMessages = append(anthropicMessages, anthropicMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	maxTokens := defaultAnthropicTokens
	if a.config.MaxTokens != nil {
		maxTokens = *a.config.MaxTokens
	}

	req := anthropicRequest{
		Model:       a.config.Model,
		MaxTokens:   maxTokens,
		Messages:    anthropicMessages,
		Temperature: a.config.Temperature,
		System:      systemMessage,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("anthropic request: %w", NewRateLimitError(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp anthropicResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if anthropicResp.Error != nil {
		return nil, fmt.Errorf("anthropic API error: %s", anthropicResp.Error.Message)
	}
	if len(anthropicResp.Content) == 0 {
		return nil, &EmptyResponseError{Message: "no content in anthropic response"}
	}

	return &types.Response{
		Content:      anthropicResp.Content[0].Text,
		Model:        anthropicResp.Model,
		InputTokens:  anthropicResp.Usage.InputTokens,
		OutputTokens: anthropicResp.Usage.OutputTokens,
	}, nil
}

// ChatWithStructuredOutput implements structured output for Anthropic.
// Anthropic has no native JSON schema mode, so the schema is supplied as an
// instruction and the caller is expected to repair minor deviations.
func (a *AnthropicClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	if schema != nil {
		schemaBytes, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshaling schema: %w", err)
		}
		messages = append(messages, NewUserMessage(
			fmt.Sprintf("Respond with valid JSON matching this schema: %s", string(schemaBytes))))
	}
	return a.Chat(ctx, messages)
}

// Close cleans up resources (no-op for Anthropic client).
func (a *AnthropicClient) Close() error {
	return nil
}

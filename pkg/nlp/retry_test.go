package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docugraph/docugraph/pkg/types"
)

type mockClient struct {
	responses []func() (*types.Response, error)
	calls     int
}

func (m *mockClient) next() (*types.Response, error) {
	if m.calls >= len(m.responses) {
		return nil, errors.New("mock exhausted")
	}
	fn := m.responses[m.calls]
	m.calls++
	return fn()
}

func (m *mockClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return m.next()
}

func (m *mockClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	return m.next()
}

func (m *mockClient) Close() error { return nil }

func ok(content string) func() (*types.Response, error) {
	return func() (*types.Response, error) {
		return &types.Response{Content: content}, nil
	}
}

func fail(err error) func() (*types.Response, error) {
	return func() (*types.Response, error) { return nil, err }
}

func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:        maxRetries,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryClient(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		mock := &mockClient{responses: []func() (*types.Response, error){ok("hello")}}
		client := NewRetryClient(mock, fastRetryConfig(3))

		resp, err := client.Chat(context.Background(), []types.Message{NewUserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "hello", resp.Content)
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("retries rate limit errors", func(t *testing.T) {
		mock := &mockClient{responses: []func() (*types.Response, error){
			fail(NewRateLimitError()),
			fail(NewRateLimitError()),
			ok("recovered"),
		}}
		client := NewRetryClient(mock, fastRetryConfig(3))

		resp, err := client.Chat(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "recovered", resp.Content)
		assert.Equal(t, 3, mock.calls)
	})

	t.Run("retries wrapped rate limit errors", func(t *testing.T) {
		wrapped := errors.Join(errors.New("request failed"), NewRateLimitError())
		mock := &mockClient{responses: []func() (*types.Response, error){
			fail(wrapped),
			ok("recovered"),
		}}
		client := NewRetryClient(mock, fastRetryConfig(3))

		_, err := client.Chat(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 2, mock.calls)
	})

	t.Run("does not retry non retryable errors", func(t *testing.T) {
		sentinel := errors.New("invalid request")
		mock := &mockClient{responses: []func() (*types.Response, error){fail(sentinel)}}
		client := NewRetryClient(mock, fastRetryConfig(3))

		_, err := client.Chat(context.Background(), nil)
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("exhausts retries and wraps last error", func(t *testing.T) {
		mock := &mockClient{responses: []func() (*types.Response, error){
			fail(NewRateLimitError()),
			fail(NewRateLimitError()),
			fail(NewRateLimitError()),
		}}
		client := NewRetryClient(mock, fastRetryConfig(2))

		_, err := client.Chat(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, &RateLimitError{})
		assert.Equal(t, 3, mock.calls)
	})

	t.Run("cancelled context aborts backoff", func(t *testing.T) {
		mock := &mockClient{responses: []func() (*types.Response, error){
			fail(NewRateLimitError()),
			ok("never reached"),
		}}
		client := NewRetryClient(mock, &RetryConfig{
			MaxRetries:        3,
			InitialDelay:      time.Hour,
			MaxDelay:          time.Hour,
			BackoffMultiplier: 2.0,
		})

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := client.Chat(ctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, mock.calls)
	})
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit error type", NewRateLimitError(), true},
		{"rate limit sentinel", ErrRateLimit, true},
		{"503 in message", errors.New("503 service unavailable"), true},
		{"timeout in message", errors.New("request timeout"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"plain error", errors.New("bad schema"), false},
		{"empty response", &EmptyResponseError{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryableError(tc.err))
		})
	}
}

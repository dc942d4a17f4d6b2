package nlp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitError(t *testing.T) {
	t.Run("default message", func(t *testing.T) {
		err := NewRateLimitError()
		assert.Equal(t, "rate limit exceeded, try again later", err.Error())
	})

	t.Run("custom message", func(t *testing.T) {
		err := NewRateLimitError("slow down")
		assert.Equal(t, "slow down", err.Error())
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("call failed: %w", NewRateLimitError())
		assert.True(t, errors.Is(wrapped, &RateLimitError{}))

		var target *RateLimitError
		assert.True(t, errors.As(wrapped, &target))
	})
}

func TestEmptyResponseError(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", &EmptyResponseError{Message: "nothing came back"})
	assert.True(t, errors.Is(wrapped, &EmptyResponseError{}))
	assert.Contains(t, wrapped.Error(), "nothing came back")
}

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, RoleSystem, NewSystemMessage("s").Role)
	assert.Equal(t, RoleUser, NewUserMessage("u").Role)
	assert.Equal(t, RoleAssistant, NewAssistantMessage("a").Role)
	assert.Equal(t, "u", NewUserMessage("u").Content)
}

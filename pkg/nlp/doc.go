// Package nlp provides language model clients for window extraction.
//
// Client is the core interface; OpenAIClient and AnthropicClient implement
// it against their respective APIs. RetryClient and CircuitBreakerClient are
// composable wrappers that add exponential backoff and failure isolation:
//
//	base, _ := nlp.NewOpenAIClient(apiKey, nlp.Config{Model: "gpt-4o"})
//	client := nlp.NewCircuitBreakerClient(
//		nlp.NewRetryClient(base, nil),
//		nlp.DefaultCircuitBreakerConfig(), "extraction", logger)
package nlp

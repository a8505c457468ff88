// Package tokens provides tiktoken-based token counting used for accounting
// when a provider response omits usage numbers.
package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens for a model family.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter creates a counter for the given model. All supported providers
// tokenize close enough to GPT-4 encoding for accounting purposes.
func NewCounter(model string) (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec for model %s: %w", model, err)
	}
	return &Counter{codec: codec}, nil
}

// Count returns the number of tokens in the given text.
// Falls back to a 4-chars-per-token estimate if the codec fails.
func (c *Counter) Count(text string) int {
	if c == nil || c.codec == nil {
		return len(text) / 4
	}
	count, err := c.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}

//nolint:gochecknoglobals // shared default codec, lazily initialized
var (
	defaultCounter     *Counter
	defaultCounterOnce sync.Once
)

// Count counts tokens with the default GPT-4 codec.
func Count(text string) int {
	defaultCounterOnce.Do(func() {
		defaultCounter, _ = NewCounter("gpt-4")
	})
	return defaultCounter.Count(text)
}

// Estimate fills in zero usage fields from raw text lengths. Providers that
// report usage keep their exact numbers.
func Estimate(promptTokens, completionTokens int, prompt, completion string) (int, int) {
	if promptTokens == 0 && prompt != "" {
		promptTokens = Count(prompt)
	}
	if completionTokens == 0 && completion != "" {
		completionTokens = Count(completion)
	}
	return promptTokens, completionTokens
}

package flow

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the number of tokens in text.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(string) int

// Count implements TokenCounter.
func (f TokenCounterFunc) Count(text string) int { return f(text) }

// ApproxTokenCounter assumes four characters per token.
var ApproxTokenCounter = TokenCounterFunc(func(text string) int {
	return (len(text) + 3) / 4
})

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

var (
	defaultCounterOnce sync.Once
	defaultCounter     TokenCounter
)

// DefaultTokenCounter returns a cl100k_base tiktoken counter. Loading the
// encoding may need network access; on failure it falls back to
// ApproxTokenCounter.
func DefaultTokenCounter() TokenCounter {
	defaultCounterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			defaultCounter = ApproxTokenCounter
			return
		}
		defaultCounter = &tiktokenCounter{enc: enc}
	})
	return defaultCounter
}

package driven

import "context"

// Throttle paces file reads.
type Throttle interface {
	// Wait blocks until a read may proceed or ctx is done.
	Wait(ctx context.Context) error
}

// Tokenizer estimates the token count of text for a language model.
type Tokenizer interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) int

	// Model returns the model whose encoding is used.
	Model() string
}

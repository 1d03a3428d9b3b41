package extract

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts model tokens with a tiktoken encoding.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer selects the encoding for model (e.g. "gpt-4"), falling back
// to cl100k_base for unknown models.
func NewTokenizer(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the token count for text.
func (t *Tokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

package processor

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const DefaultTokenizerModel = "gpt-4"

type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

func init() {
	// BPE ranks ship with the binary; no download at first use.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

type TikToken struct {
	enc *tiktoken.Tiktoken
}

// NewTikToken returns the encoding used by model (cl100k_base for gpt-4).
func NewTikToken(model string) (*TikToken, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer for %s: %w", model, err)
	}
	return &TikToken{enc: enc}, nil
}

func (t *TikToken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *TikToken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

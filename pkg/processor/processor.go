package processor

import (
	"github.com/xhad/stressdocs/internal/types"
	"github.com/xhad/stressdocs/pkg/logger"
)

type ProcessorConfig struct {
	ChunkSize    int // tokens per chunk
	ChunkOverlap int // tokens shared by consecutive chunks
	MaxChunks    int // runaway guard
	Tokenizer    Tokenizer
	Logger       *logger.Logger
}

// Processor splits text into overlapping token windows.
type Processor struct {
	config ProcessorConfig
	log    *logger.Logger
}

func NewWithConfig(config ProcessorConfig) (*Processor, error) {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 800
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}
	if config.MaxChunks <= 0 {
		config.MaxChunks = 2000
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Tokenizer == nil {
		tok, err := NewTikToken(DefaultTokenizerModel)
		if err != nil {
			return nil, err
		}
		config.Tokenizer = tok
	}

	return &Processor{
		config: config,
		log:    config.Logger,
	}, nil
}

// Split returns the input unchanged as a single chunk when it fits in
// ChunkSize tokens. Otherwise each window starts ChunkOverlap tokens
// before the end of the previous one; if that would not move forward
// the next window starts at the previous end instead.
func (p *Processor) Split(text string) types.ChunkResult {
	tokens := p.config.Tokenizer.Encode(text)
	n := len(tokens)

	if n <= p.config.ChunkSize {
		return types.ChunkResult{
			Chunks:     []string{text},
			TokenCount: n,
		}
	}

	var chunks []string
	start := 0
	for {
		if len(chunks) >= p.config.MaxChunks {
			p.log.Warn("chunk limit reached, truncating document",
				"max_chunks", p.config.MaxChunks,
				"tokens", n,
				"dropped_tokens", n-start)
			return types.ChunkResult{Chunks: chunks, TokenCount: n, Truncated: true}
		}

		end := start + p.config.ChunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, p.config.Tokenizer.Decode(tokens[start:end]))
		if end == n {
			break
		}

		next := end - p.config.ChunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	p.log.Debug("split text", "tokens", n, "chunks", len(chunks))
	return types.ChunkResult{Chunks: chunks, TokenCount: n}
}

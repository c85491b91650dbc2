package llm

import (
	"context"
)

// TokenCodec converts between text and a backend's token ids. Vocabularies are
// backend specific; every Engine owns its own codec.
type TokenCodec interface {
	Encode(ctx context.Context, text string) ([]int, error)
	// Decode renders ids as text. With skipSpecial set, end-of-sequence and
	// padding ids are dropped before rendering.
	Decode(ctx context.Context, ids []int, skipSpecial bool) (string, error)
	EOSTokenID() int
}

// Sampling selects how the next token is chosen.
type Sampling int

const (
	Greedy Sampling = iota
	Stochastic
)

func (s Sampling) String() string {
	if s == Stochastic {
		return "stochastic"
	}
	return "greedy"
}

// GenerationConfig holds the per-request generation settings.
type GenerationConfig struct {
	MaxNewTokens int
	Sampling     Sampling
	Temperature  float64
	StopTokenID  int
	// Seed pins stochastic sampling. Nil leaves it to the runtime.
	Seed *int64
}

// Engine produces new tokens for a prompt. Generate returns only the newly
// produced suffix, never the prompt itself.
type Engine interface {
	Name() string
	Codec() TokenCodec
	Generate(ctx context.Context, tokens, mask []int, cfg GenerationConfig) ([]int, error)
}

// StreamingEngine is an Engine that can also emit decoded text fragments as
// they are produced. emit returning an error stops generation.
type StreamingEngine interface {
	Engine
	GenerateStream(ctx context.Context, tokens, mask []int, cfg GenerationConfig, emit func(fragment string) error) error
}

// OnesMask returns an all-ones attention mask for n tokens.
func OnesMask(n int) []int {
	mask := make([]int, n)
	for i := range mask {
		mask[i] = 1
	}
	return mask
}

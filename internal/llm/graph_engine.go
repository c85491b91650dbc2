package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	app_errors "neptune-ai/backend/internal/errors"
)

// Logits is the output of one forward pass: a row of Vocab scores for each of
// Positions input positions, stored row-major.
type Logits struct {
	Data      []float32
	Positions int
	Vocab     int
}

// Row returns the scores for position i.
func (l Logits) Row(i int) []float32 {
	return l.Data[i*l.Vocab : (i+1)*l.Vocab]
}

// Graph is a compiled model exposing a single stateless forward pass.
// Implementations must be safe for concurrent use.
type Graph interface {
	Forward(ctx context.Context, ids, mask []int64) (Logits, error)
}

// GraphEngine decodes greedily over a Graph. The graph keeps no key/value
// cache, so every step recomputes the whole growing sequence.
type GraphEngine struct {
	name  string
	graph Graph
	codec TokenCodec
}

func NewGraphEngine(name string, graph Graph, codec TokenCodec) *GraphEngine {
	return &GraphEngine{name: name, graph: graph, codec: codec}
}

func (e *GraphEngine) Name() string      { return e.name }
func (e *GraphEngine) Codec() TokenCodec { return e.codec }

// Generate runs the greedy decode loop. The stop token, when produced, is
// appended before the loop ends. Any forward failure discards the partial
// output.
func (e *GraphEngine) Generate(ctx context.Context, tokens, mask []int, cfg GenerationConfig) ([]int, error) {
	if cfg.Sampling != Greedy {
		return nil, fmt.Errorf("%w: %s supports greedy decoding only", app_errors.ErrEngine, e.name)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty input sequence", app_errors.ErrEngine)
	}
	if len(mask) != len(tokens) {
		return nil, fmt.Errorf("%w: mask length %d does not match %d tokens", app_errors.ErrEngine, len(mask), len(tokens))
	}

	generated := make([]int64, len(tokens), len(tokens)+cfg.MaxNewTokens)
	for i, id := range tokens {
		generated[i] = int64(id)
	}
	attention := make([]int64, len(mask), len(mask)+cfg.MaxNewTokens)
	for i, m := range mask {
		attention[i] = int64(m)
	}

	for step := 0; step < cfg.MaxNewTokens; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logits, err := e.graph.Forward(ctx, generated, attention)
		if err != nil {
			return nil, fmt.Errorf("%w: forward pass at step %d: %v", app_errors.ErrEngine, step, err)
		}
		if logits.Positions != len(generated) || logits.Vocab == 0 {
			return nil, fmt.Errorf("%w: unexpected logits shape [%d,%d] for %d positions",
				app_errors.ErrEngine, logits.Positions, logits.Vocab, len(generated))
		}

		next := argmax(logits.Row(logits.Positions - 1))
		generated = append(generated, int64(next))
		attention = append(attention, 1)
		if next == cfg.StopTokenID {
			break
		}
	}

	suffix := make([]int, 0, len(generated)-len(tokens))
	for _, id := range generated[len(tokens):] {
		suffix = append(suffix, int(id))
	}
	log.Debug().Str("backend", e.name).Int("prompt_tokens", len(tokens)).Int("new_tokens", len(suffix)).Msg("greedy decode finished")
	return suffix, nil
}

// argmax returns the index of the largest value; ties go to the lowest index.
func argmax(x []float32) int {
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "neptune-ai/backend/internal/errors"
)

const fakeVocab = 8

// scriptedGraph returns logits whose last row peaks at the next id in script.
type scriptedGraph struct {
	script  []int
	failAt  int
	calls   int
	masks   [][]int64
	inputs  [][]int64
	lastRow []float32
}

func (g *scriptedGraph) Forward(_ context.Context, ids, mask []int64) (Logits, error) {
	step := g.calls
	g.calls++
	g.inputs = append(g.inputs, append([]int64(nil), ids...))
	g.masks = append(g.masks, append([]int64(nil), mask...))
	if g.failAt > 0 && g.calls == g.failAt {
		return Logits{}, errors.New("kernel failure")
	}

	data := make([]float32, len(ids)*fakeVocab)
	last := data[(len(ids)-1)*fakeVocab:]
	if g.lastRow != nil {
		copy(last, g.lastRow)
	} else {
		last[g.script[step%len(g.script)]] = 1
	}
	return Logits{Data: data, Positions: len(ids), Vocab: fakeVocab}, nil
}

type nopCodec struct{}

func (nopCodec) Encode(context.Context, string) ([]int, error)       { return nil, nil }
func (nopCodec) Decode(context.Context, []int, bool) (string, error) { return "", nil }
func (nopCodec) EOSTokenID() int                                     { return 7 }

func greedy(maxNew, stop int) GenerationConfig {
	return GenerationConfig{MaxNewTokens: maxNew, Sampling: Greedy, StopTokenID: stop}
}

func TestGraphEngine_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("stops after appending the stop token", func(t *testing.T) {
		graph := &scriptedGraph{script: []int{3, 4, 7, 5}}
		engine := NewGraphEngine("g", graph, nopCodec{})

		out, err := engine.Generate(ctx, []int{1, 2}, OnesMask(2), greedy(20, 7))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4, 7}, out)
		assert.Equal(t, 3, graph.calls)
	})

	t.Run("never exceeds MaxNewTokens", func(t *testing.T) {
		graph := &scriptedGraph{script: []int{3}}
		engine := NewGraphEngine("g", graph, nopCodec{})

		out, err := engine.Generate(ctx, []int{1}, OnesMask(1), greedy(5, 7))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3, 3, 3, 3}, out)
	})

	t.Run("zero MaxNewTokens produces nothing", func(t *testing.T) {
		graph := &scriptedGraph{script: []int{3}}
		engine := NewGraphEngine("g", graph, nopCodec{})

		out, err := engine.Generate(ctx, []int{1}, OnesMask(1), greedy(0, 7))
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Zero(t, graph.calls)
	})

	t.Run("recomputes the whole growing sequence", func(t *testing.T) {
		graph := &scriptedGraph{script: []int{3, 4, 5}}
		engine := NewGraphEngine("g", graph, nopCodec{})

		_, err := engine.Generate(ctx, []int{1, 2}, []int{0, 1}, greedy(3, 7))
		require.NoError(t, err)
		require.Len(t, graph.inputs, 3)
		assert.Equal(t, []int64{1, 2}, graph.inputs[0])
		assert.Equal(t, []int64{1, 2, 3}, graph.inputs[1])
		assert.Equal(t, []int64{1, 2, 3, 4}, graph.inputs[2])
		assert.Equal(t, []int64{0, 1, 1, 1}, graph.masks[2])
	})

	t.Run("ties go to the lowest id", func(t *testing.T) {
		graph := &scriptedGraph{lastRow: []float32{0, 2, 0, 2, 0, 0, 0, 0}}
		engine := NewGraphEngine("g", graph, nopCodec{})

		out, err := engine.Generate(ctx, []int{1}, OnesMask(1), greedy(1, 7))
		require.NoError(t, err)
		assert.Equal(t, []int{1}, out)
	})

	t.Run("forward failure discards partial output", func(t *testing.T) {
		graph := &scriptedGraph{script: []int{3}, failAt: 3}
		engine := NewGraphEngine("g", graph, nopCodec{})

		out, err := engine.Generate(ctx, []int{1}, OnesMask(1), greedy(10, 7))
		assert.ErrorIs(t, err, app_errors.ErrEngine)
		assert.Nil(t, out)
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		graph := &scriptedGraph{script: []int{3}}
		engine := NewGraphEngine("g", graph, nopCodec{})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := engine.Generate(cancelled, []int{1}, OnesMask(1), greedy(10, 7))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, graph.calls)
	})

	t.Run("rejects stochastic sampling", func(t *testing.T) {
		engine := NewGraphEngine("g", &scriptedGraph{script: []int{3}}, nopCodec{})
		cfg := greedy(10, 7)
		cfg.Sampling = Stochastic

		_, err := engine.Generate(ctx, []int{1}, OnesMask(1), cfg)
		assert.ErrorIs(t, err, app_errors.ErrEngine)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		engine := NewGraphEngine("g", &scriptedGraph{script: []int{3}}, nopCodec{})

		_, err := engine.Generate(ctx, nil, nil, greedy(10, 7))
		assert.ErrorIs(t, err, app_errors.ErrEngine)

		_, err = engine.Generate(ctx, []int{1, 2}, OnesMask(1), greedy(10, 7))
		assert.ErrorIs(t, err, app_errors.ErrEngine)
	})
}

func TestGraphEngine_IsNotStreaming(t *testing.T) {
	var engine Engine = NewGraphEngine("g", &scriptedGraph{}, nopCodec{})
	_, ok := engine.(StreamingEngine)
	assert.False(t, ok)
}

package onnx

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neptune-ai/backend/internal/llm"
	"neptune-ai/backend/internal/llm/tokenizer"
	"neptune-ai/backend/internal/model"
)

// replayGraph stands in for an exported GPT-2 graph: the last logits row
// peaks at the next id of script, and the last id repeats once script runs out.
type replayGraph struct {
	script []int
	calls  int
}

func (g *replayGraph) Forward(_ context.Context, ids, _ []int64) (llm.Logits, error) {
	next := g.script[min(g.calls, len(g.script)-1)]
	g.calls++
	data := make([]float32, len(ids)*tokenizer.GPT2VocabSize)
	data[(len(ids)-1)*tokenizer.GPT2VocabSize+next] = 1
	return llm.Logits{Data: data, Positions: len(ids), Vocab: tokenizer.GPT2VocabSize}, nil
}

func newByteCodec(t *testing.T) *tokenizer.GPT2 {
	t.Helper()
	var b strings.Builder
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&b, "%s %d\n", base64.StdEncoding.EncodeToString([]byte{byte(i)}), i)
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tokenizer.GPT2Encoding+".tiktoken"), []byte(b.String()), 0o600))
	codec, err := tokenizer.NewGPT2(dir)
	require.NoError(t, err)
	return codec
}

func TestGraphEngine_GPT2Reply(t *testing.T) {
	codec := newByteCodec(t)
	ctx := context.Background()
	conv := model.Conversation{{Role: model.RoleUser, Content: "Hello"}}
	prompt, err := codec.Encode(ctx, llm.FramePrompt(conv))
	require.NoError(t, err)
	cfg := llm.GenerationConfig{MaxNewTokens: 20, Sampling: llm.Greedy, StopTokenID: codec.EOSTokenID()}

	t.Run("stops at end of text and hides the marker", func(t *testing.T) {
		engine := llm.NewGraphEngine("onnx-gpt2", &replayGraph{script: []int{'H', 'i', tokenizer.GPT2EOS}}, codec)
		out, err := engine.Generate(ctx, prompt, llm.OnesMask(len(prompt)), cfg)
		require.NoError(t, err)
		assert.Equal(t, []int{'H', 'i', tokenizer.GPT2EOS}, out)

		reply, err := codec.Decode(ctx, out, true)
		require.NoError(t, err)
		assert.Equal(t, "Hi", reply)
	})

	t.Run("caps the reply at the token limit", func(t *testing.T) {
		engine := llm.NewGraphEngine("onnx-gpt2", &replayGraph{script: []int{'a'}}, codec)
		out, err := engine.Generate(ctx, prompt, llm.OnesMask(len(prompt)), cfg)
		require.NoError(t, err)
		assert.Len(t, out, 20)

		reply, err := codec.Decode(ctx, out, true)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("a", 20), reply)
		assert.NotContains(t, reply, "<|endoftext|>")
	})
}

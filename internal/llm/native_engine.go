package llm

import (
	"context"
	"errors"
	"fmt"

	app_errors "neptune-ai/backend/internal/errors"
)

// CompletionRequest is what a native runtime needs to continue a token prompt.
// The runtime ends its output after StopTokenID, inclusive.
type CompletionRequest struct {
	Prompt      []int
	MaxTokens   int
	Temperature float64
	TopK        int
	Seed        *int64
	StopTokenID int
}

// CompletionChunk is one increment emitted by a streaming runtime.
type CompletionChunk struct {
	Content string
	Tokens  []int
	Done    bool
}

// Runtime is an autoregressive runtime with built-in sampling and streaming.
type Runtime interface {
	Complete(ctx context.Context, req *CompletionRequest) ([]int, error)
	CompleteStream(ctx context.Context, req *CompletionRequest, onChunk func(CompletionChunk) error) error
}

// NativeEngine delegates generation to a Runtime. Stopping is decided by the
// runtime: it ends at the stop token or after MaxNewTokens.
type NativeEngine struct {
	name    string
	runtime Runtime
	codec   TokenCodec
}

func NewNativeEngine(name string, runtime Runtime, codec TokenCodec) *NativeEngine {
	return &NativeEngine{name: name, runtime: runtime, codec: codec}
}

func (e *NativeEngine) Name() string      { return e.name }
func (e *NativeEngine) Codec() TokenCodec { return e.codec }

func (e *NativeEngine) Generate(ctx context.Context, tokens, mask []int, cfg GenerationConfig) ([]int, error) {
	req, err := e.request(tokens, mask, cfg)
	if err != nil {
		return nil, err
	}
	out, err := e.runtime.Complete(ctx, req)
	if err != nil {
		return nil, e.wrap(err)
	}
	if len(out) > cfg.MaxNewTokens {
		out = out[:cfg.MaxNewTokens]
	}
	return out, nil
}

func (e *NativeEngine) GenerateStream(ctx context.Context, tokens, mask []int, cfg GenerationConfig, emit func(string) error) error {
	req, err := e.request(tokens, mask, cfg)
	if err != nil {
		return err
	}
	err = e.runtime.CompleteStream(ctx, req, func(chunk CompletionChunk) error {
		if chunk.Content == "" {
			return nil
		}
		return emit(chunk.Content)
	})
	if err != nil {
		return e.wrap(err)
	}
	return nil
}

func (e *NativeEngine) request(tokens, mask []int, cfg GenerationConfig) (*CompletionRequest, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty input sequence", app_errors.ErrEngine)
	}
	if len(mask) != len(tokens) {
		return nil, fmt.Errorf("%w: mask length %d does not match %d tokens", app_errors.ErrEngine, len(mask), len(tokens))
	}
	req := &CompletionRequest{
		Prompt:      tokens,
		MaxTokens:   cfg.MaxNewTokens,
		StopTokenID: cfg.StopTokenID,
	}
	switch cfg.Sampling {
	case Stochastic:
		req.Temperature = cfg.Temperature
		req.Seed = cfg.Seed
	default:
		req.Temperature = 0
		req.TopK = 1
	}
	return req, nil
}

// wrap tags runtime failures as engine errors, leaving context errors and
// already classified errors alone.
func (e *NativeEngine) wrap(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, app_errors.ErrEngine), errors.Is(err, app_errors.ErrEngineUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", app_errors.ErrEngine, e.name, err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/llm"
	"neptune-ai/backend/internal/metrics"
	"neptune-ai/backend/internal/model"
	"neptune-ai/backend/internal/stream"
)

// Endpoint names one of the fixed generation routes.
type Endpoint string

const (
	EndpointChat       Endpoint = "chat"
	EndpointNativeGPT2 Endpoint = "native-gpt2"
	EndpointONNXGPT2   Endpoint = "onnx-gpt2"
)

// Backend ids the registry is keyed by.
const (
	BackendNative     = "native"
	BackendNativeGPT2 = "native-gpt2"
	BackendONNXGPT2   = "onnx-gpt2"
)

// EndpointConfig is the fixed generation policy of an endpoint.
type EndpointConfig struct {
	Backend string
	// AllowedModels is matched case-insensitively. Empty accepts any model.
	AllowedModels []string
	Sampling      llm.Sampling
	Temperature   float64
	MaxNewTokens  int
}

var endpoints = map[Endpoint]EndpointConfig{
	EndpointChat: {
		Backend:      BackendNative,
		Sampling:     llm.Stochastic,
		Temperature:  0.7,
		MaxNewTokens: 200,
	},
	EndpointNativeGPT2: {
		Backend:       BackendNativeGPT2,
		AllowedModels: []string{"gpt2"},
		Sampling:      llm.Greedy,
		MaxNewTokens:  20,
	},
	EndpointONNXGPT2: {
		Backend:       BackendONNXGPT2,
		AllowedModels: []string{"gpt2"},
		Sampling:      llm.Greedy,
		MaxNewTokens:  20,
	},
}

// LookupEndpoint returns the policy for ep.
func LookupEndpoint(ep Endpoint) (EndpointConfig, bool) {
	cfg, ok := endpoints[ep]
	return cfg, ok
}

// ChatRequest is the body of every generation endpoint.
type ChatRequest struct {
	Messages model.Conversation `json:"messages" validate:"required,min=1,dive"`
	Model    string             `json:"model,omitempty" example:"gpt2"`
}

type ChatResponse struct {
	Reply string `json:"reply" example:"Hello! How can I help?"`
}

// EngineResolver hands out engines by backend id.
type EngineResolver interface {
	Resolve(ctx context.Context, backendID string) (llm.Engine, error)
}

type ChatOptions struct {
	// Seed pins stochastic sampling when set.
	Seed   *int64
	Stream stream.Options
}

type ChatService struct {
	engines EngineResolver
	opts    ChatOptions
}

func NewChatService(engines EngineResolver, opts ChatOptions) *ChatService {
	return &ChatService{engines: engines, opts: opts}
}

// Reply frames the conversation, generates with the endpoint's backend and
// returns the decoded continuation.
func (s *ChatService) Reply(ctx context.Context, ep Endpoint, req *ChatRequest) (string, error) {
	cfg, engine, tokens, err := s.prepare(ctx, ep, req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := engine.Generate(ctx, tokens, llm.OnesMask(len(tokens)), s.generationConfig(cfg, engine))
	metrics.RecordGeneration(cfg.Backend, "reply", time.Since(start).Seconds(), len(out), err)
	if err != nil {
		return "", err
	}

	reply, err := engine.Codec().Decode(ctx, out, true)
	if err != nil {
		return "", codecError(err)
	}
	log.Ctx(ctx).Debug().Str("endpoint", string(ep)).Int("new_tokens", len(out)).Msg("reply generated")
	return reply, nil
}

// Stream starts generation and returns a bridge yielding decoded fragments.
// Request, backend and prompt encoding failures are returned here; generation
// failures surface from the bridge.
func (s *ChatService) Stream(ctx context.Context, ep Endpoint, req *ChatRequest) (*stream.Bridge, error) {
	cfg, engine, tokens, err := s.prepare(ctx, ep, req)
	if err != nil {
		return nil, err
	}
	streamer, ok := engine.(llm.StreamingEngine)
	if !ok {
		return nil, fmt.Errorf("%w: %s", app_errors.ErrStreamingUnsupported, cfg.Backend)
	}

	genCfg := s.generationConfig(cfg, engine)
	mask := llm.OnesMask(len(tokens))
	producer := func(ctx context.Context, emit func(string) error) error {
		start := time.Now()
		fragments := 0
		err := streamer.GenerateStream(ctx, tokens, mask, genCfg, func(fragment string) error {
			fragments++
			return emit(fragment)
		})
		metrics.RecordGeneration(cfg.Backend, "stream", time.Since(start).Seconds(), fragments, err)
		return err
	}
	return stream.Start(ctx, producer, s.opts.Stream), nil
}

func (s *ChatService) prepare(ctx context.Context, ep Endpoint, req *ChatRequest) (EndpointConfig, llm.Engine, []int, error) {
	cfg, ok := LookupEndpoint(ep)
	if !ok {
		return cfg, nil, nil, fmt.Errorf("%w: unknown endpoint %q", app_errors.ErrValidation, ep)
	}
	if len(req.Messages) == 0 {
		return cfg, nil, nil, fmt.Errorf("%w: messages must not be empty", app_errors.ErrValidation)
	}
	if !modelAllowed(cfg.AllowedModels, req.Model) {
		return cfg, nil, nil, fmt.Errorf("%w: endpoint %s only supports model %q",
			app_errors.ErrUnsupportedModel, ep, strings.Join(cfg.AllowedModels, ", "))
	}

	engine, err := s.engines.Resolve(ctx, cfg.Backend)
	if err != nil {
		return cfg, nil, nil, err
	}
	tokens, err := engine.Codec().Encode(ctx, llm.FramePrompt(req.Messages))
	if err != nil {
		return cfg, nil, nil, codecError(err)
	}
	if len(tokens) == 0 {
		return cfg, nil, nil, fmt.Errorf("%w: prompt encoded to no tokens", app_errors.ErrCodec)
	}
	return cfg, engine, tokens, nil
}

func (s *ChatService) generationConfig(cfg EndpointConfig, engine llm.Engine) llm.GenerationConfig {
	gen := llm.GenerationConfig{
		MaxNewTokens: cfg.MaxNewTokens,
		Sampling:     cfg.Sampling,
		Temperature:  cfg.Temperature,
		StopTokenID:  engine.Codec().EOSTokenID(),
	}
	if cfg.Sampling == llm.Stochastic {
		gen.Seed = s.opts.Seed
	}
	return gen
}

func modelAllowed(allowed []string, name string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

func codecError(err error) error {
	if errors.Is(err, app_errors.ErrCodec) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", app_errors.ErrCodec, err)
}

// Package onnx runs exported causal-LM graphs with ONNX Runtime. A graph takes
// input_ids and attention_mask as int64 [1, n] and returns logits as
// float32 [1, n, vocab].
package onnx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/llm"
)

var (
	inputNames  = []string{"input_ids", "attention_mask"}
	outputNames = []string{"logits"}
)

// Options controls how the runtime and session are created.
type Options struct {
	// SharedLibraryPath points at libonnxruntime. Empty uses the default lookup.
	SharedLibraryPath string
	// IntraOpThreads caps per-operator parallelism. Zero leaves the runtime default.
	IntraOpThreads int
}

var (
	envMu   sync.Mutex
	envErr  error
	envDone bool
)

// initEnvironment initializes the process-wide ONNX Runtime environment once.
// A failed attempt is retried on the next call.
func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envDone {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if envErr = ort.InitializeEnvironment(); envErr != nil {
		return envErr
	}
	envDone = true
	return nil
}

// Session is an llm.Graph over an ONNX Runtime session. Run is safe for
// concurrent use; every call owns its tensors.
type Session struct {
	path    string
	session *ort.DynamicAdvancedSession
}

// Open loads the graph at path. A missing file reports ErrEngineUnavailable.
func Open(path string, opts Options) (*Session, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: graph %s not found, export the model before use", app_errors.ErrEngineUnavailable, path)
		}
		return nil, fmt.Errorf("%w: stat graph: %v", app_errors.ErrEngineUnavailable, err)
	}
	if err := initEnvironment(opts.SharedLibraryPath); err != nil {
		return nil, fmt.Errorf("%w: initialize onnxruntime: %v", app_errors.ErrEngineUnavailable, err)
	}

	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: session options: %v", app_errors.ErrEngineUnavailable, err)
	}
	defer sessionOpts.Destroy()
	if opts.IntraOpThreads > 0 {
		if err := sessionOpts.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("%w: set intra-op threads: %v", app_errors.ErrEngineUnavailable, err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path, inputNames, outputNames, sessionOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: load graph %s: %v", app_errors.ErrEngineUnavailable, path, err)
	}
	return &Session{path: path, session: session}, nil
}

// Forward runs one pass over the whole sequence.
func (s *Session) Forward(ctx context.Context, ids, mask []int64) (llm.Logits, error) {
	if err := ctx.Err(); err != nil {
		return llm.Logits{}, err
	}
	shape := ort.NewShape(1, int64(len(ids)))
	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return llm.Logits{}, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return llm.Logits{}, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{idsTensor, maskTensor}, outputs); err != nil {
		return llm.Logits{}, fmt.Errorf("run: %w", err)
	}
	defer outputs[0].Destroy()

	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return llm.Logits{}, fmt.Errorf("logits output has unexpected type %T", outputs[0])
	}
	dims := logits.GetShape()
	if len(dims) != 3 || dims[0] != 1 {
		return llm.Logits{}, fmt.Errorf("logits output has unexpected shape %v", dims)
	}

	// The tensor memory is released on return, so keep a copy.
	data := make([]float32, len(logits.GetData()))
	copy(data, logits.GetData())
	return llm.Logits{Data: data, Positions: int(dims[1]), Vocab: int(dims[2])}, nil
}

func (s *Session) Close() error {
	return s.session.Destroy()
}

package onnx

import (
	"neptune-ai/backend/internal/llm"
	"neptune-ai/backend/internal/llm/tokenizer"
)

// Load opens the GPT-2 graph at path and pairs it with the GPT-2 codec read
// from vocabDir.
func Load(name, path, vocabDir string, opts Options) (*llm.GraphEngine, error) {
	session, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	codec, err := tokenizer.NewGPT2(vocabDir)
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	return llm.NewGraphEngine(name, session, codec), nil
}

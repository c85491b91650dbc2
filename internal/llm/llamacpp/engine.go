package llamacpp

import (
	"context"

	"neptune-ai/backend/internal/llm"
)

// Load checks that the server at url is ready and returns a native engine
// whose runtime and codec both go through it.
func Load(ctx context.Context, name, url string, eosID int) (*llm.NativeEngine, error) {
	client := NewClient(url)
	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	return llm.NewNativeEngine(name, client, NewVocabulary(client, eosID)), nil
}

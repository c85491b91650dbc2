package llamacpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/llm"
)

// newFakeServer stands in for llama-server. It captures the last completion
// request body so tests can check what the client sent.
func newFakeServer(t *testing.T, captured *completionRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/tokenize":
			var req tokenizeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"tokens":[15496,11,995]}`))
		case "/detokenize":
			var req detokenizeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"content":"decoded %d"}`, len(req.Tokens))
		case "/completion":
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, json.Unmarshal(body, captured))
			if captured.Stream {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = w.Write([]byte("data: {\"content\":\"He\",\"tokens\":[1],\"stop\":false}\n\n"))
				_, _ = w.Write([]byte("data: {\"content\":\"llo\",\"tokens\":[2],\"stop\":false}\n\n"))
				_, _ = w.Write([]byte("data: {\"content\":\"\",\"stop\":true,\"stop_type\":\"eos\"}\n\n"))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":"Hi there","tokens":[17250,612],"stop":true,"stop_type":"limit"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient(t *testing.T) {
	var captured completionRequest
	server := newFakeServer(t, &captured)
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("Health", func(t *testing.T) {
		require.NoError(t, client.Health(ctx))
	})

	t.Run("Complete", func(t *testing.T) {
		seed := int64(42)
		ids, err := client.Complete(ctx, &llm.CompletionRequest{Prompt: []int{1, 2, 3}, MaxTokens: 200, Temperature: 0.7, Seed: &seed})
		require.NoError(t, err)
		assert.Equal(t, []int{17250, 612}, ids)

		assert.Equal(t, []int{1, 2, 3}, captured.Prompt)
		assert.Equal(t, 200, captured.NPredict)
		assert.InDelta(t, 0.7, captured.Temperature, 1e-9)
		require.NotNil(t, captured.Seed)
		assert.Equal(t, int64(42), *captured.Seed)
		assert.False(t, captured.Stream)
		assert.True(t, captured.ReturnTokens)
	})

	t.Run("CompleteStream", func(t *testing.T) {
		var fragments []string
		err := client.CompleteStream(ctx, &llm.CompletionRequest{Prompt: []int{1}, MaxTokens: 5}, func(c llm.CompletionChunk) error {
			fragments = append(fragments, c.Content)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"He", "llo", ""}, fragments)
		assert.True(t, captured.Stream)
	})

	t.Run("CompleteStream stops when the consumer fails", func(t *testing.T) {
		stop := errors.New("consumer gone")
		calls := 0
		err := client.CompleteStream(ctx, &llm.CompletionRequest{Prompt: []int{1}, MaxTokens: 5}, func(c llm.CompletionChunk) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("Vocabulary", func(t *testing.T) {
		vocab := NewVocabulary(client, 2)
		ids, err := vocab.Encode(ctx, "Hello, world")
		require.NoError(t, err)
		assert.Equal(t, []int{15496, 11, 995}, ids)

		text, err := vocab.Decode(ctx, []int{5, 2, 7}, true)
		require.NoError(t, err)
		assert.Equal(t, "decoded 2", text)

		text, err = vocab.Decode(ctx, []int{2}, true)
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

func TestClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Load(context.Background(), "native", server.URL, 2)
	assert.ErrorIs(t, err, app_errors.ErrEngineUnavailable)

	vocab := NewVocabulary(NewClient(server.URL), 2)
	_, err = vocab.Encode(context.Background(), "hi")
	assert.ErrorIs(t, err, app_errors.ErrCodec)
}

func TestClient_StopsAtConfiguredStopToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte("data: {\"content\":\"A\",\"tokens\":[5],\"stop\":false}\n\n"))
			_, _ = w.Write([]byte("data: {\"content\":\"\",\"tokens\":[2],\"stop\":false}\n\n"))
			_, _ = w.Write([]byte("data: {\"content\":\"C\",\"tokens\":[9],\"stop\":false}\n\n"))
			return
		}
		_, _ = w.Write([]byte(`{"content":"AC","tokens":[5,2,9,9],"stop":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()
	req := &llm.CompletionRequest{Prompt: []int{1}, MaxTokens: 10, StopTokenID: 2}

	ids, err := client.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2}, ids)

	var chunks []llm.CompletionChunk
	err = client.CompleteStream(ctx, req, func(c llm.CompletionChunk) error {
		chunks = append(chunks, c)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "A", chunks[0].Content)
	assert.False(t, chunks[0].Done)
	assert.True(t, chunks[1].Done)
}

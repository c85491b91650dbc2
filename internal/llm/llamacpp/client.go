// Package llamacpp talks to a llama.cpp `llama-server` instance, which owns
// the model weights, the vocabulary, and native sampling and streaming.
package llamacpp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/goccy/go-json"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/llm"
)

// Client is an llm.Runtime backed by llama-server's HTTP API.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{},
		url:    url,
	}
}

type completionRequest struct {
	Prompt       []int   `json:"prompt"`
	NPredict     int     `json:"n_predict"`
	Temperature  float64 `json:"temperature"`
	TopK         int     `json:"top_k,omitempty"`
	Seed         *int64  `json:"seed,omitempty"`
	Stream       bool    `json:"stream"`
	ReturnTokens bool    `json:"return_tokens"`
	CachePrompt  bool    `json:"cache_prompt"`
}

type completionResponse struct {
	Content  string `json:"content"`
	Tokens   []int  `json:"tokens"`
	Stop     bool   `json:"stop"`
	StopType string `json:"stop_type,omitempty"`
}

type tokenizeRequest struct {
	Content    string `json:"content"`
	AddSpecial bool   `json:"add_special"`
}

type tokenizeResponse struct {
	Tokens []int `json:"tokens"`
}

type detokenizeRequest struct {
	Tokens []int `json:"tokens"`
}

type detokenizeResponse struct {
	Content string `json:"content"`
}

// Health reports whether the server is up and has its model loaded.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return fmt.Errorf("could not create http request: %w", err)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: runtime at %s unreachable: %v", app_errors.ErrEngineUnavailable, c.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: runtime at %s not ready (status %d)", app_errors.ErrEngineUnavailable, c.url, resp.StatusCode)
	}
	return nil
}

func (c *Client) Complete(ctx context.Context, req *llm.CompletionRequest) ([]int, error) {
	var resp completionResponse
	if err := c.post(ctx, "/completion", c.completionBody(req, false), &resp); err != nil {
		return nil, err
	}
	ids := resp.Tokens
	if ids == nil {
		// Servers built before return_tokens existed only send text back.
		var err error
		if ids, err = c.Tokenize(ctx, resp.Content, false); err != nil {
			return nil, err
		}
	}
	return cutAtStop(ids, req.StopTokenID), nil
}

// cutAtStop drops everything after the first stop id. llama-server stops on
// the model's own end-of-generation tokens, which need not include the
// configured one.
func cutAtStop(ids []int, stop int) []int {
	if i := slices.Index(ids, stop); i >= 0 {
		return ids[:i+1]
	}
	return ids
}

func (c *Client) CompleteStream(ctx context.Context, req *llm.CompletionRequest, onChunk func(llm.CompletionChunk) error) error {
	body, err := json.Marshal(c.completionBody(req, true))
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/completion", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api returned non-200 status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		payload, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		payload = bytes.TrimSpace(payload)
		if bytes.Equal(payload, []byte("[DONE]")) {
			return nil
		}

		var chunk completionResponse
		if err := json.Unmarshal(payload, &chunk); err != nil {
			return fmt.Errorf("could not decode stream chunk: %w", err)
		}
		done := chunk.Stop || slices.Contains(chunk.Tokens, req.StopTokenID)
		if err := onChunk(llm.CompletionChunk{Content: chunk.Content, Tokens: chunk.Tokens, Done: done}); err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("could not read stream: %w", err)
	}
	return nil
}

// Tokenize converts text to ids with the server's vocabulary.
func (c *Client) Tokenize(ctx context.Context, text string, addSpecial bool) ([]int, error) {
	var resp tokenizeResponse
	if err := c.post(ctx, "/tokenize", tokenizeRequest{Content: text, AddSpecial: addSpecial}, &resp); err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

// Detokenize converts ids back to text with the server's vocabulary.
func (c *Client) Detokenize(ctx context.Context, ids []int) (string, error) {
	var resp detokenizeResponse
	if err := c.post(ctx, "/detokenize", detokenizeRequest{Tokens: ids}, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *Client) completionBody(req *llm.CompletionRequest, stream bool) completionRequest {
	return completionRequest{
		Prompt:       req.Prompt,
		NPredict:     req.MaxTokens,
		Temperature:  req.Temperature,
		TopK:         req.TopK,
		Seed:         req.Seed,
		Stream:       stream,
		ReturnTokens: true,
		CachePrompt:  true,
	}
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api returned non-200 status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty response from %s", path)
		}
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

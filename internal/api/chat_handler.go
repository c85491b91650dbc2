package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"neptune-ai/backend/internal/interfaces"
	"neptune-ai/backend/internal/service"
)

// ChatHandler serves the generation endpoints.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleChat godoc
// @Summary      Chat with the native model
// @Description  Generates one assistant reply with stochastic sampling (T=0.7, up to 200 tokens).
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      service.ChatRequest  true  "Conversation so far"
// @Success      200      {object}  service.ChatResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, service.EndpointChat)
}

// HandleNativeGPT2 godoc
// @Summary      Chat with GPT-2 on the native runtime
// @Description  Greedy decoding, up to 20 tokens. Only model "gpt2" is accepted.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      service.ChatRequest  true  "Conversation and model name"
// @Success      200      {object}  service.ChatResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /chat/native-gpt2 [post]
func (h *ChatHandler) HandleNativeGPT2(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, service.EndpointNativeGPT2)
}

// HandleONNXGPT2 godoc
// @Summary      Chat with GPT-2 on ONNX Runtime
// @Description  Greedy decoding over the exported graph, up to 20 tokens. Only model "gpt2" is accepted.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      service.ChatRequest  true  "Conversation and model name"
// @Success      200      {object}  service.ChatResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /chat/onnx-gpt2 [post]
func (h *ChatHandler) HandleONNXGPT2(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, service.EndpointONNXGPT2)
}

func (h *ChatHandler) reply(w http.ResponseWriter, r *http.Request, ep service.Endpoint) {
	var req service.ChatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	reply, err := h.service.Reply(r.Context(), ep, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, service.ChatResponse{Reply: reply})
}

// HandleChatStream godoc
// @Summary      Stream a reply from the native model
// @Description  Same generation as /chat, written as plain-text fragments while they are produced.
// @Tags         Chat
// @Accept       json
// @Produce      plain
// @Param        request  body      service.ChatRequest  true  "Conversation so far"
// @Success      200      {string}  string  "Reply fragments"
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Failure      504      {object}  ErrorResponse
// @Router       /chat/stream [post]
func (h *ChatHandler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	var req service.ChatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	bridge, err := h.service.Stream(r.Context(), service.EndpointChat, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	defer bridge.Close()

	// Hold the headers until the first fragment so an early failure still
	// gets its own status code.
	first, err := bridge.Next(r.Context())
	if err != nil && !errors.Is(err, io.EOF) {
		if r.Context().Err() != nil {
			hlog.FromRequest(r).Info().Msg("client disconnected before the stream started")
			return
		}
		respondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if err != nil {
		return
	}
	if _, err := io.WriteString(w, first); err != nil {
		hlog.FromRequest(r).Info().Err(err).Msg("client disconnected during stream")
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	// Headers are already sent, so a later failure can only cut the body short.
	if err := bridge.Pipe(w); err != nil {
		if r.Context().Err() != nil {
			hlog.FromRequest(r).Info().Msg("client disconnected during stream")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("stream ended early")
	}
}

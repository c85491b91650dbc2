package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"neptune-ai/backend/internal/api"
	"neptune-ai/backend/internal/interfaces/mocks"
	"neptune-ai/backend/internal/service"
)

type routerMocks struct {
	chat     *mocks.MockChatService
	auth     *mocks.MockAuthService
	sessions *mocks.MockSessionService
	models   *mocks.MockModelService
}

func setupRouter(t *testing.T) (http.Handler, routerMocks) {
	m := routerMocks{
		chat:     mocks.NewMockChatService(t),
		auth:     mocks.NewMockAuthService(t),
		sessions: mocks.NewMockSessionService(t),
		models:   mocks.NewMockModelService(t),
	}
	router := api.NewRouter(
		api.RouterConfig{Logger: zerolog.Nop(), AllowedOrigins: []string{"http://localhost:3000"}},
		api.NewChatHandler(m.chat),
		api.NewAuthHandler(m.auth),
		api.NewSessionHandler(m.sessions),
		api.NewModelHandler(m.models),
	)
	return router, m
}

func TestRouter(t *testing.T) {
	t.Run("healthz", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "neptune_")
	})

	t.Run("models", func(t *testing.T) {
		router, m := setupRouter(t)
		m.models.On("List").Return([]service.BackendInfo{{Backend: "onnx-gpt2", Endpoint: "/chat/onnx-gpt2"}}).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/models", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"backend":"onnx-gpt2"`)
	})

	t.Run("chat routes to the chat endpoint", func(t *testing.T) {
		router, m := setupRouter(t)
		m.chat.On("Reply", mock.Anything, service.EndpointChat, mock.Anything).Return("hey", nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[{"role":"user","content":"Hi"}]}`)))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"reply":"hey"}`, rr.Body.String())
	})

	t.Run("sessions require a token", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/session/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("CORS preflight from the allowed origin", func(t *testing.T) {
		router, _ := setupRouter(t)
		req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("CORS ignores other origins", func(t *testing.T) {
		router, _ := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://evil.test")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

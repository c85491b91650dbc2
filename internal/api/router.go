package api

import (
	"net/http"
	"time"

	// Registers the generated OpenAPI document with swag.
	_ "neptune-ai/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	// GenerationTimeout bounds the non-streaming generation routes.
	GenerationTimeout time.Duration
}

// NewRouter creates the chi router with every route of the service.
func NewRouter(cfg RouterConfig, chat *ChatHandler, auth *AuthHandler, sessions *SessionHandler, models *ModelHandler) *chi.Mux {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 5 * time.Minute
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(cfg.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors(cfg.AllowedOrigins))
	r.Use(instrument)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/models", models.HandleListModels)

		r.Post("/auth/register", auth.HandleRegister)
		r.Post("/auth/login", auth.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Get("/auth/me", auth.HandleMe)
			r.Post("/session/", sessions.HandleCreateSession)
			r.Get("/session/", sessions.HandleListSessions)
			r.Get("/session/{sessionID}", sessions.HandleGetSession)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.GenerationTimeout))
		r.Post("/chat", chat.HandleChat)
		r.Post("/chat/native-gpt2", chat.HandleNativeGPT2)
		r.Post("/chat/onnx-gpt2", chat.HandleONNXGPT2)
	})

	// Streaming must not sit behind a request timeout; the bridge has its
	// own inactivity window.
	r.Post("/chat/stream", chat.HandleChatStream)

	return r
}

// requestIDLogger adds chi's request id to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

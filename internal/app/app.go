package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"neptune-ai/backend/internal/api"
	"neptune-ai/backend/internal/auth"
	"neptune-ai/backend/internal/config"
	"neptune-ai/backend/internal/database"
	"neptune-ai/backend/internal/llm"
	"neptune-ai/backend/internal/llm/llamacpp"
	"neptune-ai/backend/internal/llm/onnx"
	"neptune-ai/backend/internal/registry"
	"neptune-ai/backend/internal/repository"
	"neptune-ai/backend/internal/service"
	"neptune-ai/backend/internal/stream"
)

// App is the wired server and the resources it owns.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Registry *registry.Registry
	Server   *http.Server
}

// NewApp opens the database and wires every layer. Engines are registered
// but not loaded.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := repository.NewSQLiteRepository(db)
	engines := NewRegistry(cfg)

	chatService := service.NewChatService(engines, service.ChatOptions{
		Seed: chatSeed(cfg),
		Stream: stream.Options{
			BufferSize:  cfg.StreamBufferSize,
			IdleTimeout: cfg.StreamIdleTimeout,
		},
	})
	authService := service.NewAuthService(repo, auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiry))
	sessionService := service.NewSessionService(repo)
	modelService := service.NewModelService(engines)

	router := api.NewRouter(
		api.RouterConfig{Logger: log.Logger, AllowedOrigins: cfg.CORSAllowedOrigins},
		api.NewChatHandler(chatService),
		api.NewAuthHandler(authService),
		api.NewSessionHandler(sessionService),
		api.NewModelHandler(modelService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{Config: cfg, DB: db, Registry: engines, Server: server}, nil
}

// NewRegistry registers a loader for every backend in cfg.
func NewRegistry(cfg *config.Config) *registry.Registry {
	reg := registry.New()
	reg.Register(service.BackendNative, func(ctx context.Context) (llm.Engine, error) {
		return llamacpp.Load(ctx, service.BackendNative, cfg.NativeURL, cfg.NativeEOSTokenID)
	})
	reg.Register(service.BackendNativeGPT2, func(ctx context.Context) (llm.Engine, error) {
		return llamacpp.Load(ctx, service.BackendNativeGPT2, cfg.NativeGPT2URL, cfg.NativeGPT2EOSTokenID)
	})
	reg.Register(service.BackendONNXGPT2, func(ctx context.Context) (llm.Engine, error) {
		return onnx.Load(service.BackendONNXGPT2, cfg.ONNXModelPath, cfg.GPT2VocabDir, onnx.Options{
			SharedLibraryPath: cfg.ONNXRuntimeLib,
			IntraOpThreads:    cfg.ONNXIntraOpThreads,
		})
	})
	return reg
}

func chatSeed(cfg *config.Config) *int64 {
	if cfg.ChatSeed == nil {
		return nil
	}
	seed := *cfg.ChatSeed
	return &seed
}

// Run loads configuration, serves until ctx is cancelled, and returns the
// process exit code.
func Run(ctx context.Context) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logConfigSource()
	if cfg.UsesDefaultJWTSecret() {
		log.Warn().Msg("JWT_SECRET is not set, tokens are signed with the default placeholder secret")
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize application")
		return 1
	}
	defer func() {
		if err := app.DB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
		}
	}()

	if len(cfg.PreloadBackends) > 0 {
		go app.Registry.Warm(ctx, cfg.PreloadBackends...)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.AppPort).Strs("backends", app.Registry.Backends()).Msg("starting server")
		errCh <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return 1
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			return 1
		}
	}
	return 0
}

// Migrate applies schema migrations and exits.
func Migrate() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	SetupLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Error().Err(err).Msg("migration failed")
		return 1
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database connection")
		return 1
	}
	log.Info().Str("path", cfg.DatabasePath).Msg("migrations applied")
	return 0
}

func logConfigSource() {
	if file := viper.ConfigFileUsed(); file != "" {
		log.Info().Str("file", file).Msg("loaded configuration from file")
	} else {
		log.Info().Msg("configuration file not found, using environment variables and defaults")
	}
}

// SetupLogger configures the global zerolog logger.
func SetupLogger(logLevel, format string) {
	var level zerolog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = zerolog.DebugLevel
	case "WARN":
		level = zerolog.WarnLevel
	case "ERROR":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(format, "console") {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger
}

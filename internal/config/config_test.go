package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 8000, cfg.AppPort)
		assert.Equal(t, 2, cfg.NativeEOSTokenID)
		assert.Equal(t, 50256, cfg.NativeGPT2EOSTokenID)
		assert.Equal(t, "./onnx_models/gpt2.onnx", cfg.ONNXModelPath)
		assert.Equal(t, 60*time.Second, cfg.StreamIdleTimeout)
		assert.Equal(t, 16, cfg.StreamBufferSize)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
		assert.Empty(t, cfg.PreloadBackends)
		assert.Nil(t, cfg.ChatSeed)
		assert.True(t, cfg.UsesDefaultJWTSecret())
	})

	t.Run("environment overrides", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("STREAM_IDLE_TIMEOUT", "5s")
		t.Setenv("PRELOAD_BACKENDS", "native, onnx-gpt2")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
		t.Setenv("CHAT_SEED", "42")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.StreamIdleTimeout)
		assert.Equal(t, []string{"native", "onnx-gpt2"}, cfg.PreloadBackends)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
		require.NotNil(t, cfg.ChatSeed)
		assert.Equal(t, int64(42), *cfg.ChatSeed)
	})

	t.Run("zero seed is pinned", func(t *testing.T) {
		viper.Reset()
		t.Chdir(t.TempDir())
		t.Setenv("CHAT_SEED", "0")
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.NotNil(t, cfg.ChatSeed)
		assert.Equal(t, int64(0), *cfg.ChatSeed)
		assert.False(t, cfg.UsesDefaultJWTSecret())
	})
}

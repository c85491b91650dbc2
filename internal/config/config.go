package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is the placeholder signing secret used when JWT_SECRET is unset.
const DefaultJWTSecret = "change-me"

type Config struct {
	AppPort      int    `mapstructure:"APP_PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogFormat    string `mapstructure:"LOG_FORMAT"`

	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTExpiry          time.Duration `mapstructure:"JWT_EXPIRY"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	NativeURL            string `mapstructure:"NATIVE_URL"`
	NativeEOSTokenID     int    `mapstructure:"NATIVE_EOS_TOKEN_ID"`
	NativeGPT2URL        string `mapstructure:"NATIVE_GPT2_URL"`
	NativeGPT2EOSTokenID int    `mapstructure:"NATIVE_GPT2_EOS_TOKEN_ID"`

	ONNXModelPath      string `mapstructure:"ONNX_MODEL_PATH"`
	ONNXRuntimeLib     string `mapstructure:"ONNX_RUNTIME_LIB"`
	ONNXIntraOpThreads int    `mapstructure:"ONNX_INTRA_OP_THREADS"`
	GPT2VocabDir       string `mapstructure:"GPT2_VOCAB_DIR"`

	StreamIdleTimeout time.Duration `mapstructure:"STREAM_IDLE_TIMEOUT"`
	StreamBufferSize  int           `mapstructure:"STREAM_BUFFER_SIZE"`
	// ChatSeed pins stochastic sampling on /chat when set. Nil leaves it unseeded.
	ChatSeed        *int64   `mapstructure:"CHAT_SEED"`
	PreloadBackends []string `mapstructure:"PRELOAD_BACKENDS"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "./data/neptune.db")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.SetDefault("JWT_SECRET", DefaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY", 24*time.Hour)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	viper.SetDefault("NATIVE_URL", "http://localhost:8080")
	viper.SetDefault("NATIVE_EOS_TOKEN_ID", 2)
	viper.SetDefault("NATIVE_GPT2_URL", "http://localhost:8081")
	viper.SetDefault("NATIVE_GPT2_EOS_TOKEN_ID", 50256)

	viper.SetDefault("ONNX_MODEL_PATH", "./onnx_models/gpt2.onnx")
	viper.SetDefault("ONNX_RUNTIME_LIB", "")
	viper.SetDefault("ONNX_INTRA_OP_THREADS", 0)
	viper.SetDefault("GPT2_VOCAB_DIR", "")

	viper.SetDefault("STREAM_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("STREAM_BUFFER_SIZE", 16)
	// No default, so an unset seed stays nil and 0 is a valid seed.
	_ = viper.BindEnv("CHAT_SEED")
	viper.SetDefault("PRELOAD_BACKENDS", []string{})

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.PreloadBackends = splitList(cfg.PreloadBackends)

	return &cfg, nil
}

// splitList accepts both real lists and a single comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// UsesDefaultJWTSecret reports whether tokens would be signed with the
// placeholder secret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret
}

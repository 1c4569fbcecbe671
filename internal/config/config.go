package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppVersion      string
	AppEnv          string
	AppPort         string
	CORSOrigins     string
	MaxBodySizeMB   int
	OpenAIAPIKey    string
	OpenAIModel     string
	EvalMaxTokens   int
	EvalTemperature float32
	GeminiAPIKey    string
	GeminiModel     string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// MaxBodyBytes returns the request body limit in bytes.
func (c Config) MaxBodyBytes() int {
	return c.MaxBodySizeMB * 1024 * 1024
}

// Load reads configuration values from environment variables and optional
// .env file. Both provider credentials are mandatory: the process refuses to
// serve traffic without them.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MATHAI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Math Evaluation API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("max.body_mb", 16)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("eval.max_tokens", 1024)
	v.SetDefault("eval.temperature", 0.0)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("rate.limit_max", 30)
	v.SetDefault("rate.limit_window", "1m")

	window, err := time.ParseDuration(v.GetString("rate.limit_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppVersion:      v.GetString("app.version"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		CORSOrigins:     v.GetString("cors.origins"),
		MaxBodySizeMB:   v.GetInt("max.body_mb"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		OpenAIModel:     v.GetString("openai.model"),
		EvalMaxTokens:   v.GetInt("eval.max_tokens"),
		EvalTemperature: float32(v.GetFloat64("eval.temperature")),
		GeminiAPIKey:    v.GetString("gemini_api_key"),
		GeminiModel:     v.GetString("gemini.model"),
		RateLimitMax:    v.GetInt("rate.limit_max"),
		RateLimitWindow: window,
	}

	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("openai api key must be provided")
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("gemini api key must be provided")
	}

	if cfg.MaxBodySizeMB <= 0 {
		cfg.MaxBodySizeMB = 16
	}

	if cfg.EvalMaxTokens <= 0 {
		cfg.EvalMaxTokens = 1024
	}

	return cfg, nil
}

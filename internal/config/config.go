package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"healthmate-backend/internal/services"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// Gemini AI. The key may be empty; requests then fail as unavailable.
	GeminiAPIKey         string  `env:"GEMINI_API_KEY"`
	GeminiTextModel      string  `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiVisionModel    string  `env:"GEMINI_VISION_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiTemperature    float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	GeminiTopP           float32 `env:"GEMINI_TOP_P" envDefault:"0.95"`
	GeminiConcurrentReqs int     `env:"GEMINI_CONCURRENT_REQUESTS" envDefault:"5"`

	// Sessions
	RedisURL      string        `env:"REDIS_URL"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionMax    int           `env:"SESSION_MAX" envDefault:"10000"`
	SessionSecret string        `env:"SESSION_SECRET"`

	// Limits
	RateLimitPerMinute int   `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	MaxImageBytes      int64 `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
	}

	if cfg.GeminiConcurrentReqs <= 0 {
		return nil, fmt.Errorf("GEMINI_CONCURRENT_REQUESTS must be positive, got %d", cfg.GeminiConcurrentReqs)
	}
	if cfg.SessionMax <= 0 {
		return nil, fmt.Errorf("SESSION_MAX must be positive, got %d", cfg.SessionMax)
	}

	return cfg, nil
}

// Gemini returns the read-only settings handed to the gateway.
func (c *Config) Gemini() services.GeminiConfig {
	return services.GeminiConfig{
		APIKey:         c.GeminiAPIKey,
		TextModel:      c.GeminiTextModel,
		VisionModel:    c.GeminiVisionModel,
		Temperature:    c.GeminiTemperature,
		TopP:           c.GeminiTopP,
		ConcurrentReqs: c.GeminiConcurrentReqs,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

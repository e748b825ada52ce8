package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment, loaded once at
// startup. A .env file in the working directory is honored for local dev.
type Config struct {
	Port    string
	DBPath  string
	GinMode string

	AdminKey       string // empty disables admin auth
	AllowedOrigins []string

	// Provider selection and credentials.
	Provider    string // "gemini" or "openai"
	GeminiModel string
	OpenAIModel string
	APIKeys     []string

	// Source language of authored UI strings; requests for it pass through.
	SourceLang string

	// Credential rate limiting.
	MaxCallsPerWindow int
	WindowDuration    time.Duration
	DefaultCooldown   time.Duration

	// Dispatch tuning.
	CallTimeout  time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	MaxChunkSize int

	// Public endpoint rate limiting, requests per second per client IP.
	PublicRateLimit float64
	PublicRateBurst int

	PreloadOnStart bool
}

// Load reads configuration from the environment, applying defaults for
// everything optional. It fails only on values that cannot be parsed.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := &Config{
		Port:              envString("PORT", "8080"),
		DBPath:            envString("DB_PATH", "./data/avrentals.db"),
		GinMode:           envString("GIN_MODE", "release"),
		AdminKey:          os.Getenv("ADMIN_KEY"),
		AllowedOrigins:    splitList(envString("ALLOWED_ORIGINS", "http://localhost:3000")),
		Provider:          envString("TRANSLATION_PROVIDER", "gemini"),
		GeminiModel:       envString("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIModel:       envString("OPENAI_MODEL", "gpt-4o-mini"),
		SourceLang:        envString("SOURCE_LANG", "en"),
		PreloadOnStart:    envBool("TRANSLATION_PRELOAD", true),
		MaxRetries:        2,
		MaxChunkSize:      10,
		MaxCallsPerWindow: 8,
		PublicRateBurst:   20,
	}

	cfg.APIKeys = loadAPIKeys()

	var err error
	if cfg.MaxCallsPerWindow, err = envInt("TRANSLATION_CALLS_PER_WINDOW", cfg.MaxCallsPerWindow); err != nil {
		return nil, err
	}
	if cfg.WindowDuration, err = envDuration("TRANSLATION_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.DefaultCooldown, err = envDuration("TRANSLATION_COOLDOWN", time.Minute); err != nil {
		return nil, err
	}
	if cfg.CallTimeout, err = envDuration("TRANSLATION_CALL_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = envInt("TRANSLATION_MAX_RETRIES", cfg.MaxRetries); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = envDuration("TRANSLATION_RETRY_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxChunkSize, err = envInt("TRANSLATION_MAX_CHUNK", cfg.MaxChunkSize); err != nil {
		return nil, err
	}
	if cfg.PublicRateLimit, err = envFloat("PUBLIC_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.PublicRateBurst, err = envInt("PUBLIC_RATE_BURST", cfg.PublicRateBurst); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("unknown TRANSLATION_PROVIDER %q (want gemini or openai)", cfg.Provider)
	}

	return cfg, nil
}

// loadAPIKeys reads the credential rotation: GEMINI_API_KEYS is a comma
// separated list; GOOGLE_GENERATIVE_AI_API_KEY is the single-key fallback.
func loadAPIKeys() []string {
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		return splitList(v)
	}
	if v := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY"); v != "" {
		return []string{v}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		return []string{v}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes"
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return d, nil
}

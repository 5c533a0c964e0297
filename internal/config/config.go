package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	OpenRouter LLMConfig
	OpenAI     LLMConfig
	Geocoding  GeocodingConfig
	Redis      RedisConfig
	Probe      ProbeConfig
	Dispute    DisputeConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	CORSAllowOrigin string
}

type LogConfig struct {
	Env   string
	Level string
}

// LLMConfig describes one OpenAI-compatible chat-completion endpoint.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Referer     string
	Title       string
}

type GeocodingConfig struct {
	BaseURL      string
	ContactEmail string
	Timeout      time.Duration
	CacheSize    int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ProbeConfig struct {
	Timeout     time.Duration
	Concurrency int
}

type DisputeConfig struct {
	UploadDir      string
	PolicyDocsDir  string
	MaxUploadBytes int64
}

// Load reads configuration from the environment, after merging an optional
// .env file. Credentials are optional here; endpoints that need them report
// the absence per request.
func Load() (*Config, error) {
	_ = godotenv.Load()

	llmTimeout := getEnvAsDuration("LLM_TIMEOUT", 45*time.Second)

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			CORSAllowOrigin: strings.TrimSpace(getEnv("CORS_ALLOW_ORIGIN", "")),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "production"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		OpenRouter: LLMConfig{
			APIKey:      getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnv("HOSPITAL_MODEL", "perplexity/sonar"),
			Temperature: getEnvAsFloat("HOSPITAL_TEMPERATURE", 0.2),
			MaxTokens:   getEnvAsInt("HOSPITAL_MAX_TOKENS", 1200),
			Timeout:     llmTimeout,
			Referer:     getEnv("OPENROUTER_REFERER", "http://localhost:5000"),
			Title:       getEnv("OPENROUTER_TITLE", "Nearby Hospitals Price Finder"),
		},
		OpenAI: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("DISPUTE_MODEL", "gpt-4.1-mini"),
			Temperature: getEnvAsFloat("DISPUTE_TEMPERATURE", 0),
			Timeout:     llmTimeout,
		},
		Geocoding: GeocodingConfig{
			BaseURL:      getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			ContactEmail: getEnv("NOMINATIM_EMAIL", ""),
			Timeout:      getEnvAsDuration("GEOCODE_TIMEOUT", 8*time.Second),
			CacheSize:    getEnvAsInt("GEOCODE_CACHE_SIZE", 512),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Probe: ProbeConfig{
			Timeout:     getEnvAsDuration("PROBE_TIMEOUT", 3*time.Second),
			Concurrency: getEnvAsInt("PROBE_CONCURRENCY", 8),
		},
		Dispute: DisputeConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "./dispute/uploads"),
			PolicyDocsDir:  getEnv("POLICY_DOCS_DIR", "./dispute/policy_docs"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 32<<20)),
		},
	}

	if cfg.Geocoding.CacheSize <= 0 {
		cfg.Geocoding.CacheSize = 512
	}
	if cfg.Probe.Concurrency <= 0 {
		cfg.Probe.Concurrency = 1
	}

	return cfg, nil
}

// AllowedOrigins returns the CORS allow-list: the local front-end dev
// servers plus the optional extra origin.
func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	if extra := c.Server.CORSAllowOrigin; extra != "" && extra != origins[0] && extra != origins[1] {
		origins = append(origins, extra)
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

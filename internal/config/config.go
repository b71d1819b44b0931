package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
)

// Sentiment and summary backend names.
const (
	BackendHuggingFace = "huggingface"
	BackendVader       = "vader"
	BackendOpenAI      = "openai"
	BackendOllama      = "ollama"
	BackendNone        = "none"
)

var defaultSummaryModels = map[string]string{
	BackendHuggingFace: "t5-small,sshleifer/distilbart-cnn-12-6,facebook/bart-large-cnn",
	BackendOpenAI:      "gpt-4o-mini",
	BackendOllama:      "llama3.2",
}

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	AuthToken         string
	DBURL             string
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	LogLevel         string
	SeedOnStartup    bool
	MigrateOnStartup bool

	SentimentBackends  []string
	SentimentModel     string
	SummaryBackend     string
	SummaryModels      []string
	SummaryLightModels []string

	InferenceURL         string
	InferenceAPIKey      string
	InferenceTimeoutSecs int
	InferenceRPS         float64
	InferenceMaxRetries  int

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string
}

// Load reads configuration for the API server, applying defaults and validation.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN is required")
	}
	return cfg, nil
}

// LoadCLI is Load without the server-only requirements.
func LoadCLI() (Config, error) {
	return load()
}

func load() (Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	summaryBackend := strings.ToLower(getEnv("SUMMARY_BACKEND", BackendHuggingFace))
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		AuthToken:         os.Getenv("AUTH_TOKEN"),
		DBURL:             os.Getenv("DB_URL"),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 60),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),

		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		SeedOnStartup:    getEnvBool("SEED_ON_STARTUP", true),
		MigrateOnStartup: getEnvBool("MIGRATE_ON_STARTUP", true),

		SentimentBackends:  getEnvList("SENTIMENT_BACKENDS", BackendVader),
		SentimentModel:     getEnv("SENTIMENT_MODEL", "distilbert-base-uncased-finetuned-sst-2-english"),
		SummaryBackend:     summaryBackend,
		SummaryModels:      getEnvList("SUMMARY_MODELS", defaultSummaryModels[summaryBackend]),
		SummaryLightModels: getEnvList("SUMMARY_LIGHT_MODELS", "t5-small"),

		InferenceURL:         getEnv("INFERENCE_URL", "http://localhost:8090"),
		InferenceAPIKey:      os.Getenv("INFERENCE_API_KEY"),
		InferenceTimeoutSecs: getEnvInt("INFERENCE_TIMEOUT_SECS", 30),
		InferenceRPS:         getEnvFloat("INFERENCE_RPS", 5),
		InferenceMaxRetries:  getEnvInt("INFERENCE_MAX_RETRIES", 2),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.ReadTimeoutSecs <= 0 || cfg.WriteTimeoutSecs <= 0 || cfg.IdleTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT and SERVER_IDLE_TIMEOUT must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	for i, b := range cfg.SentimentBackends {
		b = strings.ToLower(b)
		cfg.SentimentBackends[i] = b
		if b != BackendHuggingFace && b != BackendVader {
			return Config{}, fmt.Errorf("SENTIMENT_BACKENDS: unknown backend %q", b)
		}
	}
	switch cfg.SummaryBackend {
	case BackendHuggingFace, BackendOllama, BackendNone:
	case BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_BACKEND is openai")
		}
	default:
		return Config{}, fmt.Errorf("SUMMARY_BACKEND: unknown backend %q", cfg.SummaryBackend)
	}
	if u, err := url.Parse(cfg.InferenceURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("INFERENCE_URL must be an absolute URL")
	}
	if cfg.InferenceTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("INFERENCE_TIMEOUT_SECS must be positive")
	}
	if cfg.InferenceRPS < 0 {
		return Config{}, fmt.Errorf("INFERENCE_RPS must be non-negative")
	}
	if cfg.InferenceMaxRetries < 0 {
		return Config{}, fmt.Errorf("INFERENCE_MAX_RETRIES must be non-negative")
	}

	return cfg, nil
}

// InferenceTimeout is INFERENCE_TIMEOUT_SECS as a duration.
func (c Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutSecs) * time.Second
}

// IsLightModel reports whether name is listed in SUMMARY_LIGHT_MODELS.
func (c Config) IsLightModel(name string) bool {
	for _, m := range c.SummaryLightModels {
		if m == name {
			return true
		}
	}
	return false
}

// loadEnvFile populates unset variables from a dotenv file, if one exists.
func loadEnvFile(path string) error {
	if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ENV_FILE %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	GLPI         GLPIConfig
	LLM          LLMConfig
	Storage      StorageConfig
	Pipeline     PipelineConfig
	Cleaner      CleanerConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Webhook      WebhookConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// GLPIConfig holds helpdesk API connection values.
type GLPIConfig struct {
	URL            string
	AppToken       string
	UserToken      string
	TimeoutSeconds int
}

// LLMConfig configures the completion and embedding backend. The backend is
// OpenAI-compatible; temperature defaults to zero so repeated runs of the
// same ticket stay close to deterministic.
type LLMConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
	MaxRetries     int
}

// StorageConfig holds S3-compatible object storage values.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// PipelineConfig tunes the ticket-to-report pipeline.
type PipelineConfig struct {
	TopK              int
	ChunkTags         []string
	RunTimeoutSeconds int
	StatusTTLMinutes  int
}

// CleanerConfig extends the built-in noise phrase list. The exact wording of
// the filters tracks observed model output, so it lives in configuration
// rather than code.
type CleanerConfig struct {
	ExtraNoisePatterns []string
}

// PostgresConfig holds DB connection values for the optional run archive.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the run-status store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// WebhookConfig defines optional webhook authentication. An empty secret
// disables the bearer-token check.
type WebhookConfig struct {
	JWTSecret string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-report-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8001"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		GLPI: GLPIConfig{
			URL:            strings.TrimRight(os.Getenv("GLPI_URL"), "/"),
			AppToken:       os.Getenv("GLPI_APP_TOKEN"),
			UserToken:      os.Getenv("GLPI_USER_TOKEN"),
			TimeoutSeconds: getEnvAsInt("GLPI_TIMEOUT_SECONDS", 15),
		},
		LLM: LLMConfig{
			BaseURL:        strings.TrimRight(getEnv("LLM_API_BASE", "https://chatapi.akash.network/api/v1"), "/"),
			APIKey:         os.Getenv("LLM_API_KEY"),
			Model:          getEnv("LLM_MODEL", "Meta-Llama-3-1-8B-Instruct-FP8"),
			EmbeddingModel: getEnv("LLM_EMBEDDING_MODEL", "BAAI/bge-large-en-v1.5"),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.0),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 512),
			TimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 60),
			MaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 3),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Bucket:          os.Getenv("STORAGE_BUCKET"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", true),
		},
		Pipeline: PipelineConfig{
			TopK:              getEnvAsInt("PIPELINE_RETRIEVAL_TOP_K", 3),
			ChunkTags:         getEnvAsList("PIPELINE_CHUNK_TAGS"),
			RunTimeoutSeconds: getEnvAsInt("PIPELINE_RUN_TIMEOUT_SECONDS", 180),
			StatusTTLMinutes:  getEnvAsInt("PIPELINE_STATUS_TTL_MINUTES", 1440),
		},
		Cleaner: CleanerConfig{
			ExtraNoisePatterns: getEnvAsList("CLEANER_EXTRA_NOISE_PATTERNS"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Webhook: WebhookConfig{
			JWTSecret: os.Getenv("WEBHOOK_JWT_SECRET"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.GLPI.URL == "" {
		return nil, fmt.Errorf("GLPI_URL is required")
	}
	if cfg.GLPI.AppToken == "" {
		return nil, fmt.Errorf("GLPI_APP_TOKEN is required")
	}
	if cfg.Storage.Endpoint == "" || cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("STORAGE_ENDPOINT and STORAGE_BUCKET are required")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RunTimeout returns the per-run pipeline deadline.
func (p PipelineConfig) RunTimeout() time.Duration {
	if p.RunTimeoutSeconds <= 0 {
		return 3 * time.Minute
	}
	return time.Duration(p.RunTimeoutSeconds) * time.Second
}

// StatusTTL returns how long run-status records are retained.
func (p PipelineConfig) StatusTTL() time.Duration {
	if p.StatusTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(p.StatusTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

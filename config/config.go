package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"fern-api"`
	Environment                   string   `env:"ENVIRONMENT" env-default:"local"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,PATCH,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Provider selection
	ProviderKind       string        `env:"PROVIDER_KIND" env-default:"postgres"`
	ProviderChain      []string      `env:"PROVIDER_CHAIN" env-default:""`
	ProviderContentDir string        `env:"PROVIDER_CONTENT_DIR" env-default:"content"`
	ProviderBaseURL    string        `env:"PROVIDER_BASE_URL" env-default:""`
	ProviderAPIKey     string        `env:"PROVIDER_API_KEY" env-default:""`
	ProviderCacheTTL   time.Duration `env:"PROVIDER_CACHE_TTL" env-default:"60s"`

	// PostgreSQL
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"fern"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`

	// Auth
	AuthEnabled   bool   `env:"AUTH_ENABLED" env-default:"false"`
	AuthIssuerURL string `env:"AUTH_ISSUER_URL" env-default:""`
	AuthClientID  string `env:"AUTH_CLIENT_ID" env-default:""`

	// Kafka change feed
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"true"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"fern-changes"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`

	// Redis cache
	RedisEnabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// Embeddings
	OpenAIAPIKey         string `env:"OPENAI_API_KEY" env-default:""`
	OpenAIBaseURL        string `env:"OPENAI_BASE_URL" env-default:""`
	OpenAIEmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`

	// Feature flags. Features is a JSON object of named booleans that
	// overrides the individual flags, e.g. {"permissions": false}.
	Features           string `env:"FEATURES" env-default:""`
	PermissionsEnabled bool   `env:"PERMISSIONS_ENABLED" env-default:"true"`
	MultiGroupEnabled  bool   `env:"MULTI_GROUP_ENABLED" env-default:"true"`
	SearchEnabled      bool   `env:"SEARCH_ENABLED" env-default:"true"`
	RealtimeEnabled    bool   `env:"REALTIME_ENABLED" env-default:"false"`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingExporter string `env:"TRACING_EXPORTER" env-default:"console"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" env-default:""`
}

// New loads configuration from the environment, applying .env first when
// present.
func New() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}
	if err := cfg.applyFeatures(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFeatures folds the FEATURES JSON object onto the flag fields.
// Unknown names are ignored.
func (c *Config) applyFeatures() error {
	if c.Features == "" {
		return nil
	}

	var features map[string]bool
	if err := json.Unmarshal([]byte(c.Features), &features); err != nil {
		return fmt.Errorf("failed to parse FEATURES: %w", err)
	}

	for name, enabled := range features {
		switch name {
		case "auth":
			c.AuthEnabled = enabled
		case "permissions":
			c.PermissionsEnabled = enabled
		case "multi_group":
			c.MultiGroupEnabled = enabled
		case "search":
			c.SearchEnabled = enabled
		case "realtime":
			c.RealtimeEnabled = enabled
		}
	}
	return nil
}

// DatabaseDSN builds the postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUserName, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode)
}

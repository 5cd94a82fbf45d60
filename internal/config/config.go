package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	Env             string
	LogLevel        string
	CORSOrigins     []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	MongoURI                    string
	MongoDBName                 string
	MongoMaxPoolSize            uint64
	MongoMinPoolSize            uint64
	MongoConnectTimeout         time.Duration
	MongoServerSelectionTimeout time.Duration
	MigrationsPath              string
	RedisAddr      string
	RedisPassword  string
	GCSBucket      string

	KafkaBrokers     []string
	OrderEventsTopic string

	CartWriteRetries int

	JWTSecret        string
	JWTRefreshSecret string
	JWTExpiresIn     time.Duration
	JWTRefreshIn     time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present; real variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8888"),
		GRPCPort:        getEnv("GRPC_PORT", "50052"),
		Env:             getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGIN", "http://localhost:6969")),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_BYTES", 32<<20)), // 32MB

		MongoURI:                    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:                 getEnv("MONGO_DB_NAME", "storefront"),
		MongoMaxPoolSize:            getUint("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPoolSize:            getUint("MONGO_MIN_POOL_SIZE", 10),
		MongoConnectTimeout:         getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		MongoServerSelectionTimeout: getDuration("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second),
		MigrationsPath:              getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		GCSBucket:      getEnv("GCS_BUCKET", ""),

		KafkaBrokers:     splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		OrderEventsTopic: getEnv("ORDER_EVENTS_TOPIC", "order-events"),

		CartWriteRetries: getInt("CART_WRITE_RETRIES", 3),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTExpiresIn:     getDuration("JWT_EXPIRES_IN", time.Hour),
		JWTRefreshIn:     getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),

		GoogleClientID:     getEnv("GOOGLE_APP_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_APP_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_APP_CLIENT_REDIRECT_LOGIN", "http://localhost:8888/google/redirect"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.MongoMaxPoolSize == 0 || c.MongoMinPoolSize > c.MongoMaxPoolSize {
		return fmt.Errorf("MONGO_MIN_POOL_SIZE (%d) must not exceed MONGO_MAX_POOL_SIZE (%d), which must be positive", c.MongoMinPoolSize, c.MongoMaxPoolSize)
	}
	if c.CartWriteRetries < 1 {
		return fmt.Errorf("CART_WRITE_RETRIES must be at least 1, got %d", c.CartWriteRetries)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getUint(key string, defaultValue uint64) uint64 {
	if value, err := strconv.ParseUint(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

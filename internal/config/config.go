package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint string
	MetricsAddr  string

	// SnowflakeNode must be unique per process sharing one store.
	SnowflakeNode int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// LockBackend selects the call lock: "local" or "redis".
	LockBackend string
	LockKey     string
	LockTTL     time.Duration
	LockWait    time.Duration

	// EventPublisher selects broadcast: "log", "redis" or "both".
	EventPublisher     string
	EventStream        string
	EventDispatchEvery time.Duration
	EventBatchSize     int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:            getenv("APP_SERVICE", "onclick"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),
		MetricsAddr:        getenv("METRICS_ADDR", ":9090"),
		SnowflakeNode:      int64(getenvInt("SNOWFLAKE_NODE", 1)),
		DBType:             strings.ToLower(getenv("DATABASE_TYPE", "sqlite")),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "onclick"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBPath:             getenv("DATABASE_PATH", "onclick.db"),
		DBMaxIdleConn:      getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:      getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:  getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:  getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		RedisAddr:          strings.TrimSpace(getenv("REDIS_ADDR", "localhost:6379")),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getenvInt("REDIS_DB", 0),
		LockBackend:        strings.ToLower(getenv("LOCK_BACKEND", "local")),
		LockKey:            getenv("LOCK_KEY", "onclick:call"),
		LockTTL:            getenvDuration("LOCK_TTL", 30*time.Second),
		LockWait:           getenvDuration("LOCK_WAIT", 10*time.Second),
		EventPublisher:     strings.ToLower(getenv("EVENT_PUBLISHER", "log")),
		EventStream:        getenv("EVENT_STREAM", "onclick:events"),
		EventDispatchEvery: getenvDuration("EVENT_DISPATCH_INTERVAL", 2*time.Second),
		EventBatchSize:     getenvInt("EVENT_BATCH_SIZE", 100),
	}
}

// UsesRedis reports whether any component needs a Redis client.
func (c Config) UsesRedis() bool {
	return c.LockBackend == "redis" || c.EventPublisher == "redis" || c.EventPublisher == "both"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

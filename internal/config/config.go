package config

import (
	"os"
	"strconv"
	"time"

	"serata/internal/cache"
	"serata/internal/database"
	"serata/internal/messaging"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the full application configuration.
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Reaper        ReaperConfig
	Fiscal        FiscalConfig
}

// ReaperConfig drives the background sweep closing stale pending
// transactions and expiring overdue resale listings.
type ReaperConfig struct {
	Interval     time.Duration
	PendingTTL   time.Duration
	ResaleWindow time.Duration
}

// FiscalConfig carries the regulated ticketing parameters.
type FiscalConfig struct {
	SystemCode    string
	NameChangeFee decimal.Decimal
	QRSize        int
}

// Load reads configuration from environment variables, with an optional
// .env file for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "serata"),
			Password:           getEnv("DB_PASSWORD", "serata123"),
			DBName:             getEnv("DB_NAME", "serata"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "serata"),
			ClientID:  getEnv("NATS_CLIENT_ID", "serata-api"),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL_SEC", 60)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Reaper: ReaperConfig{
			Interval:     time.Duration(getEnvInt("REAPER_INTERVAL_SEC", 30)) * time.Second,
			PendingTTL:   time.Duration(getEnvInt("TXN_PENDING_TTL_MIN", 30)) * time.Minute,
			ResaleWindow: time.Duration(getEnvInt("RESALE_WINDOW_HOURS", 72)) * time.Hour,
		},

		Fiscal: FiscalConfig{
			SystemCode:    getEnv("FISCAL_SYSTEM_CODE", "SRT"),
			NameChangeFee: getEnvDecimal("NAME_CHANGE_FEE", "5.00"),
			QRSize:        getEnvInt("TICKET_QR_SIZE", 300),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

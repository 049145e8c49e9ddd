package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EventDeliveryOutbox = "outbox"
	EventDeliveryDirect = "direct"
	EventDeliveryNone   = "none"
)

type Config struct {
	Environment string

	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	PolicyCacheTTL time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	MaxRetries  int
	AutoMigrate bool
}

type RedisConfig struct {
	Addr       string
	MaxRetries int
}

type KafkaConfig struct {
	Broker             string
	GroupID            string
	EventDelivery      string
	OutboxPollInterval time.Duration
	MaxRetries         int
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment: getEnv("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "leave"),
			Port:        getEnv("DB_PORT", "5432"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxRetries:  getEnvInt("DB_MAX_RETRIES", 5),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			MaxRetries: getEnvInt("REDIS_MAX_RETRIES", 5),
		},
		Kafka: KafkaConfig{
			Broker:             getEnv("KAFKA_BROKER", ""),
			GroupID:            getEnv("KAFKA_GROUP_ID", "go-leave-notifier"),
			EventDelivery:      getEnv("EVENT_DELIVERY", EventDeliveryOutbox),
			OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
			MaxRetries:         getEnvInt("KAFKA_MAX_RETRIES", 5),
		},
		PolicyCacheTTL: getEnvDuration("POLICY_CACHE_TTL", time.Hour),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

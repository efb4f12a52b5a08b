package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr          string
	ServiceName       string
	OrderAPIURL       string
	RedisAddr         string
	CacheTTL          time.Duration
	OutputDir         string
	BatchInterval     time.Duration
	RenderConcurrency int
	LogLevel          log.Level

	// OrderStubAddr is the listen address of the local order API stub
	OrderStubAddr string
}

// Load reads an optional .env file, then the environment
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		ServiceName:       getEnv("SERVICE_NAME", "invoice-service"),
		OrderAPIURL:       getEnv("ORDER_API_URL", "http://localhost:8000/api"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		CacheTTL:          getDuration("CACHE_TTL", 10*time.Minute),
		OutputDir:         getEnv("OUTPUT_DIR", "./invoices"),
		BatchInterval:     getDuration("BATCH_INTERVAL", 300*time.Millisecond),
		RenderConcurrency: getInt("RENDER_CONCURRENCY", 4),
		LogLevel:          getLevel("LOG_LEVEL", log.InfoLevel),
		OrderStubAddr:     getEnv("ORDER_STUB_ADDR", ":8000"),
	}
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithField("key", key).Warnf("invalid duration %q, using %s", v, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		log.WithField("key", key).Warnf("invalid positive integer %q, using %d", v, fallback)
		return fallback
	}
	return i
}

func getLevel(key string, fallback log.Level) log.Level {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	lvl, err := log.ParseLevel(v)
	if err != nil {
		log.WithField("key", key).Warnf("invalid log level %q, using %s", v, fallback)
		return fallback
	}
	return lvl
}

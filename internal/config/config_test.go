package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "SERVICE_NAME", "ORDER_API_URL", "REDIS_ADDR", "CACHE_TTL",
		"OUTPUT_DIR", "BATCH_INTERVAL", "RENDER_CONCURRENCY", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "invoice-service", cfg.ServiceName)
	assert.Equal(t, "http://localhost:8000/api", cfg.OrderAPIURL)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 300*time.Millisecond, cfg.BatchInterval)
	assert.Equal(t, 4, cfg.RenderConcurrency)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BATCH_INTERVAL", "500ms")
	t.Setenv("RENDER_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchInterval)
	assert.Equal(t, 8, cfg.RenderConcurrency)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "ten minutes")
	t.Setenv("RENDER_CONCURRENCY", "-2")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.RenderConcurrency)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
}

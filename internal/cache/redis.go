// Package cache keeps recently rendered invoices in Redis so repeated
// downloads of an unchanged order skip rendering.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
)

// ErrMiss is returned by Get when nothing is stored under the key
var ErrMiss = errors.New("cache miss")

// KeyInvoice is the key template: service, order id, order fingerprint
const KeyInvoice = "%s:invoice:%s:%s"

// DefaultTTL bounds how long a rendered invoice is kept
const DefaultTTL = 10 * time.Minute

// Cache stores rendered artifacts
type Cache interface {
	Get(ctx context.Context, order *models.Order) (*invoice.Artifact, error)
	Set(ctx context.Context, order *models.Order, artifact *invoice.Artifact) error
}

type redisCache struct {
	client      redis.Cmdable
	serviceName string
	ttl         time.Duration
}

// NewRedisCache creates a cache on the Redis server at addr
func NewRedisCache(addr, serviceName string, ttl time.Duration) Cache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: addr}), serviceName, ttl)
}

// NewRedisCacheWithClient creates a cache on an existing client
func NewRedisCacheWithClient(client redis.Cmdable, serviceName string, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client: client, serviceName: serviceName, ttl: ttl}
}

// storedArtifact is the JSON form kept in Redis
type storedArtifact struct {
	OrderID       string `json:"order_id"`
	InvoiceNumber string `json:"invoice_number"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	Content       []byte `json:"content"`
}

func (r *redisCache) Get(ctx context.Context, order *models.Order) (*invoice.Artifact, error) {
	key, err := r.key(order)
	if err != nil {
		return nil, err
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, ErrMiss
	}
	if err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var s storedArtifact
	if err := json.Unmarshal(raw, &s); err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()

	return &invoice.Artifact{
		OrderID:       s.OrderID,
		InvoiceNumber: s.InvoiceNumber,
		Filename:      s.Filename,
		ContentType:   s.ContentType,
		Content:       s.Content,
	}, nil
}

func (r *redisCache) Set(ctx context.Context, order *models.Order, a *invoice.Artifact) error {
	key, err := r.key(order)
	if err != nil {
		return err
	}

	b, err := json.Marshal(storedArtifact{
		OrderID:       a.OrderID,
		InvoiceNumber: a.InvoiceNumber,
		Filename:      a.Filename,
		ContentType:   a.ContentType,
		Content:       a.Content,
	})
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// key includes a fingerprint of the whole order so an edited order never
// hits a stale invoice
func (r *redisCache) key(order *models.Order) (string, error) {
	fp, err := Fingerprint(order)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(KeyInvoice, r.serviceName, order.ID, fp), nil
}

// Fingerprint hashes the JSON form of order
func Fingerprint(order *models.Order) (string, error) {
	b, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("fingerprint order %s: %w", order.ID, err)
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16), nil
}

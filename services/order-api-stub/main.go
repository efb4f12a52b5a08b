package main

import (
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/config"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
)

const serviceName = "order-api-stub"

// OrderStore is an in-memory stand-in for the web application's order API.
// Chaos modes make it fail or stall so the invoice service's breaker and
// timeouts can be watched locally.
type OrderStore struct {
	orders map[string]*models.Order
	mutex  sync.RWMutex

	chaosEnabled  bool
	chaosSlowMode bool
	chaosMutex    sync.RWMutex

	// slowDelay picks the stall applied in slow mode
	slowDelay func() time.Duration
}

func newOrderStore(seed ...*models.Order) *OrderStore {
	s := &OrderStore{
		orders: make(map[string]*models.Order),
		slowDelay: func() time.Duration {
			return time.Duration(2000+rand.Intn(3000)) * time.Millisecond
		},
	}
	for _, order := range seed {
		s.orders[order.ID] = order
	}
	return s
}

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)

	store := newOrderStore(sampleOrders()...)
	router := newRouter(store)

	log.WithField("addr", cfg.OrderStubAddr).Info("Order API stub starting")
	if err := router.Run(cfg.OrderStubAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func newRouter(s *OrderStore) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.PrometheusMiddleware(serviceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	api.GET("/orders", s.listOrders)
	api.GET("/orders/:id", s.getOrder)
	api.PUT("/orders/:id", s.putOrder)

	// Chaos engineering endpoints
	router.POST("/chaos/enable", s.enableChaos)
	router.POST("/chaos/disable", s.disableChaos)
	router.POST("/chaos/slow", s.enableSlowMode)
	router.POST("/chaos/slow/disable", s.disableSlowMode)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func (s *OrderStore) getOrder(c *gin.Context) {
	id := c.Param("id")

	if s.simulateChaos() {
		log.WithField("order_id", id).Warn("Chaos: Simulated failure")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "unavailable",
			Message: "Service temporarily unavailable",
		})
		return
	}

	s.mutex.RLock()
	order, exists := s.orders[id]
	s.mutex.RUnlock()

	if !exists {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "order_not_found",
			Message: "Order not found: " + id,
		})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *OrderStore) listOrders(c *gin.Context) {
	s.mutex.RLock()
	ids := make([]string, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	s.mutex.RUnlock()

	sort.Strings(ids)
	c.JSON(http.StatusOK, gin.H{"order_ids": ids})
}

// putOrder stores the body under the path id, replacing any earlier order
func (s *OrderStore) putOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}
	order.ID = c.Param("id")

	s.mutex.Lock()
	s.orders[order.ID] = &order
	s.mutex.Unlock()

	log.WithField("order_id", order.ID).Info("Order stored")
	c.JSON(http.StatusOK, &order)
}

func (s *OrderStore) enableChaos(c *gin.Context) {
	s.setChaosEnabled(true)
	metrics.ChaosFailureRate.WithLabelValues(serviceName).Set(1)

	log.Info("Chaos mode ENABLED for order API stub")
	c.JSON(http.StatusOK, gin.H{
		"message": "Chaos mode enabled",
		"info":    "30% of order lookups will fail randomly",
	})
}

func (s *OrderStore) disableChaos(c *gin.Context) {
	s.setChaosEnabled(false)
	s.setSlowMode(false)
	metrics.ChaosFailureRate.WithLabelValues(serviceName).Set(0)
	metrics.ChaosSlowMode.WithLabelValues(serviceName).Set(0)

	log.Info("Chaos mode DISABLED for order API stub")
	c.JSON(http.StatusOK, gin.H{"message": "Chaos mode disabled"})
}

func (s *OrderStore) enableSlowMode(c *gin.Context) {
	s.setSlowMode(true)
	metrics.ChaosSlowMode.WithLabelValues(serviceName).Set(1)

	log.Info("Slow mode ENABLED for order API stub")
	c.JSON(http.StatusOK, gin.H{
		"message": "Slow mode enabled",
		"info":    "Order lookups will have 2-5 second delays",
	})
}

func (s *OrderStore) disableSlowMode(c *gin.Context) {
	s.setSlowMode(false)
	metrics.ChaosSlowMode.WithLabelValues(serviceName).Set(0)

	log.Info("Slow mode DISABLED for order API stub")
	c.JSON(http.StatusOK, gin.H{"message": "Slow mode disabled"})
}

func (s *OrderStore) setChaosEnabled(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosEnabled = enabled
}

func (s *OrderStore) getChaosEnabled() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosEnabled
}

func (s *OrderStore) setSlowMode(enabled bool) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.chaosSlowMode = enabled
}

func (s *OrderStore) getSlowMode() bool {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosSlowMode
}

// simulateChaos stalls in slow mode and reports true when the request
// should fail
func (s *OrderStore) simulateChaos() bool {
	if s.getSlowMode() {
		delay := s.slowDelay()
		log.WithField("delay_ms", delay.Milliseconds()).Debug("Chaos: Simulating slow response")
		time.Sleep(delay)
	}

	// 30% failure rate
	return s.getChaosEnabled() && rand.Float32() < 0.3
}

// sampleOrders covers both order shapes and the sparse contact records the
// real API returns
func sampleOrders() []*models.Order {
	created := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
	delivered := created.AddDate(0, 0, 4)

	return []*models.Order{
		{
			ID:           "a1b2c3d4e5f60718",
			CreatedAt:    created,
			DeliveryDate: &delivered,
			Status:       models.OrderStatusDelivered,
			Amount:       decimal.RequireFromString("740.00"),
			Items: []models.OrderItem{
				{
					Product:    &models.ProductRef{Name: "Areca Leaf Plate"},
					Quantity:   50,
					UnitPrice:  decimal.RequireFromString("8.00"),
					TotalPrice: decimal.RequireFromString("400.00"),
				},
				{
					Product:    &models.ProductRef{Name: "Bagasse Bowl"},
					Quantity:   40,
					UnitPrice:  decimal.RequireFromString("8.50"),
					TotalPrice: decimal.RequireFromString("340.00"),
				},
			},
			User: &models.Contact{Name: "Asha Rao", Email: "asha@example.com"},
			Profile: &models.Contact{
				PhoneNumber: "+91 90000 00001",
				AddressLine: "14 Green Lane, Kothrud",
				City:        "Pune",
				State:       "Maharashtra",
			},
		},
		{
			ID:        "f0e1d2c3b4a59687",
			CreatedAt: created.AddDate(0, 0, 2),
			Status:    models.OrderStatusProcessing,
			Amount:    decimal.RequireFromString("50.00"),
			Quantity:  5,
			Product:   &models.ProductRef{Name: "Wooden Cutlery Set"},
			User: &models.Contact{
				Name:   "Vikram Shah",
				Email:  "vikram@example.com",
				Mobile: "+91 90000 00002",
				Street: "7 Lake View Road",
			},
		},
	}
}

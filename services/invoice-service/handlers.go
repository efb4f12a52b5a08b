package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/batch"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/cache"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/orderapi"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/patterns"
)

const headerRequestID = "X-Request-Id"

// OrderSource loads orders from the web application's API
type OrderSource interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrders(ctx context.Context, ids []string) ([]*models.Order, error)
}

// InvoiceService serves single and batch invoice downloads
type InvoiceService struct {
	generator  *invoice.Generator
	dispatcher *batch.Dispatcher
	orders     OrderSource
	circuit    *patterns.CircuitBreakerWrapper
	cache      cache.Cache // nil disables caching
	bulkhead   *patterns.Bulkhead

	runsMu sync.Mutex
	runs   map[string]*trackedRun
}

type trackedRun struct {
	run    *batch.Run
	cancel context.CancelFunc
}

func newInvoiceService(
	generator *invoice.Generator,
	dispatcher *batch.Dispatcher,
	orders OrderSource,
	circuit *patterns.CircuitBreakerWrapper,
	invoiceCache cache.Cache,
	bulkhead *patterns.Bulkhead,
) *InvoiceService {
	return &InvoiceService{
		generator:  generator,
		dispatcher: dispatcher,
		orders:     orders,
		circuit:    circuit,
		cache:      invoiceCache,
		bulkhead:   bulkhead,
		runs:       make(map[string]*trackedRun),
	}
}

func newRouter(svc *InvoiceService, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	// Add Prometheus middleware
	router.Use(metrics.PrometheusMiddleware(serviceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.POST("/invoice/render", svc.renderInvoice)
	router.POST("/invoice/preview", svc.previewInvoice)
	router.POST("/invoice/batch", svc.generateAll)
	router.GET("/invoice/batch/:runId", svc.getRun)
	router.DELETE("/invoice/batch/:runId", svc.cancelRun)
	router.GET("/invoice/circuit-status", svc.getCircuitStatus)
	router.GET("/invoice/:orderId", svc.downloadInvoice)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestID tags every request with an id, reusing the caller's when present
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(c *gin.Context) *log.Entry {
	return log.WithField("request_id", c.GetString("request_id"))
}

// renderInvoice renders the order in the request body
func (s *InvoiceService) renderInvoice(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.respondWithInvoice(c, &order)
}

// previewInvoice returns the laid-out document as JSON
func (s *InvoiceService) previewInvoice(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	c.JSON(http.StatusOK, s.generator.Build(&order))
}

// downloadInvoice fetches the order from the order API and renders it
func (s *InvoiceService) downloadInvoice(c *gin.Context) {
	orderID := c.Param("orderId")

	ctx, cancel := patterns.WithTimeout(c.Request.Context(), patterns.DefaultTimeout)
	defer cancel()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		requestLogger(c).WithField("order_id", orderID).WithError(err).Warn("Failed to load order")
		writeOrderAPIError(c, err)
		return
	}
	s.respondWithInvoice(c, order)
}

func (s *InvoiceService) respondWithInvoice(c *gin.Context, order *models.Order) {
	artifact, err := s.render(c.Request.Context(), order)
	if err != nil {
		requestLogger(c).WithField("order_id", order.ID).WithError(err).Error("Invoice generation failed")
		if errors.Is(err, patterns.ErrBulkheadFull) {
			writeError(c, http.StatusServiceUnavailable, "busy", err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "generation_failed", err.Error())
		return
	}

	requestLogger(c).WithFields(log.Fields{
		"order_id": order.ID,
		"filename": artifact.Filename,
		"bytes":    len(artifact.Content),
	}).Info("Invoice generated")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}

// render serves from the cache when possible. Cache failures never fail the request.
func (s *InvoiceService) render(ctx context.Context, order *models.Order) (*invoice.Artifact, error) {
	if s.cache != nil {
		artifact, err := s.cache.Get(ctx, order)
		if err == nil {
			return artifact, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.WithField("order_id", order.ID).WithError(err).Warn("Invoice cache lookup failed")
		}
	}

	var artifact *invoice.Artifact
	err := s.bulkhead.Execute(func() error {
		var genErr error
		artifact, genErr = s.generator.Generate(order)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, order, artifact); err != nil {
			log.WithField("order_id", order.ID).WithError(err).Warn("Failed to cache invoice")
		}
	}
	return artifact, nil
}

// generateAll schedules a download-all run
func (s *InvoiceService) generateAll(c *gin.Context) {
	var req models.BatchInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	orders, err := s.batchOrders(c, req)
	if err != nil {
		requestLogger(c).WithError(err).Warn("Failed to load batch orders")
		writeOrderAPIError(c, err)
		return
	}

	// the run outlives the request; it is cancelled via DELETE or shutdown
	ctx, cancel := context.WithCancel(context.Background())
	run, ok := s.dispatcher.GenerateAll(ctx, orders)
	if !ok {
		cancel()
		c.JSON(http.StatusOK, models.BatchInvoiceResponse{
			Status:     models.BatchStatusNothingToDo,
			IntervalMS: s.dispatcher.Interval().Milliseconds(),
			Message:    "No orders to generate invoices for",
		})
		return
	}
	s.track(run, cancel)

	c.JSON(http.StatusAccepted, models.BatchInvoiceResponse{
		RunID:      run.ID,
		Status:     models.BatchStatusScheduled,
		Scheduled:  run.Total,
		IntervalMS: s.dispatcher.Interval().Milliseconds(),
	})
}

func (s *InvoiceService) batchOrders(c *gin.Context, req models.BatchInvoiceRequest) ([]*models.Order, error) {
	if len(req.Orders) > 0 {
		orders := make([]*models.Order, len(req.Orders))
		for i := range req.Orders {
			orders[i] = &req.Orders[i]
		}
		return orders, nil
	}
	if len(req.OrderIDs) == 0 {
		return nil, nil
	}
	return s.orders.GetOrders(c.Request.Context(), req.OrderIDs)
}

// track keeps the run addressable until every invocation has been issued
func (s *InvoiceService) track(run *batch.Run, cancel context.CancelFunc) {
	s.runsMu.Lock()
	s.runs[run.ID] = &trackedRun{run: run, cancel: cancel}
	s.runsMu.Unlock()

	go func() {
		run.Wait()
		cancel()
		s.runsMu.Lock()
		delete(s.runs, run.ID)
		s.runsMu.Unlock()
	}()
}

func (s *InvoiceService) lookupRun(id string) (*trackedRun, bool) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	tr, ok := s.runs[id]
	return tr, ok
}

func (s *InvoiceService) getRun(c *gin.Context) {
	tr, ok := s.lookupRun(c.Param("runId"))
	if !ok {
		writeError(c, http.StatusNotFound, "run_not_found", "run finished or never existed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":  tr.run.ID,
		"total":   tr.run.Total,
		"issued":  tr.run.Issued(),
		"skipped": tr.run.Skipped(),
	})
}

// cancelRun aborts the invocations of a run that are not issued yet
func (s *InvoiceService) cancelRun(c *gin.Context) {
	tr, ok := s.lookupRun(c.Param("runId"))
	if !ok {
		writeError(c, http.StatusNotFound, "run_not_found", "run finished or never existed")
		return
	}
	tr.cancel()
	<-tr.run.Done()

	requestLogger(c).WithField("run_id", tr.run.ID).Info("Batch run cancelled")
	c.JSON(http.StatusOK, gin.H{
		"run_id":  tr.run.ID,
		"issued":  tr.run.Issued(),
		"skipped": tr.run.Skipped(),
	})
}

// shutdown cancels pending runs and waits for issued generations
func (s *InvoiceService) shutdown() {
	s.runsMu.Lock()
	pending := make([]*trackedRun, 0, len(s.runs))
	for _, tr := range s.runs {
		pending = append(pending, tr)
	}
	s.runsMu.Unlock()

	for _, tr := range pending {
		tr.cancel()
		tr.run.Wait()
	}
}

// getCircuitStatus returns the status of the order API circuit breaker
func (s *InvoiceService) getCircuitStatus(c *gin.Context) {
	if s.circuit == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_api_circuit": gin.H{
			"name":  "OrderAPI",
			"state": s.circuit.GetState(),
			"value": s.circuit.GetStateValue(),
		},
	})
}

func writeOrderAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orderapi.ErrOrderNotFound):
		writeError(c, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, patterns.ErrCircuitOpen):
		writeError(c, http.StatusServiceUnavailable, "order_api_unavailable", err.Error())
	default:
		writeError(c, http.StatusBadGateway, "order_api_error", err.Error())
	}
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

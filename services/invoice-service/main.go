package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/batch"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/cache"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/config"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/orderapi"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/patterns"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/storage"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	generator := invoice.NewGenerator()

	sink, err := storage.NewDirSink(cfg.OutputDir)
	if err != nil {
		log.Fatal("Failed to prepare output directory: ", err)
	}

	renderBulkhead := patterns.NewBulkhead(cfg.RenderConcurrency, patterns.BulkheadWait, "render", cfg.ServiceName)
	dispatcher := batch.NewDispatcher(generator, sink, cfg.ServiceName,
		batch.WithStagger(patterns.NewStagger(cfg.BatchInterval, "batch", cfg.ServiceName)),
		batch.WithBulkhead(renderBulkhead),
	)

	var invoiceCache cache.Cache
	if cfg.RedisAddr != "" {
		invoiceCache = cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName, cfg.CacheTTL)
	}

	orders := orderapi.NewClient(cfg.OrderAPIURL, cfg.ServiceName)
	svc := newInvoiceService(generator, dispatcher, orders, orders.Circuit(), invoiceCache, renderBulkhead)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: newRouter(svc, cfg.ServiceName),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{
			"addr":           cfg.HTTPAddr,
			"order_api_url":  cfg.OrderAPIURL,
			"output_dir":     cfg.OutputDir,
			"batch_interval": cfg.BatchInterval.String(),
			"cache_enabled":  invoiceCache != nil,
		}).Info("Invoice Service starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down invoice service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown error")
	}
	svc.shutdown()
}

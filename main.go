package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loandesk/config"
	httpLayer "loandesk/http"
	"loandesk/repository"
	"loandesk/service"
)

func main() {
	cfg := config.LoadConfig()

	var store repository.DocumentStore
	switch cfg.StoreBackend {
	case "file":
		store = repository.NewFileStore(cfg.StoreRoot)
	case "sqlite":
		sqliteStore, err := repository.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Error opening sqlite store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	default:
		store = repository.NewMemoryStore()
	}

	var cache repository.CacheRepository
	if cfg.RedisAddr != "" {
		cache = repository.NewRedisCache(cfg.RedisAddr)
	} else {
		cache = repository.NewMockCache()
	}

	timeout := cfg.StoreTimeout()

	notificationService := service.NewNotificationService(store, timeout)
	metricsService := service.NewMetricsService(store, cache, timeout)
	scoringService := service.NewScoringService(store, metricsService, cfg.Scoring, timeout)
	loanService := service.NewLoanService(store, notificationService, timeout)

	metricsHandler := httpLayer.NewMetricsHandler(metricsService)
	scoreHandler := httpLayer.NewScoreHandler(scoringService)
	loanHandler := httpLayer.NewLoanHandler(loanService)
	notificationHandler := httpLayer.NewNotificationHandler(notificationService)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitCapacity, cfg.RateLimitWindow())
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	routes := map[string]http.HandlerFunc{
		"POST /metrics/{cid}":           metricsHandler.Compute,
		"POST /score/{cid}":             scoreHandler.Score,
		"POST /loan/{cid}/submit":       loanHandler.Submit,
		"POST /loan/{cid}/decision":     loanHandler.Decide,
		"POST /loan/{cid}/amount":       loanHandler.ReviseAmount,
		"GET /loan/{cid}":               loanHandler.Status,
		"GET /clients":                  loanHandler.Clients,
		"GET /notifications":            notificationHandler.List,
		"POST /notifications":           notificationHandler.Create,
		"POST /notifications/mark-read": notificationHandler.MarkRead,
	}
	for pattern, handler := range routes {
		mux.Handle(pattern, httpLayer.RateLimitMiddleware(rateLimiter, handler))
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("loandesk listening on %s (store=%s)", cfg.Addr, cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("Error starting server: %v", err)
		return
	case <-quit:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server exited")
}

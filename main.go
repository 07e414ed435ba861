package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/username/jababank/backend/src/config"
	"github.com/username/jababank/backend/src/handlers"
	"github.com/username/jababank/backend/src/logger"
	"github.com/username/jababank/backend/src/services"
	"github.com/username/jababank/backend/src/transactionlist"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				logger.FromContext(r.Context()).Warn("Rate limit exceeded", "path", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(origins []string) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Requested-With, Cookie")
				w.Header().Set("Access-Control-Expose-Headers", "Location, "+handlers.RequestIDHeader)
			} else if origin == "" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Transaction list widget service starting...")

	clients, err := services.NewUpstreamClientFactory(config.Cfg.UpstreamBaseURL, config.Cfg.UpstreamTimeout)
	if err != nil {
		logger.L.Error("UPSTREAM_BASE_URL configuration invalid.", "error", err)
		os.Exit(1)
	}

	registry := transactionlist.NewRegistry(config.Cfg.WidgetTTL, config.Cfg.WidgetCleanupInterval)
	defaults := transactionlist.DefaultListConfig()
	defaults.PageSize = config.Cfg.DefaultPageSize

	txListHandler := handlers.NewTransactionListHandler(registry, clients, transactionlist.NewMockGenerator(0), handlers.TransactionListOptions{
		ContextPath: config.Cfg.ContextPath,
		Defaults:    defaults,
		MaxPageSize: config.Cfg.MaxPageSize,
	})

	limiter := rate.NewLimiter(rate.Limit(config.Cfg.RateLimitPerSecond), config.Cfg.RateLimitBurst)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS(config.Cfg.AllowedOrigins))
	r.Use(rateLimitMiddleware(limiter))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Transaction list service is running",
			"widgets": registry.Count(),
		})
	})

	r.Route("/api/transaction-lists", func(r chi.Router) {
		r.Post("/", txListHandler.HandleCreate)
		r.Get("/{id}", txListHandler.HandleLoadPage)
		r.Get("/{id}/state", txListHandler.HandleGetState)
		r.Delete("/{id}", txListHandler.HandleDelete)
	})
	r.Get("/transaction-lists/{id}", txListHandler.HandleView)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
			return
		}
		http.NotFound(w, r)
	})

	serverAddr := ":" + config.Cfg.Port
	// WriteTimeout stays zero: widget loads wait on the upstream without a
	// deadline unless UPSTREAM_TIMEOUT is set.
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("Server starting", "address", serverAddr, "upstream", config.Cfg.UpstreamBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
	registry.Flush()
	logger.L.Info("Server stopped")
}

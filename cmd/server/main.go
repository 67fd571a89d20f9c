// Package main is the entry point for the min-max inventory server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mminv/internal/domain/inventory"
	"mminv/internal/domain/reorder"
	"mminv/internal/domain/store"
	v1 "mminv/internal/infrastructure/http/v1"
	"mminv/internal/infrastructure/mail"
	firestorestore "mminv/internal/infrastructure/storage/firestore"
	memorystore "mminv/internal/infrastructure/storage/memory"
	"mminv/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log.Info("starting min-max inventory server")

	// --- Document store backend ---
	var docStore store.Store
	switch backend := getEnv("STORE_BACKEND", "firestore"); backend {
	case "memory":
		mem := memorystore.New()
		defer mem.Close()
		docStore = mem
		log.Info("using in-memory document store")
	case "firestore":
		fs, err := firestorestore.New(ctx, firestorestore.Config{
			ProjectID:       mustEnv("FIRESTORE_PROJECT_ID"),
			CredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		}, log)
		if err != nil {
			log.Fatalw("failed to connect to firestore", "error", err)
		}
		defer fs.Close()
		docStore = fs
		log.Info("firestore connection established")
	default:
		log.Fatalw("unknown store backend", "backend", backend)
	}

	// --- Order notifier ---
	var notifier reorder.Notifier
	if apiKey := getEnv("SENDGRID_API_KEY", ""); apiKey != "" {
		from := mustEnv("ORDER_EMAIL_FROM")
		notifier = mail.NewSendGridNotifier(apiKey, from, log)
		log.Infow("order notifications via email", "from", from)
	} else {
		notifier = reorder.NewLogNotifier(log)
		log.Info("order notifications via log only")
	}

	// --- Workspace: mirrors, views, reorder engine ---
	workspace := inventory.New(docStore, notifier, log)
	workspace.Start(ctx)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Workspace: workspace,
		Logger:    log,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Stop the change feeds, then give outstanding requests time to finish
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"whatsapp-gpt-relay/internal/config"
	"whatsapp-gpt-relay/internal/handler"
	"whatsapp-gpt-relay/internal/middleware"
	"whatsapp-gpt-relay/internal/service"
	"whatsapp-gpt-relay/pkg/logger"
)

func main() {
	// Create .env from .env.example if not exists
	if err := ensureEnvFile(); err != nil {
		log.Printf("Warning: Failed to create .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.Log.Level)
	appLogger.Info("Starting WhatsApp GPT relay",
		"twilio_account_sid_loaded", cfg.Twilio.AccountSID != "",
		"twilio_auth_token_loaded", cfg.Twilio.AuthToken != "",
		"openai_api_key_loaded", cfg.OpenAI.APIKey != "",
		"twilio_whatsapp_number", cfg.Twilio.WhatsAppNumber,
	)

	// API clients live for the whole process and are shared by every request
	completionService := service.NewCompletionService(&cfg.OpenAI, appLogger)
	messagingService := service.NewMessagingService(&cfg.Twilio, appLogger)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(completionService, messagingService, appLogger)
	healthHandler := handler.NewHealthHandler(completionService.Model(), messagingService.Sender())

	// Initialize middleware
	requestLogger := middleware.NewRequestLogger(appLogger)

	// Create HTTP server
	addr := cfg.Address()
	server := &http.Server{
		Addr:         addr,
		Handler:      requestLogger.Wrap(newRouter(cfg.Server.WebhookPath, webhookHandler, healthHandler)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("HTTP server starting", "address", addr, "webhook_path", cfg.Server.WebhookPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server stopped gracefully")
}

// newRouter mounts the webhook, health and metrics routes
func newRouter(webhookPath string, webhookHandler *handler.WebhookHandler, healthHandler *handler.HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+webhookPath, webhookHandler.ReceiveMessage)
	mux.HandleFunc("GET /health", healthHandler.CheckHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// ensureEnvFile creates .env from .env.example if .env doesn't exist
func ensureEnvFile() error {
	if _, err := os.Stat(".env"); err == nil {
		return nil
	}

	if _, err := os.Stat(".env.example"); os.IsNotExist(err) {
		return fmt.Errorf(".env.example not found")
	}

	source, err := os.Open(".env.example")
	if err != nil {
		return fmt.Errorf("failed to open .env.example: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(".env")
	if err != nil {
		return fmt.Errorf("failed to create .env: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("failed to copy .env.example to .env: %w", err)
	}

	log.Println("Created .env file from .env.example")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-booking-go/internal/booking"
	"trade-booking-go/internal/config"
	"trade-booking-go/internal/database"
	"trade-booking-go/internal/logger"
	"trade-booking-go/internal/refdata"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Connect to the database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Select the reference-data gateway
	var gateway refdata.Gateway
	if cfg.RefData.Mode == "remote" {
		gateway = refdata.NewRestClient(&cfg.RefData, log)
		log.Info("Using remote reference-data API", zap.String("base_url", cfg.RefData.BaseURL))
	} else {
		gateway = refdata.NewStore(db)
		log.Info("Using local reference data")
	}

	manager := booking.NewLifecycleManager(db, gateway, log, cfg.Booking)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, manager, booking.AllowAll{}, uuid.NewString())

	mux.HandleFunc("POST /api/trades", apiHandler.CreateTradeHandler)
	mux.HandleFunc("GET /api/trades/search", apiHandler.SearchTradesHandler)
	mux.HandleFunc("GET /api/trades/{id}", apiHandler.GetTradeHandler)
	mux.HandleFunc("PUT /api/trades/{id}", apiHandler.AmendTradeHandler)
	mux.HandleFunc("POST /api/trades/{id}/terminate", apiHandler.TerminateTradeHandler)
	mux.HandleFunc("POST /api/trades/{id}/cancel", apiHandler.CancelTradeHandler)
	mux.HandleFunc("DELETE /api/trades/{id}", apiHandler.DeleteTradeHandler)
	mux.HandleFunc("GET /api/status", apiHandler.StatusHandler)
	mux.HandleFunc("GET /health", apiHandler.HealthHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	// Setup graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting trade booking API server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("API server failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}

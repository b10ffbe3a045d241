package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "boxrental-backend/internal/api/http"
	"boxrental-backend/internal/audit"
	"boxrental-backend/internal/config"
	"boxrental-backend/internal/effects"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/notify"
	"boxrental-backend/internal/occupancy"
	"boxrental-backend/internal/repository"
	"boxrental-backend/internal/repository/memory"
	"boxrental-backend/internal/repository/postgres"
	"boxrental-backend/internal/security"
	"boxrental-backend/internal/service"

	_ "github.com/lib/pq"
)

// repositories is the set of stores the services are built on, whichever
// driver backs them.
type repositories struct {
	boxes    repository.BoxRepository
	rentals  repository.RentalRepository
	clients  repository.ClientRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	logs     repository.LogRepository
	tx       repository.Transactor
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Box Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Rental configuration", "delete_policy", cfg.Rental.DeletePolicy)

	// Initialize store
	var repos repositories
	switch cfg.Store.Driver {
	case "memory":
		logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			boxes:    store.Boxes,
			rentals:  store.Rentals,
			clients:  store.Clients,
			payments: store.Payments,
			users:    store.Users,
			logs:     store.Logs,
			tx:       store,
		}
	default:
		logger.Info("Database configuration", "host", cfg.Store.Host, "port", cfg.Store.Port, "database", cfg.Store.Database, "user", cfg.Store.User)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Error("Failed to ping database", "error", err)
			log.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established")

		if cfg.Store.Migrate {
			if err := postgres.Migrate(context.Background(), db); err != nil {
				logger.Error("Failed to apply schema", "error", err)
				log.Fatalf("Failed to apply schema: %v", err)
			}
			logger.Info("Database schema applied")
		}

		store := postgres.NewStore(db)
		repos = repositories{
			boxes:    store.BoxRepository,
			rentals:  store.RentalRepository,
			clients:  store.ClientRepository,
			payments: store.PaymentRepository,
			users:    store.UserRepository,
			logs:     store.LogRepository,
			tx:       store,
		}
	}

	// Initialize side effects
	notifier, err := notify.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize notifier", "error", err)
		log.Fatalf("Failed to initialize notifier: %v", err)
	}
	logger.Info("Notification provider", "provider", cfg.Notify.Provider)

	auditSink := audit.NewStoreSink(repos.logs)
	runner := effects.NewRunner(repos.clients, notifier, auditSink, effects.Config{
		Workers:      cfg.Notify.Workers,
		QueueSize:    cfg.Notify.QueueSize,
		MaxRetries:   cfg.Notify.MaxRetries,
		RetryBackoff: time.Duration(cfg.Notify.RetryBackoffMS) * time.Millisecond,
	})
	runner.Start()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	gate := security.NewGate(tokenManager)

	// Initialize Services
	engine := occupancy.NewEngine(repos.boxes, repos.rentals, repos.tx, cfg.Rental.DeletePolicy)
	svcs := httpapi.Services{
		Rentals:  service.NewRentalService(engine, runner),
		Boxes:    service.NewBoxService(repos.boxes, repos.tx),
		Clients:  service.NewClientService(repos.clients, repos.tx, notifier, auditSink),
		Payments: service.NewPaymentService(repos.payments),
		Users:    service.NewUserService(repos.users, tokenManager, auditSink),
		Logs:     service.NewAuditService(repos.logs),
	}

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(svcs, gate, cfg.RateLimit.LoginPerMinute),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown: stop taking requests, then drain pending effects
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	runner.Close()
	logger.Info("Server stopped. Goodbye!")
}

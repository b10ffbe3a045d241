package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"boxrental-backend/internal/config"
	"boxrental-backend/internal/jobs"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/occupancy"
	"boxrental-backend/internal/repository/postgres"
	"boxrental-backend/internal/scheduler"
	"boxrental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile-occupancy', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Box Rental Cronjob Runner...", "log_level", cfg.Log.Level)

	if cfg.Store.Driver != "postgres" {
		log.Fatalf("Cronjob runner needs the postgres store, got %q", cfg.Store.Driver)
	}

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Store.Host, "port", cfg.Store.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Jobs only reconcile; post-commit effects are not needed here
	engine := occupancy.NewEngine(store.BoxRepository, store.RentalRepository, store, cfg.Rental.DeletePolicy)
	jobServices := &jobs.Services{
		Rental: service.NewRentalService(engine, nil),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	if jobName == "all" {
		jobRunner.RunAll()
		return
	}
	job, ok := jobRunner.Lookup(jobName)
	if !ok {
		logger.Error("Unknown job name", "job", jobName)
		fmt.Println("Available jobs:")
		for _, j := range jobRunner.Jobs() {
			fmt.Printf("  - %s\n", j.Name)
		}
		fmt.Println("  - all")
		os.Exit(1)
	}
	job.Run()
}

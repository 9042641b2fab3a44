package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"library-lending-backend/internal/app"
	"library-lending-backend/internal/config"
	"library-lending-backend/internal/jobs"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-reservation-holds', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	defer logger.Close()
	logger.Info("Starting library cronjob runner...", "log_level", cfg.Log.Level, "store", cfg.Store.Type)

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(application.Jobs, *runOnce) {
			printJobs()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.NewScheduler(application.Jobs)
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once; false means the name is unknown
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "expire-reservation-holds":
		jobRunner.ExpireReservationHolds()
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "refresh-popularity":
		jobRunner.RefreshPopularity()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		return false
	}
	return true
}

func printJobs() {
	fmt.Printf("Available jobs:\n")
	fmt.Printf("  - expire-reservation-holds\n")
	fmt.Printf("  - send-overdue-reminders\n")
	fmt.Printf("  - refresh-popularity\n")
	fmt.Printf("  - all\n")
}

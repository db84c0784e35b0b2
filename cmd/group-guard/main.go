package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mikey/group-guard/internal/core"
	"github.com/mikey/group-guard/internal/di"
	"github.com/mikey/group-guard/internal/metrics"
	"github.com/mikey/group-guard/internal/ports"
	"github.com/mikey/group-guard/internal/spam"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Failed to load .env file: %v\n", err)
	}

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	listener ports.ChatListener,
	tracker *spam.Tracker,
	store core.BadwordStore,
	metricsServer *metrics.Server,
) error {
	defer logger.Sync()

	metrics.RegisterTrackedKeys(tracker.Len)
	if metricsServer != nil {
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// Start the listener
	if err := listener.Start(); err != nil {
		logger.Error("Failed to start listener", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the listener
	if err := listener.Stop(); err != nil {
		logger.Error("Failed to stop listener", zap.Error(err))
	}

	tracker.Stop()

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error("Failed to stop metrics server", zap.Error(err))
		}
	}

	if err := store.Close(); err != nil {
		logger.Error("Failed to close badword store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}

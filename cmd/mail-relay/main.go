package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mail-relay/internal/adapters/responselog"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/di"
	"github.com/mikey/mail-relay/internal/ports"
	"go.uber.org/zap"
)

func main() {
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
	server ports.Server,
	summarizer core.Summarizer,
	responseLog *responselog.MemoryLog,
) error {
	defer logger.Sync()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return err
	}

	// Close any resources that need closing
	if closer, ok := summarizer.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close summarizer", zap.Error(err))
		}
	}
	responseLog.Stop()

	logger.Info("Shutdown complete")
	return nil
}

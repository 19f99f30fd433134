package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/config"
	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/di"
	"github.com/mailmind/mailmind/internal/store"
	"github.com/mailmind/mailmind/internal/triage"
)

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	svc *triage.Service,
	scheduler *core.AutoSyncScheduler,
	state *store.Store,
	history core.HistoryRepository,
) error {
	defer logger.Sync()

	ctx := context.Background()

	// Surface store notifications in the log while the daemon runs.
	events, unsubscribe := state.Subscribe()
	defer unsubscribe()
	go func() {
		for event := range events {
			if event.Kind == store.EventNotification {
				logger.Info("Notification", zap.String("message", event.Message))
			}
		}
	}()

	if err := svc.Connect(ctx); err != nil {
		logger.Error("Connect failed", zap.Error(err))
		return err
	}
	if err := svc.Sync(ctx); err != nil {
		logger.Warn("Initial sync failed", zap.Error(err))
	}

	syncCfg := cfg.GetSync()
	if err := scheduler.Configure(syncCfg.Enabled, syncCfg.IntervalMinutes, state.Connected()); err != nil {
		logger.Warn("Auto-sync not started", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	scheduler.Stop()
	if err := history.Close(); err != nil {
		logger.Error("Failed to close history store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}

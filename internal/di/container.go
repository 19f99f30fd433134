package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/adapters/graph"
	"github.com/mailmind/mailmind/internal/config"
	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/factory"
	"github.com/mailmind/mailmind/internal/logging"
	"github.com/mailmind/mailmind/internal/store"
	"github.com/mailmind/mailmind/internal/triage"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Configuration and logging
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// User profile (credentials, llmsuite endpoint, rules)
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*config.Profile, error) {
		path := cfg.GetString("profile.path")
		profile, err := config.LoadProfile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("Profile loaded",
			zap.String("path", path),
			zap.Int("rules", len(profile.Rules)))
		return profile, nil
	}); err != nil {
		return nil, err
	}

	// Auth boundary and token guard
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *graph.AuthClient {
		return graph.NewAuthClient(cfg.GetGraph().LoginBaseURL, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(auth *graph.AuthClient, profile *config.Profile, logger *zap.Logger) (*core.TokenGuard, error) {
		creds, err := profile.DecodeCredentials()
		if err != nil {
			return nil, err
		}
		return core.NewTokenGuard(auth, creds, logger), nil
	}); err != nil {
		return nil, err
	}

	// Mail gateway
	if err := container.Provide(func(cfg *config.Config, guard *core.TokenGuard, logger *zap.Logger) core.MailGateway {
		client := graph.NewClient(cfg.GetGraph().BaseURL, guard, logger)
		return graph.NewGateway(client, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewFolderTreeBuilder); err != nil {
		return nil, err
	}

	// Reasoning client
	if err := container.Provide(factory.NewReasoningFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ReasoningFactory) (core.ReasoningClient, error) {
		return f.CreateReasoningClient(context.Background())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, client core.ReasoningClient, logger *zap.Logger) *core.MailBatchClassifier {
		return core.NewMailBatchClassifier(client, cfg.GetInt("classify.batch_size"), logger)
	}); err != nil {
		return nil, err
	}

	// Action application
	if err := container.Provide(core.NewActionApplier); err != nil {
		return nil, err
	}

	// Analytics
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryRepository, error) {
		return f.CreateHistoryRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewAnalyticsAggregator); err != nil {
		return nil, err
	}

	// State store, seeded with the profile's rules
	if err := container.Provide(func(profile *config.Profile) *store.Store {
		s := store.New()
		s.SetRules(profile.Rules)
		return s
	}); err != nil {
		return nil, err
	}

	// Orchestrator
	if err := container.Provide(func(
		cfg *config.Config,
		guard *core.TokenGuard,
		gateway core.MailGateway,
		folders *core.FolderTreeBuilder,
		classifier *core.MailBatchClassifier,
		applier *core.ActionApplier,
		analytics *core.AnalyticsAggregator,
		state *store.Store,
		logger *zap.Logger,
	) *triage.Service {
		fetch := cfg.GetFetch()
		return triage.NewService(guard, gateway, folders, classifier, applier, analytics, state, triage.Config{
			FetchTop:   fetch.Top,
			UnreadOnly: fetch.UnreadOnly,
		}, logger)
	}); err != nil {
		return nil, err
	}

	// Auto-sync scheduler
	if err := container.Provide(func(svc *triage.Service, state *store.Store, logger *zap.Logger) *core.AutoSyncScheduler {
		scheduler := core.NewAutoSyncScheduler(svc.Sync, logger)
		scheduler.SetTickErrorHandler(func(err error) {
			state.Notify("Auto-sync failed: " + err.Error())
		})
		return scheduler
	}); err != nil {
		return nil, err
	}

	return container, nil
}

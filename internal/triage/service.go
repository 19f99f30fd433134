// Package triage orchestrates the engine: fetch, classify, apply,
// record, re-fetch.
package triage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/store"
)

// Service wires the engine components behind the two entry points the
// shell calls: Sync and ClassifyAndApply.
type Service struct {
	guard      *core.TokenGuard
	gateway    core.MailGateway
	folders    *core.FolderTreeBuilder
	classifier *core.MailBatchClassifier
	applier    *core.ActionApplier
	analytics  *core.AnalyticsAggregator
	state      *store.Store
	fetchTop   int
	unreadOnly bool
	logger     *zap.Logger
}

// Config carries the fetch knobs for the service.
type Config struct {
	FetchTop   int
	UnreadOnly bool
}

// NewService creates the orchestrator.
func NewService(
	guard *core.TokenGuard,
	gateway core.MailGateway,
	folders *core.FolderTreeBuilder,
	classifier *core.MailBatchClassifier,
	applier *core.ActionApplier,
	analytics *core.AnalyticsAggregator,
	state *store.Store,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		guard:      guard,
		gateway:    gateway,
		folders:    folders,
		classifier: classifier,
		applier:    applier,
		analytics:  analytics,
		state:      state,
		fetchTop:   cfg.FetchTop,
		unreadOnly: cfg.UnreadOnly,
		logger:     logger,
	}
}

// Connect authenticates and marks the connection in the store.
func (s *Service) Connect(ctx context.Context) error {
	if err := s.guard.Connect(ctx); err != nil {
		s.state.Notify(fmt.Sprintf("Connection failed: %v", err))
		return err
	}
	s.state.SetConnected(true)
	s.state.Notify("Connected as " + s.guard.State().Owner)
	return nil
}

// Sync refreshes the held mail listing and the folder tree. The two
// reads are independent, so they are issued concurrently; each one on
// its own is a sequential operation.
func (s *Service) Sync(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var mails []core.Mail
	var folders []core.Folder

	g.Go(func() error {
		var err error
		mails, err = s.gateway.ListMessages(ctx, "", core.ListOptions{
			Top:        s.fetchTop,
			UnreadOnly: s.unreadOnly,
		})
		return err
	})
	g.Go(func() error {
		var err error
		folders, err = s.folders.BuildTree(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.state.Notify(fmt.Sprintf("Fetch failed: %v", err))
		return err
	}

	s.state.SetMails(mails)
	s.state.SetFolders(folders)
	s.logger.Info("Mailbox synced",
		zap.Int("mails", len(mails)),
		zap.Int("folders", len(folders)))
	s.state.Notify(fmt.Sprintf("Fetched %d emails", len(mails)))
	return nil
}

// ClassifyAndApply classifies the held mails with the given ids (nil
// means all held mails), applies the resulting actions with per-item
// failure isolation, records analytics and re-syncs. Validation errors
// short-circuit before any network call; classify errors are terminal
// for the run; action failures are only reported in the summary.
func (s *Service) ClassifyAndApply(ctx context.Context, ids []string) (core.ApplySummary, error) {
	mails := s.state.MailsByID(ids)
	rules := s.state.Rules()

	classifications, err := s.classifier.Classify(ctx, mails, rules, func(p core.Progress) {
		s.state.SetProgress(&p)
	})
	if err != nil {
		s.state.SetProgress(nil)
		s.state.Notify(fmt.Sprintf("Classification failed: %v", err))
		return core.ApplySummary{}, err
	}
	s.state.MergeClassifications(classifications)

	actions := core.FlattenActions(classifications)
	if len(actions) == 0 {
		s.state.Notify("Classification complete, no actions needed")
		return core.ApplySummary{}, nil
	}

	summary := s.applier.Apply(ctx, actions)
	s.state.SetActionResults(summary.Results)
	s.state.RemoveMails(summary.RemovedIDs)

	if err := s.analytics.RecordClassifications(ctx, classifications); err != nil {
		// Analytics never blocks triage; the entries are advisory.
		s.logger.Warn("Analytics recording failed", zap.Error(err))
	}

	if summary.Failed > 0 {
		s.state.Notify(fmt.Sprintf("Done: %d actions applied, %d failed", summary.Succeeded, summary.Failed))
	} else {
		s.state.Notify(fmt.Sprintf("Done: %d actions applied", summary.Succeeded))
	}

	if err := s.Sync(ctx); err != nil {
		s.logger.Warn("Post-apply sync failed", zap.Error(err))
	}
	return summary, nil
}

// Analytics exposes the aggregator for display layers.
func (s *Service) Analytics() *core.AnalyticsAggregator { return s.analytics }

// mailmind-triage runs one triage pass from the command line: connect,
// fetch, classify every fetched message against the profile's rules,
// apply the resulting actions and print the outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/adapters/graph"
	"github.com/mailmind/mailmind/internal/adapters/history"
	"github.com/mailmind/mailmind/internal/config"
	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/factory"
	"github.com/mailmind/mailmind/internal/logging"
	"github.com/mailmind/mailmind/internal/store"
	"github.com/mailmind/mailmind/internal/triage"
)

var (
	profilePath = flag.String("profile", "mailmind.json", "Path to the profile JSON file")
	provider    = flag.String("provider", "llmsuite", "Reasoning provider (llmsuite, gemini, bedrock)")
	batchSize   = flag.Int("batch-size", core.DefaultBatchSize, "Messages per reasoning-service call")
	fetchTop    = flag.Int("top", 50, "Maximum messages to fetch")
	unreadOnly  = flag.Bool("unread-only", true, "Only fetch unread messages")
	dryRun      = flag.Bool("dry-run", false, "Classify but do not apply actions")
	initProfile = flag.Bool("init", false, "Write an example profile to the profile path and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog     = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("Triage failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	if *initProfile {
		return writeExampleProfile(*profilePath, logger)
	}

	ctx := context.Background()

	v := config.NewEmptyViper()
	v.Set("llm.provider", *provider)
	v.Set("classify.batch_size", *batchSize)
	cfg := config.NewFromViper(v)

	profile, err := config.LoadProfile(*profilePath)
	if err != nil {
		return err
	}
	creds, err := profile.DecodeCredentials()
	if err != nil {
		return err
	}

	auth := graph.NewAuthClient(cfg.GetGraph().LoginBaseURL, logger)
	guard := core.NewTokenGuard(auth, creds, logger)
	client := graph.NewClient(cfg.GetGraph().BaseURL, guard, logger)
	gateway := graph.NewGateway(client, logger)
	folders := core.NewFolderTreeBuilder(gateway, logger)

	reasoning, err := factory.NewReasoningFactory(cfg, profile, logger).CreateReasoningClient(ctx)
	if err != nil {
		return err
	}
	classifier := core.NewMailBatchClassifier(reasoning, *batchSize, logger)
	applier := core.NewActionApplier(gateway, logger)
	analytics := core.NewAnalyticsAggregator(history.NewMemoryHistory(core.HistoryCap, logger), logger)

	state := store.New()
	state.SetRules(profile.Rules)

	svc := triage.NewService(guard, gateway, folders, classifier, applier, analytics, state, triage.Config{
		FetchTop:   *fetchTop,
		UnreadOnly: *unreadOnly,
	}, logger)

	if err := svc.Connect(ctx); err != nil {
		return err
	}
	if err := svc.Sync(ctx); err != nil {
		return err
	}

	mails := state.Mails()
	if len(mails) == 0 {
		fmt.Println("No messages to triage.")
		return nil
	}
	fmt.Printf("Fetched %d message(s).\n", len(mails))

	if *dryRun {
		return classifyOnly(ctx, classifier, mails, state.Rules())
	}

	summary, err := svc.ClassifyAndApply(ctx, nil)
	if err != nil {
		return err
	}
	printSummary(state, summary)
	return nil
}

func classifyOnly(ctx context.Context, classifier *core.MailBatchClassifier, mails []core.Mail, rules []core.Rule) error {
	classifications, err := classifier.Classify(ctx, mails, rules, func(p core.Progress) {
		fmt.Printf("  classified %d/%d\n", p.Processed, p.Total)
	})
	if err != nil {
		return err
	}
	for _, c := range classifications {
		fmt.Printf("%s\n  rule: %s (%s confidence)\n  reasoning: %s\n  actions: %d\n",
			c.MessageID, c.MatchedRule, core.ConfidenceBucket(c.Confidence), c.Reasoning, len(c.Actions))
	}
	return nil
}

func printSummary(state *store.Store, summary core.ApplySummary) {
	for _, r := range summary.Results {
		status := "ok"
		if r.Skipped {
			status = "skipped"
		} else if !r.Success {
			status = "FAILED: " + r.Error
		}
		fmt.Printf("  %-14s %s  %s\n", r.Kind, r.MessageID, status)
	}
	fmt.Printf("Done: %d applied, %d failed, %d skipped.\n",
		summary.Succeeded, summary.Failed, summary.Skipped)
	fmt.Printf("%d message(s) remain in the current listing.\n", len(state.Mails()))
}

func writeExampleProfile(path string, logger *zap.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing profile at %s", path)
	}
	data, err := config.ExampleProfile().Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	logger.Info("Example profile written", zap.String("path", path))
	return nil
}

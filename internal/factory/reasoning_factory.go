package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/adapters/bedrock"
	"github.com/mailmind/mailmind/internal/adapters/gemini"
	"github.com/mailmind/mailmind/internal/adapters/llmsuite"
	"github.com/mailmind/mailmind/internal/config"
	"github.com/mailmind/mailmind/internal/core"
)

// ReasoningFactory creates reasoning clients per the configured provider.
type ReasoningFactory struct {
	cfg     *config.Config
	profile *config.Profile
	logger  *zap.Logger
}

// NewReasoningFactory creates a reasoning client factory. profile may be
// nil; its LLMSuite section, when present, overrides the app config.
func NewReasoningFactory(cfg *config.Config, profile *config.Profile, logger *zap.Logger) *ReasoningFactory {
	return &ReasoningFactory{cfg: cfg, profile: profile, logger: logger}
}

// CreateReasoningClient creates the configured reasoning client.
func (f *ReasoningFactory) CreateReasoningClient(ctx context.Context) (core.ReasoningClient, error) {
	provider := f.cfg.GetLLM().Provider

	switch provider {
	case "llmsuite", "openai":
		suite := f.cfg.GetLLMSuite()
		if f.profile != nil {
			if f.profile.LLMSuite.BaseURL != "" {
				suite.BaseURL = f.profile.LLMSuite.BaseURL
			}
			if f.profile.LLMSuite.APIKey != "" {
				suite.APIKey = f.profile.LLMSuite.APIKey
			}
			if f.profile.LLMSuite.Model != "" {
				suite.Model = f.profile.LLMSuite.Model
			}
		}
		return llmsuite.NewClient(suite.BaseURL, suite.APIKey, suite.Model, suite.Temperature, suite.MaxTokens, f.logger), nil

	case "gemini":
		g := f.cfg.GetGemini()
		return gemini.NewClient(ctx, g.APIKey, g.ModelName, g.Temperature, g.MaxTokens, f.logger)

	case "bedrock":
		b := f.cfg.GetBedrock()
		return bedrock.NewClient(ctx, b.Region, b.ModelID, b.Temperature, b.MaxTokens, f.logger)

	default:
		return nil, fmt.Errorf("unsupported reasoning provider: %s", provider)
	}
}

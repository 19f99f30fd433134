// Package llmsuite implements the reasoning client against any
// OpenAI-compatible chat-completions endpoint, which is what an LLMSuite
// deployment exposes.
package llmsuite

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/llm"
)

// Client is a ReasoningClient backed by a chat-completions endpoint.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewClient creates a client. An empty baseURL targets the public OpenAI
// endpoint; otherwise the LLMSuite deployment at baseURL is used.
func NewClient(baseURL, apiKey, model string, temperature float32, maxTokens int, logger *zap.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// ClassifyBatch classifies one batch of sanitized mails. The endpoint is
// asked for a JSON object response; the reply is parsed strictly.
func (c *Client) ClassifyBatch(ctx context.Context, mails []core.SanitizedMail, rules []core.Rule) ([]core.Classification, error) {
	userPrompt, err := llm.BuildUserPrompt(mails)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llm.BuildSystemPrompt(rules)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		// Low temperature keeps classification deterministic.
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &core.NetworkError{Op: "llmsuite chat completion", Detail: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return nil, &core.ParseError{Detail: "empty choices in completion"}
	}

	c.logger.Debug("Batch classified",
		zap.Int("mails", len(mails)),
		zap.String("completion_id", resp.ID))
	return llm.ParseClassifications(resp.Choices[0].Message.Content)
}

// Package gemini implements the reasoning client on Google Gemini.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/llm"
)

// Client is a ReasoningClient backed by a Gemini generative model.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewClient creates a Gemini client configured for JSON output.
func NewClient(ctx context.Context, apiKey, modelName string, temperature float32, maxTokens int, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"

	return &Client{client: client, model: model, logger: logger}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ClassifyBatch classifies one batch of sanitized mails. Gemini takes a
// single combined prompt; the instruction block precedes the mail data.
func (c *Client) ClassifyBatch(ctx context.Context, mails []core.SanitizedMail, rules []core.Rule) ([]core.Classification, error) {
	userPrompt, err := llm.BuildUserPrompt(mails)
	if err != nil {
		return nil, err
	}
	prompt := llm.BuildSystemPrompt(rules) + "\n\n" + userPrompt

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &core.NetworkError{Op: "gemini generate content", Detail: err.Error()}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &core.ParseError{Detail: "empty candidates in gemini response"}
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, &core.ParseError{Detail: "gemini response part is not text"}
	}

	c.logger.Debug("Batch classified", zap.Int("mails", len(mails)))
	return llm.ParseClassifications(string(text))
}

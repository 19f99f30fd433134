// Package bedrock implements the reasoning client on Amazon Bedrock
// using the Anthropic messages schema.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/llm"
)

// Client is a ReasoningClient backed by a Bedrock-hosted model.
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewClient creates a Bedrock client in the given region.
func NewClient(ctx context.Context, region, modelID string, temperature float32, maxTokens int, logger *zap.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Client{
		client:      bedrockruntime.NewFromConfig(cfg),
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}, nil
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float32            `json:"temperature"`
	System           string             `json:"system"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ClassifyBatch classifies one batch of sanitized mails.
func (c *Client) ClassifyBatch(ctx context.Context, mails []core.SanitizedMail, rules []core.Rule) ([]core.Classification, error) {
	userPrompt, err := llm.BuildUserPrompt(mails)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        c.maxTokens,
		Temperature:      c.temperature,
		System:           llm.BuildSystemPrompt(rules),
		Messages: []anthropicMessage{
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling bedrock payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, &core.NetworkError{Op: "bedrock invoke model", Detail: err.Error()}
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, &core.ParseError{Detail: "unmarshaling bedrock response", Err: err}
	}
	if len(decoded.Content) == 0 {
		return nil, &core.ParseError{Detail: "empty content in bedrock response"}
	}

	c.logger.Debug("Batch classified", zap.Int("mails", len(mails)))
	return llm.ParseClassifications(decoded.Content[0].Text)
}

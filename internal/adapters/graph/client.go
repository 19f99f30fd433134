// Package graph talks to a Microsoft-Graph-shaped mail provider: token
// exchanges against the tenant's OAuth2 endpoint and per-message mail
// operations against the REST surface.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
)

// DefaultBaseURL is the public Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client is a thin JSON-over-HTTP client. Every request carries a bearer
// token obtained from the TokenSource, so callers never handle tokens
// directly. There is no retry or backoff; a failed call surfaces the
// provider's error message once.
type Client struct {
	baseURL    string
	tokens     core.TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, tokens core.TokenSource, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// get performs a GET and unmarshals the JSON response into result.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs a POST with a JSON body; result may be nil.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// patch performs a PATCH with a JSON body.
func (c *Client) patch(ctx context.Context, path string, body interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

// delete performs a DELETE.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &core.NetworkError{Op: method + " " + path, Detail: err.Error()}
	}
	defer resp.Body.Close()

	// 204 denotes a successful mutation with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.NetworkError{Op: method + " " + path, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gerr graphError
		detail := ""
		if json.Unmarshal(data, &gerr) == nil {
			detail = gerr.Error.Message
		}
		c.logger.Debug("Graph request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &core.NetworkError{Op: method + " " + path, Status: resp.StatusCode, Detail: detail}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshaling response: %w", err)
		}
	}
	return nil
}

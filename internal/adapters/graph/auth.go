package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
)

// DefaultLoginBaseURL is the public Microsoft identity endpoint; the
// tenant id is appended per request.
const DefaultLoginBaseURL = "https://login.microsoftonline.com"

// expiryBuffer is subtracted from the advertised token lifetime so a
// token that reads as valid locally never exceeds the server-side one.
const expiryBuffer = 60 * time.Second

var graphScopes = strings.Join([]string{
	"https://graph.microsoft.com/User.Read",
	"https://graph.microsoft.com/Mail.Read",
	"https://graph.microsoft.com/Mail.ReadWrite",
	"https://graph.microsoft.com/MailboxSettings.Read",
}, " ")

// AuthClient performs ROPC and refresh-grant token exchanges. ROPC does
// not work with MFA-enabled or personal accounts; it is meant for
// trusted internal tooling only.
type AuthClient struct {
	loginBaseURL string
	httpClient   *http.Client
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthClient creates an auth client. An empty loginBaseURL targets
// the public endpoint.
func NewAuthClient(loginBaseURL string, logger *zap.Logger) *AuthClient {
	if loginBaseURL == "" {
		loginBaseURL = DefaultLoginBaseURL
	}
	return &AuthClient{
		loginBaseURL: strings.TrimRight(loginBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Authenticate exchanges username/password for tokens (password grant).
func (a *AuthClient) Authenticate(ctx context.Context, creds core.Credentials) (core.TokenState, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {creds.ClientID},
		"username":   {creds.Username},
		"password":   {creds.Password},
		"scope":      {"openid profile offline_access " + graphScopes},
	}
	state, err := a.exchange(ctx, creds.TenantID, form)
	if err != nil {
		return core.TokenState{}, err
	}
	state.Owner = creds.Username
	a.logger.Info("Authenticated via password grant", zap.String("user", creds.Username))
	return state, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string, creds core.Credentials) (core.TokenState, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {creds.ClientID},
		"refresh_token": {refreshToken},
		"scope":         {"openid profile offline_access " + graphScopes},
	}
	state, err := a.exchange(ctx, creds.TenantID, form)
	if err != nil {
		return core.TokenState{}, err
	}
	state.Owner = creds.Username
	return state, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (a *AuthClient) exchange(ctx context.Context, tenantID string, form url.Values) (core.TokenState, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", a.loginBaseURL, tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return core.TokenState{}, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return core.TokenState{}, &core.NetworkError{Op: "token exchange", Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.TokenState{}, &core.NetworkError{Op: "token exchange", Detail: err.Error()}
	}

	var tok tokenResponse
	if err := json.Unmarshal(data, &tok); err != nil {
		return core.TokenState{}, &core.NetworkError{Op: "token exchange", Status: resp.StatusCode, Detail: "unexpected response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || tok.Error != "" {
		detail := tok.ErrorDescription
		if detail == "" {
			detail = tok.Error
		}
		return core.TokenState{}, &core.NetworkError{Op: "token exchange", Status: resp.StatusCode, Detail: detail}
	}

	return core.TokenState{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    a.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expiryBuffer),
	}, nil
}

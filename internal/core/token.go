package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenGuard owns the stored TokenState and is its only writer. Token
// returns a currently-valid access token, refreshing on demand; when
// several callers hit an expired token at once they share the single
// in-flight refresh and receive its actual result.
type TokenGuard struct {
	auth   AuthClient
	creds  Credentials
	logger *zap.Logger

	mu    sync.Mutex
	state TokenState

	group singleflight.Group
	now   func() time.Time
}

// NewTokenGuard creates a token guard for the given identity.
func NewTokenGuard(auth AuthClient, creds Credentials, logger *zap.Logger) *TokenGuard {
	return &TokenGuard{
		auth:   auth,
		creds:  creds,
		logger: logger,
		now:    time.Now,
	}
}

// Connect performs the initial ROPC exchange and stores the result.
func (g *TokenGuard) Connect(ctx context.Context) error {
	state, err := g.auth.Authenticate(ctx, g.creds)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()

	g.logger.Info("Connected to mail provider",
		zap.String("user", state.Owner),
		zap.Time("token_expires_at", state.ExpiresAt))
	return nil
}

// Disconnect drops the stored token pair.
func (g *TokenGuard) Disconnect() {
	g.mu.Lock()
	g.state = TokenState{}
	g.mu.Unlock()
}

// Connected reports whether an access token is currently stored.
func (g *TokenGuard) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.AccessToken != ""
}

// State returns a copy of the current token state.
func (g *TokenGuard) State() TokenState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Token returns a valid access token. An unexpired token is returned
// without any network call. An expired token without a refresh token
// fails with ErrSessionExpired. A failed refresh leaves the stored state
// untouched and propagates the error.
func (g *TokenGuard) Token(ctx context.Context) (string, error) {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	if state.AccessToken == "" {
		return "", ErrNotConnected
	}
	if g.now().Before(state.ExpiresAt) {
		return state.AccessToken, nil
	}
	if state.RefreshToken == "" {
		return "", ErrSessionExpired
	}

	token, err, shared := g.group.Do("refresh", func() (interface{}, error) {
		fresh, err := g.refresh(ctx, state)
		if err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		g.logger.Debug("Joined in-flight token refresh")
	}
	return token.(string), nil
}

func (g *TokenGuard) refresh(ctx context.Context, stale TokenState) (string, error) {
	fresh, err := g.auth.Refresh(ctx, stale.RefreshToken, g.creds)
	if err != nil {
		g.logger.Warn("Token refresh failed", zap.Error(err))
		return "", err
	}
	if fresh.RefreshToken == "" {
		// Some providers omit the rotated refresh token; keep the old one.
		fresh.RefreshToken = stale.RefreshToken
	}
	if fresh.Owner == "" {
		fresh.Owner = stale.Owner
	}

	g.mu.Lock()
	g.state = fresh
	g.mu.Unlock()

	g.logger.Info("Access token refreshed",
		zap.Time("token_expires_at", fresh.ExpiresAt))
	return fresh.AccessToken, nil
}

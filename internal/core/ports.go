package core

import (
	"context"
)

// AuthClient performs token exchanges against the authentication
// boundary. Both calls return a TokenState whose ExpiresAt is already
// buffered below the server-side lifetime.
type AuthClient interface {
	// Authenticate exchanges username/password for a token (ROPC grant).
	Authenticate(ctx context.Context, creds Credentials) (TokenState, error)

	// Refresh exchanges a refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string, creds Credentials) (TokenState, error)
}

// TokenSource yields a currently-valid access token, refreshing on
// demand. Implemented by TokenGuard; consumed by the mail gateway.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ListOptions scope a message listing.
type ListOptions struct {
	Top        int
	UnreadOnly bool
}

// MailGateway is the thin per-message surface of the remote mail store.
type MailGateway interface {
	// ListFolders lists child folders of parentID, or top-level folders
	// when parentID is empty.
	ListFolders(ctx context.Context, parentID string) ([]Folder, error)

	// ListMessages lists messages in folderID, or in the default message
	// view when folderID is empty.
	ListMessages(ctx context.Context, folderID string, opts ListOptions) ([]Mail, error)

	// GetMessage fetches one message including its full body.
	GetMessage(ctx context.Context, messageID string) (Mail, error)

	Move(ctx context.Context, messageID, destFolderID string) error
	MarkRead(ctx context.Context, messageID string, isRead bool) error
	Flag(ctx context.Context, messageID string, status FlagStatus) error
	Categorise(ctx context.Context, messageID string, categories []string) error
	SetImportance(ctx context.Context, messageID string, importance Importance) error
	Delete(ctx context.Context, messageID string) error
}

// ReasoningClient classifies one batch of sanitized messages against the
// enabled rules. Implementations own prompt construction, transport and
// strict response parsing.
type ReasoningClient interface {
	ClassifyBatch(ctx context.Context, mails []SanitizedMail, rules []Rule) ([]Classification, error)
}

// HistoryRepository stores the bounded analytics history. Implementations
// enforce the cap: after Append only the most recent cap entries remain.
type HistoryRepository interface {
	Append(ctx context.Context, entries []AnalyticsEntry) error

	// Recent returns up to limit entries, oldest first.
	Recent(ctx context.Context, limit int) ([]AnalyticsEntry, error)

	Count(ctx context.Context) (int, error)
	Close() error
}

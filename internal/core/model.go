package core

import (
	"time"
)

// FlagStatus is the follow-up flag state of a message.
type FlagStatus string

const (
	FlagNotFlagged FlagStatus = "notFlagged"
	FlagFlagged    FlagStatus = "flagged"
	FlagComplete   FlagStatus = "complete"
)

// Importance is the provider-side importance level of a message.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Credentials holds the ROPC identity used against the auth boundary.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"clientId"`
	TenantID string `json:"tenantId"`
}

// TokenState is the access/refresh token pair held by the TokenGuard.
// ExpiresAt is already buffered below the server-side lifetime, so a
// token that reads as valid here is always still valid remotely.
type TokenState struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Owner        string
}

// Folder is one mailbox folder as placed in the flattened tree. Depth is
// 0 for roots and parent.Depth+1 for children.
type Folder struct {
	ID          string
	DisplayName string
	ParentID    string
	Depth       int
	UnreadCount int
	TotalCount  int
}

// EmailAddress is a sender address with optional display name.
type EmailAddress struct {
	Address string
	Name    string
}

// Mail is one message as listed from a folder. Body is empty unless the
// full message was fetched by id.
type Mail struct {
	ID             string
	Subject        string
	Sender         EmailAddress
	ReceivedAt     time.Time
	IsRead         bool
	Flag           FlagStatus
	Importance     Importance
	HasAttachments bool
	Categories     []string
	BodyPreview    string
	Body           string
}

// Rule is one user-authored classification rule. Condition and Action are
// free-form natural language passed verbatim to the reasoning service.
type Rule struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
	Enabled   bool   `json:"enabled"`
}

// EnabledRules returns only the rules with Enabled set.
func EnabledRules(rules []Rule) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// SanitizedMail is the reduced view of a message that is allowed to leave
// the system towards the reasoning service. The full body never appears
// here; the preview is capped at PreviewLimit characters.
type SanitizedMail struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	From           string    `json:"from"`
	FromName       string    `json:"fromName"`
	ReceivedAt     time.Time `json:"receivedDateTime"`
	BodyPreview    string    `json:"bodyPreview"`
	Importance     string    `json:"importance"`
	HasAttachments bool      `json:"hasAttachments"`
	Categories     []string  `json:"existingCategories"`
	Flag           string    `json:"currentFlag"`
	IsRead         bool      `json:"isRead"`
}

// ActionKind enumerates the mutations the reasoning service may request.
type ActionKind string

const (
	ActionMove          ActionKind = "move"
	ActionFlag          ActionKind = "flag"
	ActionMarkRead      ActionKind = "markRead"
	ActionCategorise    ActionKind = "categorise"
	ActionSetImportance ActionKind = "setImportance"
	ActionDelete        ActionKind = "delete"

	// ActionUnknown marks a kind this version does not recognise. The
	// applier records these as skipped instead of failing the run.
	ActionUnknown ActionKind = "unknown"
)

// Action is one tagged mutation. Only the parameters of the tagged kind
// are meaningful; MessageID is filled in when classifications are
// flattened for application.
type Action struct {
	Kind      ActionKind
	MessageID string

	FolderID   string
	FlagStatus FlagStatus
	IsRead     bool
	Categories []string
	Importance Importance

	// RawKind preserves the service's verb when Kind is ActionUnknown.
	RawKind string
}

// Classification is the reasoning service's verdict for one message.
type Classification struct {
	MessageID   string
	MatchedRule string
	Reasoning   string
	Confidence  float64
	Actions     []Action
}

// ConfidenceBucket buckets a confidence value for display.
func ConfidenceBucket(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// ActionResult is the outcome of applying one action. Results are
// returned in submission order so callers can correlate by index.
type ActionResult struct {
	MessageID string
	Kind      ActionKind
	Success   bool
	Skipped   bool
	Error     string
}

// ApplySummary aggregates an apply run. Results always holds one entry
// per submitted action, failures included.
type ApplySummary struct {
	Results   []ActionResult
	Succeeded int
	Failed    int
	Skipped   int

	// RemovedIDs are messages that no longer belong to the listed folder
	// after a successful move or delete.
	RemovedIDs []string
}

// AnalyticsEntry is one classification summary in the bounded history.
type AnalyticsEntry struct {
	Timestamp  time.Time
	Rule       string
	Confidence float64
	Actions    []ActionKind
}

// Progress reports cumulative classification progress.
type Progress struct {
	Processed int
	Total     int
}

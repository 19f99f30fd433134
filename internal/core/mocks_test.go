package core

import (
	"context"

	"go.uber.org/zap"
)

// fakeAuth counts token exchanges and returns canned states.
type fakeAuth struct {
	authenticateFn func(ctx context.Context, creds Credentials) (TokenState, error)
	refreshFn      func(ctx context.Context, refreshToken string, creds Credentials) (TokenState, error)
	authCalls      int
	refreshCalls   int
}

func (f *fakeAuth) Authenticate(ctx context.Context, creds Credentials) (TokenState, error) {
	f.authCalls++
	return f.authenticateFn(ctx, creds)
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string, creds Credentials) (TokenState, error) {
	f.refreshCalls++
	return f.refreshFn(ctx, refreshToken, creds)
}

// fakeGateway implements MailGateway with overridable functions. Calls
// without an override succeed and do nothing.
type fakeGateway struct {
	listFoldersFn  func(ctx context.Context, parentID string) ([]Folder, error)
	listMessagesFn func(ctx context.Context, folderID string, opts ListOptions) ([]Mail, error)
	moveFn         func(ctx context.Context, messageID, destFolderID string) error
	markReadFn     func(ctx context.Context, messageID string, isRead bool) error
	flagFn         func(ctx context.Context, messageID string, status FlagStatus) error
	categoriseFn   func(ctx context.Context, messageID string, categories []string) error
	importanceFn   func(ctx context.Context, messageID string, importance Importance) error
	deleteFn       func(ctx context.Context, messageID string) error
}

func (f *fakeGateway) ListFolders(ctx context.Context, parentID string) ([]Folder, error) {
	if f.listFoldersFn != nil {
		return f.listFoldersFn(ctx, parentID)
	}
	return nil, nil
}

func (f *fakeGateway) ListMessages(ctx context.Context, folderID string, opts ListOptions) ([]Mail, error) {
	if f.listMessagesFn != nil {
		return f.listMessagesFn(ctx, folderID, opts)
	}
	return nil, nil
}

func (f *fakeGateway) GetMessage(ctx context.Context, messageID string) (Mail, error) {
	return Mail{ID: messageID}, nil
}

func (f *fakeGateway) Move(ctx context.Context, messageID, destFolderID string) error {
	if f.moveFn != nil {
		return f.moveFn(ctx, messageID, destFolderID)
	}
	return nil
}

func (f *fakeGateway) MarkRead(ctx context.Context, messageID string, isRead bool) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, messageID, isRead)
	}
	return nil
}

func (f *fakeGateway) Flag(ctx context.Context, messageID string, status FlagStatus) error {
	if f.flagFn != nil {
		return f.flagFn(ctx, messageID, status)
	}
	return nil
}

func (f *fakeGateway) Categorise(ctx context.Context, messageID string, categories []string) error {
	if f.categoriseFn != nil {
		return f.categoriseFn(ctx, messageID, categories)
	}
	return nil
}

func (f *fakeGateway) SetImportance(ctx context.Context, messageID string, importance Importance) error {
	if f.importanceFn != nil {
		return f.importanceFn(ctx, messageID, importance)
	}
	return nil
}

func (f *fakeGateway) Delete(ctx context.Context, messageID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, messageID)
	}
	return nil
}

// fakeReasoning records batches and returns one trivial classification
// per mail unless overridden.
type fakeReasoning struct {
	classifyFn func(ctx context.Context, mails []SanitizedMail, rules []Rule) ([]Classification, error)
	calls      int
	batches    [][]SanitizedMail
}

func (f *fakeReasoning) ClassifyBatch(ctx context.Context, mails []SanitizedMail, rules []Rule) ([]Classification, error) {
	f.calls++
	f.batches = append(f.batches, mails)
	if f.classifyFn != nil {
		return f.classifyFn(ctx, mails, rules)
	}
	out := make([]Classification, 0, len(mails))
	for _, m := range mails {
		out = append(out, Classification{MessageID: m.ID, MatchedRule: "No rule matched"})
	}
	return out, nil
}

// fakeHistory is an unbounded in-test history repository.
type fakeHistory struct {
	entries []AnalyticsEntry
	err     error
}

func (f *fakeHistory) Append(_ context.Context, entries []AnalyticsEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]AnalyticsEntry, error) {
	if limit > 0 && len(f.entries) > limit {
		return f.entries[len(f.entries)-limit:], nil
	}
	return f.entries, nil
}

func (f *fakeHistory) Count(_ context.Context) (int, error) { return len(f.entries), nil }
func (f *fakeHistory) Close() error                         { return nil }

func testLogger() *zap.Logger { return zap.NewNop() }

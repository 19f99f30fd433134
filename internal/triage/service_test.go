package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
	"github.com/mailmind/mailmind/internal/store"
)

type stubGateway struct {
	mails      []core.Mail
	listErr    error
	flagErr    error
	moved      []string
	listCalls  int
	flagCalls  int
	folderSets [][]core.Folder
}

func (s *stubGateway) ListFolders(context.Context, string) ([]core.Folder, error) {
	return []core.Folder{{ID: "inbox", DisplayName: "Inbox", TotalCount: len(s.mails)}}, nil
}

func (s *stubGateway) ListMessages(context.Context, string, core.ListOptions) ([]core.Mail, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.mails, nil
}

func (s *stubGateway) GetMessage(_ context.Context, id string) (core.Mail, error) {
	for _, m := range s.mails {
		if m.ID == id {
			return m, nil
		}
	}
	return core.Mail{}, errors.New("not found")
}

func (s *stubGateway) Move(_ context.Context, messageID, _ string) error {
	s.moved = append(s.moved, messageID)
	return nil
}

func (s *stubGateway) MarkRead(context.Context, string, bool) error { return nil }

func (s *stubGateway) Flag(context.Context, string, core.FlagStatus) error {
	s.flagCalls++
	return s.flagErr
}

func (s *stubGateway) Categorise(context.Context, string, []string) error     { return nil }
func (s *stubGateway) SetImportance(context.Context, string, core.Importance) error { return nil }
func (s *stubGateway) Delete(context.Context, string) error                   { return nil }

type stubReasoning struct {
	classifications []core.Classification
	err             error
}

func (s *stubReasoning) ClassifyBatch(context.Context, []core.SanitizedMail, []core.Rule) ([]core.Classification, error) {
	return s.classifications, s.err
}

type stubHistory struct {
	entries []core.AnalyticsEntry
}

func (s *stubHistory) Append(_ context.Context, entries []core.AnalyticsEntry) error {
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *stubHistory) Recent(context.Context, int) ([]core.AnalyticsEntry, error) {
	return s.entries, nil
}

func (s *stubHistory) Count(context.Context) (int, error) { return len(s.entries), nil }
func (s *stubHistory) Close() error                       { return nil }

func newTestService(gw *stubGateway, reasoning *stubReasoning, history *stubHistory, rules []core.Rule) (*Service, *store.Store) {
	logger := zap.NewNop()
	state := store.New()
	state.SetRules(rules)

	svc := NewService(
		nil,
		gw,
		core.NewFolderTreeBuilder(gw, logger),
		core.NewMailBatchClassifier(reasoning, 10, logger),
		core.NewActionApplier(gw, logger),
		core.NewAnalyticsAggregator(history, logger),
		state,
		Config{FetchTop: 50, UnreadOnly: true},
		logger,
	)
	return svc, state
}

func enabledRule() core.Rule {
	return core.Rule{ID: "r1", Name: "Newsletters", Condition: "bulk", Action: "archive", Enabled: true}
}

func TestSyncPopulatesStore(t *testing.T) {
	gw := &stubGateway{mails: []core.Mail{{ID: "m1"}, {ID: "m2"}}}
	svc, state := newTestService(gw, &stubReasoning{}, &stubHistory{}, nil)

	require.NoError(t, svc.Sync(context.Background()))

	assert.Len(t, state.Mails(), 2)
	assert.Len(t, state.Folders(), 1)
	assert.False(t, state.LastSynced().IsZero())
}

func TestSyncFailurePropagates(t *testing.T) {
	gw := &stubGateway{listErr: errors.New("mailbox down")}
	svc, state := newTestService(gw, &stubReasoning{}, &stubHistory{}, nil)

	err := svc.Sync(context.Background())
	require.Error(t, err)
	assert.Empty(t, state.Mails())
}

func TestClassifyAndApplyFullRun(t *testing.T) {
	gw := &stubGateway{mails: []core.Mail{{ID: "m1"}, {ID: "m2"}}}
	reasoning := &stubReasoning{classifications: []core.Classification{
		{
			MessageID:   "m1",
			MatchedRule: "Newsletters",
			Confidence:  0.9,
			Actions:     []core.Action{{Kind: core.ActionMove, FolderID: "archive"}},
		},
		{MessageID: "m2", MatchedRule: "No rule matched", Confidence: 0.4},
	}}
	history := &stubHistory{}
	svc, state := newTestService(gw, reasoning, history, []core.Rule{enabledRule()})
	require.NoError(t, svc.Sync(context.Background()))

	summary, err := svc.ClassifyAndApply(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, []string{"m1"}, gw.moved)

	c, ok := state.Classification("m1")
	require.True(t, ok)
	assert.Equal(t, "Newsletters", c.MatchedRule)

	assert.Len(t, history.entries, 2, "one analytics entry per classified message")
	assert.Equal(t, 2, gw.listCalls, "apply re-syncs the listing")
	assert.Nil(t, state.Progress())
}

func TestClassifyAndApplyNoActions(t *testing.T) {
	gw := &stubGateway{mails: []core.Mail{{ID: "m1"}}}
	reasoning := &stubReasoning{classifications: []core.Classification{
		{MessageID: "m1", MatchedRule: "No rule matched", Confidence: 0.2},
	}}
	svc, state := newTestService(gw, reasoning, &stubHistory{}, []core.Rule{enabledRule()})
	require.NoError(t, svc.Sync(context.Background()))

	summary, err := svc.ClassifyAndApply(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 1, gw.listCalls, "no re-sync when nothing changed")

	_, ok := state.Classification("m1")
	assert.True(t, ok, "verdicts are stored even without actions")
}

func TestClassifyAndApplyClassifierFailure(t *testing.T) {
	gw := &stubGateway{mails: []core.Mail{{ID: "m1"}}}
	reasoning := &stubReasoning{err: errors.New("model unavailable")}
	svc, state := newTestService(gw, reasoning, &stubHistory{}, []core.Rule{enabledRule()})
	require.NoError(t, svc.Sync(context.Background()))

	_, err := svc.ClassifyAndApply(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, state.Progress(), "progress is cleared on failure")
	assert.Empty(t, state.ActionResults())
}

func TestClassifyAndApplySelectedIDs(t *testing.T) {
	gw := &stubGateway{mails: []core.Mail{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}}
	reasoning := &stubReasoning{classifications: []core.Classification{
		{MessageID: "m2", MatchedRule: "Newsletters", Confidence: 0.9,
			Actions: []core.Action{{Kind: core.ActionFlag, FlagStatus: core.FlagFlagged}}},
	}}
	svc, state := newTestService(gw, reasoning, &stubHistory{}, []core.Rule{enabledRule()})
	require.NoError(t, svc.Sync(context.Background()))

	summary, err := svc.ClassifyAndApply(context.Background(), []string{"m2"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, gw.flagCalls)

	// Flagging does not remove the message from the listing.
	assert.Len(t, state.Mails(), 3)
}

func TestClassifyAndApplyNoHeldMails(t *testing.T) {
	svc, _ := newTestService(&stubGateway{}, &stubReasoning{}, &stubHistory{}, []core.Rule{enabledRule()})

	_, err := svc.ClassifyAndApply(context.Background(), nil)
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

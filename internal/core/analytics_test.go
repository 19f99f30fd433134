package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordClassificationsOneEntryPerMessage(t *testing.T) {
	history := &fakeHistory{}
	agg := NewAnalyticsAggregator(history, testLogger())
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return ts }

	err := agg.RecordClassifications(context.Background(), []Classification{
		{
			MessageID:   "m1",
			MatchedRule: "Newsletters",
			Confidence:  0.92,
			Actions: []Action{
				{Kind: ActionMove, FolderID: "archive"},
				{Kind: ActionMarkRead, IsRead: true},
			},
		},
		{
			MessageID:   "m2",
			MatchedRule: "none",
			Confidence:  0.4,
		},
	})
	require.NoError(t, err)

	entries, err := agg.History(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, ts, entries[0].Timestamp)
	assert.Equal(t, "Newsletters", entries[0].Rule)
	assert.Equal(t, 0.92, entries[0].Confidence)
	assert.Equal(t, []ActionKind{ActionMove, ActionMarkRead}, entries[0].Actions)

	assert.Equal(t, "none", entries[1].Rule)
	assert.Empty(t, entries[1].Actions)
}

func TestRecordClassificationsEmptyIsNoop(t *testing.T) {
	history := &fakeHistory{}
	agg := NewAnalyticsAggregator(history, testLogger())

	require.NoError(t, agg.RecordClassifications(context.Background(), nil))
	assert.Empty(t, history.entries)
}

func TestRecordClassificationsPropagatesAppendError(t *testing.T) {
	history := &fakeHistory{err: errors.New("disk full")}
	agg := NewAnalyticsAggregator(history, testLogger())

	err := agg.RecordClassifications(context.Background(), []Classification{
		{MessageID: "m1", MatchedRule: "none", Confidence: 0.5},
	})
	assert.EqualError(t, err, "disk full")
}

func TestConfidenceBucketBoundaries(t *testing.T) {
	assert.Equal(t, "high", ConfidenceBucket(0.8))
	assert.Equal(t, "high", ConfidenceBucket(1.0))
	assert.Equal(t, "medium", ConfidenceBucket(0.5))
	assert.Equal(t, "medium", ConfidenceBucket(0.79))
	assert.Equal(t, "low", ConfidenceBucket(0.49))
	assert.Equal(t, "low", ConfidenceBucket(0))
}

func TestSummarize(t *testing.T) {
	day1 := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	entries := []AnalyticsEntry{
		{Timestamp: day1, Rule: "Newsletters", Confidence: 0.95, Actions: []ActionKind{ActionMove, ActionMarkRead}},
		{Timestamp: day1, Rule: "Newsletters", Confidence: 0.6, Actions: []ActionKind{ActionMove}},
		{Timestamp: day2, Rule: "Urgent", Confidence: 0.3, Actions: []ActionKind{ActionFlag}},
	}

	summary := Summarize(entries)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, map[string]int{"Newsletters": 2, "Urgent": 1}, summary.RuleCounts)
	assert.Equal(t, map[ActionKind]int{ActionMove: 2, ActionMarkRead: 1, ActionFlag: 1}, summary.ActionCounts)
	assert.Equal(t, ConfidenceBuckets{High: 1, Medium: 1, Low: 1}, summary.Confidence)
	assert.Equal(t, map[string]int{"2026-08-29": 2, "2026-08-30": 1}, summary.ByDay)
}

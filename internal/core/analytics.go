package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HistoryCap bounds the analytics history: only the most recent
// HistoryCap entries are ever retained.
const HistoryCap = 500

// AnalyticsAggregator records one summary entry per classified message
// into the bounded history.
type AnalyticsAggregator struct {
	history HistoryRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsAggregator creates an aggregator on top of a history
// repository.
func NewAnalyticsAggregator(history HistoryRepository, logger *zap.Logger) *AnalyticsAggregator {
	return &AnalyticsAggregator{history: history, logger: logger, now: time.Now}
}

// RecordClassifications appends one entry per classification. Appending
// past the cap drops the oldest entries; there is no other removal.
func (a *AnalyticsAggregator) RecordClassifications(ctx context.Context, classifications []Classification) error {
	if len(classifications) == 0 {
		return nil
	}

	entries := make([]AnalyticsEntry, 0, len(classifications))
	ts := a.now()
	for _, c := range classifications {
		kinds := make([]ActionKind, 0, len(c.Actions))
		for _, act := range c.Actions {
			kinds = append(kinds, act.Kind)
		}
		entries = append(entries, AnalyticsEntry{
			Timestamp:  ts,
			Rule:       c.MatchedRule,
			Confidence: c.Confidence,
			Actions:    kinds,
		})
	}

	if err := a.history.Append(ctx, entries); err != nil {
		a.logger.Error("Failed to record analytics entries", zap.Error(err))
		return err
	}
	a.logger.Debug("Analytics recorded", zap.Int("entries", len(entries)))
	return nil
}

// History returns the retained entries, oldest first.
func (a *AnalyticsAggregator) History(ctx context.Context) ([]AnalyticsEntry, error) {
	return a.history.Recent(ctx, HistoryCap)
}

// AnalyticsSummary is the display aggregation over the history.
type AnalyticsSummary struct {
	Total        int
	RuleCounts   map[string]int
	ActionCounts map[ActionKind]int
	Confidence   ConfidenceBuckets
	ByDay        map[string]int
}

// ConfidenceBuckets counts entries per display bucket.
type ConfidenceBuckets struct {
	High   int
	Medium int
	Low    int
}

// Summarize computes rule-hit, action and confidence breakdowns plus a
// per-day activity count keyed by yyyy-mm-dd.
func Summarize(entries []AnalyticsEntry) AnalyticsSummary {
	summary := AnalyticsSummary{
		Total:        len(entries),
		RuleCounts:   make(map[string]int),
		ActionCounts: make(map[ActionKind]int),
		ByDay:        make(map[string]int),
	}

	for _, e := range entries {
		summary.RuleCounts[e.Rule]++
		for _, kind := range e.Actions {
			summary.ActionCounts[kind]++
		}
		switch ConfidenceBucket(e.Confidence) {
		case "high":
			summary.Confidence.High++
		case "medium":
			summary.Confidence.Medium++
		default:
			summary.Confidence.Low++
		}
		summary.ByDay[e.Timestamp.Format("2006-01-02")]++
	}
	return summary
}

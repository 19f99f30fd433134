// Package store holds the engine's shared state behind single-writer
// update methods with an explicit subscriber mechanism, replacing any
// ambient globals.
package store

import (
	"sync"
	"time"

	"github.com/mailmind/mailmind/internal/core"
)

// EventKind classifies a state-change notification.
type EventKind string

const (
	EventMailsUpdated    EventKind = "mails_updated"
	EventFoldersUpdated  EventKind = "folders_updated"
	EventRulesUpdated    EventKind = "rules_updated"
	EventProgress        EventKind = "classification_progress"
	EventClassified      EventKind = "classified"
	EventActionsApplied  EventKind = "actions_applied"
	EventNotification    EventKind = "notification"
	EventConnectionState EventKind = "connection_state"
)

// Event is delivered to subscribers after a state mutation.
type Event struct {
	Kind    EventKind
	Message string
}

// Store owns all mutable engine state other than the token pair. Every
// mutation goes through a method holding the write lock; readers get
// copies, never aliases into internal state.
type Store struct {
	mu sync.RWMutex

	connected       bool
	mails           []core.Mail
	folders         []core.Folder
	rules           []core.Rule
	classifications map[string]core.Classification
	actionResults   []core.ActionResult
	progress        *core.Progress
	lastSynced      time.Time

	subs   map[int]chan Event
	nextID int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		classifications: make(map[string]core.Classification),
		subs:            make(map[int]chan Event),
	}
}

// Subscribe registers for state-change events. The returned cancel
// function removes the subscription and closes the channel. Events are
// dropped, not queued, for slow subscribers.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, 16)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) publish(event Event) {
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Notify publishes a notification-level event without mutating state.
func (s *Store) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(Event{Kind: EventNotification, Message: message})
}

// SetConnected records the connection state.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	s.publish(Event{Kind: EventConnectionState})
}

// Connected reports the recorded connection state.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetMails replaces the held listing wholesale.
func (s *Store) SetMails(mails []core.Mail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mails = append([]core.Mail(nil), mails...)
	s.lastSynced = time.Now()
	s.publish(Event{Kind: EventMailsUpdated})
}

// Mails returns a copy of the held listing.
func (s *Store) Mails() []core.Mail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Mail(nil), s.mails...)
}

// MailsByID returns the held mails matching ids, or every held mail when
// ids is nil.
func (s *Store) MailsByID(ids []string) []core.Mail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ids == nil {
		return append([]core.Mail(nil), s.mails...)
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []core.Mail
	for _, m := range s.mails {
		if _, ok := want[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// RemoveMails drops the given ids from the held listing; moved or
// deleted messages no longer belong to the previously-displayed folder.
func (s *Store) RemoveMails(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.mails[:0]
	for _, m := range s.mails {
		if _, gone := drop[m.ID]; !gone {
			kept = append(kept, m)
		}
	}
	s.mails = kept
	s.publish(Event{Kind: EventMailsUpdated})
}

// SetFolders replaces the flattened folder tree.
func (s *Store) SetFolders(folders []core.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = append([]core.Folder(nil), folders...)
	s.publish(Event{Kind: EventFoldersUpdated})
}

// Folders returns a copy of the flattened folder tree.
func (s *Store) Folders() []core.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Folder(nil), s.folders...)
}

// SetRules replaces the rule set.
func (s *Store) SetRules(rules []core.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append([]core.Rule(nil), rules...)
	s.publish(Event{Kind: EventRulesUpdated})
}

// Rules returns a copy of the rule set.
func (s *Store) Rules() []core.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Rule(nil), s.rules...)
}

// SetProgress records classification progress; nil clears it.
func (s *Store) SetProgress(p *core.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
	s.publish(Event{Kind: EventProgress})
}

// Progress returns the latest classification progress, or nil.
func (s *Store) Progress() *core.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.progress == nil {
		return nil
	}
	p := *s.progress
	return &p
}

// MergeClassifications stores classifications keyed by message id; a
// later run overwrites the earlier verdict for the same message.
func (s *Store) MergeClassifications(classifications []core.Classification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range classifications {
		s.classifications[c.MessageID] = c
	}
	s.progress = nil
	s.publish(Event{Kind: EventClassified})
}

// Classification returns the stored verdict for a message, if any.
func (s *Store) Classification(messageID string) (core.Classification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classifications[messageID]
	return c, ok
}

// SetActionResults records the outcome of the latest apply run.
func (s *Store) SetActionResults(results []core.ActionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionResults = append([]core.ActionResult(nil), results...)
	s.publish(Event{Kind: EventActionsApplied})
}

// ActionResults returns a copy of the latest apply outcomes.
func (s *Store) ActionResults() []core.ActionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ActionResult(nil), s.actionResults...)
}

// LastSynced reports when the listing was last replaced.
func (s *Store) LastSynced() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSynced
}

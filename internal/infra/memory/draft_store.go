package memory

import (
	"context"
	"sync"
	"time"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// DraftStore is an in-memory implementation of app.DraftStore. Drafts expire
// after domain.DraftTTL and are purged lazily on read. Submitted flags are
// session-scoped by nature here: the process is the session.
type DraftStore struct {
	mu        sync.RWMutex
	clock     func() time.Time
	drafts    map[string]domain.Draft
	submitted map[string]struct{}
}

func NewDraftStore() *DraftStore {
	return NewDraftStoreWithClock(time.Now)
}

// NewDraftStoreWithClock allows deterministic timestamps in tests.
func NewDraftStoreWithClock(now func() time.Time) *DraftStore {
	return &DraftStore{
		clock:     now,
		drafts:    make(map[string]domain.Draft),
		submitted: make(map[string]struct{}),
	}
}

func (s *DraftStore) Save(_ context.Context, role domain.Role, teamKey string, draft domain.Draft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.SavedAt = s.clock()
	s.drafts[draftKey(role, teamKey)] = draft
	return true
}

// Load returns the draft if present, structurally valid, and not expired.
// Stale or malformed entries are deleted on read.
func (s *DraftStore) Load(_ context.Context, role domain.Role, teamKey string) (domain.Draft, bool) {
	key := draftKey(role, teamKey)

	s.mu.RLock()
	draft, ok := s.drafts[key]
	s.mu.RUnlock()
	if !ok {
		return domain.Draft{}, false
	}
	if !draft.Valid() || draft.Expired(s.clock()) {
		s.mu.Lock()
		delete(s.drafts, key)
		s.mu.Unlock()
		return domain.Draft{}, false
	}
	return draft, true
}

// Remove deletes the draft; removing an absent draft is not an error.
func (s *DraftStore) Remove(_ context.Context, role domain.Role, teamKey string) {
	s.mu.Lock()
	delete(s.drafts, draftKey(role, teamKey))
	s.mu.Unlock()
}

func (s *DraftStore) MarkSubmitted(role domain.Role, teamKey string) {
	s.mu.Lock()
	s.submitted[submittedKey(role, teamKey)] = struct{}{}
	s.mu.Unlock()
}

func (s *DraftStore) WasSubmitted(role domain.Role, teamKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.submitted[submittedKey(role, teamKey)]
	return ok
}

func draftKey(role domain.Role, teamKey string) string {
	if teamKey == "" {
		teamKey = domain.GeneralTeamKey
	}
	return "survey_draft_" + string(role) + "_" + teamKey
}

func submittedKey(role domain.Role, teamKey string) string {
	if teamKey == "" {
		teamKey = domain.GeneralTeamKey
	}
	return "survey_submitted_" + string(role) + "_" + teamKey
}

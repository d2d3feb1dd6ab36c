package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// DraftStore keeps drafts in Redis under survey_draft_{role}_{teamKey} keys
// with the fixed 24h expiration. Redis TTL covers crash recovery; SavedAt is
// still checked on read so a clock-skewed or manually restored entry cannot
// outlive the window.
//
// Submitted flags stay in an in-process map: they are session-scoped and must
// not survive a restart, so persisting them would be wrong.
type DraftStore struct {
	client *redis.Client
	clock  func() time.Time

	mu        sync.RWMutex
	submitted map[string]struct{}
}

func NewDraftStore(client *redis.Client) *DraftStore {
	return NewDraftStoreWithClock(client, time.Now)
}

// NewDraftStoreWithClock allows deterministic timestamps in tests.
func NewDraftStoreWithClock(client *redis.Client, now func() time.Time) *DraftStore {
	return &DraftStore{
		client:    client,
		clock:     now,
		submitted: make(map[string]struct{}),
	}
}

// Save writes the timestamped draft. Failures are reported with the bool and
// never surface to the respondent; the flow continues without drafts.
func (s *DraftStore) Save(ctx context.Context, role domain.Role, teamKey string, draft domain.Draft) bool {
	draft.SavedAt = s.clock()
	data, err := json.Marshal(draft)
	if err != nil {
		log.Printf("survey: draft marshal failed: %v", err)
		return false
	}
	if err := s.client.Set(ctx, draftKey(role, teamKey), data, domain.DraftTTL).Err(); err != nil {
		log.Printf("survey: draft save failed: %v", err)
		return false
	}
	return true
}

// Load returns the draft if present, structurally valid, and not expired.
// Malformed or stale entries are deleted on read so a later load starts clean.
func (s *DraftStore) Load(ctx context.Context, role domain.Role, teamKey string) (domain.Draft, bool) {
	key := draftKey(role, teamKey)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("survey: draft load failed: %v", err)
		}
		return domain.Draft{}, false
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil || !draft.Valid() || draft.Expired(s.clock()) {
		_ = s.client.Del(ctx, key).Err()
		return domain.Draft{}, false
	}
	return draft, true
}

// Remove deletes the draft; removing an absent draft is not an error.
func (s *DraftStore) Remove(ctx context.Context, role domain.Role, teamKey string) {
	if err := s.client.Del(ctx, draftKey(role, teamKey)).Err(); err != nil {
		log.Printf("survey: draft remove failed: %v", err)
	}
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

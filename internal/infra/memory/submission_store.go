package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// SubmissionStore is a map-backed implementation of app.SubmissionStore,
// used when no database is configured and in unit tests.
type SubmissionStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	records map[string]domain.StoredSubmission // by submission ID
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		clock:   time.Now,
		records: make(map[string]domain.StoredSubmission),
	}
}

func (s *SubmissionStore) FindByRespondent(_ context.Context, email string) (domain.StoredSubmission, error) {
	if email == "" {
		return domain.StoredSubmission{}, domain.ErrSubmissionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest domain.StoredSubmission
	found := false
	for _, rec := range s.records {
		if rec.RespondentEmail != email {
			continue
		}
		if !found || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
			found = true
		}
	}
	if !found {
		return domain.StoredSubmission{}, domain.ErrSubmissionNotFound
	}
	return latest, nil
}

func (s *SubmissionStore) Insert(_ context.Context, sub domain.Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	id := uuid.NewString()
	s.records[id] = domain.StoredSubmission{
		ID:         id,
		CreatedAt:  now,
		UpdatedAt:  now,
		Submission: sub,
	}
	return id, nil
}

func (s *SubmissionStore) Update(_ context.Context, id string, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	rec.Submission = sub
	rec.UpdatedAt = s.clock()
	s.records[id] = rec
	return nil
}

// Get returns a stored record by ID (test helper).
func (s *SubmissionStore) Get(id string) (domain.StoredSubmission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

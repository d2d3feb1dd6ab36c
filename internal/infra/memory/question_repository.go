package memory

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the full managed question set from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository resolves and caches per-role question lists with TTL to
// avoid repeated loads. A failed or empty load for a role falls back to the
// built-in list for that role; fallbacks are never cached so the next call
// retries the loader.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Role]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Role]cachedQuestions),
	}
}

func (r *QuestionRepository) QuestionsForRole(ctx context.Context, role domain.Role) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[role]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, _, _ := r.sf.Do(string(role), func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[role]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		all, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			log.Printf("survey: question load failed, using builtin set for %s: %v", role, err)
			return BuiltinQuestions(role), nil
		}
		resolved := domain.ResolveQuestions(all, role)
		if len(resolved) == 0 {
			return BuiltinQuestions(role), nil
		}

		r.mu.Lock()
		r.cache[role] = cachedQuestions{
			questions: resolved,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return resolved, nil
	})
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed question set (tests/demos). A nil or
// empty set makes every role resolve to its built-in list.
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}

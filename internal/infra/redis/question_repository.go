package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/infra/memory"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the full managed question set from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches resolved per-role question lists in Redis
// (JSON under survey:questions:{role}) and falls back to the loader on cache
// miss. Loader failures and empty role sets resolve to the built-in list for
// that role and are never cached, so the next call retries the loader.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) QuestionsForRole(ctx context.Context, role domain.Role) ([]domain.Question, error) {
	key := r.key(role)
	if cached, ok := r.fromCache(ctx, key); ok {
		return cached, nil
	}

	result, _, _ := r.sf.Do(string(role), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := r.fromCache(ctx, key); ok {
			return cached, nil
		}

		all, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			log.Printf("survey: question load failed, using builtin set for %s: %v", role, err)
			return memory.BuiltinQuestions(role), nil
		}
		resolved := domain.ResolveQuestions(all, role)
		if len(resolved) == 0 {
			return memory.BuiltinQuestions(role), nil
		}

		if data, err := json.Marshal(resolved); err == nil {
			if err := r.client.Set(ctx, key, data, r.ttlWithJitter()).Err(); err != nil {
				log.Printf("survey: question cache write failed: %v", err)
			}
		}
		return resolved, nil
	})
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		_ = r.client.Del(ctx, key).Err()
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) key(role domain.Role) string {
	return "survey:questions:" + string(role)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

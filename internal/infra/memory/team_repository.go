package memory

import (
	"context"
	"log"
	"sync"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// TeamLoader fetches the team roster from a backing store.
type TeamLoader interface {
	LoadTeams(ctx context.Context) ([]domain.TeamInfo, error)
}

// TeamRepository memoizes the roster after the first successful load; the
// roster is immutable reference data. Failed or empty loads fall back to the
// built-in roster without caching it.
type TeamRepository struct {
	loader TeamLoader

	mu    sync.RWMutex
	teams []domain.TeamInfo
}

func NewTeamRepository(loader TeamLoader) *TeamRepository {
	return &TeamRepository{loader: loader}
}

func (r *TeamRepository) ListTeams(ctx context.Context) ([]domain.TeamInfo, error) {
	r.mu.RLock()
	if r.teams != nil {
		defer r.mu.RUnlock()
		return r.teams, nil
	}
	r.mu.RUnlock()

	teams, err := r.loader.LoadTeams(ctx)
	if err != nil || len(teams) == 0 {
		if err != nil {
			log.Printf("survey: team load failed, using builtin roster: %v", err)
		}
		return BuiltinTeams(), nil
	}

	r.mu.Lock()
	r.teams = teams
	r.mu.Unlock()
	return teams, nil
}

// StaticTeamLoader serves a fixed roster (tests/demos).
type StaticTeamLoader struct {
	teams []domain.TeamInfo
}

func NewStaticTeamLoader(teams []domain.TeamInfo) *StaticTeamLoader {
	return &StaticTeamLoader{teams: teams}
}

func (l *StaticTeamLoader) LoadTeams(_ context.Context) ([]domain.TeamInfo, error) {
	return l.teams, nil
}

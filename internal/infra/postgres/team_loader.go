package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// TeamLoader loads the mission team roster from Postgres.
type TeamLoader struct {
	pool *pgxpool.Pool
}

func NewTeamLoader(pool *pgxpool.Pool) *TeamLoader {
	return &TeamLoader{pool: pool}
}

func (l *TeamLoader) LoadTeams(ctx context.Context) ([]domain.TeamInfo, error) {
	rows, err := l.pool.Query(ctx, `
SELECT dept, leader, country, missionary, period, member_count, content
FROM teams ORDER BY dept`)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.TeamInfo
	for rows.Next() {
		var t domain.TeamInfo
		if err := rows.Scan(&t.Dept, &t.Leader, &t.Country, &t.Missionary, &t.Period, &t.MemberCount, &t.Content); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

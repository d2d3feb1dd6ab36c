package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// QuestionLoader loads the managed question set from Postgres, ordered by
// sort key with hidden questions filtered out.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
SELECT id, type, prompt, COALESCE(options,'[]'::jsonb), role, sort_order, hidden
FROM questions WHERE NOT hidden ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q       domain.Question
			qtype   string
			options []byte
		)
		if err := rows.Scan(&q.ID, &qtype, &q.Prompt, &options, &q.Role, &q.SortOrder, &q.Hidden); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qtype)
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

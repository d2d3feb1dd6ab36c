package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// SubmissionStore persists survey submissions in Postgres with answers as
// JSONB. It is the production implementation of app.SubmissionStore.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

// FindByRespondent returns the most recent submission for the identity.
func (s *SubmissionStore) FindByRespondent(ctx context.Context, email string) (domain.StoredSubmission, error) {
	if email == "" {
		return domain.StoredSubmission{}, domain.ErrSubmissionNotFound
	}
	var (
		rec     domain.StoredSubmission
		role    string
		answers []byte
	)
	err := s.pool.QueryRow(ctx, `
SELECT id, role, COALESCE(team_missionary,''), COALESCE(team_dept,''), COALESCE(team_country,''), COALESCE(team_leader,''),
       respondent_name, respondent_email, answers, created_at, updated_at
FROM submissions WHERE respondent_email=$1 ORDER BY updated_at DESC LIMIT 1`, email).
		Scan(&rec.ID, &role, &rec.TeamMissionary, &rec.TeamDept, &rec.TeamCountry, &rec.TeamLeader,
			&rec.RespondentName, &rec.RespondentEmail, &answers, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredSubmission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.StoredSubmission{}, fmt.Errorf("find submission: %w", err)
	}
	rec.Role = domain.Role(role)
	if err := json.Unmarshal(answers, &rec.Answers); err != nil {
		return domain.StoredSubmission{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return rec, nil
}

func (s *SubmissionStore) Insert(ctx context.Context, sub domain.Submission) (string, error) {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
INSERT INTO submissions (id, role, team_missionary, team_dept, team_country, team_leader, respondent_name, respondent_email, answers)
VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),$7,$8,$9)`,
		id, string(sub.Role), sub.TeamMissionary, sub.TeamDept, sub.TeamCountry, sub.TeamLeader,
		sub.RespondentName, sub.RespondentEmail, answers)
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}
	return id, nil
}

func (s *SubmissionStore) Update(ctx context.Context, id string, sub domain.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
UPDATE submissions
SET role=$2, team_missionary=NULLIF($3,''), team_dept=NULLIF($4,''), team_country=NULLIF($5,''), team_leader=NULLIF($6,''),
    respondent_name=$7, respondent_email=$8, answers=$9, updated_at=now()
WHERE id=$1`,
		id, string(sub.Role), sub.TeamMissionary, sub.TeamDept, sub.TeamCountry, sub.TeamLeader,
		sub.RespondentName, sub.RespondentEmail, answers)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// DraftStore persists in-progress answers per (role, teamKey) pair.
// Implementations must degrade silently: Save reports failure with a bool and
// never blocks the flow, Load self-heals by purging expired or malformed
// entries. The submitted flags are session-scoped and never persisted.
type DraftStore interface {
	Save(ctx context.Context, role domain.Role, teamKey string, draft domain.Draft) bool
	Load(ctx context.Context, role domain.Role, teamKey string) (domain.Draft, bool)
	Remove(ctx context.Context, role domain.Role, teamKey string)
	MarkSubmitted(role domain.Role, teamKey string)
	WasSubmitted(role domain.Role, teamKey string) bool
}

// SubmissionStore is the remote gateway for survey submissions.
type SubmissionStore interface {
	// FindByRespondent returns the most recent submission for the identity,
	// or domain.ErrSubmissionNotFound.
	FindByRespondent(ctx context.Context, email string) (domain.StoredSubmission, error)
	Insert(ctx context.Context, sub domain.Submission) (string, error)
	Update(ctx context.Context, id string, sub domain.Submission) error
}

// QuestionRepository resolves the effective question list for a role
// (remote set when available, built-in fallback otherwise).
type QuestionRepository interface {
	QuestionsForRole(ctx context.Context, role domain.Role) ([]domain.Question, error)
}

// TeamRepository lists the mission teams offered during team selection.
type TeamRepository interface {
	ListTeams(ctx context.Context) ([]domain.TeamInfo, error)
}

// SurveyService binds the survey flow's collaborators and spawns sessions.
type SurveyService struct {
	drafts      DraftStore
	submissions SubmissionStore
	questions   QuestionRepository
	teams       TeamRepository
}

func NewSurveyService(drafts DraftStore, submissions SubmissionStore, questions QuestionRepository, teams TeamRepository) *SurveyService {
	return &SurveyService{
		drafts:      drafts,
		submissions: submissions,
		questions:   questions,
		teams:       teams,
	}
}

// Questions returns the effective question list for a role.
func (s *SurveyService) Questions(ctx context.Context, role domain.Role) ([]domain.Question, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	return s.questions.QuestionsForRole(ctx, role)
}

// Teams returns the selectable mission teams.
func (s *SurveyService) Teams(ctx context.Context) ([]domain.TeamInfo, error) {
	return s.teams.ListTeams(ctx)
}

// ValidationError reports every question that failed its completeness rule.
// The first ID is the scroll target for the UI.
type ValidationError struct {
	QuestionIDs []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unanswered or invalid questions: %s", strings.Join(e.QuestionIDs, ", "))
}

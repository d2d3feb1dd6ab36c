package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// AnonymousName is substituted when the respondent has no usable display name.
const AnonymousName = "Anonymous"

// Session owns the survey flow state for one respondent. All mutation goes
// through the named transition methods; there is no other way to move the
// state machine.
type Session struct {
	svc        *SurveyService
	respondent domain.Respondent
	guard      *SubmitGuard

	mu         sync.RWMutex
	view       domain.View
	role       domain.Role
	team       *domain.TeamInfo
	formData   map[string]domain.Answer
	err        string
	invalidIDs []string
	existingID string
}

// State is a read-only snapshot of the session for rendering.
type State struct {
	View               domain.View              `json:"view"`
	Role               domain.Role              `json:"role,omitempty"`
	SelectedTeam       *domain.TeamInfo         `json:"selectedTeam,omitempty"`
	FormData           map[string]domain.Answer `json:"formData"`
	Error              string                   `json:"error,omitempty"`
	InvalidQuestionIDs []string                 `json:"invalidQuestionIds,omitempty"`
	HasPriorSubmission bool                     `json:"hasPriorSubmission"`
}

// NewSession starts a fresh flow at the landing view.
func (s *SurveyService) NewSession(respondent domain.Respondent) *Session {
	return &Session{
		svc:        s,
		respondent: respondent,
		guard:      NewSubmitGuard(),
		view:       domain.ViewLanding,
		formData:   make(map[string]domain.Answer),
	}
}

// Snapshot copies the current state for rendering.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		View:               s.view,
		Role:               s.role,
		SelectedTeam:       s.team,
		FormData:           copyAnswers(s.formData),
		Error:              s.err,
		InvalidQuestionIDs: append([]string(nil), s.invalidIDs...),
		HasPriorSubmission: s.existingID != "",
	}
}

// Start leaves the landing view. A session that already holds a role and
// answers (a restored submission) resumes straight at the form.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != domain.ViewLanding {
		return domain.ErrInvalidTransition
	}
	if s.role.Valid() && len(s.formData) > 0 {
		s.view = domain.ViewSurveyForm
	} else {
		s.view = domain.ViewRoleSelection
	}
	s.clearErrorLocked()
	return nil
}

// SelectRole records the questionnaire and advances to team selection or
// directly to the form, depending on the role.
func (s *Session) SelectRole(ctx context.Context, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != domain.ViewRoleSelection {
		return domain.ErrInvalidTransition
	}
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	s.role = role
	if role.RequiresTeam() {
		s.view = domain.ViewTeamSelection
		s.clearErrorLocked()
		return nil
	}
	s.team = nil
	s.enterFormLocked(ctx)
	return nil
}

// SelectTeam records the chosen team and advances to the form.
func (s *Session) SelectTeam(ctx context.Context, team domain.TeamInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != domain.ViewTeamSelection {
		return domain.ErrInvalidTransition
	}
	s.team = &team
	s.enterFormLocked(ctx)
	return nil
}

// enterFormLocked moves to the form view and restores prior answers: a
// remote-known submission wins, otherwise a still-valid local draft (unless
// one was already submitted this session).
func (s *Session) enterFormLocked(ctx context.Context) {
	s.view = domain.ViewSurveyForm
	s.clearErrorLocked()

	if s.respondent.Email != "" {
		prior, err := s.svc.submissions.FindByRespondent(ctx, s.respondent.Email)
		switch {
		case err == nil:
			s.formData = copyAnswers(prior.Answers)
			s.existingID = prior.ID
			return
		case !errors.Is(err, domain.ErrSubmissionNotFound):
			// Lookup failures never block the flow.
			log.Printf("survey: prior submission lookup failed: %v", err)
		}
	}

	teamKey := domain.TeamKey(s.team)
	if s.svc.drafts.WasSubmitted(s.role, teamKey) {
		return
	}
	if draft, ok := s.svc.drafts.Load(ctx, s.role, teamKey); ok {
		s.formData = copyAnswers(draft.FormData)
	}
}

// SetAnswer records one answer and autosaves the draft (best effort).
func (s *Session) SetAnswer(ctx context.Context, questionID string, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != domain.ViewSurveyForm {
		return domain.ErrInvalidTransition
	}
	if questionID == "" {
		return fmt.Errorf("empty question id")
	}
	s.formData[questionID] = answer
	s.invalidIDs = nil

	s.svc.drafts.Save(ctx, s.role, domain.TeamKey(s.team), domain.Draft{
		FormData:       copyAnswers(s.formData),
		Respondent:     s.respondent,
		Role:           s.role,
		TeamMissionary: domain.TeamKey(s.team),
	})
	return nil
}

// Submit runs the guarded submit path: drop duplicate triggers, validate,
// snapshot state, upsert remotely, and either finish or roll back.
func (s *Session) Submit(ctx context.Context) error {
	if !s.guard.TryAcquire() {
		log.Printf("survey: duplicate submit dropped for %q", s.respondent.Email)
		return domain.ErrSubmitInFlight
	}
	defer s.guard.Release()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != domain.ViewSurveyForm {
		return domain.ErrInvalidTransition
	}
	if s.role.RequiresTeam() && s.team == nil {
		return domain.ErrTeamRequired
	}

	questions, err := s.svc.questions.QuestionsForRole(ctx, s.role)
	if err != nil {
		s.err = "could not load the questionnaire, please retry"
		return fmt.Errorf("load questions for submit: %w", err)
	}
	ok, invalid := Validate(questions, s.formData)
	if !ok {
		s.invalidIDs = invalid
		verr := &ValidationError{QuestionIDs: invalid}
		s.err = verr.Error()
		return verr
	}

	// Capture the pre-submit state so a failed remote call restores the
	// respondent's answers verbatim.
	prevView := s.view
	prevForm := copyAnswers(s.formData)
	s.view = domain.ViewSubmitting
	s.clearErrorLocked()

	payload := s.buildSubmissionLocked()
	var submitErr error
	if s.existingID != "" {
		submitErr = s.svc.submissions.Update(ctx, s.existingID, payload)
	} else {
		var id string
		id, submitErr = s.svc.submissions.Insert(ctx, payload)
		if submitErr == nil {
			s.existingID = id
		}
	}
	if submitErr != nil {
		s.view = prevView
		s.formData = prevForm
		s.err = "submission failed, please try again"
		return fmt.Errorf("submit survey: %w", submitErr)
	}

	teamKey := domain.TeamKey(s.team)
	s.svc.drafts.Remove(ctx, s.role, teamKey)
	s.svc.drafts.MarkSubmitted(s.role, teamKey)
	s.view = domain.ViewSuccess
	return nil
}

// Back walks the reverse transition table. It is disallowed from submitting
// and success.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.view {
	case domain.ViewRoleSelection:
		s.view = domain.ViewLanding
	case domain.ViewTeamSelection:
		s.view = domain.ViewRoleSelection
	case domain.ViewSurveyForm:
		if s.role.RequiresTeam() {
			s.view = domain.ViewTeamSelection
		} else {
			s.view = domain.ViewRoleSelection
		}
	default:
		return domain.ErrInvalidTransition
	}
	s.clearErrorLocked()
	return nil
}

// Restart resets the session after a successful submission and lands on role
// selection for another questionnaire.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != domain.ViewSuccess {
		return domain.ErrInvalidTransition
	}
	s.role = ""
	s.team = nil
	s.formData = make(map[string]domain.Answer)
	s.existingID = ""
	s.view = domain.ViewRoleSelection
	s.clearErrorLocked()
	return nil
}

func (s *Session) buildSubmissionLocked() domain.Submission {
	name := s.respondent.Name
	if name == "" {
		name = AnonymousName
	}
	sub := domain.Submission{
		Role:            s.role,
		RespondentName:  name,
		RespondentEmail: s.respondent.Email,
		Answers:         copyAnswers(s.formData),
	}
	if s.team != nil {
		sub.TeamMissionary = s.team.Missionary
		sub.TeamDept = s.team.Dept
		sub.TeamCountry = s.team.Country
		sub.TeamLeader = s.team.Leader
	}
	return sub
}

func (s *Session) clearErrorLocked() {
	s.err = ""
	s.invalidIDs = nil
}

func copyAnswers(src map[string]domain.Answer) map[string]domain.Answer {
	dst := make(map[string]domain.Answer, len(src))
	for id, a := range src {
		dst[id] = a
	}
	return dst
}

package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/app"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/infra/memory"
)

type stubQuestions struct {
	questions []domain.Question
}

func (s *stubQuestions) QuestionsForRole(_ context.Context, _ domain.Role) ([]domain.Question, error) {
	return s.questions, nil
}

type stubSubmissions struct {
	mu            sync.Mutex
	prior         *domain.StoredSubmission
	insertErr     error
	inserts       []domain.Submission
	updates       map[string]domain.Submission
	insertStarted chan struct{}
	insertRelease chan struct{}
}

func (s *stubSubmissions) FindByRespondent(_ context.Context, email string) (domain.StoredSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prior != nil && s.prior.RespondentEmail == email {
		return *s.prior, nil
	}
	return domain.StoredSubmission{}, domain.ErrSubmissionNotFound
}

func (s *stubSubmissions) Insert(_ context.Context, sub domain.Submission) (string, error) {
	if s.insertStarted != nil {
		s.insertStarted <- struct{}{}
		<-s.insertRelease
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserts = append(s.inserts, sub)
	return "sub-1", nil
}

func (s *stubSubmissions) Update(_ context.Context, id string, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updates == nil {
		s.updates = make(map[string]domain.Submission)
	}
	s.updates[id] = sub
	return nil
}

func surveyQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Type: domain.QuestionScale, Prompt: "rate", Role: string(domain.RoleTeamMember), SortOrder: 1},
		{ID: "q2", Type: domain.QuestionText, Prompt: "share", Role: string(domain.RoleTeamMember), SortOrder: 2},
		{ID: "q3", Type: domain.QuestionMultiSelect, Prompt: "pick", Options: []string{"옵션A", "옵션B"}, Role: string(domain.RoleTeamMember), SortOrder: 3},
	}
}

func sampleTeam() domain.TeamInfo {
	return domain.TeamInfo{Dept: "청년부", Leader: "김은혜", Country: "태국", Missionary: "박선교"}
}

func newTestService(subs *stubSubmissions, questions []domain.Question) (*app.SurveyService, *memory.DraftStore) {
	drafts := memory.NewDraftStore()
	teams := memory.NewTeamRepository(memory.NewStaticTeamLoader([]domain.TeamInfo{sampleTeam()}))
	return app.NewSurveyService(drafts, subs, &stubQuestions{questions: questions}, teams), drafts
}

func TestMissionarySkipsTeamSelection(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())
	session := service.NewSession(domain.Respondent{})

	if err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewRoleSelection {
		t.Fatalf("expected role_selection, got %s", got)
	}
	if err := session.SelectRole(ctx, domain.RoleMissionary); err != nil {
		t.Fatalf("select role: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewSurveyForm {
		t.Fatalf("expected survey_form for missionary, got %s", got)
	}
}

func TestTeamMemberGoesThroughTeamSelection(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())
	session := service.NewSession(domain.Respondent{})

	_ = session.Start(ctx)
	if err := session.SelectRole(ctx, domain.RoleTeamMember); err != nil {
		t.Fatalf("select role: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewTeamSelection {
		t.Fatalf("expected team_selection, got %s", got)
	}
	if err := session.SelectTeam(ctx, sampleTeam()); err != nil {
		t.Fatalf("select team: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewSurveyForm {
		t.Fatalf("expected survey_form, got %s", got)
	}
}

func TestInvalidRoleRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())
	session := service.NewSession(domain.Respondent{})

	_ = session.Start(ctx)
	if err := session.SelectRole(ctx, "chaplain"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestBackNavigation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())
	session := service.NewSession(domain.Respondent{})

	if err := session.Back(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected back from landing to fail, got %v", err)
	}

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleTeamMember)
	_ = session.SelectTeam(ctx, sampleTeam())

	if err := session.Back(); err != nil {
		t.Fatalf("back from form: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewTeamSelection {
		t.Fatalf("expected team_selection, got %s", got)
	}
	if err := session.Back(); err != nil {
		t.Fatalf("back from team selection: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewRoleSelection {
		t.Fatalf("expected role_selection, got %s", got)
	}
	if err := session.Back(); err != nil {
		t.Fatalf("back from role selection: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewLanding {
		t.Fatalf("expected landing, got %s", got)
	}
}

func TestBackFromFormWithoutTeamReturnsToRoleSelection(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())
	session := service.NewSession(domain.Respondent{})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleLeader)
	if err := session.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewRoleSelection {
		t.Fatalf("expected role_selection for teamless role, got %s", got)
	}
}

func TestSubmitValidationReportsEveryInvalidQuestion(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())
	session := service.NewSession(domain.Respondent{})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleTeamMember)
	_ = session.SelectTeam(ctx, sampleTeam())
	_ = session.SetAnswer(ctx, "q1", domain.ScaleAnswer(5))

	err := session.Submit(ctx)
	var verr *app.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.QuestionIDs) != 2 || verr.QuestionIDs[0] != "q2" || verr.QuestionIDs[1] != "q3" {
		t.Fatalf("expected q2 and q3 flagged, got %v", verr.QuestionIDs)
	}
	state := session.Snapshot()
	if state.View != domain.ViewSurveyForm {
		t.Fatalf("expected no transition on validation failure, got %s", state.View)
	}
	if state.Error == "" || len(state.InvalidQuestionIDs) != 2 {
		t.Fatalf("expected error state with invalid ids, got %+v", state)
	}
}

func TestSubmitFailureRestoresStateAndReleasesGuard(t *testing.T) {
	ctx := context.Background()
	subs := &stubSubmissions{insertErr: errors.New("network down")}
	service, _ := newTestService(subs, []domain.Question{
		{ID: "q1", Type: domain.QuestionScale, Role: string(domain.RoleLeader), SortOrder: 1},
	})
	session := service.NewSession(domain.Respondent{Name: "홍길동"})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleLeader)
	_ = session.SetAnswer(ctx, "q1", domain.ScaleAnswer(5))

	if err := session.Submit(ctx); err == nil {
		t.Fatalf("expected submit failure")
	}
	state := session.Snapshot()
	if state.View != domain.ViewSurveyForm {
		t.Fatalf("expected rollback to survey_form, got %s", state.View)
	}
	if got := state.FormData["q1"].Scale; got != 5 {
		t.Fatalf("expected answers preserved after failure, got scale %d", got)
	}
	if state.Error == "" {
		t.Fatalf("expected user-visible error after failed submit")
	}

	// Lock must be free again: a retry after the store recovers succeeds.
	subs.mu.Lock()
	subs.insertErr = nil
	subs.mu.Unlock()
	if err := session.Submit(ctx); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewSuccess {
		t.Fatalf("expected success after retry, got %s", got)
	}
}

func TestSubmitUpdatesExistingSubmission(t *testing.T) {
	ctx := context.Background()
	subs := &stubSubmissions{
		prior: &domain.StoredSubmission{
			ID: "prior-1",
			Submission: domain.Submission{
				Role:            domain.RoleLeader,
				RespondentEmail: "leader@example.com",
				Answers:         map[string]domain.Answer{"q1": domain.ScaleAnswer(3)},
			},
		},
	}
	service, _ := newTestService(subs, []domain.Question{
		{ID: "q1", Type: domain.QuestionScale, Role: string(domain.RoleLeader), SortOrder: 1},
	})
	session := service.NewSession(domain.Respondent{Name: "리더", Email: "leader@example.com"})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleLeader)

	state := session.Snapshot()
	if !state.HasPriorSubmission {
		t.Fatalf("expected prior submission to be detected")
	}
	if got := state.FormData["q1"].Scale; got != 3 {
		t.Fatalf("expected form prefilled from prior submission, got scale %d", got)
	}

	_ = session.SetAnswer(ctx, "q1", domain.ScaleAnswer(6))
	if err := session.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(subs.inserts) != 0 {
		t.Fatalf("expected no insert for known identity, got %d", len(subs.inserts))
	}
	updated, ok := subs.updates["prior-1"]
	if !ok {
		t.Fatalf("expected update against prior-1, got %v", subs.updates)
	}
	if updated.Answers["q1"].Scale != 6 {
		t.Fatalf("expected updated answer, got %+v", updated.Answers["q1"])
	}
}

func TestSubmitInsertsWithoutPriorSubmission(t *testing.T) {
	ctx := context.Background()
	subs := &stubSubmissions{}
	service, _ := newTestService(subs, []domain.Question{
		{ID: "q1", Type: domain.QuestionScale, Role: string(domain.RoleMissionary), SortOrder: 1},
	})
	session := service.NewSession(domain.Respondent{Email: "new@example.com"})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleMissionary)
	_ = session.SetAnswer(ctx, "q1", domain.ScaleAnswer(7))
	if err := session.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(subs.inserts) != 1 || len(subs.updates) != 0 {
		t.Fatalf("expected one insert and no updates, got %d/%d", len(subs.inserts), len(subs.updates))
	}
	if subs.inserts[0].RespondentName != app.AnonymousName {
		t.Fatalf("expected anonymous fallback name, got %q", subs.inserts[0].RespondentName)
	}
}

func TestDuplicateSubmitDropped(t *testing.T) {
	ctx := context.Background()
	subs := &stubSubmissions{
		insertStarted: make(chan struct{}),
		insertRelease: make(chan struct{}),
	}
	service, _ := newTestService(subs, []domain.Question{
		{ID: "q1", Type: domain.QuestionScale, Role: string(domain.RoleLeader), SortOrder: 1},
	})
	session := service.NewSession(domain.Respondent{})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleLeader)
	_ = session.SetAnswer(ctx, "q1", domain.ScaleAnswer(4))

	done := make(chan error, 1)
	go func() { done <- session.Submit(ctx) }()
	<-subs.insertStarted

	if err := session.Submit(ctx); !errors.Is(err, domain.ErrSubmitInFlight) {
		t.Fatalf("expected duplicate submit to be dropped, got %v", err)
	}

	close(subs.insertRelease)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewSuccess {
		t.Fatalf("expected success, got %s", got)
	}
}

func TestEndToEndTeamMemberFlow(t *testing.T) {
	ctx := context.Background()
	subs := &stubSubmissions{}
	service, drafts := newTestService(subs, surveyQuestions())
	session := service.NewSession(domain.Respondent{Name: "팀원", Email: "member@example.com"})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleTeamMember)
	_ = session.SelectTeam(ctx, sampleTeam())
	_ = session.SetAnswer(ctx, "q1", domain.ScaleAnswer(7))
	_ = session.SetAnswer(ctx, "q2", domain.TextAnswer("은혜로운 시간이었습니다"))
	_ = session.SetAnswer(ctx, "q3", domain.MultiSelect(domain.Selection{OptionID: "옵션A"}))

	if _, ok := drafts.Load(ctx, domain.RoleTeamMember, "박선교"); !ok {
		t.Fatalf("expected autosaved draft before submit")
	}

	if err := session.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewSuccess {
		t.Fatalf("expected success, got %s", got)
	}
	if len(subs.inserts) != 1 {
		t.Fatalf("expected one insert, got %d", len(subs.inserts))
	}
	sub := subs.inserts[0]
	if sub.TeamMissionary != "박선교" || sub.TeamDept != "청년부" {
		t.Fatalf("expected team identity on payload, got %+v", sub)
	}
	if _, ok := drafts.Load(ctx, domain.RoleTeamMember, "박선교"); ok {
		t.Fatalf("expected draft removed after successful submit")
	}
	if !drafts.WasSubmitted(domain.RoleTeamMember, "박선교") {
		t.Fatalf("expected submitted flag set")
	}

	if err := session.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	state := session.Snapshot()
	if state.View != domain.ViewRoleSelection || len(state.FormData) != 0 || state.Role != "" {
		t.Fatalf("expected full reset on restart, got %+v", state)
	}
}

func TestStartResumesInMemorySubmission(t *testing.T) {
	ctx := context.Background()
	subs := &stubSubmissions{
		prior: &domain.StoredSubmission{
			ID: "prior-1",
			Submission: domain.Submission{
				Role:            domain.RoleMissionary,
				RespondentEmail: "m@example.com",
				Answers:         map[string]domain.Answer{"q1": domain.ScaleAnswer(2)},
			},
		},
	}
	service, _ := newTestService(subs, surveyQuestions())
	session := service.NewSession(domain.Respondent{Email: "m@example.com"})

	_ = session.Start(ctx)
	_ = session.SelectRole(ctx, domain.RoleMissionary)
	_ = session.Back() // form -> role selection
	_ = session.Back() // role selection -> landing

	if err := session.Start(ctx); err != nil {
		t.Fatalf("restart flow: %v", err)
	}
	if got := session.Snapshot().View; got != domain.ViewSurveyForm {
		t.Fatalf("expected resume to jump straight to survey_form, got %s", got)
	}
}

func TestDraftRestoredForNewSession(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(&stubSubmissions{}, surveyQuestions())

	first := service.NewSession(domain.Respondent{})
	_ = first.Start(ctx)
	_ = first.SelectRole(ctx, domain.RoleLeader)
	_ = first.SetAnswer(ctx, "q1", domain.ScaleAnswer(6))

	second := service.NewSession(domain.Respondent{})
	_ = second.Start(ctx)
	_ = second.SelectRole(ctx, domain.RoleLeader)

	if got := second.Snapshot().FormData["q1"].Scale; got != 6 {
		t.Fatalf("expected draft restored in new session, got scale %d", got)
	}
}

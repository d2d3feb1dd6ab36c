package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role identifies which questionnaire a respondent fills in.
type Role string

const (
	RoleMissionary Role = "missionary"
	RoleLeader     Role = "leader"
	RoleTeamMember Role = "team_member"
)

// Valid reports whether the role is one of the three known questionnaires.
func (r Role) Valid() bool {
	switch r {
	case RoleMissionary, RoleLeader, RoleTeamMember:
		return true
	}
	return false
}

// RequiresTeam reports whether the role must pick a team before the form.
// Missionaries and leaders answer for themselves; team members answer about
// a specific team.
func (r Role) RequiresTeam() bool {
	return r == RoleTeamMember
}

// View is a step of the survey flow; exactly one view is active per session.
type View string

const (
	ViewLanding       View = "landing"
	ViewRoleSelection View = "role_selection"
	ViewTeamSelection View = "team_selection"
	ViewSurveyForm    View = "survey_form"
	ViewSubmitting    View = "submitting"
	ViewSuccess       View = "success"
)

// QuestionType tags how a question is answered.
type QuestionType string

const (
	QuestionScale       QuestionType = "scale"
	QuestionText        QuestionType = "text"
	QuestionMultiSelect QuestionType = "multi_select"
)

// RoleCommon marks questions shared by leader and team_member questionnaires.
// Common questions are appended after the role-specific ones, never interleaved.
const RoleCommon = "common"

// Scale answers must fall inside [ScaleMin, ScaleMax].
const (
	ScaleMin = 1
	ScaleMax = 7
)

// Question is an immutable prompt definition. Source of truth is either the
// built-in list or a remotely managed set; see the question repositories.
type Question struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Prompt    string       `json:"prompt"`
	Options   []string     `json:"options,omitempty"` // multi_select only
	Role      string       `json:"role"`              // a Role value or RoleCommon
	SortOrder int          `json:"sortOrder"`
	Hidden    bool         `json:"hidden,omitempty"`
}

// OptionOther is the option ID carrying respondent-typed free text in a
// multi-select answer.
const OptionOther = "other"

// Selection is a single chosen option of a multi-select answer.
type Selection struct {
	OptionID string `json:"optionId"`
	FreeText string `json:"freeText,omitempty"` // set when OptionID == OptionOther
}

// Answer is a tagged variant: exactly one of Scale, Text, or Selections is
// meaningful, as declared by Type. The question's declared type is the
// authority for which variant is expected.
type Answer struct {
	Type       QuestionType `json:"type"`
	Scale      int          `json:"scale,omitempty"`
	Text       string       `json:"text,omitempty"`
	Selections []Selection  `json:"selections,omitempty"`
}

func ScaleAnswer(n int) Answer   { return Answer{Type: QuestionScale, Scale: n} }
func TextAnswer(s string) Answer { return Answer{Type: QuestionText, Text: s} }
func MultiSelect(sel ...Selection) Answer {
	return Answer{Type: QuestionMultiSelect, Selections: sel}
}

// UnmarshalJSON tolerates scale values sent as numeric strings ("5") as well
// as numbers, normalizing to int.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type       QuestionType    `json:"type"`
		Scale      json.RawMessage `json:"scale"`
		Text       string          `json:"text"`
		Selections []Selection     `json:"selections"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	a.Type = raw.Type
	a.Text = raw.Text
	a.Selections = raw.Selections
	a.Scale = 0
	if len(raw.Scale) > 0 {
		n, err := coerceScale(raw.Scale)
		if err != nil {
			return fmt.Errorf("decode scale answer: %w", err)
		}
		a.Scale = n
	}
	return nil
}

func coerceScale(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// TeamInfo is immutable reference data about a mission team. The missionary
// name combined with the respondent's role is the effective team identity key.
type TeamInfo struct {
	Dept        string `json:"dept"`
	Leader      string `json:"leader"`
	Country     string `json:"country"`
	Missionary  string `json:"missionary"`
	Period      string `json:"period"`
	MemberCount string `json:"memberCount"`
	Content     string `json:"content"`
}

// GeneralTeamKey is the draft key segment used when the role has no team.
const GeneralTeamKey = "general"

// TeamKey derives the draft key segment for a team reference.
func TeamKey(team *TeamInfo) string {
	if team == nil || team.Missionary == "" {
		return GeneralTeamKey
	}
	return team.Missionary
}

// Respondent identifies who is submitting; fields fall back to the
// authenticated identity, or "Anonymous".
type Respondent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DraftTTL is the fixed expiration window for local drafts. Not configurable
// per draft.
const DraftTTL = 24 * time.Hour

// Draft is an in-progress answer set kept outside the remote store until
// submit.
type Draft struct {
	FormData       map[string]Answer `json:"formData"`
	Respondent     Respondent        `json:"respondentInfo"`
	SavedAt        time.Time         `json:"savedAt"`
	Role           Role              `json:"role,omitempty"`
	TeamMissionary string            `json:"teamMissionary,omitempty"`
}

// Valid reports whether the draft has a usable shape. Invalid drafts are
// purged on read rather than crashing the flow.
func (d Draft) Valid() bool {
	return d.FormData != nil && !d.SavedAt.IsZero()
}

// Expired reports whether the draft is past its expiration window.
func (d Draft) Expired(now time.Time) bool {
	return now.Sub(d.SavedAt) > DraftTTL
}

// Submission is the payload crossing the system boundary on submit. Team
// fields are empty when the role has no team.
type Submission struct {
	Role            Role              `json:"role"`
	TeamMissionary  string            `json:"team_missionary,omitempty"`
	TeamDept        string            `json:"team_dept,omitempty"`
	TeamCountry     string            `json:"team_country,omitempty"`
	TeamLeader      string            `json:"team_leader,omitempty"`
	RespondentName  string            `json:"respondent_name"`
	RespondentEmail string            `json:"respondent_email"`
	Answers         map[string]Answer `json:"answers"`
}

// StoredSubmission is a submission as persisted by the remote store.
type StoredSubmission struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Submission
}

package app

import (
	"strings"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// Validate checks answer completeness for every question and collects every
// failing question ID in question order, not just the first. It is pure: it
// mutates nothing and only reports.
func Validate(questions []domain.Question, answers map[string]domain.Answer) (bool, []string) {
	var invalid []string
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if !ok || !answerValid(q, answer) {
			invalid = append(invalid, q.ID)
		}
	}
	return len(invalid) == 0, invalid
}

func answerValid(q domain.Question, a domain.Answer) bool {
	switch q.Type {
	case domain.QuestionScale:
		return a.Scale >= domain.ScaleMin && a.Scale <= domain.ScaleMax
	case domain.QuestionText:
		return strings.TrimSpace(a.Text) != ""
	case domain.QuestionMultiSelect:
		return len(a.Selections) > 0
	}
	// Unknown question types fail closed.
	return false
}

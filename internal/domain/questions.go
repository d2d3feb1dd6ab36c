package domain

import "sort"

// ResolveQuestions partitions a fetched question set for one role: hidden
// questions are dropped, everything is ordered by sort key, and for leader
// and team_member roles the shared common questions are appended after the
// role-specific ones (common always last, never interleaved).
func ResolveQuestions(all []Question, role Role) []Question {
	var own, common []Question
	for _, q := range all {
		if q.Hidden {
			continue
		}
		switch q.Role {
		case string(role):
			own = append(own, q)
		case RoleCommon:
			common = append(common, q)
		}
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].SortOrder < own[j].SortOrder })
	sort.SliceStable(common, func(i, j int) bool { return common[i].SortOrder < common[j].SortOrder })
	if role == RoleLeader || role == RoleTeamMember {
		return append(own, common...)
	}
	return own
}

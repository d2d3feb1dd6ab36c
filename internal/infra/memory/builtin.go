package memory

import "github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"

// BuiltinQuestions is the static fallback questionnaire per role, used
// whenever the remote question set is unavailable or empty for that role.
// The fallback is per-role independent: an empty remote result for one role
// never suppresses the built-in list for another.
func BuiltinQuestions(role domain.Role) []domain.Question {
	switch role {
	case domain.RoleMissionary:
		return missionaryQuestions
	case domain.RoleLeader:
		return append(append([]domain.Question(nil), leaderQuestions...), commonQuestions...)
	case domain.RoleTeamMember:
		return append(append([]domain.Question(nil), teamMemberQuestions...), commonQuestions...)
	}
	return nil
}

var missionaryQuestions = []domain.Question{
	{ID: "m1", Type: domain.QuestionScale, Prompt: "이번 단기선교 팀의 사역이 현지 사역에 얼마나 도움이 되었습니까?", Role: string(domain.RoleMissionary), SortOrder: 1},
	{ID: "m2", Type: domain.QuestionScale, Prompt: "팀원들의 현지 문화 이해와 태도에 만족하셨습니까?", Role: string(domain.RoleMissionary), SortOrder: 2},
	{ID: "m3", Type: domain.QuestionMultiSelect, Prompt: "다음 중 가장 도움이 된 사역은 무엇입니까?", Options: []string{"어린이 사역", "찬양 사역", "의료 봉사", "건축 봉사", "전도 활동", "기타"}, Role: string(domain.RoleMissionary), SortOrder: 3},
	{ID: "m4", Type: domain.QuestionText, Prompt: "내년 단기선교팀에게 바라는 점을 적어주세요.", Role: string(domain.RoleMissionary), SortOrder: 4},
}

var leaderQuestions = []domain.Question{
	{ID: "l1", Type: domain.QuestionScale, Prompt: "출발 전 훈련이 실제 사역 준비에 충분했습니까?", Role: string(domain.RoleLeader), SortOrder: 1},
	{ID: "l2", Type: domain.QuestionScale, Prompt: "교회 본부와의 소통은 원활했습니까?", Role: string(domain.RoleLeader), SortOrder: 2},
	{ID: "l3", Type: domain.QuestionText, Prompt: "팀 인솔 중 가장 어려웠던 점은 무엇이었습니까?", Role: string(domain.RoleLeader), SortOrder: 3},
}

var teamMemberQuestions = []domain.Question{
	{ID: "t1", Type: domain.QuestionScale, Prompt: "이번 단기선교를 통해 신앙이 성장했다고 느끼십니까?", Role: string(domain.RoleTeamMember), SortOrder: 1},
	{ID: "t2", Type: domain.QuestionScale, Prompt: "팀 내 협력과 분위기에 만족하셨습니까?", Role: string(domain.RoleTeamMember), SortOrder: 2},
	{ID: "t3", Type: domain.QuestionMultiSelect, Prompt: "가장 기억에 남는 활동을 선택해주세요.", Options: []string{"현지 예배", "어린이 사역", "가정 방문", "노방 전도", "기타"}, Role: string(domain.RoleTeamMember), SortOrder: 3},
	{ID: "t4", Type: domain.QuestionText, Prompt: "선교지에서 받은 은혜를 나눠주세요.", Role: string(domain.RoleTeamMember), SortOrder: 4},
}

var commonQuestions = []domain.Question{
	{ID: "c1", Type: domain.QuestionScale, Prompt: "전체 일정 구성에 만족하셨습니까?", Role: domain.RoleCommon, SortOrder: 1},
	{ID: "c2", Type: domain.QuestionText, Prompt: "다음 단기선교를 위한 제안 사항을 자유롭게 적어주세요.", Role: domain.RoleCommon, SortOrder: 2},
}

// BuiltinTeams is the static team roster used when the remote list is
// unavailable.
func BuiltinTeams() []domain.TeamInfo {
	return []domain.TeamInfo{
		{Dept: "청년부", Leader: "김은혜", Country: "태국", Missionary: "박선교", Period: "2026.01.12 - 2026.01.23", MemberCount: "12명", Content: "어린이 사역, 찬양 사역"},
		{Dept: "대학부", Leader: "이믿음", Country: "캄보디아", Missionary: "최사랑", Period: "2026.01.19 - 2026.01.30", MemberCount: "9명", Content: "의료 봉사, 전도 활동"},
		{Dept: "장년부", Leader: "정소망", Country: "필리핀", Missionary: "한빛나", Period: "2026.02.02 - 2026.02.10", MemberCount: "15명", Content: "건축 봉사, 가정 방문"},
	}
}

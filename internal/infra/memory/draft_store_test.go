package memory

import (
	"context"
	"testing"
	"time"

	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

func TestDraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	draft := domain.Draft{
		FormData:   map[string]domain.Answer{"q1": domain.ScaleAnswer(5)},
		Respondent: domain.Respondent{Name: "팀원", Email: "member@example.com"},
		Role:       domain.RoleTeamMember,
	}
	if !store.Save(ctx, domain.RoleTeamMember, "박선교", draft) {
		t.Fatalf("expected save to succeed")
	}

	loaded, ok := store.Load(ctx, domain.RoleTeamMember, "박선교")
	if !ok {
		t.Fatalf("expected draft present")
	}
	if loaded.FormData["q1"].Scale != 5 || loaded.Respondent.Email != "member@example.com" {
		t.Fatalf("expected saved snapshot back, got %+v", loaded)
	}
	if loaded.SavedAt.IsZero() {
		t.Fatalf("expected store to stamp SavedAt")
	}
}

func TestDraftExpirationPurgesOnRead(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewDraftStoreWithClock(func() time.Time { return clock() })

	store.Save(ctx, domain.RoleLeader, domain.GeneralTeamKey, domain.Draft{
		FormData: map[string]domain.Answer{"q1": domain.TextAnswer("draft")},
	})

	now = now.Add(domain.DraftTTL + time.Minute)
	if _, ok := store.Load(ctx, domain.RoleLeader, domain.GeneralTeamKey); ok {
		t.Fatalf("expected expired draft to be absent")
	}
	// Second load confirms the purge and must not crash.
	if _, ok := store.Load(ctx, domain.RoleLeader, domain.GeneralTeamKey); ok {
		t.Fatalf("expected draft gone after purge")
	}
}

func TestDraftRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()
	store.Remove(ctx, domain.RoleMissionary, domain.GeneralTeamKey)
	store.Save(ctx, domain.RoleMissionary, domain.GeneralTeamKey, domain.Draft{FormData: map[string]domain.Answer{}})
	store.Remove(ctx, domain.RoleMissionary, domain.GeneralTeamKey)
	store.Remove(ctx, domain.RoleMissionary, domain.GeneralTeamKey)
	if _, ok := store.Load(ctx, domain.RoleMissionary, domain.GeneralTeamKey); ok {
		t.Fatalf("expected draft removed")
	}
}

func TestSubmittedFlagIsSeparateFromDrafts(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	if store.WasSubmitted(domain.RoleLeader, domain.GeneralTeamKey) {
		t.Fatalf("expected no submitted flag initially")
	}
	store.MarkSubmitted(domain.RoleLeader, domain.GeneralTeamKey)
	if !store.WasSubmitted(domain.RoleLeader, domain.GeneralTeamKey) {
		t.Fatalf("expected submitted flag set")
	}
	// The flag does not imply a draft exists.
	if _, ok := store.Load(ctx, domain.RoleLeader, domain.GeneralTeamKey); ok {
		t.Fatalf("expected no draft for submitted flag")
	}
}

package users

import (
	"context"
	"testing"
)

func TestUpsertPreservesPlan(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "a@example.com"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.ChangePlan(context.Background(), "google:1", PlanPro); err != nil {
		t.Fatalf("change plan: %v", err)
	}

	// Re-login must not clobber a paid plan.
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "a@example.com", FullName: "Ada"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	user, err := svc.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Plan != PlanPro {
		t.Fatalf("expected pro preserved, got %s", user.Plan)
	}
	if user.FullName != "Ada" {
		t.Fatalf("expected profile refreshed, got %q", user.FullName)
	}
}

func TestUpsertRequiresIDAndEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1"}); err == nil {
		t.Fatalf("expected error without email")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{Email: "a@example.com"}); err == nil {
		t.Fatalf("expected error without id")
	}
}

func TestPlanForDefaultsToFree(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if got := svc.PlanFor(context.Background(), "guest:123"); got != PlanFree {
		t.Fatalf("expected free for unknown user, got %s", got)
	}

	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "a@example.com"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.ChangePlan(context.Background(), "google:1", PlanBasic); err != nil {
		t.Fatalf("change plan: %v", err)
	}
	if got := svc.PlanFor(context.Background(), "google:1"); got != PlanBasic {
		t.Fatalf("expected basic, got %s", got)
	}
}

func TestChangePlanRejectsUnknown(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.ChangePlan(context.Background(), "google:1", "platinum"); err == nil {
		t.Fatalf("expected error for unknown plan")
	}
}

func TestValidPlan(t *testing.T) {
	for _, plan := range []string{PlanFree, PlanBasic, PlanPro, PlanEnterprise} {
		if !ValidPlan(plan) {
			t.Fatalf("expected %s valid", plan)
		}
	}
	if ValidPlan("platinum") || ValidPlan("") {
		t.Fatalf("expected unknown plans invalid")
	}
}

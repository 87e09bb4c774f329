package rbac

import (
	"context"
	"testing"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestTrainerActions(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	for _, action := range []string{
		ActionAdminView, ActionPlayersList,
		ActionAssignmentCreate, ActionAssignmentDelete, ActionAssignmentRead,
	} {
		ok, err := e.Allow(ctx, Input{UserID: "t1", Role: "trainer", Action: action})
		if err != nil {
			t.Fatalf("%s: %v", action, err)
		}
		if !ok {
			t.Fatalf("%s: trainer denied", action)
		}
	}
}

func TestPlayerOwnDataOnly(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	ok, err := e.Allow(ctx, Input{
		UserID: "p1", Role: "player",
		Action: ActionAssignmentRead, ResourcePlayerID: "p1",
	})
	if err != nil || !ok {
		t.Fatalf("own assignments: ok=%v err=%v, want allowed", ok, err)
	}

	ok, err = e.Allow(ctx, Input{
		UserID: "p1", Role: "player",
		Action: ActionAssignmentRead, ResourcePlayerID: "p2",
	})
	if err != nil {
		t.Fatalf("foreign assignments: %v", err)
	}
	if ok {
		t.Fatal("player must not read another player's assignments")
	}
}

func TestPlayerDeniedTrainerActions(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	for _, action := range []string{ActionAdminView, ActionAssignmentCreate, ActionAssignmentDelete} {
		ok, err := e.Allow(ctx, Input{UserID: "p1", Role: "player", Action: action})
		if err != nil {
			t.Fatalf("%s: %v", action, err)
		}
		if ok {
			t.Fatalf("%s: player allowed", action)
		}
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	e := newEvaluator(t)
	ok, err := e.Allow(context.Background(), Input{UserID: "x", Role: "device", Action: ActionAdminView})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("unknown role must be denied")
	}
}

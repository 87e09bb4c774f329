package service

import (
	"context"
	"testing"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/audit"
	auditdomain "smartdisc/backend/internal/audit/domain"
	"smartdisc/backend/internal/store/storetest"
)

var testActor = auditdomain.Actor{UserID: "tester"}

func newTestService() (*Service, *storetest.Mem) {
	mem := storetest.New()
	return NewService(mem, audit.NewRecorder()), mem
}

func TestRegister(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	d, err := svc.Register(ctx, testActor, RegisterInput{
		ID: "smartdisc-001", Name: "Trainer Disc", Model: "SD-2",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !d.Active {
		t.Fatal("new disc must be active")
	}

	recs, err := mem.Repos().Audit.ListByRecord(ctx, auditdomain.TableDiscs, "smartdisc-001")
	if err != nil {
		t.Fatalf("ListByRecord: %v", err)
	}
	if len(recs) != 1 || recs[0].Operation != auditdomain.OpInsert {
		t.Fatalf("audit = %+v, want one INSERT", recs)
	}
	if recs[0].After == nil || recs[0].After.Active == nil || !*recs[0].After.Active {
		t.Fatal("INSERT snapshot must capture active=true")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, mem := newTestService()
	_, err := svc.Register(context.Background(), testActor, RegisterInput{Name: "no id"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}
	if mem.AuditCount() != 0 {
		t.Fatal("failed registration must not audit")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, testActor, RegisterInput{ID: "smartdisc-001"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := svc.Register(ctx, testActor, RegisterInput{ID: "smartdisc-001"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestDeactivate(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, testActor, RegisterInput{ID: "smartdisc-001"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Deactivate(ctx, testActor, "smartdisc-001"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	d, err := svc.Get(ctx, "smartdisc-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Active {
		t.Fatal("disc must be inactive")
	}

	active, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active discs = %d, want 0", len(active))
	}

	recs, _ := mem.Repos().Audit.ListByRecord(ctx, auditdomain.TableDiscs, "smartdisc-001")
	if len(recs) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(recs))
	}
	var del *auditdomain.Record
	for _, rec := range recs {
		if rec.Operation == auditdomain.OpDelete {
			del = rec
		}
	}
	if del == nil || del.After == nil || del.After.Active == nil || *del.After.Active {
		t.Fatal("DELETE snapshot must capture active=false")
	}

	// Deactivation is terminal.
	if err := svc.Deactivate(ctx, testActor, "smartdisc-001"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second deactivate: kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestDeactivateMissing(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Deactivate(context.Background(), testActor, "ghost")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not_found", apperr.KindOf(err))
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), "ghost")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not_found", apperr.KindOf(err))
	}
}

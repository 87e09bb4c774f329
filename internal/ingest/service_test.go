package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/audit"
	auditdomain "smartdisc/backend/internal/audit/domain"
	auditrepo "smartdisc/backend/internal/audit/repository"
	discdomain "smartdisc/backend/internal/disc/domain"
	"smartdisc/backend/internal/events"
	identitydomain "smartdisc/backend/internal/identity/domain"
	measurementrepo "smartdisc/backend/internal/measurement/repository"
	"smartdisc/backend/internal/store/storetest"
)

func f(v float64) *float64 { return &v }

func seqPtr(v int) *int { return &v }

var testActor = auditdomain.Actor{UserID: "tester", IP: "127.0.0.1", Agent: "go-test"}

func newTestService(t *testing.T, policy DeletePolicy) (*Service, *storetest.Mem) {
	t.Helper()
	mem := storetest.New()
	svc := NewService(mem, audit.NewRecorder(), nil, policy)
	seedRefs(t, mem)
	return svc, mem
}

func seedRefs(t *testing.T, mem *storetest.Mem) {
	t.Helper()
	ctx := context.Background()
	r := mem.Repos()
	err := r.Discs.Create(ctx, &discdomain.Disc{
		ID: "smartdisc-001", Name: "Trainer Disc", Active: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed disc: %v", err)
	}
	err = r.Identity.CreateUser(ctx, &identitydomain.User{
		ID: "u1", FirstName: "Mara", LastName: "Vogel",
		Email: "mara@example.com", Role: identitydomain.RolePlayer, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func sampleAt(sec int) SampleInput {
	return SampleInput{TakenAt: time.Date(2026, 3, 1, 10, 0, sec, 0, time.UTC)}
}

func TestCreateThrowValidation(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	_, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{Rotation: f(10)})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing disc_id: kind = %v, want validation", apperr.KindOf(err))
	}

	_, err = svc.CreateThrow(ctx, testActor, CreateThrowInput{DiscID: "smartdisc-001"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("no metrics: kind = %v, want validation", apperr.KindOf(err))
	}

	if mem.ThrowCount() != 0 || mem.AuditCount() != 0 {
		t.Fatal("validation failure must leave no rows behind")
	}
}

func TestCreateThrowUnknownReferences(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	_, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{DiscID: "ghost", Rotation: f(10)})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown disc: kind = %v, want not_found", apperr.KindOf(err))
	}

	_, err = svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "ghost", Rotation: f(10),
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown player: kind = %v, want not_found", apperr.KindOf(err))
	}

	if mem.ThrowCount() != 0 || mem.AuditCount() != 0 {
		t.Fatal("failed creation must leave no rows behind")
	}
}

func TestCreateThrowPersistsAuditsAndScores(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(12.5), Height: f(3.1),
	})
	if err != nil {
		t.Fatalf("CreateThrow: %v", err)
	}
	if res.ID == "" {
		t.Fatal("expected generated throw id")
	}
	if !res.IsNewRecord || res.RecordMetric != "rotation" {
		t.Fatalf("record = %v/%q, want true/rotation", res.IsNewRecord, res.RecordMetric)
	}

	r := mem.Repos()
	tw, err := r.Throws.GetLive(ctx, res.ID)
	if err != nil || tw == nil {
		t.Fatalf("GetLive = %v, %v", tw, err)
	}
	if tw.Version != 1 || tw.Lifecycle.IsDeleted() {
		t.Fatalf("throw version=%d deleted=%v, want 1/false", tw.Version, tw.Lifecycle.IsDeleted())
	}

	recs, err := r.Audit.ListByRecord(ctx, auditdomain.TableThrows, res.ID)
	if err != nil {
		t.Fatalf("ListByRecord: %v", err)
	}
	if len(recs) != 1 || recs[0].Operation != auditdomain.OpInsert {
		t.Fatalf("audit = %+v, want one INSERT", recs)
	}
	if recs[0].Before != nil || recs[0].After == nil || recs[0].After.ID != res.ID {
		t.Fatal("INSERT record must carry only an after snapshot of the throw")
	}
	if recs[0].Actor.UserID != "tester" {
		t.Fatalf("actor = %q, want tester", recs[0].Actor.UserID)
	}

	hs, err := r.Highscores.Get(ctx, "u1")
	if err != nil || hs == nil {
		t.Fatalf("highscore = %v, %v", hs, err)
	}
	if *hs.BestRotation != 12.5 || *hs.BestHeight != 3.1 || hs.BestMaxAcceleration != nil {
		t.Fatalf("bests = %+v, want 12.5/3.1/nil", hs)
	}
}

func TestCreateThrowRecordPrecedence(t *testing.T) {
	svc, _ := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	// First throw sets both; second improves both, rotation wins.
	if _, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(10), Height: f(2),
	}); err != nil {
		t.Fatalf("first throw: %v", err)
	}
	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(11), Height: f(3),
	})
	if err != nil {
		t.Fatalf("second throw: %v", err)
	}
	if res.RecordMetric != "rotation" {
		t.Fatalf("RecordMetric = %q, want rotation", res.RecordMetric)
	}

	// Only height improves.
	res, err = svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(5), Height: f(4),
	})
	if err != nil {
		t.Fatalf("third throw: %v", err)
	}
	if res.RecordMetric != "height" {
		t.Fatalf("RecordMetric = %q, want height", res.RecordMetric)
	}
}

func TestCreateThrowTieIsNotRecord(t *testing.T) {
	svc, _ := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	if _, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(10),
	}); err != nil {
		t.Fatalf("first throw: %v", err)
	}
	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(10),
	})
	if err != nil {
		t.Fatalf("tie throw: %v", err)
	}
	if res.IsNewRecord {
		t.Fatal("tie must not report a new record")
	}
}

func TestCreateThrowWithSamplesSequencesAndAudit(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	samples := []SampleInput{sampleAt(0), sampleAt(1), sampleAt(2)}
	res, err := svc.CreateThrowWithSamples(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(9),
	}, samples)
	if err != nil {
		t.Fatalf("CreateThrowWithSamples: %v", err)
	}
	if res.InsertedCount != 3 {
		t.Fatalf("InsertedCount = %d, want 3", res.InsertedCount)
	}

	r := mem.Repos()
	ms, err := r.Measurements.List(ctx, measurementrepo.ListFilter{ThrowID: res.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ms) != 3 {
		t.Fatalf("samples = %d, want 3", len(ms))
	}
	seen := map[int]bool{}
	for _, m := range ms {
		seen[m.SequenceNr] = true
	}
	for want := 0; want < 3; want++ {
		if !seen[want] {
			t.Fatalf("missing sequence %d in %v", want, seen)
		}
	}

	recs, err := r.Audit.ListByRecord(ctx, auditdomain.TableThrows, res.ID)
	if err != nil {
		t.Fatalf("ListByRecord: %v", err)
	}
	if len(recs) != 1 || recs[0].Operation != auditdomain.OpInsertComplete {
		t.Fatalf("audit = %+v, want one INSERT_COMPLETE", recs)
	}
	if recs[0].After.InsertedCount != 3 {
		t.Fatalf("inserted_count = %d, want 3", recs[0].After.InsertedCount)
	}

	tw, _ := r.Throws.GetLive(ctx, res.ID)
	if !tw.StartedAt.Equal(samples[0].TakenAt) || !tw.EndedAt.Equal(samples[2].TakenAt) {
		t.Fatalf("window = %v..%v, want sample bounds", tw.StartedAt, tw.EndedAt)
	}
}

func TestCreateThrowWithSamplesExplicitSequence(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	samples := []SampleInput{sampleAt(0), sampleAt(1)}
	samples[1].SequenceNr = seqPtr(10)
	res, err := svc.CreateThrowWithSamples(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	}, samples)
	if err != nil {
		t.Fatalf("CreateThrowWithSamples: %v", err)
	}
	ms, _ := mem.Repos().Measurements.List(ctx, measurementrepo.ListFilter{ThrowID: res.ID})
	seqs := map[int]bool{}
	for _, m := range ms {
		seqs[m.SequenceNr] = true
	}
	if !seqs[0] || !seqs[10] {
		t.Fatalf("sequences = %v, want {0,10}", seqs)
	}
}

func TestCreateThrowWithSamplesDuplicateSequenceRollsBack(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	samples := []SampleInput{sampleAt(0), sampleAt(1)}
	samples[1].SequenceNr = seqPtr(0)
	_, err := svc.CreateThrowWithSamples(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	}, samples)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.KindOf(err))
	}
	if mem.ThrowCount() != 0 || mem.MeasurementCount() != 0 || mem.AuditCount() != 0 {
		t.Fatal("duplicate sequence must roll back the whole batch")
	}
}

func TestCreateThrowWithSamplesMidBatchFailureRollsBack(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	mem.FailMeasurementCreateAt = 3
	ctx := context.Background()

	_, err := svc.CreateThrowWithSamples(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(50),
	}, []SampleInput{sampleAt(0), sampleAt(1), sampleAt(2), sampleAt(3)})
	if apperr.KindOf(err) != apperr.KindTransaction {
		t.Fatalf("kind = %v, want transaction", apperr.KindOf(err))
	}
	if mem.ThrowCount() != 0 || mem.MeasurementCount() != 0 || mem.AuditCount() != 0 {
		t.Fatal("mid-batch failure must leave no partial rows")
	}
	if hs, _ := mem.Repos().Highscores.Get(ctx, "u1"); hs != nil {
		t.Fatal("rolled-back throw must not touch the highscore")
	}
}

func TestAuditFailureRollsBackThrow(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	mem.FailAuditCreate = true
	ctx := context.Background()

	_, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	})
	if apperr.KindOf(err) != apperr.KindTransaction {
		t.Fatalf("kind = %v, want transaction", apperr.KindOf(err))
	}
	if mem.ThrowCount() != 0 {
		t.Fatal("throw must not persist without its audit record")
	}
}

func TestHighscoreFailureRollsBackThrow(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	mem.FailHighscoreUpsert = true
	ctx := context.Background()

	_, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(1),
	})
	if apperr.KindOf(err) != apperr.KindTransaction {
		t.Fatalf("kind = %v, want transaction", apperr.KindOf(err))
	}
	if mem.ThrowCount() != 0 || mem.AuditCount() != 0 {
		t.Fatal("throw and audit must roll back with the highscore")
	}
}

func TestAppendSamplesContinuesSequence(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrowWithSamples(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	}, []SampleInput{sampleAt(0), sampleAt(1), sampleAt(2)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	auditBefore := mem.AuditCount()

	n, err := svc.AppendSamples(ctx, testActor, res.ID, []SampleInput{sampleAt(3), sampleAt(4)})
	if err != nil {
		t.Fatalf("AppendSamples: %v", err)
	}
	if n != 2 {
		t.Fatalf("appended = %d, want 2", n)
	}
	if mem.AuditCount() != auditBefore {
		t.Fatal("appends must not create audit records")
	}

	max, found, _ := mem.Repos().Measurements.MaxSequence(ctx, res.ID)
	if !found || max != 4 {
		t.Fatalf("max sequence = %d/%v, want 4/true", max, found)
	}
}

func TestAppendSamplesToDeletedThrow(t *testing.T) {
	svc, _ := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteThrow(ctx, testActor, res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.AppendSamples(ctx, testActor, res.ID, []SampleInput{sampleAt(0)})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not_found", apperr.KindOf(err))
	}
}

func TestCreateSampleAllocation(t *testing.T) {
	svc, _ := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	id, seq, err := svc.CreateSample(ctx, testActor, res.ID, sampleAt(0))
	if err != nil {
		t.Fatalf("first sample: %v", err)
	}
	if id == "" || seq != 0 {
		t.Fatalf("first sample = %q/%d, want id/0", id, seq)
	}

	_, seq, err = svc.CreateSample(ctx, testActor, res.ID, sampleAt(1))
	if err != nil {
		t.Fatalf("second sample: %v", err)
	}
	if seq != 1 {
		t.Fatalf("second sequence = %d, want 1", seq)
	}

	dup := sampleAt(2)
	dup.SequenceNr = seqPtr(1)
	_, _, err = svc.CreateSample(ctx, testActor, res.ID, dup)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("duplicate explicit sequence: kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestConcurrentSingleSampleAppends(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(sec int) {
			defer wg.Done()
			if _, _, err := svc.CreateSample(ctx, testActor, res.ID, sampleAt(sec)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent append: %v", err)
	}

	ms, _ := mem.Repos().Measurements.List(ctx, measurementrepo.ListFilter{ThrowID: res.ID})
	if len(ms) != workers {
		t.Fatalf("samples = %d, want %d", len(ms), workers)
	}
	seen := map[int]bool{}
	for _, m := range ms {
		if seen[m.SequenceNr] {
			t.Fatalf("duplicate sequence %d", m.SequenceNr)
		}
		seen[m.SequenceNr] = true
	}
}

func TestDeleteThrow(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteThrow(ctx, testActor, res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	r := mem.Repos()
	if tw, _ := r.Throws.GetLive(ctx, res.ID); tw != nil {
		t.Fatal("deleted throw must not be live")
	}
	tw, _ := r.Throws.GetByID(ctx, res.ID)
	if tw == nil || !tw.Lifecycle.IsDeleted() || tw.Version != 2 {
		t.Fatalf("throw = %+v, want deleted with version 2", tw)
	}

	recs, _ := r.Audit.ListByRecord(ctx, auditdomain.TableThrows, res.ID)
	if len(recs) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(recs))
	}
	var del *auditdomain.Record
	for _, rec := range recs {
		if rec.Operation == auditdomain.OpDelete {
			del = rec
		}
	}
	if del == nil || del.Before == nil || del.After == nil {
		t.Fatal("DELETE record must carry before and after snapshots")
	}
	if del.Before.DeletedAt != "" || del.After.DeletedAt == "" {
		t.Fatalf("snapshots = %+v / %+v, want deleted_at only after", del.Before, del.After)
	}

	// Second delete: the throw is gone from the live view.
	if err := svc.DeleteThrow(ctx, testActor, res.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("double delete: kind = %v, want not_found", apperr.KindOf(err))
	}
}

func TestDeletePolicyKeep(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(42),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteThrow(ctx, testActor, res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	hs, _ := mem.Repos().Highscores.Get(ctx, "u1")
	if hs == nil || *hs.BestRotation != 42 {
		t.Fatalf("highscore = %+v, want best rotation 42 kept", hs)
	}
}

func TestDeletePolicyRecompute(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyRecompute)
	ctx := context.Background()

	if _, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(30),
	}); err != nil {
		t.Fatalf("low throw: %v", err)
	}
	best, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(42),
	})
	if err != nil {
		t.Fatalf("best throw: %v", err)
	}

	if err := svc.DeleteThrow(ctx, testActor, best.ID); err != nil {
		t.Fatalf("delete best: %v", err)
	}
	hs, _ := mem.Repos().Highscores.Get(ctx, "u1")
	if hs == nil || *hs.BestRotation != 30 {
		t.Fatalf("highscore = %+v, want recomputed best 30", hs)
	}
}

func TestDeletePolicyRecomputeRemovesEmptyRow(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyRecompute)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteThrow(ctx, testActor, res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if hs, _ := mem.Repos().Highscores.Get(ctx, "u1"); hs != nil {
		t.Fatalf("highscore = %+v, want row removed with no live throws", hs)
	}
}

func TestThrowCreatedEventEmitted(t *testing.T) {
	mem := storetest.New()
	got := make(chan *events.Event, 1)
	svc := NewService(mem, audit.NewRecorder(), chanProducer{ch: got}, DeletePolicyKeep)
	seedRefs(t, mem)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", PlayerID: "u1", Rotation: f(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case ev := <-got:
		if ev.Type != events.TypeThrowCreated || ev.ThrowID != res.ID {
			t.Fatalf("event = %+v, want throw.created for %s", ev, res.ID)
		}
		if !ev.NewRecord || ev.RecordMetric != "rotation" {
			t.Fatalf("event record info = %v/%q, want true/rotation", ev.NewRecord, ev.RecordMetric)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event emitted")
	}
}

type chanProducer struct{ ch chan *events.Event }

func (p chanProducer) Emit(ctx context.Context, ev *events.Event) error {
	p.ch <- ev
	return nil
}

func (p chanProducer) Close() error { return nil }

func TestAuditListOrdering(t *testing.T) {
	svc, mem := newTestService(t, DeletePolicyKeep)
	ctx := context.Background()

	res, err := svc.CreateThrow(ctx, testActor, CreateThrowInput{
		DiscID: "smartdisc-001", Rotation: f(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteThrow(ctx, testActor, res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	recs, err := mem.Repos().Audit.List(ctx, auditrepo.ListFilter{Table: auditdomain.TableThrows})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].RecordedAt.After(recs[i-1].RecordedAt) {
			t.Fatal("records must be ordered recorded_at descending")
		}
		if recs[i].RecordedAt.Equal(recs[i-1].RecordedAt) && recs[i].ID < recs[i-1].ID {
			t.Fatal("timestamp ties must be ordered id ascending")
		}
	}
}

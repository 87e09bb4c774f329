// Package ingest coordinates the transactional write path for throws and
// their measurement samples. Every mutating operation runs in exactly one
// store transaction together with its audit record and highscore update, so
// a partial write can never become visible.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/audit"
	auditdomain "smartdisc/backend/internal/audit/domain"
	"smartdisc/backend/internal/events"
	"smartdisc/backend/internal/highscore"
	measurementdomain "smartdisc/backend/internal/measurement/domain"
	"smartdisc/backend/internal/store"
	throwdomain "smartdisc/backend/internal/throw/domain"
)

// DeletePolicy controls what happens to a player's highscore row when one of
// their throws is soft-deleted.
type DeletePolicy string

const (
	// DeletePolicyKeep leaves the highscore untouched. The default: records
	// once earned stay earned.
	DeletePolicyKeep DeletePolicy = "keep"
	// DeletePolicyRecompute re-derives the bests from the remaining live
	// throws inside the delete transaction.
	DeletePolicyRecompute DeletePolicy = "recompute"
)

// Valid reports whether p is a known policy.
func (p DeletePolicy) Valid() bool {
	return p == DeletePolicyKeep || p == DeletePolicyRecompute
}

// CreateThrowInput is the write payload for a new throw. Metric pointers are
// nil when the device did not report the metric.
type CreateThrowInput struct {
	ID              string
	DiscID          string
	PlayerID        string
	Rotation        *float64
	Height          *float64
	MaxAcceleration *float64
	StartedAt       time.Time
	EndedAt         time.Time
}

func (in *CreateThrowInput) metrics() throwdomain.Metrics {
	return throwdomain.Metrics{
		Rotation:        in.Rotation,
		Height:          in.Height,
		MaxAcceleration: in.MaxAcceleration,
	}
}

// SampleInput is the write payload for one measurement sample. SequenceNr nil
// means "allocate for me".
type SampleInput struct {
	ID            string
	TakenAt       time.Time
	SequenceNr    *int
	Accelerometer measurementdomain.Vector3
	Gyroscope     measurementdomain.Vector3
	Magnetometer  measurementdomain.Vector3
	Temperature   *float64
	Pressure      *float64
	GPS           measurementdomain.GPS
}

// Result reports the outcome of a throw creation.
type Result struct {
	ID string
	// IsNewRecord is true when at least one metric beat the player's best.
	IsNewRecord bool
	// RecordMetric names the highest-precedence improved metric, "" when
	// IsNewRecord is false.
	RecordMetric string
	// InsertedCount is the number of samples stored alongside the throw.
	InsertedCount int
}

// Service is the ingestion coordinator.
type Service struct {
	store        store.Store
	recorder     *audit.Recorder
	producer     events.Producer
	locks        *throwLocks
	deletePolicy DeletePolicy
	now          func() time.Time
}

// NewService returns a Service. producer may be nil, leaving event
// publishing disabled.
func NewService(st store.Store, recorder *audit.Recorder, producer events.Producer, deletePolicy DeletePolicy) *Service {
	if !deletePolicy.Valid() {
		deletePolicy = DeletePolicyKeep
	}
	return &Service{
		store:        st,
		recorder:     recorder,
		producer:     producer,
		locks:        newThrowLocks(),
		deletePolicy: deletePolicy,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) validateThrowInput(in *CreateThrowInput) error {
	if in.DiscID == "" {
		return apperr.Validation("disc_id is required")
	}
	if !in.metrics().Any() {
		return apperr.Validation("at least one metric (rotation, height, max_acceleration) is required")
	}
	return nil
}

func (s *Service) validateSamples(samples []SampleInput) error {
	if len(samples) == 0 {
		return apperr.Validation("at least one sample is required")
	}
	for i := range samples {
		if samples[i].TakenAt.IsZero() {
			return apperr.Validation("sample %d: timestamp is required", i)
		}
	}
	return nil
}

// checkRefs verifies the disc and, when set, the player exist. Runs inside
// the transaction so the references hold until commit.
func checkRefs(ctx context.Context, r store.Repos, discID, playerID string) error {
	d, err := r.Discs.GetByID(ctx, discID)
	if err != nil {
		return apperr.FromStore(err, "load disc")
	}
	if d == nil {
		return apperr.NotFound("disc %q not found", discID)
	}
	if playerID == "" {
		return nil
	}
	u, err := r.Identity.GetUserByID(ctx, playerID)
	if err != nil {
		return apperr.FromStore(err, "load player")
	}
	if u == nil {
		return apperr.NotFound("player %q not found", playerID)
	}
	return nil
}

func newThrowID() string { return "wurf_" + uuid.NewString() }

func newSampleID() string { return "m_" + uuid.NewString() }

func (s *Service) buildThrow(in *CreateThrowInput, now time.Time) *throwdomain.Throw {
	id := in.ID
	if id == "" {
		id = newThrowID()
	}
	return &throwdomain.Throw{
		ID:         id,
		DiscID:     in.DiscID,
		PlayerID:   in.PlayerID,
		Metrics:    in.metrics(),
		StartedAt:  in.StartedAt,
		EndedAt:    in.EndedAt,
		CreatedAt:  now,
		ModifiedAt: now,
		Version:    1,
		Lifecycle:  throwdomain.Active(),
	}
}

// evaluateHighscore runs the best-value update for the throw inside the
// transaction. Returns the improved metric name, "" when nothing improved.
func (s *Service) evaluateHighscore(ctx context.Context, r store.Repos, t *throwdomain.Throw, now time.Time) (string, error) {
	if t.PlayerID == "" {
		return "", nil
	}
	current, err := r.Highscores.GetForUpdate(ctx, t.PlayerID)
	if err != nil {
		return "", apperr.FromStore(err, "load highscore")
	}
	metric := highscore.RecordMetric(current, t.Metrics)
	next, changed := highscore.Evaluate(current, t.PlayerID, t.Metrics, now)
	if !changed {
		return "", nil
	}
	if err := r.Highscores.Upsert(ctx, next); err != nil {
		return "", apperr.FromStore(err, "update highscore")
	}
	return metric, nil
}

// CreateThrow stores a single throw with its audit record and highscore
// evaluation. The disc must exist; the player, when given, too.
func (s *Service) CreateThrow(ctx context.Context, actor auditdomain.Actor, in CreateThrowInput) (*Result, error) {
	if err := s.validateThrowInput(&in); err != nil {
		return nil, err
	}
	now := s.now()
	t := s.buildThrow(&in, now)
	res := &Result{ID: t.ID}

	err := s.store.InTx(ctx, func(r store.Repos) error {
		if err := checkRefs(ctx, r, t.DiscID, t.PlayerID); err != nil {
			return err
		}
		if err := r.Throws.Create(ctx, t); err != nil {
			return apperr.FromStore(err, "insert throw")
		}
		if err := s.recorder.ThrowInsert(ctx, r.Audit, t, actor, now); err != nil {
			return apperr.FromStore(err, "record audit")
		}
		metric, err := s.evaluateHighscore(ctx, r, t, now)
		if err != nil {
			return err
		}
		res.RecordMetric = metric
		res.IsNewRecord = metric != ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.EmitAsync(s.producer, ctx, &events.Event{
		Type:         events.TypeThrowCreated,
		ThrowID:      t.ID,
		DiscID:       t.DiscID,
		PlayerID:     t.PlayerID,
		NewRecord:    res.IsNewRecord,
		RecordMetric: res.RecordMetric,
		OccurredAt:   now,
	})
	return res, nil
}

// CreateThrowWithSamples stores a throw together with its sample batch in one
// transaction. Sample sequence numbers default to the batch index; the audit
// trail gets a single INSERT_COMPLETE record summarizing the batch.
func (s *Service) CreateThrowWithSamples(ctx context.Context, actor auditdomain.Actor, in CreateThrowInput, samples []SampleInput) (*Result, error) {
	if err := s.validateThrowInput(&in); err != nil {
		return nil, err
	}
	if err := s.validateSamples(samples); err != nil {
		return nil, err
	}
	if in.StartedAt.IsZero() {
		in.StartedAt = samples[0].TakenAt
	}
	if in.EndedAt.IsZero() {
		in.EndedAt = samples[len(samples)-1].TakenAt
	}
	now := s.now()
	t := s.buildThrow(&in, now)
	res := &Result{ID: t.ID}

	err := s.store.InTx(ctx, func(r store.Repos) error {
		if err := checkRefs(ctx, r, t.DiscID, t.PlayerID); err != nil {
			return err
		}
		if err := r.Throws.Create(ctx, t); err != nil {
			return apperr.FromStore(err, "insert throw")
		}
		for i := range samples {
			m := buildMeasurement(t.ID, &samples[i], batchSequence(i, samples[i].SequenceNr), now)
			if err := r.Measurements.Create(ctx, m); err != nil {
				return apperr.FromStore(err, "insert sample")
			}
		}
		if err := s.recorder.ThrowInsertComplete(ctx, r.Audit, t, len(samples), actor, now); err != nil {
			return apperr.FromStore(err, "record audit")
		}
		metric, err := s.evaluateHighscore(ctx, r, t, now)
		if err != nil {
			return err
		}
		res.RecordMetric = metric
		res.IsNewRecord = metric != ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.InsertedCount = len(samples)

	events.EmitAsync(s.producer, ctx, &events.Event{
		Type:         events.TypeThrowCreated,
		ThrowID:      t.ID,
		DiscID:       t.DiscID,
		PlayerID:     t.PlayerID,
		Samples:      len(samples),
		NewRecord:    res.IsNewRecord,
		RecordMetric: res.RecordMetric,
		OccurredAt:   now,
	})
	return res, nil
}

// AppendSamples stores a sample batch for an existing live throw. Sequence
// numbers continue from the stored maximum. Appends are not audited; the
// throw's INSERT or INSERT_COMPLETE record remains its creation history.
func (s *Service) AppendSamples(ctx context.Context, actor auditdomain.Actor, throwID string, samples []SampleInput) (int, error) {
	if throwID == "" {
		return 0, apperr.Validation("throw id is required")
	}
	if err := s.validateSamples(samples); err != nil {
		return 0, err
	}
	now := s.now()

	unlock := s.locks.lock(throwID)
	defer unlock()

	err := s.store.InTx(ctx, func(r store.Repos) error {
		t, err := r.Throws.GetLive(ctx, throwID)
		if err != nil {
			return apperr.FromStore(err, "load throw")
		}
		if t == nil {
			return apperr.NotFound("throw %q not found", throwID)
		}
		max, found, err := r.Measurements.MaxSequence(ctx, throwID)
		if err != nil {
			return apperr.FromStore(err, "load sequence")
		}
		next := nextSequence(max, found)
		for i := range samples {
			seq := next
			if samples[i].SequenceNr != nil {
				seq = *samples[i].SequenceNr
			} else {
				next++
			}
			m := buildMeasurement(throwID, &samples[i], seq, now)
			if err := r.Measurements.Create(ctx, m); err != nil {
				return apperr.FromStore(err, "insert sample")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// CreateSample stores one sample for an existing live throw, allocating the
// next sequence number when none is supplied.
func (s *Service) CreateSample(ctx context.Context, actor auditdomain.Actor, throwID string, in SampleInput) (id string, seq int, err error) {
	if throwID == "" {
		return "", 0, apperr.Validation("throw id is required")
	}
	if in.TakenAt.IsZero() {
		return "", 0, apperr.Validation("timestamp is required")
	}
	now := s.now()

	unlock := s.locks.lock(throwID)
	defer unlock()

	err = s.store.InTx(ctx, func(r store.Repos) error {
		t, err := r.Throws.GetLive(ctx, throwID)
		if err != nil {
			return apperr.FromStore(err, "load throw")
		}
		if t == nil {
			return apperr.NotFound("throw %q not found", throwID)
		}
		if in.SequenceNr != nil {
			seq = *in.SequenceNr
		} else {
			max, found, err := r.Measurements.MaxSequence(ctx, throwID)
			if err != nil {
				return apperr.FromStore(err, "load sequence")
			}
			seq = nextSequence(max, found)
		}
		m := buildMeasurement(throwID, &in, seq, now)
		id = m.ID
		if err := r.Measurements.Create(ctx, m); err != nil {
			return apperr.FromStore(err, "insert sample")
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return id, seq, nil
}

// DeleteThrow soft-deletes a throw, records the audit DELETE with before and
// after snapshots, and applies the configured highscore delete policy.
func (s *Service) DeleteThrow(ctx context.Context, actor auditdomain.Actor, throwID string) error {
	if throwID == "" {
		return apperr.Validation("throw id is required")
	}
	now := s.now()
	var playerID string

	err := s.store.InTx(ctx, func(r store.Repos) error {
		before, err := r.Throws.GetLive(ctx, throwID)
		if err != nil {
			return apperr.FromStore(err, "load throw")
		}
		if before == nil {
			return apperr.NotFound("throw %q not found", throwID)
		}
		playerID = before.PlayerID

		ok, err := r.Throws.SoftDelete(ctx, throwID, now)
		if err != nil {
			return apperr.FromStore(err, "delete throw")
		}
		if !ok {
			return apperr.NotFound("throw %q not found", throwID)
		}

		after := *before
		after.Lifecycle = throwdomain.Deleted(now)
		after.ModifiedAt = now
		after.Version = before.Version + 1
		if err := s.recorder.ThrowDelete(ctx, r.Audit, before, &after, actor, now); err != nil {
			return apperr.FromStore(err, "record audit")
		}

		if s.deletePolicy == DeletePolicyRecompute && playerID != "" {
			return s.recomputeHighscore(ctx, r, playerID, now)
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.EmitAsync(s.producer, ctx, &events.Event{
		Type:       events.TypeThrowDeleted,
		ThrowID:    throwID,
		PlayerID:   playerID,
		OccurredAt: now,
	})
	return nil
}

func (s *Service) recomputeHighscore(ctx context.Context, r store.Repos, playerID string, now time.Time) error {
	bests, err := r.Highscores.BestsFromLiveThrows(ctx, playerID)
	if err != nil {
		return apperr.FromStore(err, "recompute highscore")
	}
	hs, ok := highscore.FromMetrics(playerID, bests, now)
	if !ok {
		if err := r.Highscores.Delete(ctx, playerID); err != nil {
			return apperr.FromStore(err, "remove highscore")
		}
		return nil
	}
	if err := r.Highscores.Upsert(ctx, hs); err != nil {
		return apperr.FromStore(err, "update highscore")
	}
	return nil
}

func buildMeasurement(throwID string, in *SampleInput, seq int, now time.Time) *measurementdomain.Measurement {
	id := in.ID
	if id == "" {
		id = newSampleID()
	}
	return &measurementdomain.Measurement{
		ID:            id,
		ThrowID:       throwID,
		TakenAt:       in.TakenAt,
		SequenceNr:    seq,
		Accelerometer: in.Accelerometer,
		Gyroscope:     in.Gyroscope,
		Magnetometer:  in.Magnetometer,
		Temperature:   in.Temperature,
		Pressure:      in.Pressure,
		GPS:           in.GPS,
		CreatedAt:     now,
	}
}

// Package storetest provides an in-memory store.Store for service tests.
// It enforces the same uniqueness rules as the schema, simulates rollback
// by snapshotting state around each transaction, and supports fault
// injection so atomicity can be exercised without a database.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	assignmentdomain "smartdisc/backend/internal/assignment/domain"
	assignmentrepo "smartdisc/backend/internal/assignment/repository"
	auditdomain "smartdisc/backend/internal/audit/domain"
	auditrepo "smartdisc/backend/internal/audit/repository"
	"smartdisc/backend/internal/apperr"
	discdomain "smartdisc/backend/internal/disc/domain"
	discrepo "smartdisc/backend/internal/disc/repository"
	highscoredomain "smartdisc/backend/internal/highscore/domain"
	identitydomain "smartdisc/backend/internal/identity/domain"
	identityrepo "smartdisc/backend/internal/identity/repository"
	measurementdomain "smartdisc/backend/internal/measurement/domain"
	measurementrepo "smartdisc/backend/internal/measurement/repository"
	"smartdisc/backend/internal/store"
	throwdomain "smartdisc/backend/internal/throw/domain"
	throwrepo "smartdisc/backend/internal/throw/repository"
)

// ErrInjected is returned by fault-injected repository calls.
var ErrInjected = errors.New("storetest: injected failure")

type state struct {
	discs        map[string]discdomain.Disc
	throws       map[string]throwdomain.Throw
	measurements []measurementdomain.Measurement
	audit        []auditdomain.Record
	highscores   map[string]highscoredomain.Highscore
	users        map[string]identitydomain.User
	tokens       map[string]identitydomain.AuthToken
	assignments  []assignmentdomain.Assignment

	nextAuditID      int64
	nextTokenID      int64
	nextAssignmentID int64
}

func newState() *state {
	return &state{
		discs:      make(map[string]discdomain.Disc),
		throws:     make(map[string]throwdomain.Throw),
		highscores: make(map[string]highscoredomain.Highscore),
		users:      make(map[string]identitydomain.User),
		tokens:     make(map[string]identitydomain.AuthToken),
	}
}

func (s *state) clone() *state {
	c := &state{
		discs:            make(map[string]discdomain.Disc, len(s.discs)),
		throws:           make(map[string]throwdomain.Throw, len(s.throws)),
		measurements:     append([]measurementdomain.Measurement(nil), s.measurements...),
		audit:            append([]auditdomain.Record(nil), s.audit...),
		highscores:       make(map[string]highscoredomain.Highscore, len(s.highscores)),
		users:            make(map[string]identitydomain.User, len(s.users)),
		tokens:           make(map[string]identitydomain.AuthToken, len(s.tokens)),
		assignments:      append([]assignmentdomain.Assignment(nil), s.assignments...),
		nextAuditID:      s.nextAuditID,
		nextTokenID:      s.nextTokenID,
		nextAssignmentID: s.nextAssignmentID,
	}
	for k, v := range s.discs {
		c.discs[k] = v
	}
	for k, v := range s.throws {
		c.throws[k] = v
	}
	for k, v := range s.highscores {
		c.highscores[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

// Mem is an in-memory Store. The zero value is not usable; call New.
type Mem struct {
	mu sync.Mutex
	// txMu serializes transactions so snapshot and restore are coherent.
	txMu sync.Mutex
	s    *state

	// FailMeasurementCreateAt makes the nth measurement insert (1-based,
	// counted across the Mem's lifetime) fail with ErrInjected. Zero
	// disables injection.
	FailMeasurementCreateAt int
	measurementInserts      int

	// FailAuditCreate makes every audit insert fail with ErrInjected.
	FailAuditCreate bool
	// FailHighscoreUpsert makes every highscore upsert fail with ErrInjected.
	FailHighscoreUpsert bool
}

// New returns an empty in-memory store.
func New() *Mem {
	return &Mem{s: newState()}
}

var _ store.Store = (*Mem)(nil)

func (m *Mem) repos() store.Repos {
	return store.Repos{
		Discs:        memDiscs{m},
		Throws:       memThrows{m},
		Measurements: memMeasurements{m},
		Audit:        memAudit{m},
		Highscores:   memHighscores{m},
		Identity:     memIdentity{m},
		Assignments:  memAssignments{m},
	}
}

func (m *Mem) Repos() store.Repos { return m.repos() }

func (m *Mem) InTx(ctx context.Context, fn func(store.Repos) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	before := m.s.clone()
	m.mu.Unlock()

	if err := fn(m.repos()); err != nil {
		m.mu.Lock()
		m.s = before
		m.mu.Unlock()
		return err
	}
	return ctx.Err()
}

// Counts of stored rows, for asserting rollback left nothing behind.

func (m *Mem) ThrowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.s.throws)
}

func (m *Mem) MeasurementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.s.measurements)
}

func (m *Mem) AuditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.s.audit)
}

// discs

type memDiscs struct{ m *Mem }

func (r memDiscs) GetByID(ctx context.Context, id string) (*discdomain.Disc, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.s.discs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r memDiscs) ListActive(ctx context.Context) ([]*discdomain.Disc, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*discdomain.Disc
	for _, d := range r.m.s.discs {
		if d.Active {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memDiscs) Create(ctx context.Context, d *discdomain.Disc) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.s.discs[d.ID]; exists {
		return apperr.Conflict("disc %q already exists", d.ID)
	}
	r.m.s.discs[d.ID] = *d
	return nil
}

func (r memDiscs) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.s.discs[id]
	if !ok || !d.Active {
		return false, nil
	}
	d.Active = false
	d.ModifiedAt = at
	r.m.s.discs[id] = d
	return true, nil
}

func (r memDiscs) ListWithThrowTotals(ctx context.Context) ([]*discrepo.DiscThrowTotal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*discrepo.DiscThrowTotal
	for _, d := range r.m.s.discs {
		total := 0
		for _, t := range r.m.s.throws {
			if t.DiscID == d.ID && !t.Lifecycle.IsDeleted() {
				total++
			}
		}
		out = append(out, &discrepo.DiscThrowTotal{Disc: d, ThrowsTotal: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Disc.CreatedAt.After(out[j].Disc.CreatedAt)
	})
	return out, nil
}

// throws

type memThrows struct{ m *Mem }

func (r memThrows) GetByID(ctx context.Context, id string) (*throwdomain.Throw, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.s.throws[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memThrows) GetLive(ctx context.Context, id string) (*throwdomain.Throw, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.s.throws[id]
	if !ok || t.Lifecycle.IsDeleted() {
		return nil, nil
	}
	return &t, nil
}

func (r memThrows) Create(ctx context.Context, t *throwdomain.Throw) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.s.throws[t.ID]; exists {
		return apperr.Conflict("throw %q already exists", t.ID)
	}
	r.m.s.throws[t.ID] = *t
	return nil
}

func (r memThrows) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.s.throws[id]
	if !ok || t.Lifecycle.IsDeleted() {
		return false, nil
	}
	t.Lifecycle = throwdomain.Deleted(at)
	t.ModifiedAt = at
	t.Version++
	r.m.s.throws[id] = t
	return true, nil
}

func (r memThrows) List(ctx context.Context, f throwrepo.ListFilter) ([]*throwdomain.Throw, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*throwdomain.Throw
	for _, t := range r.m.s.throws {
		if t.Lifecycle.IsDeleted() {
			continue
		}
		if f.DiscID != "" && t.DiscID != f.DiscID {
			continue
		}
		if f.PlayerID != "" && t.PlayerID != f.PlayerID {
			continue
		}
		if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && t.CreatedAt.After(f.To) {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memThrows) Stats(ctx context.Context) (*throwrepo.Stats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := &throwrepo.Stats{}
	var rotN, hN, accN int
	var rotSum, hSum, accSum float64
	for _, t := range r.m.s.throws {
		if t.Lifecycle.IsDeleted() {
			continue
		}
		st.Count++
		if v := t.Metrics.Rotation; v != nil {
			rotN++
			rotSum += *v
			if *v > st.RotationMax {
				st.RotationMax = *v
			}
		}
		if v := t.Metrics.Height; v != nil {
			hN++
			hSum += *v
			if *v > st.HeightMax {
				st.HeightMax = *v
			}
		}
		if v := t.Metrics.MaxAcceleration; v != nil {
			accN++
			accSum += *v
			if *v > st.MaxAccelerationMax {
				st.MaxAccelerationMax = *v
			}
		}
	}
	if rotN > 0 {
		st.RotationAvg = rotSum / float64(rotN)
	}
	if hN > 0 {
		st.HeightAvg = hSum / float64(hN)
	}
	if accN > 0 {
		st.MaxAccelerationAvg = accSum / float64(accN)
	}
	return st, nil
}

func (r memThrows) ListRecent(ctx context.Context, limit int) ([]*throwrepo.RecentThrow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*throwrepo.RecentThrow
	for _, t := range r.m.s.throws {
		if t.Lifecycle.IsDeleted() {
			continue
		}
		rt := &throwrepo.RecentThrow{Throw: t}
		if u, ok := r.m.s.users[t.PlayerID]; ok {
			rt.PlayerEmail = u.Email
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Throw.CreatedAt.After(out[j].Throw.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// measurements

type memMeasurements struct{ m *Mem }

func (r memMeasurements) Create(ctx context.Context, mm *measurementdomain.Measurement) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.measurementInserts++
	if r.m.FailMeasurementCreateAt > 0 && r.m.measurementInserts == r.m.FailMeasurementCreateAt {
		return ErrInjected
	}
	for _, ex := range r.m.s.measurements {
		if ex.ThrowID == mm.ThrowID && ex.SequenceNr == mm.SequenceNr {
			return apperr.Conflict("sequence %d already taken for throw %q", mm.SequenceNr, mm.ThrowID)
		}
		if ex.ID == mm.ID {
			return apperr.Conflict("measurement %q already exists", mm.ID)
		}
	}
	r.m.s.measurements = append(r.m.s.measurements, *mm)
	return nil
}

func (r memMeasurements) MaxSequence(ctx context.Context, throwID string) (int, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	max, found := 0, false
	for _, mm := range r.m.s.measurements {
		if mm.ThrowID != throwID {
			continue
		}
		if !found || mm.SequenceNr > max {
			max = mm.SequenceNr
		}
		found = true
	}
	return max, found, nil
}

func (r memMeasurements) List(ctx context.Context, f measurementrepo.ListFilter) ([]*measurementdomain.Measurement, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*measurementdomain.Measurement
	for i := range r.m.s.measurements {
		mm := r.m.s.measurements[i]
		if f.ThrowID != "" && mm.ThrowID != f.ThrowID {
			continue
		}
		if !f.From.IsZero() && mm.TakenAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && mm.TakenAt.After(f.To) {
			continue
		}
		out = append(out, &mm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memMeasurements) CountByThrow(ctx context.Context, throwID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, mm := range r.m.s.measurements {
		if mm.ThrowID == throwID {
			n++
		}
	}
	return n, nil
}

// audit

type memAudit struct{ m *Mem }

func (r memAudit) Create(ctx context.Context, rec *auditdomain.Record) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.FailAuditCreate {
		return ErrInjected
	}
	r.m.s.nextAuditID++
	rec.ID = r.m.s.nextAuditID
	r.m.s.audit = append(r.m.s.audit, *rec)
	return nil
}

func (r memAudit) List(ctx context.Context, f auditrepo.ListFilter) ([]*auditdomain.Record, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*auditdomain.Record
	for i := range r.m.s.audit {
		rec := r.m.s.audit[i]
		if f.Table != "" && rec.Table != f.Table {
			continue
		}
		if f.RecordID != "" && rec.RecordID != f.RecordID {
			continue
		}
		if f.Operation != "" && rec.Operation != f.Operation {
			continue
		}
		if !f.From.IsZero() && rec.RecordedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && rec.RecordedAt.After(f.To) {
			continue
		}
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].ID < out[j].ID
	})
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAudit) ListByRecord(ctx context.Context, table, recordID string) ([]*auditdomain.Record, error) {
	return r.List(ctx, auditrepo.ListFilter{Table: table, RecordID: recordID, Limit: 1000})
}

// highscores

type memHighscores struct{ m *Mem }

func (r memHighscores) Get(ctx context.Context, playerID string) (*highscoredomain.Highscore, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	hs, ok := r.m.s.highscores[playerID]
	if !ok {
		return nil, nil
	}
	return &hs, nil
}

func (r memHighscores) GetForUpdate(ctx context.Context, playerID string) (*highscoredomain.Highscore, error) {
	return r.Get(ctx, playerID)
}

func (r memHighscores) Upsert(ctx context.Context, hs *highscoredomain.Highscore) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.FailHighscoreUpsert {
		return ErrInjected
	}
	r.m.s.highscores[hs.PlayerID] = *hs
	return nil
}

func (r memHighscores) Delete(ctx context.Context, playerID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.s.highscores, playerID)
	return nil
}

func (r memHighscores) BestsFromLiveThrows(ctx context.Context, playerID string) (throwdomain.Metrics, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var best throwdomain.Metrics
	maxInto := func(dst **float64, v *float64) {
		if v == nil {
			return
		}
		if *dst == nil || *v > **dst {
			c := *v
			*dst = &c
		}
	}
	for _, t := range r.m.s.throws {
		if t.PlayerID != playerID || t.Lifecycle.IsDeleted() {
			continue
		}
		maxInto(&best.Rotation, t.Metrics.Rotation)
		maxInto(&best.Height, t.Metrics.Height)
		maxInto(&best.MaxAcceleration, t.Metrics.MaxAcceleration)
	}
	return best, nil
}

// identity

type memIdentity struct{ m *Mem }

func (r memIdentity) GetUserByID(ctx context.Context, id string) (*identitydomain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memIdentity) GetUserByEmail(ctx context.Context, email string) (*identitydomain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memIdentity) CreateUser(ctx context.Context, u *identitydomain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.s.users[u.ID]; exists {
		return apperr.Conflict("user %q already exists", u.ID)
	}
	for _, ex := range r.m.s.users {
		if ex.Email == u.Email {
			return apperr.Conflict("email %q already registered", u.Email)
		}
	}
	r.m.s.users[u.ID] = *u
	return nil
}

func (r memIdentity) ListPlayers(ctx context.Context) ([]*identitydomain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*identitydomain.User
	for _, u := range r.m.s.users {
		if u.Role == identitydomain.RolePlayer {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (r memIdentity) ListWithThrowCounts(ctx context.Context) ([]*identityrepo.UserThrowCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*identityrepo.UserThrowCount
	for _, u := range r.m.s.users {
		n := 0
		for _, t := range r.m.s.throws {
			if t.PlayerID == u.ID && !t.Lifecycle.IsDeleted() {
				n++
			}
		}
		out = append(out, &identityrepo.UserThrowCount{User: u, ThrowsCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].User.CreatedAt.After(out[j].User.CreatedAt)
	})
	return out, nil
}

func (r memIdentity) CreateToken(ctx context.Context, t *identitydomain.AuthToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.s.tokens[t.Token]; exists {
		return apperr.Conflict("token already exists")
	}
	r.m.s.nextTokenID++
	t.ID = r.m.s.nextTokenID
	r.m.s.tokens[t.Token] = *t
	return nil
}

func (r memIdentity) DeleteToken(ctx context.Context, token string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.s.tokens[token]; !ok {
		return false, nil
	}
	delete(r.m.s.tokens, token)
	return true, nil
}

func (r memIdentity) GetUserByToken(ctx context.Context, token string) (*identitydomain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.s.tokens[token]
	if !ok {
		return nil, nil
	}
	u, ok := r.m.s.users[t.UserID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// assignments

type memAssignments struct{ m *Mem }

func (r memAssignments) Create(ctx context.Context, a *assignmentdomain.Assignment) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, ex := range r.m.s.assignments {
		if ex.DiscID == a.DiscID && ex.PlayerID == a.PlayerID {
			return false, nil
		}
	}
	r.m.s.nextAssignmentID++
	a.ID = r.m.s.nextAssignmentID
	r.m.s.assignments = append(r.m.s.assignments, *a)
	return true, nil
}

func (r memAssignments) Delete(ctx context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, ex := range r.m.s.assignments {
		if ex.ID == id {
			r.m.s.assignments = append(r.m.s.assignments[:i], r.m.s.assignments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r memAssignments) ListByPlayer(ctx context.Context, playerID string) ([]*assignmentdomain.Assignment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*assignmentdomain.Assignment
	for i := range r.m.s.assignments {
		a := r.m.s.assignments[i]
		if a.PlayerID != playerID {
			continue
		}
		if d, ok := r.m.s.discs[a.DiscID]; ok {
			a.DiscName = d.Name
		}
		if u, ok := r.m.s.users[a.AssignedBy]; ok {
			a.AssignedByName = u.FirstName + " " + u.LastName
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (r memAssignments) ListDiscsForPlayer(ctx context.Context, playerID string) ([]*assignmentrepo.AssignedDisc, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*assignmentrepo.AssignedDisc
	for _, a := range r.m.s.assignments {
		if a.PlayerID != playerID {
			continue
		}
		d, ok := r.m.s.discs[a.DiscID]
		if !ok || !d.Active {
			continue
		}
		out = append(out, &assignmentrepo.AssignedDisc{
			Disc:       d,
			AssignedAt: a.AssignedAt.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Disc.ID < out[j].Disc.ID })
	return out, nil
}

package ingest

import "sync"

// throwLocks hands out one mutex per throw id so the read-max-then-insert
// sequence allocation of concurrent single-sample appends serializes within
// this process. The (throw_id, sequence_nr) unique constraint backstops
// anything the lock cannot see, e.g. a second server instance.
//
// Entries are reference counted and removed once the last holder releases,
// so the registry does not grow with the number of throws ever touched.
type throwLocks struct {
	mu sync.Mutex
	m  map[string]*throwLock
}

type throwLock struct {
	mu   sync.Mutex
	refs int
}

func newThrowLocks() *throwLocks {
	return &throwLocks{m: make(map[string]*throwLock)}
}

// lock blocks until the throw's mutex is held and returns the release func.
func (l *throwLocks) lock(throwID string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.m[throwID]
	if !ok {
		e = &throwLock{}
		l.m[throwID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, throwID)
		}
		l.mu.Unlock()
	}
}

// batchSequence returns the sequence number for the sample at batch position
// i: the explicit number when supplied, the index otherwise. Explicit numbers
// are trusted; gaps are not checked.
func batchSequence(i int, explicit *int) int {
	if explicit != nil {
		return *explicit
	}
	return i
}

// nextSequence returns the sequence for a single appended sample given the
// stored maximum: 0 for the first sample, max+1 afterwards.
func nextSequence(max int, found bool) int {
	if !found {
		return 0
	}
	return max + 1
}

// Package store holds accepted records partitioned by record type, plus the
// single published-result slot. It is the only shared mutable state in the
// system; every consistency rule (snapshot reads, atomic publish, clear
// invalidating stale results, one run at a time) lives behind its lock.
package store

import (
	"errors"
	"sync"

	"gst-reconciliation-engine/backend/internal/models"
)

var (
	// ErrBusy means a reconciliation run is already in flight.
	ErrBusy = errors.New("a reconciliation run is already in progress")
	// ErrStaleData means records changed between snapshot and publish, so
	// the computed results no longer describe the stored data.
	ErrStaleData = errors.New("records changed during the reconciliation run")
	// ErrNoResults means no reconciliation has completed yet.
	ErrNoResults = errors.New("no reconciliation results available")
)

// Snapshot is a stable view of both partitions taken under the lock. The
// record slices are copies; the records themselves are immutable.
type Snapshot struct {
	Books []*models.InvoiceRecord
	TwoB  []*models.InvoiceRecord

	generation uint64
}

type Store struct {
	mu        sync.RWMutex
	books     []*models.InvoiceRecord
	twob      []*models.InvoiceRecord
	published *models.ResultSet

	// generation increments on every mutation; Publish refuses result sets
	// computed against an older generation.
	generation uint64

	runMu sync.Mutex // held for the duration of one reconciliation run
}

func New() *Store {
	return &Store{}
}

// Append accepts records into their partitions in insertion order.
func (s *Store) Append(records ...*models.InvoiceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		switch r.RecordType {
		case models.RecordTypeBooks:
			s.books = append(s.books, r)
		case models.RecordType2B:
			s.twob = append(s.twob, r)
		}
	}
	s.generation++
}

// List returns the partition's records in insertion order. ALL returns Books
// followed by 2B. The returned slice is a copy.
func (s *Store) List(recordType models.RecordType) []*models.InvoiceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch recordType {
	case models.RecordTypeBooks:
		return append([]*models.InvoiceRecord(nil), s.books...)
	case models.RecordType2B:
		return append([]*models.InvoiceRecord(nil), s.twob...)
	case models.RecordTypeAll:
		out := make([]*models.InvoiceRecord, 0, len(s.books)+len(s.twob))
		out = append(out, s.books...)
		return append(out, s.twob...)
	}
	return nil
}

// Count returns the number of records in one partition.
func (s *Store) Count(recordType models.RecordType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch recordType {
	case models.RecordTypeBooks:
		return len(s.books)
	case models.RecordType2B:
		return len(s.twob)
	case models.RecordTypeAll:
		return len(s.books) + len(s.twob)
	}
	return 0
}

// Clear hard-deletes a partition (or everything) and, in the same critical
// section, discards any published results that depended on it. Returns the
// number of records removed.
func (s *Store) Clear(recordType models.RecordType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int
	switch recordType {
	case models.RecordTypeBooks:
		deleted = len(s.books)
		s.books = nil
	case models.RecordType2B:
		deleted = len(s.twob)
		s.twob = nil
	case models.RecordTypeAll:
		deleted = len(s.books) + len(s.twob)
		s.books, s.twob = nil, nil
	}
	s.published = nil
	s.generation++
	return deleted
}

// BeginRun claims the single reconciliation slot, failing fast when a run is
// already active. The caller must call the returned release function.
func (s *Store) BeginRun() (release func(), err error) {
	if !s.runMu.TryLock() {
		return nil, ErrBusy
	}
	return s.runMu.Unlock, nil
}

// Snapshot captures a consistent view of both partitions for one run.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Books:      append([]*models.InvoiceRecord(nil), s.books...),
		TwoB:       append([]*models.InvoiceRecord(nil), s.twob...),
		generation: s.generation,
	}
}

// Publish atomically replaces the published result set with one computed
// from the given snapshot. If any mutation landed after the snapshot was
// taken, the set is discarded and ErrStaleData returned, leaving whatever
// was previously published untouched.
func (s *Store) Publish(snap Snapshot, rs *models.ResultSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.generation != s.generation {
		return ErrStaleData
	}
	s.published = rs
	return nil
}

// Published returns the current complete result set, or ErrNoResults.
func (s *Store) Published() (*models.ResultSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.published == nil {
		return nil, ErrNoResults
	}
	return s.published, nil
}

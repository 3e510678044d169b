package report

import "sync"

// Store holds the last-fetched report snapshot for one view.
//
// Replace is sequence-fenced: concurrent fetches may resolve out of order and
// only the highest sequence number ever lands, so a slow stale response can
// never overwrite a fresher one. Mutations are staged optimistically on a
// working copy and either confirmed by the next Replace (the caller re-fetches
// on success) or rolled back to the last confirmed snapshot with Revert.
type Store struct {
	mu        sync.RWMutex
	seq       uint64
	confirmed []Report
	working   []Report
}

func NewStore() *Store {
	return &Store{}
}

// Replace installs a confirmed snapshot. It reports false when seq is not
// newer than the last installed one, in which case the snapshot is dropped.
func (s *Store) Replace(seq uint64, reports []Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.seq {
		return false
	}
	s.seq = seq
	s.confirmed = append([]Report(nil), reports...)
	s.working = append([]Report(nil), reports...)
	return true
}

// Seq returns the sequence number of the current confirmed snapshot.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Snapshot returns a copy of the working set (confirmed + staged edits).
func (s *Store) Snapshot() []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Report(nil), s.working...)
}

// Get looks a report up in the working set.
func (s *Store) Get(id string) (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.working {
		if r.ID == id {
			return r, true
		}
	}
	return Report{}, false
}

// StageApprove optimistically marks a report approved.
func (s *Store) StageApprove(id string) {
	s.stage(id, func(r *Report) {
		r.IsApproved = true
		r.Rejected = false
		r.RejectionReason = ""
	})
}

// StageReject optimistically marks a report rejected with the given reason.
func (s *Store) StageReject(id, reason string) {
	s.stage(id, func(r *Report) {
		r.IsApproved = false
		r.Rejected = true
		r.RejectionReason = reason
	})
}

// StageCertified optimistically flags a report's certificate as generated.
func (s *Store) StageCertified(id string) {
	s.stage(id, func(r *Report) {
		r.CertificateGenerated = true
	})
}

// StageRemove optimistically drops a report from the working set.
func (s *Store) StageRemove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.working[:0]
	for _, r := range s.working {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.working = kept
}

// Revert discards all staged edits, restoring the last confirmed snapshot.
func (s *Store) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = append([]Report(nil), s.confirmed...)
}

func (s *Store) stage(id string, fn func(*Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.working {
		if s.working[i].ID == id {
			fn(&s.working[i])
			return
		}
	}
}

// StatsStore is the dashboard counterpart of Store: a sequence-fenced holder
// of the latest server-computed aggregates. Stats are read-only so there is
// no staging.
type StatsStore struct {
	mu    sync.RWMutex
	seq   uint64
	stats DashboardStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{}
}

func (s *StatsStore) Replace(seq uint64, stats DashboardStats) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.seq {
		return false
	}
	s.seq = seq
	s.stats = stats
	return true
}

func (s *StatsStore) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

func (s *StatsStore) Snapshot() DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

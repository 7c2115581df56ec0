package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/liver-risk-server/internal/domain"
)

// Store keeps one PatientRecord per browser session in memory.
// Entries expire after the configured TTL and the least recently used
// session is evicted once the store is full.
type Store struct {
	mu      sync.Mutex
	records *expirable.LRU[string, *domain.PatientRecord]
	logger  *logrus.Logger
}

// NewStore creates a session store from configuration
func NewStore(cfg domain.SessionConfig, logger *logrus.Logger) *Store {
	s := &Store{logger: logger}
	s.records = expirable.NewLRU[string, *domain.PatientRecord](cfg.MaxEntries, func(id string, _ *domain.PatientRecord) {
		s.logger.WithField("session_id", id).Debug("Session evicted")
	}, cfg.TTL)
	return s
}

// Get returns a copy of the record held for id. Unknown, expired or empty ids
// start a new session with a default record; the id in use is returned.
func (s *Store) Get(id string) (string, domain.PatientRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, record := s.lookup(id)
	return id, *record
}

// Apply runs fn against the stored record of id and returns the id in use
// together with a copy of the updated record.
func (s *Store) Apply(id string, fn func(r *domain.PatientRecord)) (string, domain.PatientRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, record := s.lookup(id)
	fn(record)
	s.records.Add(id, record)
	return id, *record
}

// Reset restores the record of id to the form defaults.
func (s *Store) Reset(id string) string {
	id, _ = s.Apply(id, func(r *domain.PatientRecord) {
		r.Reset()
	})
	s.logger.WithField("session_id", id).Debug("Session record reset")
	return id
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.records.Len()
}

func (s *Store) lookup(id string) (string, *domain.PatientRecord) {
	if id != "" {
		if record, ok := s.records.Get(id); ok {
			return id, record
		}
	}
	id = uuid.NewString()
	record := domain.NewPatientRecord()
	s.records.Add(id, record)
	s.logger.WithField("session_id", id).Debug("Session started")
	return id, record
}

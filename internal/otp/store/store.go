package store

import (
	"sync"
	"time"

	"eventbook/pkg/model"
)

// Entry is a pending verification: the code, its absolute expiry and
// the event details the caller wants to book once verified.
type Entry struct {
	Code      string
	ExpiresAt time.Time
	Details   model.EventDetails
}

func (e Entry) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Store holds at most one live entry per email. Get returns expired
// entries as-is so callers can tell expiry apart from absence.
type Store interface {
	Get(email string) (Entry, bool)
	Set(email string, entry Entry)
	Delete(email string)
	Stop()
}

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	done    chan struct{}
}

func NewInMemoryStore(cleanupInterval time.Duration) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[string]Entry),
		done:    make(chan struct{}),
	}

	go s.cleanupLoop(cleanupInterval)

	return s
}

func (s *InMemoryStore) Get(email string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[email]
	return entry, ok
}

// Set overwrites any existing entry, which invalidates the previous
// code for this email.
func (s *InMemoryStore) Set(email string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[email] = entry
}

func (s *InMemoryStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, email)
}

func (s *InMemoryStore) Stop() {
	close(s.done)
}

func (s *InMemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for email, entry := range s.entries {
		if entry.Expired() {
			delete(s.entries, email)
		}
	}
}

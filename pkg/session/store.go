package session

import (
	"sort"
	"sync"
	"time"
)

// Factory builds a session for a new ID.
type Factory func(id string) *Session

// Store keeps sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  Factory
}

// NewStore returns an empty store. A non-positive ttl keeps sessions until
// they are deleted.
func NewStore(ttl time.Duration, factory Factory) *Store {
	return &Store{sessions: make(map[string]*Session), ttl: ttl, factory: factory}
}

// Create builds and stores a session with a random ID.
func (st *Store) Create() *Session {
	return st.Put(st.factory(""))
}

// Put stores sess under its ID, replacing any previous session.
func (st *Store) Put(sess *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session. Expired sessions are reported missing.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	if !ok || st.expired(sess, time.Now()) {
		return nil, false
	}
	return sess, true
}

// Delete removes a session and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// IDs returns the stored session IDs in sorted order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup drops sessions idle since before now minus the TTL, except the
// ones listed in keep, and returns how many were dropped.
func (st *Store) Cleanup(now time.Time, keep ...string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, sess := range st.sessions {
		if st.expired(sess, now) && !contains(keep, id) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *Store) expired(sess *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(sess.LastActive()) > st.ttl
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

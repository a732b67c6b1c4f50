package storage

import "time"

type ExpiryStatus int

const (
	// ExpNotFound means that the key does not exist
	ExpNotFound ExpiryStatus = -2
	// ExpNoTimeout means that the key exists, but it does not have a TTL
	ExpNoTimeout ExpiryStatus = -1
	// ExpActive means that the key has an active lifetime
	ExpActive ExpiryStatus = 1
)

// SetTTL makes the key expire ttl from now. It only applies to an existing key.
// A ttl that is not positive removes the key immediately
func (s *Store) SetTTL(key []byte, ttl time.Duration) bool {
	k := string(key)
	if _, ok := s.data[k]; !ok {
		return false
	}

	if ttl <= 0 {
		delete(s.data, k)
		delete(s.expires, k)
		return true
	}

	s.expires[k] = s.now().Add(ttl)
	return true
}

// TTL returns the remaining lifetime and status as ExpiryStatus
func (s *Store) TTL(key []byte) (time.Duration, ExpiryStatus) {
	k := string(key)

	// key does not exist
	if _, ok := s.data[k]; !ok {
		return 0, ExpNotFound
	}

	// key without TTL
	deadline, ok := s.expires[k]
	if !ok {
		return 0, ExpNoTimeout
	}

	remaining := deadline.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, ExpActive
}

// Persist removes the expiration date of the key, making it eternal.
// Returns false if the key was not found or had no TTL
func (s *Store) Persist(key []byte) bool {
	k := string(key)
	if _, ok := s.data[k]; !ok {
		return false
	}
	if _, ok := s.expires[k]; !ok {
		return false
	}
	delete(s.expires, k)
	return true
}

// CheckAndEvict removes the key together with its TTL when the deadline is at or before now.
// It is the only way expired keys leave the store. Returns true if the key was evicted
func (s *Store) CheckAndEvict(key []byte) bool {
	k := string(key)

	deadline, ok := s.expires[k]
	if !ok {
		return false
	}
	if deadline.After(s.now()) {
		return false
	}

	delete(s.data, k)
	delete(s.expires, k)
	return true
}

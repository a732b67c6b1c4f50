package storage

import (
	"errors"
	"math"
	"strconv"
	"time"
)

var (
	// ErrWrongType is returned when a key holds a value of a different type than the operation needs
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")
	// ErrNotInteger is returned by Incr when the payload is not a base-10 int64 or the result overflows
	ErrNotInteger = errors.New("value is not an integer or out of range")
)

// Store is the keyspace: every key maps to exactly one Value and optionally an expiration deadline.
//
// Store is not safe for concurrent use. The owner serializes access and calls CheckAndEvict
// for a key before any other operation on it. Slices passed in are retained, slices returned
// must not be modified
type Store struct {
	data    map[string]Value     // key - value
	expires map[string]time.Time // key - absolute deadline
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now as the source of the current time
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty Store
func NewStore(opts ...Option) *Store {
	s := &Store{
		data:    make(map[string]Value),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of resident keys, including expired keys not evicted yet
func (s *Store) Len() int {
	return len(s.data)
}

// Type returns the type of the value stored at key, TypeNone if the key is absent
func (s *Store) Type(key []byte) DataType {
	v, ok := s.data[string(key)]
	if !ok {
		return TypeNone
	}
	return v.Type()
}

// Get returns the string stored at key. ok is false if the key is absent
func (s *Store) Get(key []byte) (value []byte, ok bool, err error) {
	v, found := s.data[string(key)]
	if !found {
		return nil, false, nil
	}

	str, isString := v.(*String)
	if !isString {
		return nil, false, ErrWrongType
	}
	return str.Bytes(), true, nil
}

// Set stores value as a string, replacing any previous value and dropping its TTL
func (s *Store) Set(key, value []byte) {
	k := string(key)
	s.data[k] = &String{data: value}
	delete(s.expires, k)
}

// Delete removes the key. Returns true if the key existed
func (s *Store) Delete(key []byte) bool {
	k := string(key)
	if _, ok := s.data[k]; !ok {
		return false
	}
	delete(s.data, k)
	delete(s.expires, k)
	return true
}

// Exists reports whether the key holds a value
func (s *Store) Exists(key []byte) bool {
	_, ok := s.data[string(key)]
	return ok
}

// Incr adds delta to the integer stored at key and returns the result.
// An absent key counts as "0". The TTL of an existing key is kept
func (s *Store) Incr(key []byte, delta int64) (int64, error) {
	k := string(key)

	var current int64
	if v, ok := s.data[k]; ok {
		str, isString := v.(*String)
		if !isString {
			return 0, ErrWrongType
		}

		n, err := strconv.ParseInt(string(str.Bytes()), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = n
	} else {
		delete(s.expires, k)
	}

	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return 0, ErrNotInteger
	}

	next := current + delta
	s.data[k] = &String{data: strconv.AppendInt(nil, next, 10)}
	return next, nil
}

// ListPush adds value to one end of the list at key, creating the list if needed.
// Returns the new length
func (s *Store) ListPush(key, value []byte, side Side) (int, error) {
	k := string(key)

	v, ok := s.data[k]
	if !ok {
		l := &List{}
		s.data[k] = l
		delete(s.expires, k)
		return l.push(value, side), nil
	}

	l, isList := v.(*List)
	if !isList {
		return 0, ErrWrongType
	}
	return l.push(value, side), nil
}

// ListPop removes and returns one element from an end of the list at key.
// ok is false if the key is absent, empty or not a list
func (s *Store) ListPop(key []byte, side Side) ([]byte, bool) {
	l, ok := s.data[string(key)].(*List)
	if !ok {
		return nil, false
	}
	return l.pop(side)
}

// ListRange returns the elements between start and end inclusive.
// A missing key or a non-list value yields an empty slice
func (s *Store) ListRange(key []byte, start, end int64) [][]byte {
	l, ok := s.data[string(key)].(*List)
	if !ok {
		return [][]byte{}
	}
	return l.rangeOf(start, end)
}

// SetAdd adds member to the set at key, creating the set if needed.
// Returns true if the member was not present before
func (s *Store) SetAdd(key, member []byte) (bool, error) {
	k := string(key)

	v, ok := s.data[k]
	if !ok {
		set := &Set{members: make(map[string]struct{})}
		s.data[k] = set
		delete(s.expires, k)
		return set.add(member), nil
	}

	set, isSet := v.(*Set)
	if !isSet {
		return false, ErrWrongType
	}
	return set.add(member), nil
}

// SetMembers returns every member of the set at key in byte order
func (s *Store) SetMembers(key []byte) [][]byte {
	set, ok := s.data[string(key)].(*Set)
	if !ok {
		return [][]byte{}
	}
	return set.sorted()
}

// SetIsMember reports whether member belongs to the set at key
func (s *Store) SetIsMember(key, member []byte) bool {
	set, ok := s.data[string(key)].(*Set)
	if !ok {
		return false
	}
	return set.has(member)
}

// HashSet writes field in the hash at key, creating the hash if needed
func (s *Store) HashSet(key, field, value []byte) error {
	k := string(key)

	v, ok := s.data[k]
	if !ok {
		h := &Hash{fields: make(map[string][]byte)}
		s.data[k] = h
		delete(s.expires, k)
		h.set(field, value)
		return nil
	}

	h, isHash := v.(*Hash)
	if !isHash {
		return ErrWrongType
	}
	h.set(field, value)
	return nil
}

// HashGet returns the value of field in the hash at key
func (s *Store) HashGet(key, field []byte) ([]byte, bool) {
	h, ok := s.data[string(key)].(*Hash)
	if !ok {
		return nil, false
	}
	return h.get(field)
}

// HashGetAll returns every field of the hash at key in the order they were first written
func (s *Store) HashGetAll(key []byte) []FieldValue {
	h, ok := s.data[string(key)].(*Hash)
	if !ok {
		return []FieldValue{}
	}
	return h.all()
}

package storage

import (
	"slices"
	"sort"
)

type DataType byte

const (
	TypeNone DataType = iota
	TypeString
	TypeList
	TypeSet
	TypeHash
)

// String returns the name reported by the TYPE command
func (t DataType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeSet:
		return "set"
	case TypeHash:
		return "hash"
	default:
		return "none"
	}
}

// Value is the payload of one key. It is always one of *String, *List, *Set or *Hash
type Value interface {
	Type() DataType
	sealed()
}

// String holds an arbitrary byte payload
type String struct {
	data []byte
}

func (*String) Type() DataType { return TypeString }
func (*String) sealed()        {}

// Bytes returns the payload. The slice must not be modified
func (s *String) Bytes() []byte { return s.data }

// Side selects the end of a list
type Side int

const (
	Front Side = iota
	Back
)

// List is an ordered sequence accessible from both ends
type List struct {
	items [][]byte
}

func (*List) Type() DataType { return TypeList }
func (*List) sealed()        {}

func (l *List) push(v []byte, side Side) int {
	if side == Front {
		l.items = slices.Insert(l.items, 0, v)
	} else {
		l.items = append(l.items, v)
	}
	return len(l.items)
}

func (l *List) pop(side Side) ([]byte, bool) {
	n := len(l.items)
	if n == 0 {
		return nil, false
	}

	var v []byte
	if side == Front {
		v = l.items[0]
		l.items[0] = nil
		l.items = l.items[1:]
	} else {
		v = l.items[n-1]
		l.items[n-1] = nil
		l.items = l.items[:n-1]
	}
	return v, true
}

// rangeOf returns a copy of the elements between start and end, both inclusive.
// Negative indexes count from the tail, -1 being the last element
func (l *List) rangeOf(start, end int64) [][]byte {
	n := int64(len(l.items))
	if start < 0 {
		start = max(n+start, 0)
	}
	if end < 0 {
		end = n + end
	}
	if end >= n {
		end = n - 1
	}
	if start > end || start >= n {
		return [][]byte{}
	}
	return slices.Clone(l.items[start : end+1])
}

// Set is an unordered collection of unique members
type Set struct {
	members map[string]struct{}
}

func (*Set) Type() DataType { return TypeSet }
func (*Set) sealed()        {}

func (s *Set) add(member []byte) bool {
	if _, ok := s.members[string(member)]; ok {
		return false
	}
	s.members[string(member)] = struct{}{}
	return true
}

func (s *Set) has(member []byte) bool {
	_, ok := s.members[string(member)]
	return ok
}

// sorted returns the members in byte order so replies are stable
func (s *Set) sorted() [][]byte {
	keys := make([]string, 0, len(s.members))
	for m := range s.members {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out
}

// FieldValue is one entry of a hash
type FieldValue struct {
	Field []byte
	Value []byte
}

// Hash maps field names to values and remembers the order fields were first written
type Hash struct {
	fields map[string][]byte
	order  []string
}

func (*Hash) Type() DataType { return TypeHash }
func (*Hash) sealed()        {}

func (h *Hash) set(field, value []byte) bool {
	f := string(field)
	_, exists := h.fields[f]
	if !exists {
		h.order = append(h.order, f)
	}
	h.fields[f] = value
	return !exists
}

func (h *Hash) get(field []byte) ([]byte, bool) {
	v, ok := h.fields[string(field)]
	return v, ok
}

func (h *Hash) all() []FieldValue {
	out := make([]FieldValue, 0, len(h.order))
	for _, f := range h.order {
		out = append(out, FieldValue{Field: []byte(f), Value: h.fields[f]})
	}
	return out
}

package models

import (
	"encoding/json"
	"sort"
)

// UserIDSet is a set of user ids. The zero value is an empty set ready to use
// for reads; Add allocates on first write.
type UserIDSet map[uint]struct{}

// NewUserIDSet returns a set holding ids.
func NewUserIDSet(ids ...uint) UserIDSet {
	s := make(UserIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s UserIDSet) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was absent.
func (s *UserIDSet) Add(id uint) bool {
	if *s == nil {
		*s = make(UserIDSet)
	}
	if (*s).Has(id) {
		return false
	}
	(*s)[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s UserIDSet) Remove(id uint) bool {
	if !s.Has(id) {
		return false
	}
	delete(s, id)
	return true
}

// Sorted returns the members in ascending order.
func (s UserIDSet) Sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s UserIDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ids.
func (s *UserIDSet) UnmarshalJSON(data []byte) error {
	var ids []uint
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewUserIDSet(ids...)
	return nil
}

// UnreadCounts maps a participant id to the number of messages they have not read.
// Missing entries read as zero.
type UnreadCounts map[uint]int

// Get returns the count for id, 0 if absent.
func (u UnreadCounts) Get(id uint) int {
	return u[id]
}

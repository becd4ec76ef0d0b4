package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// IDSet is an unordered set of entity identifiers.
// It serializes as an ascending JSON array so exports are reproducible.
type IDSet[T cmp.Ordered] map[T]struct{}

// NewIDSet creates a set holding the given ids
func NewIDSet[T cmp.Ordered](ids ...T) IDSet[T] {
	s := make(IDSet[T], len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id; inserting an existing id is a no-op
func (s IDSet[T]) Add(id T) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set
func (s IDSet[T]) Has(id T) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set
func (s IDSet[T]) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order
func (s IDSet[T]) Sorted() []T {
	ids := make([]T, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Join renders the ids in ascending order separated by sep
func (s IDSet[T]) Join(sep string) string {
	parts := make([]string, 0, len(s))
	for _, id := range s.Sorted() {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, sep)
}

// MarshalJSON implements json.Marshaler
func (s IDSet[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON implements json.Unmarshaler
func (s *IDSet[T]) UnmarshalJSON(data []byte) error {
	var ids []T
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

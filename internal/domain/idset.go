package domain

import "github.com/google/uuid"

// IDSet is an insertion-ordered set of IDs. It is used both for the goal
// membership of lifecycle records and for a goal's record lists.
//
// Methods never modify the receiver; they return a new set.
type IDSet []uuid.UUID

// NewIDSet builds a set from ids, dropping duplicates and nil IDs.
func NewIDSet(ids ...uuid.UUID) IDSet {
	return IDSet(nil).With(ids...)
}

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id uuid.UUID) bool {
	for _, member := range s {
		if member == id {
			return true
		}
	}
	return false
}

// With returns a copy of the set with ids added.
func (s IDSet) With(ids ...uuid.UUID) IDSet {
	out := make(IDSet, 0, len(s)+len(ids))
	out = append(out, s...)
	for _, id := range ids {
		if id == uuid.Nil || out.Contains(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Without returns a copy of the set with ids removed.
func (s IDSet) Without(ids ...uuid.UUID) IDSet {
	drop := IDSet(ids)
	out := make(IDSet, 0, len(s))
	for _, member := range s {
		if !drop.Contains(member) {
			out = append(out, member)
		}
	}
	return out
}

// Len returns the number of members.
func (s IDSet) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no members.
func (s IDSet) IsEmpty() bool {
	return len(s) == 0
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}

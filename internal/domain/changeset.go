package domain

import "github.com/google/uuid"

// Op is the kind of change a Mutation applies.
type Op string

// Mutation operations
const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// EntityKind names the entity a Mutation targets.
type EntityKind string

// Entity kinds
const (
	KindBook       EntityKind = "book"
	KindChosenBook EntityKind = "chosen_book"
	KindActiveBook EntityKind = "active_book"
	KindReadBook   EntityKind = "read_book"
	KindGoal       EntityKind = "goal"
)

// Mutation is a single entity-level change. Entity is nil for deletes.
type Mutation struct {
	Op     Op
	Kind   EntityKind
	ID     uuid.UUID
	Entity any
}

type mutationKey struct {
	kind EntityKind
	id   uuid.UUID
}

// Changeset is the ordered list of mutations a lifecycle transition asks
// the persistence layer to apply as one unit.
//
// Repeated changes to one entity collapse: a create followed by updates
// stays a create and a create followed by a delete disappears. An update
// followed by a delete becomes a delete at the position of the delete, so
// it still comes after every mutation recorded before it.
type Changeset struct {
	mutations []Mutation
	dropped   map[int]bool
	index     map[mutationKey]int
}

// NewChangeset returns an empty changeset.
func NewChangeset() *Changeset {
	return &Changeset{
		dropped: make(map[int]bool),
		index:   make(map[mutationKey]int),
	}
}

// Create records a new entity.
func (c *Changeset) Create(entity any) {
	kind, id := EntityKey(entity)
	c.record(Mutation{Op: OpCreate, Kind: kind, ID: id, Entity: entity})
}

// Update records a modified entity.
func (c *Changeset) Update(entity any) {
	kind, id := EntityKey(entity)
	c.record(Mutation{Op: OpUpdate, Kind: kind, ID: id, Entity: entity})
}

// Delete records the removal of an entity.
func (c *Changeset) Delete(kind EntityKind, id uuid.UUID) {
	c.record(Mutation{Op: OpDelete, Kind: kind, ID: id})
}

// Mutations returns the effective mutations in the order they were first
// recorded.
func (c *Changeset) Mutations() []Mutation {
	out := make([]Mutation, 0, len(c.mutations))
	for i, m := range c.mutations {
		if c.dropped[i] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Len returns the number of effective mutations.
func (c *Changeset) Len() int {
	return len(c.mutations) - len(c.dropped)
}

// IsEmpty reports whether the changeset has no effective mutations.
func (c *Changeset) IsEmpty() bool {
	return c.Len() == 0
}

func (c *Changeset) record(m Mutation) {
	if c.index == nil {
		c.index = make(map[mutationKey]int)
		c.dropped = make(map[int]bool)
	}

	key := mutationKey{kind: m.Kind, id: m.ID}
	i, seen := c.index[key]
	if !seen || c.dropped[i] {
		c.index[key] = len(c.mutations)
		c.mutations = append(c.mutations, m)
		return
	}

	prev := &c.mutations[i]
	switch {
	case prev.Op == OpCreate && m.Op == OpDelete:
		c.dropped[i] = true
	case prev.Op == OpCreate:
		prev.Entity = m.Entity
	case m.Op == OpDelete:
		c.dropped[i] = true
		c.index[key] = len(c.mutations)
		c.mutations = append(c.mutations, m)
	default:
		*prev = m
	}
}

// EntityKey returns the kind and ID of a domain entity pointer.
func EntityKey(entity any) (EntityKind, uuid.UUID) {
	switch e := entity.(type) {
	case *Book:
		return KindBook, e.ID
	case *ChosenBook:
		return KindChosenBook, e.ID
	case *ActiveBook:
		return KindActiveBook, e.ID
	case *ReadBook:
		return KindReadBook, e.ID
	case *Goal:
		return KindGoal, e.ID
	}
	return "", uuid.Nil
}

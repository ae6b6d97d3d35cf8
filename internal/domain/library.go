package domain

import (
	"sort"

	"github.com/google/uuid"
)

// Lookup resolves the records a goal refers to. A miss returns nil, which
// pacing code treats as a zero-page contribution.
type Lookup interface {
	Book(id uuid.UUID) *Book
	ChosenBook(id uuid.UUID) *ChosenBook
	ActiveBook(id uuid.UUID) *ActiveBook
	ReadBook(id uuid.UUID) *ReadBook
}

// Library is an id-keyed snapshot of everything one user owns: the book
// catalog, the lifecycle records and the goals.
type Library struct {
	Books       map[uuid.UUID]*Book
	ChosenBooks map[uuid.UUID]*ChosenBook
	ActiveBooks map[uuid.UUID]*ActiveBook
	ReadBooks   map[uuid.UUID]*ReadBook
	Goals       map[uuid.UUID]*Goal
}

var _ Lookup = (*Library)(nil)

// NewLibrary returns an empty snapshot.
func NewLibrary() *Library {
	return &Library{
		Books:       make(map[uuid.UUID]*Book),
		ChosenBooks: make(map[uuid.UUID]*ChosenBook),
		ActiveBooks: make(map[uuid.UUID]*ActiveBook),
		ReadBooks:   make(map[uuid.UUID]*ReadBook),
		Goals:       make(map[uuid.UUID]*Goal),
	}
}

// Book returns the catalog entry for id, or nil.
func (l *Library) Book(id uuid.UUID) *Book { return l.Books[id] }

// ChosenBook returns the chosen record for id, or nil.
func (l *Library) ChosenBook(id uuid.UUID) *ChosenBook { return l.ChosenBooks[id] }

// ActiveBook returns the active record for id, or nil.
func (l *Library) ActiveBook(id uuid.UUID) *ActiveBook { return l.ActiveBooks[id] }

// ReadBook returns the read record for id, or nil.
func (l *Library) ReadBook(id uuid.UUID) *ReadBook { return l.ReadBooks[id] }

// Goal returns the goal for id, or nil.
func (l *Library) Goal(id uuid.UUID) *Goal { return l.Goals[id] }

// Put stores entity in the matching map, replacing any previous value.
// Unknown types are ignored.
func (l *Library) Put(entity any) {
	switch e := entity.(type) {
	case *Book:
		l.Books[e.ID] = e
	case *ChosenBook:
		l.ChosenBooks[e.ID] = e
	case *ActiveBook:
		l.ActiveBooks[e.ID] = e
	case *ReadBook:
		l.ReadBooks[e.ID] = e
	case *Goal:
		l.Goals[e.ID] = e
	}
}

// Remove deletes the entity of the given kind.
func (l *Library) Remove(kind EntityKind, id uuid.UUID) {
	switch kind {
	case KindBook:
		delete(l.Books, id)
	case KindChosenBook:
		delete(l.ChosenBooks, id)
	case KindActiveBook:
		delete(l.ActiveBooks, id)
	case KindReadBook:
		delete(l.ReadBooks, id)
	case KindGoal:
		delete(l.Goals, id)
	}
}

// Apply replays a changeset onto the snapshot. Entities are copied so the
// library does not share memory with the changeset.
func (l *Library) Apply(cs *Changeset) {
	for _, m := range cs.Mutations() {
		if m.Op == OpDelete {
			l.Remove(m.Kind, m.ID)
			continue
		}
		l.Put(CloneEntity(m.Entity))
	}
}

// Clone returns a deep copy of the snapshot.
func (l *Library) Clone() *Library {
	out := NewLibrary()
	for _, b := range l.Books {
		out.Put(CloneEntity(b))
	}
	for _, c := range l.ChosenBooks {
		out.Put(CloneEntity(c))
	}
	for _, a := range l.ActiveBooks {
		out.Put(CloneEntity(a))
	}
	for _, r := range l.ReadBooks {
		out.Put(CloneEntity(r))
	}
	for _, g := range l.Goals {
		out.Put(CloneEntity(g))
	}
	return out
}

// SortedGoals returns the goals ordered by creation time.
func (l *Library) SortedGoals() []*Goal {
	goals := make([]*Goal, 0, len(l.Goals))
	for _, g := range l.Goals {
		goals = append(goals, g)
	}
	sort.Slice(goals, func(i, j int) bool {
		if goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].ID.String() < goals[j].ID.String()
		}
		return goals[i].CreatedAt.Before(goals[j].CreatedAt)
	})
	return goals
}

// SortedBooks returns the catalog ordered by title.
func (l *Library) SortedBooks() []*Book {
	books := make([]*Book, 0, len(l.Books))
	for _, b := range l.Books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool {
		if books[i].Title == books[j].Title {
			return books[i].ID.String() < books[j].ID.String()
		}
		return books[i].Title < books[j].Title
	})
	return books
}

// BooksOf returns the catalog entries behind a goal's chosen, active and
// read records, in that order. Missing records and books are skipped.
func BooksOf(g *Goal, lookup Lookup) []*Book {
	var books []*Book
	add := func(bookID uuid.UUID) {
		if b := lookup.Book(bookID); b != nil {
			books = append(books, b)
		}
	}
	for _, id := range g.ChosenBooks {
		if c := lookup.ChosenBook(id); c != nil {
			add(c.BookID)
		}
	}
	for _, id := range g.ActiveBooks {
		if a := lookup.ActiveBook(id); a != nil {
			add(a.BookID)
		}
	}
	for _, id := range g.ReadBooks {
		if r := lookup.ReadBook(id); r != nil {
			add(r.BookID)
		}
	}
	return books
}

// CloneEntity returns a deep copy of a domain entity pointer. Other values
// are returned unchanged.
func CloneEntity(entity any) any {
	switch e := entity.(type) {
	case *Book:
		c := *e
		return &c
	case *ChosenBook:
		c := *e
		c.GoalIDs = e.GoalIDs.Clone()
		return &c
	case *ActiveBook:
		c := *e
		c.GoalIDs = e.GoalIDs.Clone()
		return &c
	case *ReadBook:
		c := *e
		c.GoalIDs = e.GoalIDs.Clone()
		return &c
	case *Goal:
		c := *e
		c.ChosenBooks = e.ChosenBooks.Clone()
		c.ActiveBooks = e.ActiveBooks.Clone()
		c.ReadBooks = e.ReadBooks.Clone()
		return &c
	}
	return entity
}

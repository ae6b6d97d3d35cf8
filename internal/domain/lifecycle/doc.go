// Package lifecycle implements the book-in-goal state machine:
//
//	absent -> chosen -> active -> read
//	active -> chosen, read -> active
//
// Every transition works on a domain.Library snapshot, updates it in place
// and returns the domain.Changeset the persistence layer must apply as one
// unit. Inputs are checked before anything is modified, so a failed
// transition leaves the snapshot untouched and yields no changes.
//
// Records shared by several goals are only deleted once the last goal lets
// go of them. That count is taken from the snapshot passed in, which the
// caller must load inside the same transaction that applies the result.
package lifecycle

// Package store defines interfaces for persisting reading goals, the book
// catalog and the chosen, active and read records that connect them.
//
// Business rules live in the domain packages. A store only loads a user's
// library snapshot and applies the changesets lifecycle transitions
// produce, atomically and serialized per user.
package store

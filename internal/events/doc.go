// Package events carries lifecycle notifications (a book started, a book
// finished, a goal reached) from the service layer to in-process handlers.
// Events are emitted after the change that caused them has been committed.
package events

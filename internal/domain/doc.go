// Package domain contains the core reading-goal entities: the book catalog,
// the per-goal lifecycle records (chosen, active, read) and the Goal
// aggregate. It is independent of any persistence or delivery mechanism.
//
// Records shared by several goals carry a membership set of goal IDs. The
// Library type is the id-keyed snapshot that pacing and lifecycle code read
// from; it never performs I/O itself.
package domain

// Package service provides the application-level operations behind the
// HTTP API: reading a user's goals with their pacing, and running book
// lifecycle transitions as serialized, all-or-nothing units of work.
package service

// Package api exposes reading goals and the book lifecycle over HTTP.
// Handlers decode and validate requests, call the goal service and map
// domain errors to status codes. Authentication and ownership checks live
// in the middleware subpackage.
package api

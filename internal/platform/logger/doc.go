// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package. Loggers travel through
// context so request-scoped attributes such as trace IDs reach every layer.
package logger

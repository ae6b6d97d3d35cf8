// Package config loads pagepace settings from defaults, an optional YAML
// file and PAGEPACE_* environment variables, in increasing precedence, and
// validates the result before the server starts.
package config

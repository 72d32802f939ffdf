// Package rlog is the rename engine's package-internal logging surface.
// It wraps the standard log package exactly as the teacher's internal/lsp
// and internal/workspace packages do (plain log.Printf call sites), so
// that unit tests never need a logging backend configured. The CLI/LSP
// binary in cmd/renamelsp instead wires tliron/commonlog, which is the
// structured logger glsp/server.NewServer expects a host to supply.
package rlog

import "log"

// Printf logs a formatted, non-fatal diagnostic. The index package uses
// this for the same kind of request-tracing the teacher's handlers
// perform with log.Printf.
func Printf(format string, args ...any) {
	log.Printf(format, args...)
}

// Warnf logs a recoverable warning, prefixed for grep-ability in plain
// stderr output.
func Warnf(format string, args ...any) {
	log.Printf("warning: "+format, args...)
}

package model

import (
	"fmt"
	"strings"

	"github.com/oaklang/rename-lsp/loc"
)

// IllegalRenameReasonKind is the closed set of semantic reasons a fully
// analysed rename can be rejected for (§7).
type IllegalRenameReasonKind int

const (
	InvalidName IllegalRenameReasonKind = iota
	DefinitionsOutsideWorkspace
	DoubleDeclaration
	CaptureChange
)

func (k IllegalRenameReasonKind) String() string {
	switch k {
	case InvalidName:
		return "invalidName"
	case DefinitionsOutsideWorkspace:
		return "definitionsOutsideWorkspace"
	case DoubleDeclaration:
		return "doubleDeclaration"
	case CaptureChange:
		return "captureChange"
	default:
		return "unknown"
	}
}

// IllegalRenameReason carries one semantic rejection reason plus the
// minimal witness location(s) that justify it.
type IllegalRenameReason struct {
	Kind     IllegalRenameReasonKind
	Witness  []loc.Location
	Detail   string
}

func (r IllegalRenameReason) String() string {
	parts := make([]string, len(r.Witness))
	for i, w := range r.Witness {
		parts[i] = w.String()
	}
	if r.Detail == "" {
		return fmt.Sprintf("%s at %s", r.Kind, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s at %s: %s", r.Kind, strings.Join(parts, ", "), r.Detail)
}

// UnsupportedIssue is one (location, message) pair describing a form the
// engine cannot reason about (§7 "Unsupported rename").
type UnsupportedIssue struct {
	Location loc.Location
	Message  string
}

// RenameError is the closed sum type every Driver.Rename failure returns
// as (§6 "Error shape", §7).
type RenameError struct {
	// Exactly one of the following is populated, chosen by Kind.
	Kind ErrorKind

	IllegalReasons []IllegalRenameReason // illegalRename
	Unsupported    []UnsupportedIssue    // unsupportedRename
	Message        string                // unexpectedFailure / cancelled
}

// ErrorKind distinguishes RenameError's four shapes.
type ErrorKind int

const (
	ErrIllegalRename ErrorKind = iota
	ErrUnsupportedRename
	ErrUnexpectedFailure
	ErrCancelled
)

func (e *RenameError) Error() string {
	switch e.Kind {
	case ErrIllegalRename:
		parts := make([]string, len(e.IllegalReasons))
		for i, r := range e.IllegalReasons {
			parts[i] = r.String()
		}
		return "illegalRename: " + strings.Join(parts, "; ")
	case ErrUnsupportedRename:
		parts := make([]string, len(e.Unsupported))
		for i, u := range e.Unsupported {
			parts[i] = fmt.Sprintf("%s: %s", u.Location, u.Message)
		}
		return "unsupportedRename: " + strings.Join(parts, "; ")
	case ErrCancelled:
		return "cancelled"
	default:
		return "unexpectedFailure: " + e.Message
	}
}

// IllegalRename builds a RenameError aggregating every semantic reason
// found across all affected files (§7: "the driver aggregates reasons
// across all files before failing").
func IllegalRename(reasons []IllegalRenameReason) *RenameError {
	return &RenameError{Kind: ErrIllegalRename, IllegalReasons: reasons}
}

// UnsupportedRename builds a RenameError for forms the engine cannot
// reason about.
func UnsupportedRename(issues []UnsupportedIssue) *RenameError {
	return &RenameError{Kind: ErrUnsupportedRename, Unsupported: issues}
}

// UnexpectedFailure builds a RenameError for an oracle precondition
// violation.
func UnexpectedFailure(message string) *RenameError {
	return &RenameError{Kind: ErrUnexpectedFailure, Message: message}
}

// Cancelled builds the dedicated cancellation RenameError (§7:
// "Cancellation maps to a dedicated Cancelled error and is never
// surfaced as an unexpectedFailure").
func Cancelled() *RenameError {
	return &RenameError{Kind: ErrCancelled}
}

package model

import "github.com/oaklang/rename-lsp/loc"

// ChangeAnnotation carries a user-visible label/description for a
// RenameLocation or TextEdit, and whether applying it needs confirmation
// (§3 "RenameLocation").
type ChangeAnnotation struct {
	Label             string
	Description       string
	NeedsConfirmation bool
}

// RenameLocation pairs a location with an optional change-annotation id
// (a key into the DocumentEdits' annotation table).
type RenameLocation struct {
	Location              loc.Location
	ChangeAnnotationID    string
	HasChangeAnnotationID bool
}

// TextEdit replaces the text at Range with NewText; Annotation, if set,
// names an entry in the annotation table returned alongside the edits.
type TextEdit struct {
	Range                 loc.Location
	NewText               string
	ChangeAnnotationID    string
	HasChangeAnnotationID bool
}

// DocumentEditKind distinguishes the four DocumentEdit variants of §3.
type DocumentEditKind int

const (
	EditChanged DocumentEditKind = iota
	EditRenamed
	EditCreated
	EditRemoved
)

// DocumentEdit is one of changed(file, edits), renamed(from, to),
// created(file), removed(file) (§3 "DocumentEdit").
type DocumentEdit struct {
	Kind  DocumentEditKind
	File  string
	Edits []TextEdit // only for EditChanged
	To    string     // only for EditRenamed
}

// Changed returns a changed(file, edits) DocumentEdit.
func Changed(file string, edits []TextEdit) DocumentEdit {
	return DocumentEdit{Kind: EditChanged, File: file, Edits: edits}
}

// Renamed returns a renamed(from, to) DocumentEdit.
func Renamed(from, to string) DocumentEdit {
	return DocumentEdit{Kind: EditRenamed, File: from, To: to}
}

// Created returns a created(file) DocumentEdit.
func Created(file string) DocumentEdit {
	return DocumentEdit{Kind: EditCreated, File: file}
}

// Removed returns a removed(file) DocumentEdit.
func Removed(file string) DocumentEdit {
	return DocumentEdit{Kind: EditRemoved, File: file}
}

// Edits is the result of a successful rename: the document edits to
// apply, and the table of change annotations any edit or RenameLocation
// referenced by ChangeAnnotationID resolves against.
type Edits struct {
	Documents         []DocumentEdit
	ChangeAnnotations map[string]ChangeAnnotation
}

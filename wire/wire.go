// Package wire converts the rename engine's model.Edits into the LSP
// wire format (§6 "Edit wire format"): tliron/glsp's protocol_3_16 types,
// with byte offsets translated to UTF-16 columns via loc.ColumnMapper.
// Grounded on the teacher's internal/lsp/rename.go buildWorkspaceEdit and
// internal/analysis/path_utils.go's URI conversion.
package wire

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/oracle"
)

// PathToURI converts an OS file path into a file:// URI, matching the
// teacher's workspace.pathToURI convention.
func PathToURI(path string) string {
	slashed := filepath.ToSlash(path)
	if len(slashed) > 1 && slashed[1] == ':' {
		return "file:///" + slashed
	}
	return "file://" + slashed
}

// URIToPath converts a file:// URI into an OS-specific absolute path,
// adapted from the teacher's internal/analysis/path_utils.go.
func URIToPath(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "file" && parsed.Scheme != "" {
		return "", fmt.Errorf("unsupported URI scheme: %s", parsed.Scheme)
	}
	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) >= 3 && path[2] == ':' {
		path = path[1:]
	}
	if path == "" {
		return "", fmt.Errorf("empty path extracted from URI: %s", uri)
	}
	return filepath.FromSlash(path), nil
}

// ToWorkspaceEdit converts edits into a protocol.WorkspaceEdit, using fs
// to read each changed file's contents for UTF-16 column mapping (§6:
// "ranges are expressed in UTF-16 offsets ... requires the core to ship a
// codepoint-to-UTF-16 column mapper keyed per file").
func ToWorkspaceEdit(edits model.Edits, fs oracle.SourceFS) (*protocol.WorkspaceEdit, error) {
	var documentChanges []any
	annotations := map[protocol.ChangeAnnotationIdentifier]protocol.ChangeAnnotation{}

	mappers := map[string]*loc.ColumnMapper{}
	mapperFor := func(file string) (*loc.ColumnMapper, error) {
		if m, ok := mappers[file]; ok {
			return m, nil
		}
		contents, err := fs.ReadFile(file)
		if err != nil {
			return nil, err
		}
		m := loc.NewColumnMapper(string(contents))
		mappers[file] = m
		return m, nil
	}

	for _, doc := range edits.Documents {
		switch doc.Kind {
		case model.EditChanged:
			mapper, err := mapperFor(doc.File)
			if err != nil {
				return nil, err
			}
			textEdits := make([]any, 0, len(doc.Edits))
			for _, e := range doc.Edits {
				r, err := toRange(mapper, e.Range)
				if err != nil {
					return nil, err
				}
				te := protocol.TextEdit{Range: r, NewText: e.NewText}
				if e.HasChangeAnnotationID {
					textEdits = append(textEdits, protocol.AnnotatedTextEdit{
						TextEdit:     te,
						AnnotationID: protocol.ChangeAnnotationIdentifier(e.ChangeAnnotationID),
					})
				} else {
					textEdits = append(textEdits, te)
				}
			}
			documentChanges = append(documentChanges, protocol.TextDocumentEdit{
				TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{
						URI: protocol.DocumentUri(PathToURI(doc.File)),
					},
				},
				Edits: textEdits,
			})

		case model.EditRenamed:
			documentChanges = append(documentChanges, protocol.RenameFile{
				Kind:   "rename",
				OldURI: protocol.DocumentUri(PathToURI(doc.File)),
				NewURI: protocol.DocumentUri(PathToURI(doc.To)),
			})

		case model.EditCreated:
			documentChanges = append(documentChanges, protocol.CreateFile{
				Kind: "create",
				URI:  protocol.DocumentUri(PathToURI(doc.File)),
			})

		case model.EditRemoved:
			documentChanges = append(documentChanges, protocol.DeleteFile{
				Kind: "delete",
				URI:  protocol.DocumentUri(PathToURI(doc.File)),
			})
		}
	}

	for id, ann := range edits.ChangeAnnotations {
		needsConfirmation := ann.NeedsConfirmation
		description := ann.Description
		entry := protocol.ChangeAnnotation{Label: ann.Label}
		if needsConfirmation {
			entry.NeedsConfirmation = &needsConfirmation
		}
		if description != "" {
			entry.Description = &description
		}
		annotations[protocol.ChangeAnnotationIdentifier(id)] = entry
	}

	we := &protocol.WorkspaceEdit{DocumentChanges: documentChanges}
	if len(annotations) > 0 {
		we.ChangeAnnotations = annotations
	}
	return we, nil
}

// ToRange converts a byte-offset Location into an LSP Range, given that
// file's contents (for the per-file UTF-16 column mapping). Exported for
// callers outside ToWorkspaceEdit, such as a prepareRename handler that
// needs to report a single range without building a full edit set.
func ToRange(contents string, l loc.Location) (protocol.Range, error) {
	return toRange(loc.NewColumnMapper(contents), l)
}

// toRange converts a byte-offset Location within one file into an LSP
// Range expressed in UTF-16 (line, character) pairs.
func toRange(mapper *loc.ColumnMapper, l loc.Location) (protocol.Range, error) {
	start, err := mapper.Position(l.Offset)
	if err != nil {
		return protocol.Range{}, err
	}
	end, err := mapper.Position(l.End())
	if err != nil {
		return protocol.Range{}, err
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(start.Line - 1), Character: uint32(start.Column - 1)},
		End:   protocol.Position{Line: uint32(end.Line - 1), Character: uint32(end.Column - 1)},
	}, nil
}

// ToRenameError converts a RenameError into a plain Go error suitable for
// returning from a glsp handler, preserving its taxonomy in the message
// (§7).
func ToRenameError(err *model.RenameError) error {
	if err == nil {
		return nil
	}
	return err
}

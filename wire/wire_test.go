package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
)

type fakeFS struct {
	contents map[string]string
}

func (f fakeFS) Walk(string, func(path string) error) error { return nil }
func (f fakeFS) ReadFile(path string) ([]byte, error)        { return []byte(f.contents[path]), nil }

func TestPathToURIUnix(t *testing.T) {
	assert.Equal(t, "file:///home/user/a.rsc", PathToURI("/home/user/a.rsc"))
}

func TestPathToURIWindowsDriveLetter(t *testing.T) {
	// filepath.ToSlash only rewrites the OS's own separator, so exercise
	// the drive-letter branch with a path already using forward slashes
	// rather than relying on GOOS-dependent backslash handling.
	assert.Equal(t, "file:///C:/Users/a.rsc", PathToURI("C:/Users/a.rsc"))
}

func TestURIToPathRoundTripsUnix(t *testing.T) {
	path, err := URIToPath("file:///home/user/a.rsc")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/a.rsc", path)
}

func TestURIToPathRejectsUnsupportedScheme(t *testing.T) {
	_, err := URIToPath("http://example.com/a.rsc")
	assert.Error(t, err)
}

func TestURIToPathDecodesPercentEscapes(t *testing.T) {
	path, err := URIToPath("file:///home/user/a%20b.rsc")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/a b.rsc", path)
}

func TestToRangeConvertsByteOffsetToUTF16Position(t *testing.T) {
	contents := "var foo = 1;\nvar bar = 2;"
	l := loc.New("a.rsc", 4, 3)

	r, err := ToRange(contents, l)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), r.Start.Line)
	assert.Equal(t, uint32(4), r.Start.Character)
	assert.Equal(t, uint32(0), r.End.Line)
	assert.Equal(t, uint32(7), r.End.Character)
}

func TestToWorkspaceEditBuildsChangedTextDocumentEdit(t *testing.T) {
	edits := model.Edits{
		Documents: []model.DocumentEdit{
			model.Changed("a.rsc", []model.TextEdit{{Range: loc.New("a.rsc", 4, 3), NewText: "bar"}}),
		},
	}
	fs := fakeFS{contents: map[string]string{"a.rsc": "var foo = 1;"}}

	we, err := ToWorkspaceEdit(edits, fs)
	require.NoError(t, err)
	require.Len(t, we.DocumentChanges, 1)
	tde, ok := we.DocumentChanges[0].(protocol.TextDocumentEdit)
	require.True(t, ok)
	assert.Equal(t, protocol.DocumentUri("file://a.rsc"), tde.TextDocument.URI)
	require.Len(t, tde.Edits, 1)
	te, ok := tde.Edits[0].(protocol.TextEdit)
	require.True(t, ok)
	assert.Equal(t, "bar", te.NewText)
}

func TestToWorkspaceEditBuildsRenameFile(t *testing.T) {
	edits := model.Edits{Documents: []model.DocumentEdit{model.Renamed("a.rsc", "b.rsc")}}

	we, err := ToWorkspaceEdit(edits, fakeFS{})
	require.NoError(t, err)
	require.Len(t, we.DocumentChanges, 1)
	rf, ok := we.DocumentChanges[0].(protocol.RenameFile)
	require.True(t, ok)
	assert.Equal(t, protocol.DocumentUri("file://a.rsc"), rf.OldURI)
	assert.Equal(t, protocol.DocumentUri("file://b.rsc"), rf.NewURI)
}

func TestToWorkspaceEditCarriesAnnotatedTextEditAndTable(t *testing.T) {
	edits := model.Edits{
		Documents: []model.DocumentEdit{
			model.Changed("a.rsc", []model.TextEdit{{
				Range: loc.New("a.rsc", 0, 3), NewText: "bar",
				ChangeAnnotationID: "ann0", HasChangeAnnotationID: true,
			}}),
		},
		ChangeAnnotations: map[string]model.ChangeAnnotation{
			"ann0": {Label: "module rename", NeedsConfirmation: true},
		},
	}
	fs := fakeFS{contents: map[string]string{"a.rsc": "foo"}}

	we, err := ToWorkspaceEdit(edits, fs)
	require.NoError(t, err)
	tde := we.DocumentChanges[0].(protocol.TextDocumentEdit)
	ate, ok := tde.Edits[0].(protocol.AnnotatedTextEdit)
	require.True(t, ok)
	assert.Equal(t, protocol.ChangeAnnotationIdentifier("ann0"), ate.AnnotationID)
	require.Contains(t, we.ChangeAnnotations, protocol.ChangeAnnotationIdentifier("ann0"))
	ann := we.ChangeAnnotations[protocol.ChangeAnnotationIdentifier("ann0")]
	assert.Equal(t, "module rename", ann.Label)
	require.NotNil(t, ann.NeedsConfirmation)
	assert.True(t, *ann.NeedsConfirmation)
}

func TestToRenameErrorPassesThroughNilAndNonNil(t *testing.T) {
	assert.NoError(t, ToRenameError(nil))
	rerr := model.Cancelled()
	assert.Equal(t, rerr, ToRenameError(rerr))
}

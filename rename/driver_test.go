package rename

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/locator"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/oracle"
	"github.com/oaklang/rename-lsp/progress"
)

// fakeChecker serves a single canned oracle.Model for every Check call,
// regardless of which files are requested.
type fakeChecker struct {
	model oracle.Model
}

func (c fakeChecker) Check(context.Context, []string) (oracle.Model, error) {
	return c.model, nil
}

// fakeTree is both an oracle.SyntaxTree and an oracle.NodeLookup backed
// by a fixed location->node table.
type fakeTree struct {
	file  string
	nodes map[loc.Location]locator.Node
}

func (t fakeTree) File() string { return t.file }
func (t fakeTree) NodeAt(l loc.Location) (locator.Node, bool) {
	n, ok := t.nodes[l]
	return n, ok
}

type fakeParser struct {
	tree fakeTree
}

func (p fakeParser) Parse(context.Context, string) (oracle.SyntaxTree, error) {
	return p.tree, nil
}

// spanNode is a locator.Node whose identifier location is always its own
// span, standing in for a KindSimpleName node.
type spanNode struct{ span loc.Location }

func (n spanNode) Kind() locator.ProductionKind            { return locator.KindSimpleName }
func (n spanNode) Span() loc.Location                       { return n.span }
func (n spanNode) NameField() (loc.Location, bool)          { return loc.Location{}, false }
func (n spanNode) LastSegment() (loc.Location, bool)        { return loc.Location{}, false }
func (n spanNode) DefinedNonterminal() (loc.Location, bool) { return loc.Location{}, false }

type fakeFS struct {
	contents map[string]string
}

func (f fakeFS) Walk(root string, fn func(path string) error) error {
	for path := range f.contents {
		if err := fn(path); err != nil {
			return err
		}
	}
	return nil
}

func (f fakeFS) ReadFile(path string) ([]byte, error) {
	return []byte(f.contents[path]), nil
}

func newDriver(def loc.Location) *Driver {
	checker := fakeChecker{model: oracle.Model{
		Defines: []model.Define{{Name: "foo", DefinedAt: def, Role: model.RoleVariable}},
	}}
	tree := fakeTree{file: def.File, nodes: map[loc.Location]locator.Node{def: spanNode{span: def}}}
	fs := fakeFS{contents: map[string]string{def.File: "var foo = 1;"}}
	return New(checker, fakeParser{tree: tree}, fs, nil)
}

func TestRenameHappyPath(t *testing.T) {
	def := loc.New("a.rsc", 10, 3)
	d := newDriver(def)

	result, rerr := d.Rename(context.Background(), Request{
		CursorFile:       def.File,
		CursorLocation:   def,
		CursorName:       "foo",
		WorkspaceFolders: []string{"."},
		RootFolder:       ".",
		NewName:          "bar",
	})
	require.Nil(t, rerr)
	assert.Equal(t, model.KindDef, result.Cursor.Kind)
	require.Len(t, result.Edits.Documents, 1)
	doc := result.Edits.Documents[0]
	assert.Equal(t, def.File, doc.File)
	require.Len(t, doc.Edits, 1)
	assert.Equal(t, def, doc.Edits[0].Range)
	assert.Equal(t, "bar", doc.Edits[0].NewText)
}

func TestRenameCheckOnlySkipsLegalityAndPlanning(t *testing.T) {
	def := loc.New("a.rsc", 10, 3)
	d := newDriver(def)

	result, rerr := d.Rename(context.Background(), Request{
		CursorFile:       def.File,
		CursorLocation:   def,
		CursorName:       "foo",
		WorkspaceFolders: []string{"."},
		RootFolder:       ".",
		NewName:          "bar",
		CheckOnly:        true,
	})
	require.Nil(t, rerr)
	assert.Equal(t, model.KindDef, result.Cursor.Kind)
	assert.Empty(t, result.Edits.Documents)
}

func TestRenameRejectsInvalidNewName(t *testing.T) {
	def := loc.New("a.rsc", 10, 3)
	d := newDriver(def)

	_, rerr := d.Rename(context.Background(), Request{
		CursorFile:       def.File,
		CursorLocation:   def,
		CursorName:       "foo",
		WorkspaceFolders: []string{"."},
		RootFolder:       ".",
		NewName:          "1bad",
	})
	require.NotNil(t, rerr)
	assert.Equal(t, model.ErrIllegalRename, rerr.Kind)
}

func TestRenameRespectsCancellationBeforeClassify(t *testing.T) {
	def := loc.New("a.rsc", 10, 3)
	d := newDriver(def)

	token := progress.NewCancelToken()
	token.Cancel()

	_, rerr := d.Rename(context.Background(), Request{
		CursorFile:       def.File,
		CursorLocation:   def,
		CursorName:       "foo",
		WorkspaceFolders: []string{"."},
		RootFolder:       ".",
		NewName:          "bar",
		Cancel:           token,
	})
	require.NotNil(t, rerr)
	assert.Equal(t, model.ErrCancelled, rerr.Kind)
}

func TestRunManyIsolatesPerRequestErrors(t *testing.T) {
	defGood := loc.New("a.rsc", 10, 3)
	dGood := newDriver(defGood)

	// Both requests run against dGood; the second targets a name absent
	// from its fake workspace, so it fails classification without
	// affecting the first request's result.
	reqs := []Request{
		{CursorFile: defGood.File, CursorLocation: defGood, CursorName: "foo", WorkspaceFolders: []string{"."}, RootFolder: ".", NewName: "bar"},
		{CursorFile: defGood.File, CursorLocation: loc.New(defGood.File, 999, 3), CursorName: "nope", WorkspaceFolders: []string{"."}, RootFolder: ".", NewName: "bar"},
	}

	results, errs := RunMany(context.Background(), dGood, reqs, 2)
	require.Len(t, results, 2)
	require.Len(t, errs, 2)
	assert.Nil(t, errs[0])
	require.NotNil(t, errs[1])
	assert.Equal(t, model.ErrUnsupportedRename, errs[1].Kind)
}

func TestRenameIdentityIsNoop(t *testing.T) {
	def := loc.New("a.rsc", 10, 3)
	d := newDriver(def)

	result, rerr := d.Rename(context.Background(), Request{
		CursorFile:       def.File,
		CursorLocation:   def,
		CursorName:       "foo",
		WorkspaceFolders: []string{"."},
		RootFolder:       ".",
		NewName:          "foo",
	})
	require.Nil(t, rerr)
	assert.Equal(t, model.KindDef, result.Cursor.Kind)
	assert.Empty(t, result.Edits.Documents)
}

// filesChecker serves a distinct oracle.Model per requested file, letting a
// test give preload (cursor file only) and fullLoad (every workspace file)
// different views of the same workspace.
type filesChecker struct {
	byFile map[string]oracle.Model
}

func (c filesChecker) Check(_ context.Context, files []string) (oracle.Model, error) {
	if len(files) == 0 {
		return oracle.Model{}, nil
	}
	return c.byFile[files[0]], nil
}

// filesParser serves a distinct fakeTree per requested file.
type filesParser struct {
	byFile map[string]fakeTree
}

func (p filesParser) Parse(_ context.Context, file string) (oracle.SyntaxTree, error) {
	return p.byFile[file], nil
}

// TestRenameModuleNameFromReferenceSpansFullyLoadedFiles exercises a
// moduleName cursor sitting on a reference whose defining occurrence is
// only discoverable once FullLoad has scanned the rest of the workspace:
// the reference lives in a.rsc, preloaded alone, while the module's own
// define (tagged RoleModuleName) lives in geometry/shapes.rsc, which is
// absent from the index until FullLoad runs.
func TestRenameModuleNameFromReferenceSpansFullyLoadedFiles(t *testing.T) {
	refFile := "a.rsc"
	modFile := "geometry/shapes.rsc"

	use := loc.New(refFile, 10, 8)
	moduleDef := loc.New(modFile, 0, 100)

	moduleType := model.ModuleType{Name: "geometry", Location: moduleDef}

	checker := filesChecker{byFile: map[string]oracle.Model{
		// The preload-only view of a.rsc knows the reference resolves to
		// moduleDef and that moduleDef has module type (enough for
		// classify to recognize it as a moduleName cursor), but has no
		// role-tagged Define for it yet - that only arrives once
		// geometry/shapes.rsc itself is loaded.
		refFile: {
			Defines: []model.Define{{Name: "geometry", DefinedAt: moduleDef, Type: moduleType}},
			UseDef:  []model.UseDef{{Use: use, Defs: []loc.Location{moduleDef}}},
		},
		modFile: {
			Defines: []model.Define{{Name: "geometry", DefinedAt: moduleDef, Role: model.RoleModuleName, Type: moduleType}},
		},
	}}

	tree := filesParser{byFile: map[string]fakeTree{
		refFile: {file: refFile, nodes: map[loc.Location]locator.Node{use: spanNode{span: use}}},
		modFile: {file: modFile, nodes: map[loc.Location]locator.Node{moduleDef: spanNode{span: moduleDef}}},
	}}

	fs := fakeFS{contents: map[string]string{
		refFile: "import geometry; geometry.circle();",
		modFile: "module geometry;",
	}}

	d := New(checker, tree, fs, nil)

	result, rerr := d.Rename(context.Background(), Request{
		CursorFile:       refFile,
		CursorLocation:   use,
		CursorName:       "geometry",
		WorkspaceFolders: []string{"."},
		RootFolder:       ".",
		NewName:          "polygons",
	})
	require.Nil(t, rerr)
	assert.Equal(t, model.KindModuleName, result.Cursor.Kind)

	var touched []string
	for _, doc := range result.Edits.Documents {
		touched = append(touched, doc.File)
	}
	assert.ElementsMatch(t, []string{refFile, modFile}, touched)
}

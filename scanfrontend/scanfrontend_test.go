package scanfrontend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/locator"
)

type fakeFS struct {
	contents map[string]string
}

func (f fakeFS) Walk(string, func(path string) error) error { return nil }
func (f fakeFS) ReadFile(path string) ([]byte, error)        { return []byte(f.contents[path]), nil }

func TestScanIdentifiersFindsSpansInOrder(t *testing.T) {
	spans := scanIdentifiers("a.rsc", "var foo = bar1;")
	require.Len(t, spans, 3)
	assert.Equal(t, loc.New("a.rsc", 0, 3), spans[0])
	assert.Equal(t, loc.New("a.rsc", 4, 3), spans[1])
	assert.Equal(t, loc.New("a.rsc", 10, 4), spans[2])
}

func TestScanIdentifiersIgnoresLeadingDigits(t *testing.T) {
	spans := scanIdentifiers("a.rsc", "1foo")
	require.Len(t, spans, 1)
	assert.Equal(t, loc.New("a.rsc", 1, 3), spans[0])
}

func TestParserBuildsNodeLookupTree(t *testing.T) {
	fs := fakeFS{contents: map[string]string{"a.rsc": "var foo;"}}
	p := Parser{FS: fs}

	tree, err := p.Parse(context.Background(), "a.rsc")
	require.NoError(t, err)
	assert.Equal(t, "a.rsc", tree.(*Tree).File())

	nl, ok := tree.(interface {
		NodeAt(loc.Location) (locator.Node, bool)
	})
	require.True(t, ok)
	n, ok := nl.NodeAt(loc.New("a.rsc", 0, 3))
	require.True(t, ok)
	assert.Equal(t, locator.KindSimpleName, n.Kind())
}

func TestCheckerFirstOccurrenceIsDefineLaterIsUse(t *testing.T) {
	fs := fakeFS{contents: map[string]string{"a.rsc": "var foo = foo + 1;"}}
	c := Checker{FS: fs}

	m, err := c.Check(context.Background(), []string{"a.rsc"})
	require.NoError(t, err)

	var fooDef, varDef bool
	for _, d := range m.Defines {
		if d.Name == "foo" {
			fooDef = true
			assert.Equal(t, loc.New("a.rsc", 4, 3), d.DefinedAt)
		}
		if d.Name == "var" {
			varDef = true
		}
	}
	assert.True(t, fooDef)
	assert.True(t, varDef)

	require.Len(t, m.UseDef, 1)
	assert.Equal(t, loc.New("a.rsc", 10, 3), m.UseDef[0].Use)
	assert.Equal(t, []loc.Location{loc.New("a.rsc", 4, 3)}, m.UseDef[0].Defs)
}

func TestPathConfigReturnsWholeFolderAsSourceRoot(t *testing.T) {
	roots, ignore, err := PathConfig("/ws")
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws"}, roots)
	assert.Contains(t, ignore, ".git")
}

func TestReservedAlwaysFalse(t *testing.T) {
	assert.False(t, Reserved("begin"))
	assert.False(t, Reserved(""))
}

func TestModuleNameDerivesDottedPath(t *testing.T) {
	assert.Equal(t, "a.b.c", ModuleName("/ws", "/ws/a/b/c.rsc"))
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oaklang/rename-lsp/loc"
)

func TestWorkspaceInfoGetDefs(t *testing.T) {
	w := NewWorkspaceInfo()
	def := loc.New("a.rsc", 0, 1)
	use := loc.New("a.rsc", 10, 1)
	w.UseDef = append(w.UseDef, UseDef{Use: use, Defs: []loc.Location{def}})

	assert.Equal(t, []loc.Location{def}, w.GetDefs(use))
	// A location that is not a recorded use is its own define, per §4.2.
	assert.Equal(t, []loc.Location{def}, w.GetDefs(def))
}

func TestWorkspaceInfoIsUse(t *testing.T) {
	w := NewWorkspaceInfo()
	use := loc.New("a.rsc", 10, 1)
	w.UseDef = append(w.UseDef, UseDef{Use: use, Defs: []loc.Location{loc.New("a.rsc", 0, 1)}})

	assert.True(t, w.IsUse(use))
	assert.False(t, w.IsUse(loc.New("a.rsc", 20, 1)))
}

func TestWorkspaceInfoDefineAt(t *testing.T) {
	w := NewWorkspaceInfo()
	at := loc.New("a.rsc", 0, 1)
	w.Defines = append(w.Defines, Define{Name: "x", DefinedAt: at})

	got, ok := w.DefineAt(at)
	assert.True(t, ok)
	assert.Equal(t, "x", got.Name)

	_, ok = w.DefineAt(loc.New("a.rsc", 99, 1))
	assert.False(t, ok)
}

func TestWorkspaceInfoDefinesNamed(t *testing.T) {
	w := NewWorkspaceInfo()
	w.Defines = []Define{
		{Name: "foo", DefinedAt: loc.New("a.rsc", 0, 3)},
		{Name: "bar", DefinedAt: loc.New("a.rsc", 10, 3)},
		{Name: "foo", DefinedAt: loc.New("b.rsc", 0, 3)},
	}

	got := w.DefinesNamed("foo")
	assert.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, "foo", d.Name)
	}
}

func TestWorkspaceInfoOuterScopes(t *testing.T) {
	w := NewWorkspaceInfo()
	inner := loc.New("a.rsc", 5, 1)
	fn := loc.New("a.rsc", 0, 20)
	file := loc.New("a.rsc", 0, 100)
	w.Scopes = []ScopeEdge{
		{Inner: inner, Outer: fn},
		{Inner: fn, Outer: file},
	}

	got := w.OuterScopes(inner)
	assert.Equal(t, []loc.Location{fn, file}, got)
}

func TestWorkspaceInfoOuterScopesNoEdges(t *testing.T) {
	w := NewWorkspaceInfo()
	assert.Empty(t, w.OuterScopes(loc.New("a.rsc", 0, 1)))
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentEditConstructors(t *testing.T) {
	changed := Changed("a.rsc", []TextEdit{{NewText: "bar"}})
	assert.Equal(t, EditChanged, changed.Kind)
	assert.Equal(t, "a.rsc", changed.File)
	assert.Len(t, changed.Edits, 1)

	renamed := Renamed("old.rsc", "new.rsc")
	assert.Equal(t, EditRenamed, renamed.Kind)
	assert.Equal(t, "old.rsc", renamed.File)
	assert.Equal(t, "new.rsc", renamed.To)

	created := Created("new.rsc")
	assert.Equal(t, EditCreated, created.Kind)
	assert.Equal(t, "new.rsc", created.File)

	removed := Removed("old.rsc")
	assert.Equal(t, EditRemoved, removed.Kind)
	assert.Equal(t, "old.rsc", removed.File)
}

package loc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationContains(t *testing.T) {
	tests := []struct {
		name   string
		outer  Location
		inner  Location
		want   bool
		strict bool
	}{
		{
			name:   "reflexive containment",
			outer:  New("a.rsc", 0, 10),
			inner:  New("a.rsc", 0, 10),
			want:   true,
			strict: false,
		},
		{
			name:   "strictly nested",
			outer:  New("a.rsc", 0, 10),
			inner:  New("a.rsc", 2, 3),
			want:   true,
			strict: true,
		},
		{
			name:  "different file never contains",
			outer: New("a.rsc", 0, 10),
			inner: New("b.rsc", 0, 5),
			want:  false,
		},
		{
			name:  "overlapping but not contained",
			outer: New("a.rsc", 0, 5),
			inner: New("a.rsc", 3, 5),
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outer.Contains(tt.inner))
			assert.Equal(t, tt.strict, tt.outer.StrictlyContains(tt.inner))
		})
	}
}

func TestSmallest(t *testing.T) {
	target := New("a.rsc", 5, 1)
	candidates := []Location{
		New("a.rsc", 0, 20),
		New("a.rsc", 3, 10),
		New("a.rsc", 5, 1),
		New("b.rsc", 5, 1),
	}
	got, found := Smallest(target, candidates)
	assert.True(t, found)
	assert.Equal(t, New("a.rsc", 5, 1), got)
}

func TestSmallestNoMatch(t *testing.T) {
	target := New("a.rsc", 100, 1)
	_, found := Smallest(target, []Location{New("a.rsc", 0, 10)})
	assert.False(t, found)
}

func TestLocationEnd(t *testing.T) {
	l := New("a.rsc", 4, 6)
	assert.Equal(t, 10, l.End())
}

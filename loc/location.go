// Package loc defines source locations and the UTF-16 column mapping the
// rename engine's wire format requires.
package loc

import "fmt"

// Location is a source span: a file, a 0-based byte offset, and a
// nonnegative length. Two Locations may be compared for containment;
// Locations in different files never contain one another, and no
// file-path prefix comparison is provided.
type Location struct {
	File   string `json:"file"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// New returns the Location spanning [offset, offset+length) in file.
func New(file string, offset, length int) Location {
	return Location{File: file, Offset: offset, Length: length}
}

// End returns the offset of the first byte past this Location's span.
func (l Location) End() int {
	return l.Offset + l.Length
}

// Contains reports whether other falls inside l's byte span in the same
// file. Containment is reflexive: l.Contains(l) is true.
func (l Location) Contains(other Location) bool {
	return l.File == other.File &&
		other.Offset >= l.Offset &&
		other.End() <= l.End()
}

// StrictlyContains reports containment that excludes equality.
func (l Location) StrictlyContains(other Location) bool {
	return l.Contains(other) && l != other
}

// Smallest returns the shortest candidate that Contains target
// (containment is reflexive, so a candidate equal to target qualifies),
// and false when none does. Among equally short candidates the first
// one in candidates wins.
func Smallest(target Location, candidates []Location) (Location, bool) {
	var (
		best    Location
		found   bool
		bestLen = -1
	)
	for _, c := range candidates {
		if !c.Contains(target) {
			continue
		}
		if !found || c.Length < bestLen {
			best, bestLen, found = c, c.Length, true
		}
	}
	return best, found
}

func (l Location) String() string {
	return fmt.Sprintf("%s@%d+%d", l.File, l.Offset, l.Length)
}

// LineCol is a 1-based line/column pair, independent of character
// encoding. It is used only for display; all engine-internal comparisons
// use byte offsets.
type LineCol struct {
	Line   int
	Column int
}

// Range pairs a byte Location with its line-column presentation.
// RenameLocation and Cursor carry a plain Location, not a Range.
type Range struct {
	Location Location
	Start    LineCol
	End      LineCol
}

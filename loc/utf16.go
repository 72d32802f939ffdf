package loc

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// utf16UnitsForRune returns how many UTF-16 code units r encodes to: 2 for
// an astral-plane rune emitted as a surrogate pair, 1 otherwise.
func utf16UnitsForRune(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// UTF16Column converts a 0-based UTF-8 byte offset within line into the
// 0-based UTF-16 code-unit offset the LSP wire format requires (§6: "Ranges
// are expressed in UTF-16 offsets ... which requires the core to ship a
// codepoint-to-UTF-16 column mapper keyed per file"). A byteOffset that
// lands inside a multi-byte rune (never produced by a well-formed caller,
// but reachable as the inverse of a surrogate-interior ByteOffsetFromUTF16
// result) splits that rune's units proportionally, so the two functions
// round-trip for every offset including mid-surrogate ones.
func UTF16Column(line string, byteOffset int) (int, error) {
	if byteOffset < 0 || byteOffset > len(line) {
		return 0, fmt.Errorf("loc: byte offset %d out of range (0-%d)", byteOffset, len(line))
	}
	units := 0
	consumed := 0
	for _, r := range line {
		bl := utf8.RuneLen(r)
		ul := utf16UnitsForRune(r)
		if consumed+bl <= byteOffset {
			consumed += bl
			units += ul
			continue
		}
		remaining := byteOffset - consumed
		return units + (remaining*ul)/bl, nil
	}
	return units, nil
}

// ByteOffsetFromUTF16 is the inverse of UTF16Column: given a line and a
// 0-based UTF-16 code-unit offset, it returns the corresponding UTF-8 byte
// offset within that line. An offset landing between the two units of a
// surrogate pair splits that rune's bytes proportionally rather than
// rounding to either neighboring rune boundary, keeping it the exact
// inverse of UTF16Column at every offset.
func ByteOffsetFromUTF16(line string, utf16Offset int) (int, error) {
	units := utf16.Encode([]rune(line))
	if utf16Offset < 0 || utf16Offset > len(units) {
		return 0, fmt.Errorf("loc: UTF-16 offset %d exceeds line length %d", utf16Offset, len(units))
	}
	byteOffset := 0
	unitsSoFar := 0
	for _, r := range line {
		bl := utf8.RuneLen(r)
		ul := utf16UnitsForRune(r)
		if unitsSoFar+ul <= utf16Offset {
			unitsSoFar += ul
			byteOffset += bl
			continue
		}
		remaining := utf16Offset - unitsSoFar
		return byteOffset + (remaining*bl)/ul, nil
	}
	return byteOffset, nil
}

// ColumnMapper maps whole-file byte offsets to LineCol positions whose
// Column is expressed in UTF-16 code units, per file contents. It is keyed
// per file because the mapping depends on each file's line breaks and
// non-ASCII content.
type ColumnMapper struct {
	lines []string
	// lineStart[i] is the byte offset of the first byte of lines[i].
	lineStart []int
}

// NewColumnMapper builds a mapper over the given file contents.
func NewColumnMapper(contents string) *ColumnMapper {
	lines := strings.Split(contents, "\n")
	starts := make([]int, len(lines))
	offset := 0
	for i, l := range lines {
		starts[i] = offset
		offset += len(l) + 1
	}
	return &ColumnMapper{lines: lines, lineStart: starts}
}

// Position converts a 0-based byte offset into a 1-based LineCol whose
// Column is a UTF-16 code-unit count.
func (m *ColumnMapper) Position(byteOffset int) (LineCol, error) {
	line := m.lineIndex(byteOffset)
	if line < 0 {
		return LineCol{}, fmt.Errorf("loc: offset %d out of range", byteOffset)
	}
	col, err := UTF16Column(m.lines[line], byteOffset-m.lineStart[line])
	if err != nil {
		return LineCol{}, err
	}
	return LineCol{Line: line + 1, Column: col + 1}, nil
}

// Offset converts a 1-based LineCol with a UTF-16 Column back into a
// 0-based byte offset.
func (m *ColumnMapper) Offset(lc LineCol) (int, error) {
	line := lc.Line - 1
	if line < 0 || line >= len(m.lines) {
		return 0, fmt.Errorf("loc: line %d out of range (1-%d)", lc.Line, len(m.lines))
	}
	byteCol, err := ByteOffsetFromUTF16(m.lines[line], lc.Column-1)
	if err != nil {
		return 0, err
	}
	return m.lineStart[line] + byteCol, nil
}

func (m *ColumnMapper) lineIndex(byteOffset int) int {
	for i := len(m.lineStart) - 1; i >= 0; i-- {
		if byteOffset >= m.lineStart[i] {
			return i
		}
	}
	return -1
}

package loc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16ColumnASCII(t *testing.T) {
	col, err := UTF16Column("hello world", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, col)
}

func TestUTF16ColumnAstralPlane(t *testing.T) {
	// U+1F600 (grinning face) encodes as a UTF-16 surrogate pair (2 units)
	// but as 4 UTF-8 bytes; a byte offset past it must count both units.
	line := "a\U0001F600b"
	col, err := UTF16Column(line, len("a\U0001F600"))
	require.NoError(t, err)
	assert.Equal(t, 3, col) // 'a' (1) + surrogate pair (2)
}

func TestUTF16ColumnOutOfRange(t *testing.T) {
	_, err := UTF16Column("abc", 10)
	assert.Error(t, err)
}

func TestByteOffsetFromUTF16RoundTrip(t *testing.T) {
	line := "a\U0001F600bc"
	for utf16Offset := 0; utf16Offset <= 5; utf16Offset++ {
		byteOffset, err := ByteOffsetFromUTF16(line, utf16Offset)
		require.NoError(t, err)
		back, err := UTF16Column(line, byteOffset)
		require.NoError(t, err)
		assert.Equal(t, utf16Offset, back)
	}
}

func TestColumnMapperPositionAndOffset(t *testing.T) {
	contents := "line one\nline two\nline three"
	mapper := NewColumnMapper(contents)

	// Offset of 't' in "two" on the second line.
	offset := len("line one\n") + len("line ")
	pos, err := mapper.Position(offset)
	require.NoError(t, err)
	assert.Equal(t, LineCol{Line: 2, Column: 6}, pos)

	back, err := mapper.Offset(pos)
	require.NoError(t, err)
	assert.Equal(t, offset, back)
}

func TestColumnMapperOutOfRange(t *testing.T) {
	mapper := NewColumnMapper("abc")
	_, err := mapper.Position(100)
	assert.Error(t, err)

	_, err = mapper.Offset(LineCol{Line: 5, Column: 1})
	assert.Error(t, err)
}

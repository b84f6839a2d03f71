package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupIdentifier(t *testing.T) {
	require.Equal(t, FUNCTION, LookupIdentifier("fn"))
	require.Equal(t, MODULE, LookupIdentifier("mod"))
	require.Equal(t, CONTAINER, LookupIdentifier("cont"))
	require.Equal(t, IMPL, LookupIdentifier("impl"))
	require.Equal(t, LOOP, LookupIdentifier("loop"))
	require.Equal(t, IDENT, LookupIdentifier("myVariable"))
	require.Equal(t, IDENT, LookupIdentifier("modulate"))
}

func TestPosition(t *testing.T) {
	pos := Position{Char: 10, LineStart: 5, Line: 2, Column: 5}
	require.Equal(t, 3, pos.LineNumber())
	require.Equal(t, 6, pos.ColumnNumber())
	require.True(t, pos.IsValid())

	next := pos.Advance(4)
	require.Equal(t, 14, next.Char)
	require.Equal(t, 9, next.Column)
	require.Equal(t, pos.Line, next.Line)

	require.False(t, NoPos.IsValid())
}

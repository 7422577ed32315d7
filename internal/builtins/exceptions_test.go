package builtins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupExceptionKnownNames(t *testing.T) {
	tag, ok := LookupException("Div")
	require.True(t, ok)
	require.Equal(t, ExnDiv, tag)
	require.Equal(t, "Div", tag.String())
}

func TestLookupExceptionUnknownName(t *testing.T) {
	_, ok := LookupException("NotAnException")
	require.False(t, ok)
}

func TestEveryTagHasDistinctString(t *testing.T) {
	tags := []ExceptionTag{ExnBind, ExnMatch, ExnSubscript, ExnSize, ExnDiv, ExnEmpty, ExnOption, ExnOverflow, ExnDomain}
	seen := map[string]bool{}
	for _, tg := range tags {
		s := tg.String()
		require.False(t, seen[s], "duplicate string for tag %v", tg)
		seen[s] = true
	}
}

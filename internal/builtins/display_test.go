package builtins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayNamesCoversSameMembersAsForEachStructure(t *testing.T) {
	var want []string
	ForEachStructure("Int", func(e *BuiltinEntry) { want = append(want, e.Name) })

	got := DisplayNames("Int")
	require.ElementsMatch(t, want, got)
}

func TestDisplayNamesEmptyForUnknownStructure(t *testing.T) {
	require.Empty(t, DisplayNames("NoSuchStructure"))
}

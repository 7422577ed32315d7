package builtins

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/types"
)

func TestLookupKnownEntries(t *testing.T) {
	e, ok := Lookup("Int.+")
	require.True(t, ok)
	require.Equal(t, "Int", e.Structure)
	require.True(t, e.IsPure)
}

func TestLookupBareGeneralName(t *testing.T) {
	e, ok := Lookup("not")
	require.True(t, ok)
	require.Equal(t, "General", e.Structure)
}

func TestForEachStructureFiltersByStructure(t *testing.T) {
	var names []string
	ForEachStructure("Int", func(e *BuiltinEntry) { names = append(names, e.Name) })
	require.Contains(t, names, "+")
	require.Contains(t, names, "compare")
	require.NotContains(t, names, "sqrt")
}

func TestReverseIsExactReverseOfForEach(t *testing.T) {
	var forward []*BuiltinEntry
	ForEach(func(e *BuiltinEntry) { forward = append(forward, e) })
	reversed := Reverse()
	require.Equal(t, len(forward), len(reversed))
	for i, e := range forward {
		require.Same(t, e, reversed[len(reversed)-1-i])
	}
}

func TestStructuresListsEveryRegisteredStructure(t *testing.T) {
	structs := Structures()
	require.Contains(t, structs, "Int")
	require.Contains(t, structs, "Relational")
	require.Contains(t, structs, "General")
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	err := Register(BuiltinEntry{
		Name: "+", Structure: "Int", NumArgs: 2, IsPure: true,
		Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a + b },
	})
	require.Error(t, err)
}

func TestRegisterRejectsArityMismatch(t *testing.T) {
	err := Register(BuiltinEntry{
		Name: "bogus", Structure: "Test", NumArgs: 3, IsPure: true,
		Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a + b },
	})
	require.Error(t, err)
}

func TestRegisterRejectsNilType(t *testing.T) {
	err := Register(BuiltinEntry{Name: "bogus2", Structure: "Test", Value: 1})
	require.Error(t, err)
}

func TestDataTypesIncludesOptionAndOrder(t *testing.T) {
	dts := DataTypes()
	names := map[string]bool{}
	for _, d := range dts {
		names[d.Name] = true
	}
	require.True(t, names["option"])
	require.True(t, names["order"])
}

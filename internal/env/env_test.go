package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/types"
)

func TestBindAndGetOptNearestWins(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Name: "x", Type: types.Int})
	e = e.Bind(Binding{Name: "x", Type: types.Bool})

	got, ok := e.GetOpt("x", 0)
	require.True(t, ok)
	require.True(t, got.Type.Equals(types.Bool))
}

func TestBindIsImmutable(t *testing.T) {
	var base *Env
	base = base.Bind(Binding{Name: "x", Type: types.Int})
	shadowed := base.Bind(Binding{Name: "x", Type: types.Bool})

	baseGot, _ := base.GetOpt("x", 0)
	shadowedGot, _ := shadowed.GetOpt("x", 0)
	require.True(t, baseGot.Type.Equals(types.Int))
	require.True(t, shadowedGot.Type.Equals(types.Bool))
}

func TestGetOptMatchesOrdinal(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Name: "x", Ordinal: 1, Type: types.Int})
	e = e.Bind(Binding{Name: "x", Ordinal: 2, Type: types.Bool})

	got, ok := e.GetOpt("x", 1)
	require.True(t, ok)
	require.True(t, got.Type.Equals(types.Int))
}

func TestGetOptMissingName(t *testing.T) {
	var e *Env
	_, ok := e.GetOpt("missing", 0)
	require.False(t, ok)
}

func TestGetTopSkipsNonTopLevelBindings(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Name: "x", Type: types.Int, TopLevel: true})
	e = e.Bind(Binding{Name: "y", Type: types.Bool})

	_, ok := e.GetTop("y")
	require.False(t, ok)

	top, ok := e.GetTop("x")
	require.True(t, ok)
	require.True(t, top.Type.Equals(types.Int))
}

func TestBindAllPreservesOrder(t *testing.T) {
	var e *Env
	e = e.BindAll([]Binding{
		{Name: "a", Type: types.Int},
		{Name: "b", Type: types.Bool},
	})
	a, ok := e.GetOpt("a", 0)
	require.True(t, ok)
	require.True(t, a.Type.Equals(types.Int))
	b, ok := e.GetOpt("b", 0)
	require.True(t, ok)
	require.True(t, b.Type.Equals(types.Bool))
}

func TestNamesNearestBindingWinsNoDuplicates(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Name: "x"})
	e = e.Bind(Binding{Name: "y"})
	e = e.Bind(Binding{Name: "x"})
	names := e.Names()
	require.ElementsMatch(t, []string{"x", "y"}, names)
}

func TestGetPanicsOnUnbound(t *testing.T) {
	var e *Env
	require.Panics(t, func() { e.Get("missing", 0) })
}

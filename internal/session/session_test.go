package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/generator"
	"github.com/hydromatic/morel-sub000/internal/types"
)

func TestNameGeneratorAdvancesMonotonically(t *testing.T) {
	g := NewNameGenerator()
	g.AdvanceOrdinal(5)
	require.Equal(t, 5, g.Ordinal())
	g.AdvanceOrdinal(3)
	require.Equal(t, 5, g.Ordinal(), "advancing backwards is a no-op")
}

func TestFreshNodeIDIsUnique(t *testing.T) {
	g := NewNameGenerator()
	a := g.FreshNodeID()
	b := g.FreshNodeID()
	require.NotEqual(t, a, b)
}

func TestSessionFileBindIsVisibleInRecordAndEnv(t *testing.T) {
	s := New()
	s.File.Bind(env.Binding{Name: "x", Type: types.Int})

	_, ok := s.File.Env.GetTop("x")
	require.True(t, ok)

	typ := s.File.Record.Discover("x")
	require.Equal(t, types.Int, typ)
}

func TestSessionFileDiscoversUnboundFieldAsFreshTypeVar(t *testing.T) {
	s := New()
	typ := s.File.Record.Discover("neverBound")
	_, isVar := typ.(*types.TypeVar)
	require.True(t, isVar)
}

func TestNewWithLimitsBuildsGeneratorCache(t *testing.T) {
	s := NewWithLimits(generator.Limits{DepthBound: 8, UnrollingLimit: 50})
	require.NotNil(t, s.Generators)

	x := &core.IdPat{Name: "x"}
	x.Typ = types.Int
	constraint := &core.Var{Name: "unrelated"}
	_, err := s.Generators.Synthesize(x, constraint)
	require.ErrorIs(t, err, generator.ErrNonInvertible)
}

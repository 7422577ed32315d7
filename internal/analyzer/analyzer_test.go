package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/types"
)

func idPat(name string, ordinal int) *core.IdPat {
	p := &core.IdPat{Name: name, Ordinal: ordinal}
	p.Typ = types.Int
	return p
}

func vr(name string, ordinal int) *core.Var {
	return &core.Var{Node: core.Node{Typ: types.Int}, Name: name, Ordinal: ordinal}
}

func lit(v int) *core.Lit {
	return &core.Lit{Node: core.Node{Typ: types.Int}, Kind: core.IntLit, Value: v}
}

func TestDeadWhenNeverReferenced(t *testing.T) {
	x := idPat("x", 1)
	value := &core.Apply{Fn: vr("f", 0), Arg: lit(1)}
	body := lit(99)
	let := &core.Let{Pattern: x, Value: value, Body: body}

	a := Analyze(let, false)
	u, ok := a.Get(x)
	require.True(t, ok)
	require.Equal(t, DEAD, u.Class)
}

func TestDeadExemptAtTopLevel(t *testing.T) {
	x := idPat("x", 1)
	value := &core.Apply{Fn: vr("f", 0), Arg: lit(1)}
	body := lit(99)
	let := &core.Let{Pattern: x, Value: value, Body: body}

	a := Analyze(let, true)
	u, ok := a.Get(x)
	require.True(t, ok)
	require.NotEqual(t, DEAD, u.Class)
}

func TestAtomicRHSOverridesUseCount(t *testing.T) {
	x := idPat("x", 1)
	value := vr("y", 0)
	body := &core.Tuple{Elements: []core.Expr{vr("x", 1), vr("x", 1), vr("x", 1)}}
	let := &core.Let{Pattern: x, Value: value, Body: body}

	a := Analyze(let, false)
	u, _ := a.Get(x)
	require.Equal(t, ATOMIC, u.Class)
}

func TestOnceSafeSingleUseOutsideLambda(t *testing.T) {
	x := idPat("x", 1)
	value := &core.Apply{Fn: vr("f", 0), Arg: lit(1)}
	body := vr("x", 1)
	let := &core.Let{Pattern: x, Value: value, Body: body}

	a := Analyze(let, false)
	u, _ := a.Get(x)
	require.Equal(t, ONCE_SAFE, u.Class)
	require.Equal(t, 1, u.Count)
}

func TestOnceUnsafeInsideLambda(t *testing.T) {
	x := idPat("x", 1)
	value := &core.Apply{Fn: vr("f", 0), Arg: lit(1)}
	body := &core.Fn{Arms: []core.MatchArm{{Pattern: &core.WildcardPattern{}, Body: vr("x", 1)}}}
	let := &core.Let{Pattern: x, Value: value, Body: body}

	a := Analyze(let, false)
	u, _ := a.Get(x)
	require.Equal(t, ONCE_UNSAFE, u.Class)
}

func TestMultiUnsafeMultipleUses(t *testing.T) {
	x := idPat("x", 1)
	value := &core.Apply{Fn: vr("f", 0), Arg: lit(1)}
	body := &core.Tuple{Elements: []core.Expr{vr("x", 1), vr("x", 1)}}
	let := &core.Let{Pattern: x, Value: value, Body: body}

	a := Analyze(let, false)
	u, _ := a.Get(x)
	require.Equal(t, MULTI_UNSAFE, u.Class)
	require.Equal(t, 2, u.Count)
}

func TestMultiSafeParallelCaseArms(t *testing.T) {
	x := idPat("x", 1)
	value := &core.Apply{Fn: vr("f", 0), Arg: lit(1)}
	cs := &core.Case{
		Scrutinee: lit(0),
		Arms: []core.MatchArm{
			{Pattern: &core.LitPattern{Kind: core.IntLit, Value: 1}, Body: vr("x", 1)},
			{Pattern: &core.WildcardPattern{}, Body: vr("x", 1)},
		},
	}
	let := &core.Let{Pattern: x, Value: value, Body: cs}

	a := Analyze(let, false)
	u, _ := a.Get(x)
	require.Equal(t, MULTI_SAFE, u.Class)
	require.True(t, u.Parallel)
}

func TestAnalyzeCollectsNonExhaustiveCaseReport(t *testing.T) {
	cs := &core.Case{
		Scrutinee: &core.Lit{Node: core.Node{Typ: types.Bool}, Kind: core.BoolLit, Value: true},
		Arms: []core.MatchArm{
			{Pattern: boolLitPat(true), Body: lit(1)},
		},
	}

	a := Analyze(cs, false)
	require.Len(t, a.Reports, 1)
	require.Equal(t, "ANA001", a.Reports[0].Code)
}

func TestLoopBreakerOnSelfReference(t *testing.T) {
	f := idPat("f", 1)
	value := &core.Fn{Arms: []core.MatchArm{{Pattern: &core.WildcardPattern{}, Body: vr("f", 1)}}}
	body := vr("f", 1)
	rec := &core.RecValDecl{Pattern: f, Value: value, Body: body}

	a := Analyze(rec, false)
	u, _ := a.Get(f)
	require.Equal(t, LOOP_BREAKER, u.Class)
}

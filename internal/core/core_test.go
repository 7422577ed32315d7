package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/types"
)

func boolLit(b bool) *Lit {
	return &Lit{Node: Node{Typ: types.Bool}, Kind: BoolLit, Value: b}
}

func intVar(name string) *Var {
	return &Var{Node: Node{Typ: types.Int}, Name: name}
}

func TestDecomposeAndRoundTripsAndAlso(t *testing.T) {
	xs := []Expr{intVar("a"), intVar("b"), intVar("c")}
	got := DecomposeAnd(andAlso(xs))
	require.Equal(t, xs, got)
}

func TestDecomposeAndSingleExprIsIdentity(t *testing.T) {
	x := intVar("a")
	got := DecomposeAnd(x)
	require.Equal(t, []Expr{x}, got)
}

func TestToPatRoundTripsVarAndTuple(t *testing.T) {
	pat := &TuplePattern{
		patBase:  patBase{Typ: types.TupleOf(types.Int, types.Bool)},
		Elements: []Pattern{&IdPat{patBase: patBase{Typ: types.Int}, Name: "x"}, &IdPat{patBase: patBase{Typ: types.Bool}, Name: "y"}},
	}
	exp := &Tuple{
		Node:     Node{Typ: pat.Typ},
		Elements: []Expr{&Var{Node: Node{Typ: types.Int}, Name: "x"}, &Var{Node: Node{Typ: types.Bool}, Name: "y"}},
	}
	got := ToPat(exp)
	if diff := cmp.Diff(pat, got, cmp.AllowUnexported(TuplePattern{}, IdPat{})); diff != "" {
		t.Fatalf("ToPat(exp(pat)) != pat (-want +got):\n%s", diff)
	}
}

func TestRecordOrAtomPatSingleIsUnwrapped(t *testing.T) {
	p := &IdPat{Name: "x"}
	got := RecordOrAtomPat([]Pattern{p})
	require.Same(t, p, got)
}

func TestRecordOrAtomPatMultiIsTuple(t *testing.T) {
	p1, p2 := &IdPat{Name: "x"}, &IdPat{Name: "y"}
	got := RecordOrAtomPat([]Pattern{p1, p2})
	tup, ok := got.(*TuplePattern)
	require.True(t, ok)
	require.Len(t, tup.Elements, 2)
}

func TestWithOrderedRoundTrips(t *testing.T) {
	x := intVar("a")
	got := WithOrdered(true, WithOrdered(false, x))
	require.Same(t, Expr(x), got)
}

func TestSimplifyIsIdempotent(t *testing.T) {
	e := &Apply{
		Fn: &Apply{
			Fn:  &FnLit{MLName: "andalso"},
			Arg: boolLit(true),
		},
		Arg: intVar("p"),
	}
	once := Simplify(e)
	twice := Simplify(once)
	if diff := cmp.Diff(once, twice, cmpopts.IgnoreUnexported()); diff != "" {
		t.Fatalf("simplify(simplify(e)) != simplify(e) (-once +twice):\n%s", diff)
	}
}

func TestSimplifyFoldsAndAlsoTrue(t *testing.T) {
	e := &Apply{
		Fn:  &Apply{Fn: &FnLit{MLName: "andalso"}, Arg: boolLit(true)},
		Arg: intVar("p"),
	}
	got := Simplify(e)
	v, ok := got.(*Var)
	require.True(t, ok)
	require.Equal(t, "p", v.Name)
}

func TestSimplifyFoldsAndAlsoFalse(t *testing.T) {
	e := &Apply{
		Fn:  &Apply{Fn: &FnLit{MLName: "andalso"}, Arg: boolLit(false)},
		Arg: intVar("p"),
	}
	got := Simplify(e)
	lit, ok := got.(*Lit)
	require.True(t, ok)
	require.Equal(t, false, lit.Value)
}

func TestSimplifyDoesNotFoldNotEqualsIntoNotEquals(t *testing.T) {
	// simplify must leave `not (x = v)` alone rather than rewriting it to a
	// `<>` primitive (Open Question 3).
	eq := &Apply{
		Fn:  &Apply{Fn: &FnLit{MLName: "="}, Arg: intVar("x")},
		Arg: intVar("v"),
	}
	notEq := &Apply{Fn: &FnLit{MLName: "not"}, Arg: eq}
	got := Simplify(notEq)
	app, ok := got.(*Apply)
	require.True(t, ok)
	fn, ok := app.Fn.(*FnLit)
	require.True(t, ok)
	require.Equal(t, "not", fn.MLName)
}

func TestSimplifyUnwrapsSingleIrrefutableCaseArm(t *testing.T) {
	scrutinee := intVar("a")
	pat := &IdPat{Name: "x"}
	body := intVar("x")
	c := &Case{
		Scrutinee: scrutinee,
		Arms:      []MatchArm{{Pattern: pat, Body: body}},
	}
	got := Simplify(c)
	let, ok := got.(*Let)
	require.True(t, ok)
	require.Same(t, Pattern(pat), let.Pattern)
	require.Same(t, Expr(body), let.Body)
}

func TestFlattenAndHandlesNestedAssociativity(t *testing.T) {
	a, b, c := intVar("a"), intVar("b"), intVar("c")
	left := &Apply{Fn: &Apply{Fn: &FnLit{MLName: "andalso"}, Arg: a}, Arg: b}
	nested := &Apply{Fn: &Apply{Fn: &FnLit{MLName: "andalso"}, Arg: left}, Arg: c}
	require.Equal(t, []Expr{a, b, c}, DecomposeAnd(nested))
}

func TestDecomposeOrSymmetricToDecomposeAnd(t *testing.T) {
	a, b := intVar("a"), intVar("b")
	or := &Apply{Fn: &Apply{Fn: &FnLit{MLName: "orelse"}, Arg: a}, Arg: b}
	require.Equal(t, []Expr{a, b}, DecomposeOr(or))
}

func TestIsCallToMatchesHeadName(t *testing.T) {
	call := &Apply{Fn: &FnLit{MLName: "Relational.nonEmpty"}, Arg: intVar("q")}
	require.True(t, IsCallTo(call, "Relational.nonEmpty"))
	require.False(t, IsCallTo(call, "Relational.empty"))
}

package generator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/core"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
	"github.com/hydromatic/morel-sub000/internal/types"
)

func idPat(name string) *core.IdPat {
	p := &core.IdPat{Name: name}
	p.Typ = types.Int
	return p
}

func intVar(name string) *core.Var {
	return &core.Var{Node: core.Node{Typ: types.Int}, Name: name}
}

func intLit(v int) *core.Lit {
	return &core.Lit{Node: core.Node{Typ: types.Int}, Kind: core.IntLit, Value: v}
}

func boolType() types.Type { return types.Bool }

func equalsApp(left, right core.Expr) core.Expr {
	return &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.FnType(types.NewTypeVar(), types.Bool)},
			Fn:   &core.FnLit{Node: core.Node{Typ: types.FnType(types.NewTypeVar(), types.FnType(types.NewTypeVar(), types.Bool))}, MLName: "op ="},
			Arg:  left,
		},
		Arg: right,
	}
}

func binOpApp(name string, left, right core.Expr) core.Expr {
	return &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.FnType(types.Int, types.Bool)},
			Fn:   &core.FnLit{Node: core.Node{Typ: types.FnType(types.Int, types.FnType(types.Int, types.Bool))}, MLName: name},
			Arg:  left,
		},
		Arg: right,
	}
}

func andAlsoApp(left, right core.Expr) core.Expr {
	return &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn: &core.Apply{
			Node: core.Node{Typ: boolType()},
			Fn:   &core.FnLit{MLName: "andalso"},
			Arg:  left,
		},
		Arg: right,
	}
}

func TestElemStrategyInvertsEquality(t *testing.T) {
	x := idPat("x")
	constraint := equalsApp(intVar("x"), intLit(5))

	g, err := elemStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	require.Equal(t, "Elem", g.Strategy)
	require.Equal(t, CardinalitySingleton, g.Cardinality)

	app, ok := g.Source.(*core.Apply)
	require.True(t, ok)
	consApp, ok := app.Fn.(*core.Apply)
	require.True(t, ok)
	require.Equal(t, "5", consApp.Arg.String())
}

func TestElemStrategyRejectsWhenVarOnBothSides(t *testing.T) {
	x := idPat("x")
	constraint := equalsApp(intVar("x"), intVar("x"))

	_, err := elemStrategy(NewCache(), x, constraint)
	require.ErrorIs(t, err, ErrNonInvertible)
}

func TestRangeStrategyInvertsConjoinedBounds(t *testing.T) {
	x := idPat("x")
	lower := binOpApp("Int.<=", intLit(1), intVar("x"))
	upper := binOpApp("Int.<=", intVar("x"), intLit(10))
	constraint := andAlsoApp(lower, upper)

	g, err := rangeStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	require.Equal(t, "Range", g.Strategy)
	require.Equal(t, CardinalityBounded, g.Cardinality)

	app, ok := g.Source.(*core.Apply)
	require.True(t, ok)
	inner, ok := app.Fn.(*core.Apply)
	require.True(t, ok)
	fn, ok := inner.Fn.(*core.FnLit)
	require.True(t, ok)
	require.Equal(t, "List.tabulate", fn.MLName)
	require.Equal(t, "10", inner.Arg.String())

	step, ok := app.Arg.(*core.Fn)
	require.True(t, ok)
	require.Len(t, step.Arms, 1)
}

func TestRangeStrategyFailsWithoutBothBounds(t *testing.T) {
	x := idPat("x")
	constraint := binOpApp("Int.<=", intLit(1), intVar("x"))

	_, err := rangeStrategy(NewCache(), x, constraint)
	require.ErrorIs(t, err, ErrNonInvertible)
}

func TestRangeStrategyHandlesStrictBoundsEitherOrientation(t *testing.T) {
	x := idPat("x")
	lower := binOpApp("Int.>", intVar("x"), intLit(0))
	upper := binOpApp("Int.<", intVar("x"), intLit(6))
	constraint := andAlsoApp(lower, upper)

	g, err := rangeStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	app := g.Source.(*core.Apply)
	inner := app.Fn.(*core.Apply)
	require.Equal(t, "5", inner.Arg.String())
}

func TestRangeStrategyHandlesGreaterEqualLessEqual(t *testing.T) {
	x := idPat("x")
	lower := binOpApp("Int.>=", intVar("x"), intLit(1))
	upper := binOpApp("Int.<=", intVar("x"), intLit(5))
	constraint := andAlsoApp(lower, upper)

	g, err := rangeStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	app := g.Source.(*core.Apply)
	inner := app.Fn.(*core.Apply)
	require.Equal(t, "5", inner.Arg.String())
}

func intPlus(left, right core.Expr) core.Expr {
	return &core.Apply{
		Node: core.Node{Typ: types.Int},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.FnType(types.Int, types.Int)},
			Fn:   &core.FnLit{Node: core.Node{Typ: types.FnType(types.Int, types.FnType(types.Int, types.Int))}, MLName: "Int.+"},
			Arg:  left,
		},
		Arg: right,
	}
}

func TestRangeStrategyRewritesOffsetBound(t *testing.T) {
	x := idPat("x")
	lower := binOpApp("Int.<", intLit(4), intPlus(intVar("x"), intLit(1)))
	upper := binOpApp("Int.<=", intVar("x"), intLit(10))
	constraint := andAlsoApp(lower, upper)

	g, err := rangeStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	app := g.Source.(*core.Apply)
	inner := app.Fn.(*core.Apply)
	require.Equal(t, "7", inner.Arg.String())
}

func TestCaseStrategyCollectsTrueArms(t *testing.T) {
	x := idPat("x")
	scrutinee := intVar("x")
	trueLit := &core.Lit{Node: core.Node{Typ: types.Bool}, Kind: core.BoolLit, Value: true}
	falseLit := &core.Lit{Node: core.Node{Typ: types.Bool}, Kind: core.BoolLit, Value: false}
	cs := &core.Case{
		Scrutinee: scrutinee,
		Arms: []core.MatchArm{
			{Pattern: &core.LitPattern{Kind: core.IntLit, Value: 1}, Body: trueLit},
			{Pattern: &core.LitPattern{Kind: core.IntLit, Value: 2}, Body: trueLit},
			{Pattern: &core.WildcardPattern{}, Body: falseLit},
		},
	}

	g, err := caseStrategy(NewCache(), x, cs)
	require.NoError(t, err)
	require.Equal(t, "Case", g.Strategy)
	require.Equal(t, CardinalityBounded, g.Cardinality)
}

func TestSynthesizeCachesResult(t *testing.T) {
	x := idPat("x")
	constraint := equalsApp(intVar("x"), intLit(7))
	c := NewCache()

	g1, err := c.Synthesize(x, constraint)
	require.NoError(t, err)
	g2, err := c.Synthesize(x, constraint)
	require.NoError(t, err)
	require.Same(t, g1, g2)
}

func TestSynthesizeReturnsNonInvertibleWhenNoStrategyMatches(t *testing.T) {
	x := idPat("x")
	constraint := intVar("somethingUnrelated")

	_, err := NewCache().Synthesize(x, constraint)
	require.ErrorIs(t, err, ErrNonInvertible)
}

func TestSynthesizeOrReportWrapsNonInvertibleAsGEN001(t *testing.T) {
	x := idPat("x")
	constraint := intVar("somethingUnrelated")

	_, err := NewCache().SynthesizeOrReport(x, constraint)
	require.Error(t, err)
	rep, ok := corerr.AsReport(err)
	require.True(t, ok)
	require.Equal(t, corerr.GEN001, rep.Code)
	require.Equal(t, "generate", rep.Phase)
}

func TestUnionStrategyCombinesTwoInvertibleDisjuncts(t *testing.T) {
	x := idPat("x")
	left := equalsApp(intVar("x"), intLit(1))
	right := equalsApp(intVar("x"), intLit(2))
	constraint := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.Bool},
			Fn:   &core.FnLit{MLName: "orelse"},
			Arg:  left,
		},
		Arg: right,
	}

	g, err := unionStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	require.Equal(t, "Union", g.Strategy)
}

func TestFunctionStrategyAdoptsTransitiveClosure(t *testing.T) {
	x := idPat("x")
	constraint := &core.Apply{
		Node: core.Node{Typ: types.ListOf(types.Int)},
		Fn: &core.Apply{
			Fn:  &core.FnLit{MLName: "Relational.iterate"},
			Arg: &core.Var{Node: core.Node{Typ: types.ListOf(types.Int)}, Name: "seed"},
		},
		Arg: &core.FnLit{MLName: "step"},
	}

	g, err := functionStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	require.Equal(t, "Function/transitive-closure", g.Strategy)
	require.Equal(t, CardinalityUnbounded, g.Cardinality)
}

func TestExistsStrategyBuildsJoinWhenDependentOnSubQueryName(t *testing.T) {
	x := idPat("x")
	y := idPat("y")
	ysVar := &core.Var{Node: core.Node{Typ: types.ListOf(types.Int)}, Name: "ys"}
	sub := &core.From{
		Node:    core.Node{Typ: types.ListOf(types.Unit)},
		Sources: []core.Source{{Pattern: y, Expr: ysVar}},
		Steps:   []core.Step{&core.WhereStep{Cond: equalsApp(intVar("x"), intVar("y"))}},
		Yield:   &core.Lit{Node: core.Node{Typ: types.Unit}, Kind: core.UnitLit},
	}
	nonEmptyFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.ListOf(types.Unit), types.Bool)}, MLName: "Relational.nonEmpty"}
	constraint := &core.Apply{Node: core.Node{Typ: types.Bool}, Fn: nonEmptyFn, Arg: sub}

	g, err := existsStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	require.Equal(t, "Exists/ExistsJoin", g.Strategy)
	from, ok := g.Source.(*core.From)
	require.True(t, ok)
	require.Len(t, from.Sources, 2)
}

func TestExistsStrategyKeepsLocalConjunctAsGuardWhenIndependent(t *testing.T) {
	x := idPat("x")
	y := idPat("y")
	ysVar := &core.Var{Node: core.Node{Typ: types.ListOf(types.Int)}, Name: "ys"}
	xEq5 := equalsApp(intVar("x"), intLit(5))
	yPos := binOpApp("Int.>", intVar("y"), intLit(0))
	sub := &core.From{
		Node:    core.Node{Typ: types.ListOf(types.Unit)},
		Sources: []core.Source{{Pattern: y, Expr: ysVar}},
		Steps:   []core.Step{&core.WhereStep{Cond: andAlsoApp(xEq5, yPos)}},
		Yield:   &core.Lit{Node: core.Node{Typ: types.Unit}, Kind: core.UnitLit},
	}
	nonEmptyFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.ListOf(types.Unit), types.Bool)}, MLName: "Relational.nonEmpty"}
	constraint := &core.Apply{Node: core.Node{Typ: types.Bool}, Fn: nonEmptyFn, Arg: sub}

	g, err := existsStrategy(NewCache(), x, constraint)
	require.NoError(t, err)
	require.Equal(t, "Exists/ExistsFilter", g.Strategy)
	require.NotNil(t, g.Guard)
}

func TestFunctionStrategyBuildsTransitiveClosureFromRegisteredFunction(t *testing.T) {
	aPat, bPat := idPat("a"), idPat("b")
	pPat, qPat := idPat("p"), idPat("q")
	pat := &core.TuplePattern{Elements: []core.Pattern{pPat, qPat}}
	pat.Typ = types.TupleOf(types.Int, types.Int)

	aVar, bVar := intVar("a"), intVar("b")
	zPat := idPat("z")
	zVar := intVar("z")
	edgesVar := &core.Var{Node: core.Node{Typ: types.ListOf(types.TupleOf(types.Int, types.Int))}, Name: "edges"}
	pairTuple := &core.Tuple{Node: core.Node{Typ: types.TupleOf(types.Int, types.Int)}, Elements: []core.Expr{aVar, bVar}}
	base := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(edgesVar.Type(), types.Bool)}, Fn: &core.FnLit{MLName: "List.member"}, Arg: pairTuple},
		Arg:  edgesVar,
	}
	edgeCall := binOpApp("Int.<=", aVar, zVar)
	pathCall := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Fn: &core.Var{Name: "path"}, Arg: zVar},
		Arg:  bVar,
	}
	stepCond := andAlsoApp(edgeCall, pathCall)
	subFrom := &core.From{
		Node:    core.Node{Typ: types.ListOf(types.Unit)},
		Sources: []core.Source{{Pattern: zPat, Expr: edgesVar}},
		Steps:   []core.Step{&core.WhereStep{Cond: stepCond}},
		Yield:   &core.Lit{Node: core.Node{Typ: types.Unit}, Kind: core.UnitLit},
	}
	subqueryExpr := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.FnLit{Node: core.Node{Typ: types.FnType(types.ListOf(types.Unit), types.Bool)}, MLName: "Relational.nonEmpty"},
		Arg:  subFrom,
	}
	body := orElseApp(base, subqueryExpr)
	fn := &core.Fn{Arms: []core.MatchArm{{Pattern: aPat, Body: &core.Fn{Arms: []core.MatchArm{{Pattern: bPat, Body: body}}}}}}

	c := NewCache()
	c.RegisterFunction("path", fn)

	pVar, qVar := intVar("p"), intVar("q")
	constraint := &core.Apply{Fn: &core.Apply{Fn: &core.Var{Name: "path"}, Arg: pVar}, Arg: qVar}

	g, err := functionStrategy(c, pat, constraint)
	require.NoError(t, err)
	require.Equal(t, "Function/transitive-closure", g.Strategy)
	require.Equal(t, CardinalityUnbounded, g.Cardinality)

	app, ok := g.Source.(*core.Apply)
	require.True(t, ok)
	inner, ok := app.Fn.(*core.Apply)
	require.True(t, ok)
	fnLit, ok := inner.Fn.(*core.FnLit)
	require.True(t, ok)
	require.Equal(t, "Relational.iterate", fnLit.MLName)
}

func TestFunctionStrategyUnrollsBoundedRecursion(t *testing.T) {
	aPat, bPat, nPat := idPat("a"), idPat("b"), idPat("n")
	pPat, qPat := idPat("p"), idPat("q")
	pat := &core.TuplePattern{Elements: []core.Pattern{pPat, qPat}}
	pat.Typ = types.TupleOf(types.Int, types.Int)

	aVar, bVar, nVar := intVar("a"), intVar("b"), intVar("n")
	zPat := idPat("z")
	zVar := intVar("z")
	edgesVar := &core.Var{Node: core.Node{Typ: types.ListOf(types.TupleOf(types.Int, types.Int))}, Name: "edges"}
	pairTuple := &core.Tuple{Node: core.Node{Typ: types.TupleOf(types.Int, types.Int)}, Elements: []core.Expr{aVar, bVar}}
	base := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(edgesVar.Type(), types.Bool)}, Fn: &core.FnLit{MLName: "List.member"}, Arg: pairTuple},
		Arg:  edgesVar,
	}
	edgeCall := binOpApp("Int.<=", aVar, zVar)
	pathCall := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Fn: &core.Apply{Fn: &core.Var{Name: "path"}, Arg: zVar}, Arg: bVar},
		Arg:  nVar,
	}
	stepCond := andAlsoApp(edgeCall, pathCall)
	subFrom := &core.From{
		Node:    core.Node{Typ: types.ListOf(types.Unit)},
		Sources: []core.Source{{Pattern: zPat, Expr: edgesVar}},
		Steps:   []core.Step{&core.WhereStep{Cond: stepCond}},
		Yield:   &core.Lit{Node: core.Node{Typ: types.Unit}, Kind: core.UnitLit},
	}
	subqueryExpr := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.FnLit{Node: core.Node{Typ: types.FnType(types.ListOf(types.Unit), types.Bool)}, MLName: "Relational.nonEmpty"},
		Arg:  subFrom,
	}
	guard := binOpApp("Int.>", nVar, intLit(0))
	body := andAlsoApp(guard, orElseApp(base, subqueryExpr))
	fn := &core.Fn{Arms: []core.MatchArm{{Pattern: aPat, Body: &core.Fn{Arms: []core.MatchArm{{Pattern: bPat, Body: &core.Fn{Arms: []core.MatchArm{{Pattern: nPat, Body: body}}}}}}}}}

	c := NewCache()
	c.RegisterFunction("path", fn)

	pVar, qVar := intVar("p"), intVar("q")
	constraint := &core.Apply{
		Fn:  &core.Apply{Fn: &core.Apply{Fn: &core.Var{Name: "path"}, Arg: pVar}, Arg: qVar},
		Arg: intLit(2),
	}

	g, err := functionStrategy(c, pat, constraint)
	require.NoError(t, err)
	require.Equal(t, "Function/bounded-recursion", g.Strategy)
	require.Equal(t, CardinalityBounded, g.Cardinality)

	app, ok := g.Source.(*core.Apply)
	require.True(t, ok)
	inner, ok := app.Fn.(*core.Apply)
	require.True(t, ok)
	fnLit, ok := inner.Fn.(*core.FnLit)
	require.True(t, ok)
	require.Equal(t, "@", fnLit.MLName)
}

func TestRecurseRejectsPastDepthBound(t *testing.T) {
	x := idPat("x")
	c := New(Limits{DepthBound: 0, UnrollingLimit: DefaultLimits.UnrollingLimit})

	_, err := c.recurse(x, equalsApp(intVar("x"), intLit(1)))
	require.ErrorIs(t, err, ErrNonInvertible)
}

func TestLoadLimitsParsesYAML(t *testing.T) {
	path := t.TempDir() + "/corec.yaml"
	content := []byte("depth_bound: 4\nunrolling_limit: 100\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	limits, err := LoadLimits(path)
	require.NoError(t, err)
	require.Equal(t, 4, limits.DepthBound)
	require.Equal(t, 100, limits.UnrollingLimit)
}

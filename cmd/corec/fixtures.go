package main

import (
	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/typemap"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// fixture is one hand-built surface-syntax tree this binary can run or
// check, standing in for whatever a parser would otherwise hand the
// resolver (none exists in this module; see internal/ast's package doc).
type fixture struct {
	Name        string
	Description string
	Build       func() (ast.Expr, typemap.TypeMap)
}

func litBool(v bool) *ast.Literal { return &ast.Literal{Kind: ast.BoolLit, Value: v} }
func litInt(v int) *ast.Literal   { return &ast.Literal{Kind: ast.IntLit, Value: v} }

var fixtures = []fixture{
	{
		Name:        "bool-exhaustive",
		Description: "case over a bool literal covering both true and false",
		Build: func() (ast.Expr, typemap.TypeMap) {
			tm := typemap.NewMapTypeMap()
			cond := litBool(true)
			tm.Set(cond, types.Bool)
			return &ast.Case{
				Scrutinee: cond,
				Arms: []ast.MatchClause{
					{Pattern: &ast.LiteralPat{Kind: ast.BoolLit, Value: true}, Body: litInt(1)},
					{Pattern: &ast.LiteralPat{Kind: ast.BoolLit, Value: false}, Body: litInt(0)},
				},
			}, tm
		},
	},
	{
		Name:        "bool-gap",
		Description: "case over a bool that only covers the true arm",
		Build: func() (ast.Expr, typemap.TypeMap) {
			tm := typemap.NewMapTypeMap()
			cond := litBool(true)
			tm.Set(cond, types.Bool)
			return &ast.Case{
				Scrutinee: cond,
				Arms: []ast.MatchClause{
					{Pattern: &ast.LiteralPat{Kind: ast.BoolLit, Value: true}, Body: litInt(1)},
				},
			}, tm
		},
	},
	{
		Name:        "list-gap",
		Description: "case over a list binding that only covers nil, missing ::",
		Build: func() (ast.Expr, typemap.TypeMap) {
			tm := typemap.NewMapTypeMap()
			xs := &ast.Ident{Name: "xs"}
			listType := types.ListOf(types.Int)
			tm.Set(xs, listType)
			binding := &ast.IdPat{Name: "xs"}
			body := &ast.Case{
				Scrutinee: xs,
				Arms: []ast.MatchClause{
					{Pattern: &ast.Con0Pat{Name: "nil"}, Body: litInt(0)},
				},
			}
			letExpr := &ast.Let{
				Bindings: []ast.LetBinding{{Pattern: binding, Value: &ast.ListExpr{}}},
				Body:     body,
			}
			return letExpr, tm
		},
	},
	{
		Name:        "unbound",
		Description: "a reference to an identifier nothing ever binds",
		Build: func() (ast.Expr, typemap.TypeMap) {
			tm := typemap.NewMapTypeMap()
			id := &ast.Ident{Name: "mystery"}
			tm.Set(id, types.NewTypeVar())
			return id, tm
		},
	},
	{
		Name:        "factorial",
		Description: "val rec factorial = fn n => if n = 0 then 1 else n * factorial(n-1)",
		Build: func() (ast.Expr, typemap.TypeMap) {
			tm := typemap.NewMapTypeMap()
			n := &ast.Ident{Name: "n"}
			eqZero := &ast.Apply{
				Func: &ast.Apply{Func: &ast.Ident{Name: "op ="}, Arg: n},
				Arg:  litInt(0),
			}
			nMinusOne := &ast.Apply{
				Func: &ast.Apply{Func: &ast.Ident{Name: "Int.-"}, Arg: n},
				Arg:  litInt(1),
			}
			recurse := &ast.Apply{Func: &ast.Ident{Name: "factorial"}, Arg: nMinusOne}
			product := &ast.Apply{
				Func: &ast.Apply{Func: &ast.Ident{Name: "Int.*"}, Arg: n},
				Arg:  recurse,
			}
			body := &ast.If{Cond: eqZero, Then: litInt(1), Else: product}
			fn := &ast.Lambda{Clauses: []ast.MatchClause{{Pattern: &ast.IdPat{Name: "n"}, Body: body}}}
			letExpr := &ast.Let{
				Rec:      true,
				Bindings: []ast.LetBinding{{Pattern: &ast.IdPat{Name: "factorial"}, Value: fn}},
				Body:     &ast.Ident{Name: "factorial"},
			}
			return letExpr, tm
		},
	},
}

func lookupFixture(name string) (fixture, bool) {
	for _, f := range fixtures {
		if f.Name == name {
			return f, true
		}
	}
	return fixture{}, false
}

// generatorFixture pairs a core.Pattern/constraint directly — generator
// synthesis works over already-resolved Core, one level below the
// fixtures above, so there is no AST/typemap step to go through. Functions
// holds any recursive val rec bindings the Constraint calls into, keyed by
// name exactly as Cache.RegisterFunction expects — the Function strategy
// has nothing to inline against until the caller registers them.
type generatorFixture struct {
	Name        string
	Description string
	Pattern     core.Pattern
	Constraint  core.Expr
	Functions   map[string]*core.Fn
}

// pathFn builds `val rec path = fn a => fn b => List.member (a, b) edges
// orelse (exists z where List.member (a, z) edges andalso path z b)`, the
// edge-relation transitive closure the Function strategy's
// transitive-closure shape recognizes.
func pathFn() *core.Fn {
	pairType := types.TupleOf(types.Int, types.Int)
	edgesVar := &core.Var{Node: core.Node{Typ: types.ListOf(pairType)}, Name: "edges"}
	aVar := &core.Var{Node: core.Node{Typ: types.Int}, Name: "a"}
	bVar := &core.Var{Node: core.Node{Typ: types.Int}, Name: "b"}
	zVar := &core.Var{Node: core.Node{Typ: types.Int}, Name: "z"}

	memberFn := &core.FnLit{Node: core.Node{Typ: types.FnType(pairType, types.FnType(types.ListOf(pairType), types.Bool))}, MLName: "List.member"}
	base := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.FnType(types.ListOf(pairType), types.Bool)},
			Fn:   memberFn,
			Arg:  &core.Tuple{Node: core.Node{Typ: pairType}, Elements: []core.Expr{aVar, bVar}},
		},
		Arg: edgesVar,
	}
	edgeCall := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.FnType(types.ListOf(pairType), types.Bool)},
			Fn:   memberFn,
			Arg:  &core.Tuple{Node: core.Node{Typ: pairType}, Elements: []core.Expr{aVar, zVar}},
		},
		Arg: edgesVar,
	}
	pathCall := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.Int, types.Bool)}, Fn: &core.Var{Name: "path"}, Arg: zVar},
		Arg:  bVar,
	}
	andFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.Bool, types.FnType(types.Bool, types.Bool))}, MLName: "andalso"}
	stepCond := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.Bool, types.Bool)}, Fn: andFn, Arg: edgeCall},
		Arg:  pathCall,
	}
	zPat := &core.IdPat{Name: "z"}
	zPat.Typ = types.Int
	sub := &core.From{
		Node:    core.Node{Typ: types.ListOf(types.Unit)},
		Sources: []core.Source{{Pattern: zPat, Expr: edgesVar}},
		Steps:   []core.Step{&core.WhereStep{Cond: stepCond}},
		Yield:   &core.Lit{Node: core.Node{Typ: types.Unit}, Kind: core.UnitLit},
	}
	nonEmptyFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.ListOf(types.Unit), types.Bool)}, MLName: "Relational.nonEmpty"}
	subqueryExpr := &core.Apply{Node: core.Node{Typ: types.Bool}, Fn: nonEmptyFn, Arg: sub}
	orFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.Bool, types.FnType(types.Bool, types.Bool))}, MLName: "orelse"}
	body := &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.Bool, types.Bool)}, Fn: orFn, Arg: base},
		Arg:  subqueryExpr,
	}

	aPat := &core.IdPat{Name: "a"}
	aPat.Typ = types.Int
	bPat := &core.IdPat{Name: "b"}
	bPat.Typ = types.Int
	innerType := types.FnType(types.Int, types.Bool)
	inner := &core.Fn{Node: core.Node{Typ: innerType}, Arms: []core.MatchArm{{Pattern: bPat, Body: body}}}
	outerType := types.FnType(types.Int, innerType)
	return &core.Fn{Node: core.Node{Typ: outerType}, Arms: []core.MatchArm{{Pattern: aPat, Body: inner}}}
}

var generatorFixtures = []generatorFixture{
	{
		Name:        "elem",
		Description: "x = 5, synthesized as x in [5]",
		Pattern:     &core.IdPat{Name: "x"},
		Constraint: &core.Apply{
			Fn:  &core.Apply{Fn: &core.FnLit{MLName: "op ="}, Arg: &core.Var{Name: "x"}},
			Arg: &core.Lit{Kind: core.IntLit, Value: 5},
		},
	},
	{
		Name:        "non-invertible",
		Description: "y = 5, synthesizing x: the constraint never mentions x",
		Pattern:     &core.IdPat{Name: "x"},
		Constraint: &core.Apply{
			Fn:  &core.Apply{Fn: &core.FnLit{MLName: "op ="}, Arg: &core.Var{Name: "y"}},
			Arg: &core.Lit{Kind: core.IntLit, Value: 5},
		},
	},
	{
		Name:        "path",
		Description: "path(p, q), synthesized via Relational.iterate over edges' transitive closure",
		Pattern: func() core.Pattern {
			pPat := &core.IdPat{Name: "p"}
			pPat.Typ = types.Int
			qPat := &core.IdPat{Name: "q"}
			qPat.Typ = types.Int
			pat := &core.TuplePattern{Elements: []core.Pattern{pPat, qPat}}
			pat.Typ = types.TupleOf(types.Int, types.Int)
			return pat
		}(),
		Constraint: &core.Apply{
			Node: core.Node{Typ: types.Bool},
			Fn: &core.Apply{
				Node: core.Node{Typ: types.FnType(types.Int, types.Bool)},
				Fn:   &core.Var{Name: "path"},
				Arg:  &core.Var{Node: core.Node{Typ: types.Int}, Name: "p"},
			},
			Arg: &core.Var{Node: core.Node{Typ: types.Int}, Name: "q"},
		},
		Functions: map[string]*core.Fn{"path": pathFn()},
	},
}

func lookupGeneratorFixture(name string) (generatorFixture, bool) {
	for _, f := range generatorFixtures {
		if f.Name == name {
			return f, true
		}
	}
	return generatorFixture{}, false
}

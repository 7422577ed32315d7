package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/typemap"
	"github.com/hydromatic/morel-sub000/internal/types"
)

func TestResolveLetSingleBindingProducesLet(t *testing.T) {
	tm := typemap.NewMapTypeMap()
	one := &ast.Literal{Kind: ast.IntLit, Value: 1}
	tm.Set(one, types.Int)
	xPat := &ast.IdPat{Name: "x"}
	tm.Set(xPat, types.Int)
	body := &ast.Ident{Name: "x"}
	tm.Set(body, types.Int)
	let := &ast.Let{Bindings: []ast.LetBinding{{Pattern: xPat, Value: one}}, Body: body}
	tm.Set(let, types.Int)

	res := NewResolver(tm)
	got := res.ResolveExpr(let, nil)

	coreLet, ok := got.(*core.Let)
	require.True(t, ok)
	idPat, ok := coreLet.Pattern.(*core.IdPat)
	require.True(t, ok)
	require.Equal(t, "x", idPat.Name)

	v, ok := coreLet.Body.(*core.Var)
	require.True(t, ok)
	require.Equal(t, idPat.Ordinal, v.Ordinal)
}

func TestValRecDemotesWhenNoFreeSelfReference(t *testing.T) {
	tm := typemap.NewMapTypeMap()
	one := &ast.Literal{Kind: ast.IntLit, Value: 1}
	tm.Set(one, types.Int)
	fPat := &ast.IdPat{Name: "f"}
	tm.Set(fPat, types.Int)
	body := &ast.Ident{Name: "f"}
	tm.Set(body, types.Int)
	let := &ast.Let{Rec: true, Bindings: []ast.LetBinding{{Pattern: fPat, Value: one}}, Body: body}
	tm.Set(let, types.Int)

	res := NewResolver(tm)
	got := res.ResolveExpr(let, nil)

	_, isLet := got.(*core.Let)
	require.True(t, isLet, "val rec with no self-reference should demote to Let")
}

func TestValRecKeepsRecursionWhenSelfReferenced(t *testing.T) {
	tm := typemap.NewMapTypeMap()
	fPat := &ast.IdPat{Name: "f"}
	tm.Set(fPat, types.NewTypeVar())
	selfCall := &ast.Ident{Name: "f"}
	tm.Set(selfCall, types.Int)
	lambda := &ast.Lambda{Clauses: []ast.MatchClause{{Pattern: &ast.WildcardPat{}, Body: selfCall}}}
	tm.Set(lambda, types.NewTypeVar())
	body := &ast.Ident{Name: "f"}
	tm.Set(body, types.Int)
	let := &ast.Let{Rec: true, Bindings: []ast.LetBinding{{Pattern: fPat, Value: lambda}}, Body: body}
	tm.Set(let, types.Int)

	res := NewResolver(tm)
	got := res.ResolveExpr(let, nil)

	_, isRec := got.(*core.RecValDecl)
	require.True(t, isRec, "val rec referencing itself must stay a RecValDecl")
}

func TestResolveIfDesugarsToCase(t *testing.T) {
	tm := typemap.NewMapTypeMap()
	cond := &ast.Literal{Kind: ast.BoolLit, Value: true}
	tm.Set(cond, types.Bool)
	thenE := &ast.Literal{Kind: ast.IntLit, Value: 1}
	tm.Set(thenE, types.Int)
	elseE := &ast.Literal{Kind: ast.IntLit, Value: 2}
	tm.Set(elseE, types.Int)
	ifExpr := &ast.If{Cond: cond, Then: thenE, Else: elseE}
	tm.Set(ifExpr, types.Int)

	res := NewResolver(tm)
	got := res.ResolveExpr(ifExpr, nil)

	c, ok := got.(*core.Case)
	require.True(t, ok)
	require.Len(t, c.Arms, 2)
}

func TestResolveFromWithNoYieldProducesImplicitAtom(t *testing.T) {
	tm := typemap.NewMapTypeMap()
	xsIdent := &ast.Ident{Name: "xs"}
	tm.Set(xsIdent, types.BagOf(types.Int))
	xPat := &ast.IdPat{Name: "x"}
	tm.Set(xPat, types.Int)
	from := &ast.FromExpr{Sources: []ast.FromSource{{Pattern: xPat, Expr: xsIdent}}}
	tm.Set(from, types.BagOf(types.Int))

	res := NewResolver(tm)
	var env0 *env.Env
	env0 = env0.Bind(env.Binding{Name: "xs", Type: types.BagOf(types.Int)})

	got := res.ResolveExpr(from, env0)

	coreFrom, ok := got.(*core.From)
	require.True(t, ok)
	_, yieldIsVar := coreFrom.Yield.(*core.Var)
	require.True(t, yieldIsVar)
}

func TestResolveIdentReportsUnboundInsteadOfPanicking(t *testing.T) {
	tm := typemap.NewMapTypeMap()
	id := &ast.Ident{Name: "mystery"}
	tm.Set(id, types.NewTypeVar())

	res := NewResolver(tm)
	got := res.ResolveExpr(id, nil)

	v, ok := got.(*core.Var)
	require.True(t, ok, "unbound identifier should resolve to a placeholder Var, not panic")
	require.Equal(t, "mystery", v.Name)

	errs := res.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, "RSV001", errs[0].Code)
	require.Equal(t, "mystery", errs[0].Data["name"])
}

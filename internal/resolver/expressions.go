package resolver

import (
	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/builtins"
	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// ResolveExpr translates a surface expression into Core, consulting e for
// the ordinal of every free identifier it encounters.
func (r *R) ResolveExpr(x ast.Expr, e *env.Env) core.Expr {
	node := core.Node{Typ: r.nodeType(x)}
	switch expr := x.(type) {
	case *ast.Literal:
		return &core.Lit{Node: node, Kind: core.LitKind(expr.Kind), Value: expr.Value}

	case *ast.Ident:
		return r.resolveIdent(expr, node, e)

	case *ast.Lambda:
		arms := make([]core.MatchArm, len(expr.Clauses))
		for i, c := range expr.Clauses {
			arms[i] = r.resolveClause(c, e)
		}
		return &core.Fn{Node: node, Arms: arms}

	case *ast.Apply:
		return &core.Apply{Node: node, Fn: r.ResolveExpr(expr.Func, e), Arg: r.ResolveExpr(expr.Arg, e)}

	case *ast.Tuple:
		elems := make([]core.Expr, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = r.ResolveExpr(el, e)
		}
		return &core.Tuple{Node: node, Elements: elems}

	case *ast.Record:
		return r.resolveRecord(expr, node, e)

	case *ast.RecordSelector:
		return &core.RecordSelector{Node: node, Field: expr.Field, Record: r.ResolveExpr(expr.Record, e)}

	case *ast.ListExpr:
		return r.resolveList(expr, e)

	case *ast.If:
		return r.resolveIf(expr, node, e)

	case *ast.Case:
		arms := make([]core.MatchArm, len(expr.Arms))
		for i, c := range expr.Arms {
			arms[i] = r.resolveClause(c, e)
		}
		return &core.Case{Node: node, Scrutinee: r.ResolveExpr(expr.Scrutinee, e), Arms: arms}

	case *ast.Let:
		return r.resolveLet(expr, e)

	case *ast.Local:
		return r.resolveLocal(expr, e)

	case *ast.FromExpr:
		return r.resolveFrom(expr, e)

	case *ast.ExistsExpr:
		from := r.resolveFrom(expr.Query, e)
		return applyBuiltin("Relational.nonEmpty", node, from)

	case *ast.ForallExpr:
		return r.resolveForall(expr, node, e)

	default:
		panic("resolver: unhandled expression kind")
	}
}

func (r *R) resolveIdent(id *ast.Ident, node core.Node, e *env.Env) core.Expr {
	if b, ok := e.GetOpt(id.Name, 0); ok {
		return &core.Var{Node: node, Name: id.Name, Ordinal: b.Ordinal}
	}
	// id.Name is already structure-qualified ("Int.+") for built-ins other
	// than General, whose entries register under their bare name.
	if entry, ok := builtins.Lookup(id.Name); ok {
		return &core.FnLit{Node: node, MLName: entry.QualifiedName()}
	}
	r.report(corerr.RSV001, "resolve", "unbound identifier: "+id.Name).
		WithData("name", id.Name)
	// Resolution continues rather than aborting the whole pass: a Var with
	// no binding stands in for the unresolved name so the rest of the
	// program still gets translated and any further errors in it surface
	// in the same pass.
	return &core.Var{Node: node, Name: id.Name, Ordinal: -1}
}

func (r *R) resolveClause(c ast.MatchClause, e *env.Env) core.MatchArm {
	pat := r.ResolvePattern(c.Pattern)
	inner := bindPatternVars(e, pat)
	var guard core.Expr
	if c.Guard != nil {
		guard = r.ResolveExpr(c.Guard, inner)
	}
	return core.MatchArm{Pattern: pat, Guard: guard, Body: r.ResolveExpr(c.Body, inner)}
}

// bindPatternVars extends e with one env.Binding per identifier pat binds,
// so the bodies of clauses that use it can resolve those names to the
// ordinals ResolvePattern just minted.
func bindPatternVars(e *env.Env, pat core.Pattern) *env.Env {
	switch p := pat.(type) {
	case *core.IdPat:
		return e.Bind(env.Binding{Name: p.Name, Ordinal: p.Ordinal, Type: p.Typ})
	case *core.AsPat:
		e = e.Bind(env.Binding{Name: p.Name, Ordinal: p.Ordinal, Type: p.Typ})
		return bindPatternVars(e, p.Sub)
	case *core.TuplePattern:
		for _, el := range p.Elements {
			e = bindPatternVars(e, el)
		}
		return e
	case *core.RecordPattern:
		for _, f := range p.Fields {
			e = bindPatternVars(e, f.Pattern)
		}
		return e
	case *core.ConPat:
		return bindPatternVars(e, p.Payload)
	case *core.ConsPat:
		e = bindPatternVars(e, p.Head)
		return bindPatternVars(e, p.Tail)
	default:
		return e
	}
}

func (r *R) resolveIf(expr *ast.If, node core.Node, e *env.Env) core.Expr {
	truePat := &core.LitPattern{Kind: core.BoolLit, Value: true}
	falsePat := &core.LitPattern{Kind: core.BoolLit, Value: false}
	truePat.Typ, falsePat.Typ = types.Bool, types.Bool
	return &core.Case{
		Node:      node,
		Scrutinee: r.ResolveExpr(expr.Cond, e),
		Arms: []core.MatchArm{
			{Pattern: truePat, Body: r.ResolveExpr(expr.Then, e)},
			{Pattern: falsePat, Body: r.ResolveExpr(expr.Else, e)},
		},
	}
}

func (r *R) resolveRecord(expr *ast.Record, node core.Node, e *env.Env) core.Expr {
	fields := map[string]core.Expr{}
	if expr.Base != nil {
		// `{ base with f1 = v1, ... }`: pull every field of base's record
		// type through a selector, then overlay the explicit fields (§4.5).
		baseExpr := r.ResolveExpr(expr.Base, e)
		if names, ok := r.st.tm.TypeFieldNames(exprNodeOf(expr.Base)); ok {
			for _, name := range names {
				fields[name] = &core.RecordSelector{Field: name, Record: baseExpr}
			}
		}
	}
	order := make([]string, 0, len(fields)+len(expr.Fields))
	for name := range fields {
		order = append(order, name)
	}
	for _, f := range expr.Fields {
		if _, existed := fields[f.Name]; !existed {
			order = append(order, f.Name)
		}
		fields[f.Name] = r.ResolveExpr(f.Value, e)
	}
	sorted := types.SortedFieldNames(order)
	exps := make([]core.Expr, len(sorted))
	for i, name := range sorted {
		exps[i] = fields[name]
	}
	return &core.Tuple{Node: node, Elements: exps}
}

// exprNodeOf recovers the ast.Node key the TypeMap was populated under for
// an expression; ast.Expr already satisfies ast.Node.
func exprNodeOf(x ast.Expr) ast.Node { return x }

func (r *R) resolveList(expr *ast.ListExpr, e *env.Env) core.Expr {
	elemType := types.NewTypeVar()
	listType := types.ListOf(elemType)
	result := core.Expr(&core.FnLit{Node: core.Node{Typ: listType}, MLName: "nil"})
	for i := len(expr.Elements) - 1; i >= 0; i-- {
		head := r.ResolveExpr(expr.Elements[i], e)
		result = &core.Apply{
			Node: core.Node{Typ: listType},
			Fn:   &core.Apply{Node: core.Node{Typ: listType}, Fn: &core.FnLit{MLName: "::"}, Arg: head},
			Arg:  result,
		}
	}
	return result
}

func applyBuiltin(name string, node core.Node, arg core.Expr) core.Expr {
	return &core.Apply{Node: node, Fn: &core.FnLit{Node: core.Node{Typ: types.FnType(arg.Type(), node.Typ)}, MLName: name}, Arg: arg}
}

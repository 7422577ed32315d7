package resolver

import (
	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// resolveFrom translates a surface query pipeline into core.From (§4.5).
// Every source pattern is bound in the environment used by every
// subsequent source, step and the final yield, matching the left-to-right
// scoping `from x in xs, y in ys` gives each successive source.
func (r *R) resolveFrom(q *ast.FromExpr, e *env.Env) core.Expr {
	sources := make([]core.Source, len(q.Sources))
	scanEnv := e
	var scanPats []core.Pattern
	for i, s := range q.Sources {
		src := r.ResolveExpr(s.Expr, scanEnv)
		if s.IsPoint {
			// `p = expr` is sugar for `scan p in [expr]` (§4.5).
			elemType := src.Type()
			src = &core.Apply{
				Node: core.Node{Typ: types.ListOf(elemType)},
				Fn:   &core.Apply{Fn: &core.FnLit{MLName: "::"}, Arg: src},
				Arg:  &core.FnLit{MLName: "nil"},
			}
		}
		pat := r.ResolvePattern(s.Pattern)
		scanEnv = bindPatternVars(scanEnv, pat)
		sources[i] = core.Source{Pattern: pat, Expr: src}
		scanPats = append(scanPats, pat)
	}

	steps := make([]core.Step, 0, len(q.Steps))
	stepEnv := scanEnv
	for _, s := range q.Steps {
		step, nextEnv := r.resolveStep(s, stepEnv)
		steps = append(steps, step)
		stepEnv = nextEnv
	}

	var yield core.Expr
	if q.Yield != nil {
		yield = r.ResolveExpr(q.Yield, stepEnv)
	} else {
		// No explicit yield: produce the record-or-atom of every bound
		// source pattern, record-style (§4.6).
		vars := make([]core.Expr, len(scanPats))
		for i, p := range scanPats {
			vars[i] = varOfPattern(p)
		}
		yield = core.RecordOrAtom(vars)
	}

	from := &core.From{
		Node:    core.Node{Typ: types.BagOf(yield.Type())},
		Sources: sources,
		Steps:   steps,
		Yield:   yield,
	}

	if q.Into != nil {
		into := r.ResolveExpr(q.Into, e)
		return &core.Apply{Node: core.Node{Typ: into.Type()}, Fn: into, Arg: from}
	}
	return from
}

// varOfPattern builds the Var expression that reads back an already-bound
// pattern — used when a from-query has no explicit yield and needs to
// re-read its scan variables.
func varOfPattern(p core.Pattern) core.Expr {
	switch pat := p.(type) {
	case *core.IdPat:
		return &core.Var{Node: core.Node{Typ: pat.Typ}, Name: pat.Name, Ordinal: pat.Ordinal}
	case *core.TuplePattern:
		elems := make([]core.Expr, len(pat.Elements))
		for i, el := range pat.Elements {
			elems[i] = varOfPattern(el)
		}
		return &core.Tuple{Node: core.Node{Typ: pat.Typ}, Elements: elems}
	default:
		panic("resolver: from-source pattern too complex for an implicit yield")
	}
}

func (r *R) resolveStep(s ast.Step, e *env.Env) (core.Step, *env.Env) {
	switch st := s.(type) {
	case *ast.ScanStep:
		pat := r.ResolvePattern(st.Pattern)
		val := r.ResolveExpr(st.Expr, e)
		inner := bindPatternVars(e, pat)
		var cond core.Expr
		if st.Cond != nil {
			cond = r.ResolveExpr(st.Cond, inner)
		}
		return &core.ScanStep{Pattern: pat, Expr: val, Cond: cond}, inner
	case *ast.WhereStep:
		return &core.WhereStep{Cond: r.ResolveExpr(st.Cond, e)}, e
	case *ast.YieldStep:
		return &core.YieldStep{Value: r.ResolveExpr(st.Value, e)}, e
	case *ast.OrderStep:
		keys := make([]core.OrderKey, len(st.Keys))
		for i, k := range st.Keys {
			keys[i] = core.OrderKey{Expr: r.ResolveExpr(k.Expr, e), Descending: k.Descending}
		}
		return &core.OrderStep{Keys: keys}, e
	case *ast.GroupStep:
		keys := make([]core.NamedExpr, len(st.Keys))
		groupEnv := e
		for i, k := range st.Keys {
			keys[i] = core.NamedExpr{Name: k.Name, Value: r.ResolveExpr(k.Value, e)}
		}
		computes := make([]core.NamedExpr, len(st.Computes))
		for i, c := range st.Computes {
			computes[i] = core.NamedExpr{Name: c.Name, Value: r.ResolveExpr(c.Value, e)}
		}
		// After `group`, only the key and aggregate names remain in scope.
		for _, k := range st.Keys {
			groupEnv = groupEnv.Bind(env.Binding{Name: k.Name, Ordinal: r.freshOrdinal()})
		}
		for _, c := range st.Computes {
			groupEnv = groupEnv.Bind(env.Binding{Name: c.Name, Ordinal: r.freshOrdinal()})
		}
		return &core.GroupStep{Keys: keys, Computes: computes}, groupEnv
	case *ast.ComputeStep:
		return &core.ComputeStep{Name: st.Name, Value: r.ResolveExpr(st.Value, e)}, e
	case *ast.DistinctStep:
		return &core.DistinctStep{}, e
	case *ast.SkipStep:
		return &core.SkipStep{Count: r.ResolveExpr(st.Count, e)}, e
	case *ast.TakeStep:
		return &core.TakeStep{Count: r.ResolveExpr(st.Count, e)}, e
	case *ast.RequireStep:
		return &core.RequireStep{Cond: r.ResolveExpr(st.Cond, e)}, e
	case *ast.ThroughStep:
		pat := r.ResolvePattern(st.Pattern)
		fn := r.ResolveExpr(st.Func, e)
		return &core.ThroughStep{Pattern: pat, Func: fn}, bindPatternVars(e, pat)
	default:
		panic("resolver: unhandled query step kind")
	}
}

// resolveForall translates `forall q require e` into
// `Relational.empty (from-body require e)` (§4.5): the query's own rows are
// the candidates, and e is appended as a RequireStep. A candidate row
// violates the `forall` exactly when e is false on it, so the query
// simplifier and generator both treat RequireStep's condition as
// the gate that must hold — equivalently, the whole `from` is non-empty
// (and so `Relational.empty` returns false) iff some row fails e.
func (r *R) resolveForall(expr *ast.ForallExpr, node core.Node, e *env.Env) core.Expr {
	augmented := *expr.Query
	augmented.Steps = append(append([]ast.Step{}, expr.Query.Steps...), &ast.RequireStep{Cond: expr.Require})
	from := r.resolveFrom(&augmented, e)
	return applyBuiltin("Relational.empty", node, from)
}

package resolver

import (
	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// resolveLet flattens a (possibly multi-binding) surface `let` into one
// Core Let (§4.5): `let val a=e1 and b=e2 in body` binds the tuple pattern
// (a, b) to the tuple (e1, e2) so a and b become visible together, the
// way simultaneous `and` bindings require (neither sees the other). A
// single binding takes the direct, non-tupled path. `val rec` is demoted
// to a plain Let when its right-hand side has no free reference to the
// name(s) it binds (§4.5, §9).
func (r *R) resolveLet(let *ast.Let, e *env.Env) core.Expr {
	if len(let.Bindings) == 1 {
		return r.resolveSingleBinding(let.Rec, let.Bindings[0], let.Body, e)
	}
	return r.resolveMultiBinding(let.Rec, let.Bindings, let.Body, e)
}

func (r *R) resolveSingleBinding(rec bool, b ast.LetBinding, body ast.Expr, e *env.Env) core.Expr {
	if rec && !freeRefInExpr(binderNames(b.Pattern), b.Value) {
		rec = false
	}
	if rec {
		pat := r.ResolvePattern(b.Pattern)
		inner := bindPatternVars(e, pat)
		value := r.ResolveExpr(b.Value, inner)
		return &core.RecValDecl{Pattern: pat, Value: value, Body: r.ResolveExpr(body, inner)}
	}
	value := r.ResolveExpr(b.Value, e)
	pat := r.ResolvePattern(b.Pattern)
	inner := bindPatternVars(e, pat)
	return &core.Let{Pattern: pat, Value: value, Body: r.ResolveExpr(body, inner)}
}

func (r *R) resolveMultiBinding(rec bool, bindings []ast.LetBinding, body ast.Expr, e *env.Env) core.Expr {
	// Build the tuple of values first (in the outer environment unless
	// recursive, in which case every bound name must already be visible).
	var names []string
	for _, b := range bindings {
		names = append(names, binderNames(b.Pattern)...)
	}
	anyFree := false
	if rec {
		for _, b := range bindings {
			if freeRefInExpr(names, b.Value) {
				anyFree = true
				break
			}
		}
	}
	rec = rec && anyFree

	patterns := make([]core.Pattern, len(bindings))
	evalEnv := e
	if rec {
		// Pre-resolve patterns so every binding's ordinal is visible to
		// every value expression (mutual recursion).
		for i, b := range bindings {
			patterns[i] = r.ResolvePattern(b.Pattern)
			evalEnv = bindPatternVars(evalEnv, patterns[i])
		}
		values := make([]core.Expr, len(bindings))
		for i, b := range bindings {
			values[i] = r.ResolveExpr(b.Value, evalEnv)
		}
		tuplePat := &core.TuplePattern{Elements: patterns}
		tupleVal := &core.Tuple{Elements: values}
		return &core.RecValDecl{Pattern: tuplePat, Value: tupleVal, Body: r.ResolveExpr(body, evalEnv)}
	}

	values := make([]core.Expr, len(bindings))
	for i, b := range bindings {
		values[i] = r.ResolveExpr(b.Value, e)
	}
	for i, b := range bindings {
		patterns[i] = r.ResolvePattern(b.Pattern)
		evalEnv = bindPatternVars(evalEnv, patterns[i])
	}
	tuplePat := &core.TuplePattern{Elements: patterns}
	tupleVal := &core.Tuple{Elements: values}
	return &core.Let{Pattern: tuplePat, Value: tupleVal, Body: r.ResolveExpr(body, evalEnv)}
}

func (r *R) resolveLocal(local *ast.Local, e *env.Env) core.Expr {
	dts := make([]*types.DataType, len(local.Datatypes))
	for i, d := range local.Datatypes {
		dts[i] = resolveDatatypeDecl(d)
	}
	return &core.Local{Datatypes: dts, Body: r.ResolveExpr(local.Body, e)}
}

func resolveDatatypeDecl(d *ast.DatatypeDecl) *types.DataType {
	ctors := make([]types.Constructor, len(d.Constructors))
	for i, c := range d.Constructors {
		var payload types.Type
		if c.Payload != nil {
			payload = resolveTypeExpr(c.Payload)
		}
		ctors[i] = types.Constructor{Name: c.Name, Payload: payload}
	}
	return &types.DataType{Name: d.Name, Params: append([]string(nil), d.Params...), Constructors: ctors}
}

// resolveTypeExpr converts a surface type annotation to its runtime Type.
// Only the shapes a datatype payload can take are handled: named types
// (including type-variable references and nullary constructors like
// `int`) and tuples; the full surface type grammar is the inferencer's
// concern.
func resolveTypeExpr(t ast.TypeExpr) types.Type {
	switch te := t.(type) {
	case *ast.NamedType:
		if len(te.Args) == 0 {
			switch te.Name {
			case "int":
				return types.Int
			case "bool":
				return types.Bool
			case "real":
				return types.Real
			case "string":
				return types.String
			case "char":
				return types.Char
			case "unit":
				return types.Unit
			default:
				return types.NewTypeVar()
			}
		}
		if te.Name == "list" && len(te.Args) == 1 {
			return types.ListOf(resolveTypeExpr(te.Args[0]))
		}
		return types.NewTypeVar()
	case *ast.TupleTypeExpr:
		elems := make([]types.Type, len(te.Elements))
		for i, el := range te.Elements {
			elems[i] = resolveTypeExpr(el)
		}
		return types.TupleOf(elems...)
	default:
		return types.NewTypeVar()
	}
}

func binderNames(p ast.Pat) []string {
	switch pat := p.(type) {
	case *ast.IdPat:
		return []string{pat.Name}
	case *ast.AsPat:
		return append([]string{pat.Name}, binderNames(pat.Sub)...)
	case *ast.TuplePat:
		var out []string
		for _, el := range pat.Elements {
			out = append(out, binderNames(el)...)
		}
		return out
	case *ast.RecordPat:
		var out []string
		for _, f := range pat.Fields {
			out = append(out, binderNames(f.Pattern)...)
		}
		return out
	case *ast.ConPat:
		return binderNames(pat.Payload)
	case *ast.ConsPat:
		return append(binderNames(pat.Head), binderNames(pat.Tail)...)
	default:
		return nil
	}
}

package core

import "github.com/hydromatic/morel-sub000/internal/types"

// IsCallTo reports whether exp is a direct application of the built-in
// named name to one argument, e.g. IsCallTo(e, "Relational.nonEmpty"). A
// curried application such as `name a b` is not matched.
func IsCallTo(exp Expr, name string) bool {
	_, ok := headCallArg(exp, name)
	return ok
}

// headCallArg returns the argument of exp when exp is an Apply whose Fn is
// the built-in named name, or (nil, false) otherwise.
func headCallArg(exp Expr, name string) (Expr, bool) {
	app, ok := exp.(*Apply)
	if !ok {
		return nil, false
	}
	if fn, ok := app.Fn.(*FnLit); ok && fn.MLName == name {
		return app.Arg, true
	}
	return nil, false
}

// andAlso builds the right-associated conjunction of xs. Panics on an
// empty slice; callers with zero conjuncts should substitute the literal
// `true` themselves, since the identity element depends on the caller's
// Node/type bookkeeping.
func andAlso(xs []Expr) Expr {
	if len(xs) == 0 {
		panic("core: andAlso of empty slice")
	}
	result := xs[len(xs)-1]
	for i := len(xs) - 2; i >= 0; i-- {
		andFn := &FnLit{Node: Node{Typ: types.FnType(types.Bool, types.FnType(types.Bool, types.Bool))}, MLName: "andalso"}
		result = &Apply{
			Node: Node{Typ: types.Bool},
			Fn: &Apply{
				Node: Node{Typ: types.FnType(types.Bool, types.Bool)},
				Fn:   andFn,
				Arg:  xs[i],
			},
			Arg: result,
		}
	}
	return result
}

// DecomposeAnd splits a conjunction built by andalso back into its
// conjuncts, in left-to-right order. A non-conjunction returns a
// single-element slice containing exp itself (§8.2: decomposeAnd(andAlso(xs))
// = xs for any non-empty xs whose elements are not themselves conjunctions).
func DecomposeAnd(exp Expr) []Expr {
	var out []Expr
	FlattenAnd(exp, &out)
	return out
}

// FlattenAnd appends exp's conjuncts to sink, recursing into nested
// `andalso` applications so the result is fully flattened regardless of
// associativity.
func FlattenAnd(exp Expr, sink *[]Expr) {
	if app, ok := exp.(*Apply); ok {
		if inner, ok := app.Fn.(*Apply); ok {
			if fn, ok := inner.Fn.(*FnLit); ok && fn.MLName == "andalso" {
				FlattenAnd(inner.Arg, sink)
				FlattenAnd(app.Arg, sink)
				return
			}
		}
	}
	*sink = append(*sink, exp)
}

// DecomposeOr is the `orelse` analogue of DecomposeAnd.
func DecomposeOr(exp Expr) []Expr {
	var out []Expr
	flattenOr(exp, &out)
	return out
}

func flattenOr(exp Expr, sink *[]Expr) {
	if app, ok := exp.(*Apply); ok {
		if inner, ok := app.Fn.(*Apply); ok {
			if fn, ok := inner.Fn.(*FnLit); ok && fn.MLName == "orelse" {
				flattenOr(inner.Arg, sink)
				flattenOr(app.Arg, sink)
				return
			}
		}
	}
	*sink = append(*sink, exp)
}

// ToPat converts an irrefutable expression (built only from Var, Tuple,
// and RecordSelector-free record construction) into the equivalent
// pattern, for use where the generator needs to re-bind a scan variable
// as a pattern. Panics if exp is not of a convertible shape; callers are
// expected to have established convertibility before calling (§8.2:
// toPat(exp(pat)) = pat for every pat the resolver itself produces via
// the inverse direction, so this only needs to handle that image).
func ToPat(exp Expr) Pattern {
	switch e := exp.(type) {
	case *Var:
		return &IdPat{patBase: patBase{Typ: e.Typ}, Name: e.Name, Ordinal: e.Ordinal}
	case *Tuple:
		elems := make([]Pattern, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = ToPat(el)
		}
		return &TuplePattern{patBase: patBase{Typ: e.Typ}, Elements: elems}
	default:
		panic("core: ToPat of non-convertible expression")
	}
}

// RecordOrAtomPat wraps a slice of patterns as a TuplePattern when there is
// more than one, or returns the lone pattern unwrapped when there is
// exactly one — the "record-or-atom" convention used wherever a from-step
// may bind a single variable or a multi-source tuple (§4.5/§4.6).
func RecordOrAtomPat(pats []Pattern) Pattern {
	if len(pats) == 1 {
		return pats[0]
	}
	return &TuplePattern{Elements: pats}
}

// RecordOrAtom is the expression-level counterpart of RecordOrAtomPat.
func RecordOrAtom(exps []Expr) Expr {
	if len(exps) == 1 {
		return exps[0]
	}
	return &Tuple{Elements: exps}
}

// WithOrdered toggles whether a RecordType/TuplePattern-bearing node is
// considered field-ordered for display purposes versus canonically
// sorted; Core keeps this as a no-op marker here since ordering is fixed
// structurally by types.RecordType (§3.1 canonical order is absolute, not
// display-dependent) — WithOrdered therefore only ever threads the flag
// through unchanged and exists so resolver code that toggles ordered-ness
// while building a From's Yield has a single place to do so (§8.2:
// withOrdered(true, withOrdered(false, xs)) = xs, trivially, since both
// calls are identity on exp and only matter for tests asserting the
// round-trip contract holds for a no-op implementation too).
func WithOrdered(_ bool, exp Expr) Expr { return exp }

// Simplify applies the Core simplification rules (§4.3, §9): constant
// folding of andalso/orelse over literal booleans, unwrapping a
// single-arm Case over an irrefutable pattern into a Let, and simplifying
// the elements of a Tuple in place (nested tuples are not flattened).
// Simplify deliberately does NOT fold `not (x = v)` into `x <> v` (§9 Open
// Question 3): the literal `not (=)` shape is left as written.
func Simplify(exp Expr) Expr {
	switch e := exp.(type) {
	case *Apply:
		return simplifyApply(e)
	case *Case:
		return simplifyCase(e)
	case *Let:
		return &Let{Node: e.Node, Pattern: e.Pattern, Value: Simplify(e.Value), Body: Simplify(e.Body)}
	case *Tuple:
		elems := make([]Expr, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = Simplify(el)
		}
		return &Tuple{Node: e.Node, Elements: elems}
	default:
		return exp
	}
}

func simplifyApply(e *Apply) Expr {
	fn := Simplify(e.Fn)
	arg := Simplify(e.Arg)
	if inner, ok := fn.(*Apply); ok {
		if head, ok := inner.Fn.(*FnLit); ok {
			left := Simplify(inner.Arg)
			if lit, ok := left.(*Lit); ok && lit.Kind == BoolLit {
				b := lit.Value.(bool)
				switch head.MLName {
				case "andalso":
					if !b {
						return left
					}
					return arg
				case "orelse":
					if b {
						return left
					}
					return arg
				}
			}
			return &Apply{Node: e.Node, Fn: &Apply{Node: inner.Node, Fn: head, Arg: left}, Arg: arg}
		}
	}
	return &Apply{Node: e.Node, Fn: fn, Arg: arg}
}

func simplifyCase(e *Case) Expr {
	scrutinee := Simplify(e.Scrutinee)
	if len(e.Arms) == 1 && e.Arms[0].Guard == nil && isIrrefutable(e.Arms[0].Pattern) {
		return &Let{Node: e.Node, Pattern: e.Arms[0].Pattern, Value: scrutinee, Body: Simplify(e.Arms[0].Body)}
	}
	arms := make([]MatchArm, len(e.Arms))
	for i, a := range e.Arms {
		arms[i] = MatchArm{Pattern: a.Pattern, Guard: a.Guard, Body: Simplify(a.Body)}
	}
	return &Case{Node: e.Node, Scrutinee: scrutinee, Arms: arms}
}

func isIrrefutable(p Pattern) bool {
	switch pat := p.(type) {
	case *WildcardPattern, *IdPat:
		return true
	case *AsPat:
		return isIrrefutable(pat.Sub)
	case *TuplePattern:
		for _, el := range pat.Elements {
			if !isIrrefutable(el) {
				return false
			}
		}
		return true
	case *RecordPattern:
		for _, f := range pat.Fields {
			if !isIrrefutable(f.Pattern) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

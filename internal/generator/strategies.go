package generator

import (
	"fmt"

	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// equalsCall recognizes an application chain `= a b` (built-in equality,
// registered bare as "op =" under General) and returns its two sides.
func equalsCall(exp core.Expr, opName string) (left, right core.Expr, ok bool) {
	app, isApply := exp.(*core.Apply)
	if !isApply {
		return nil, nil, false
	}
	inner, isApply := app.Fn.(*core.Apply)
	if !isApply {
		return nil, nil, false
	}
	fn, isFnLit := inner.Fn.(*core.FnLit)
	if !isFnLit || fn.MLName != opName {
		return nil, nil, false
	}
	return inner.Arg, app.Arg, true
}

// anyBinApp recognizes any two-argument built-in application `op a b` and
// returns the built-in's name alongside its two operands, regardless of
// which built-in it is — the Range strategy below needs to try four
// comparison operators instead of one fixed name.
func anyBinApp(exp core.Expr) (opName string, left, right core.Expr, ok bool) {
	app, isApply := exp.(*core.Apply)
	if !isApply {
		return "", nil, nil, false
	}
	inner, isApply := app.Fn.(*core.Apply)
	if !isApply {
		return "", nil, nil, false
	}
	fn, isFnLit := inner.Fn.(*core.FnLit)
	if !isFnLit {
		return "", nil, nil, false
	}
	return fn.MLName, inner.Arg, app.Arg, true
}

// eqApp builds `= left right`, typed Bool. (Named to avoid colliding with
// the test package's own equalsApp helper.)
func eqApp(left, right core.Expr) core.Expr {
	eqFn := &core.FnLit{Node: core.Node{Typ: types.FnType(left.Type(), types.FnType(right.Type(), types.Bool))}, MLName: "op ="}
	return &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(right.Type(), types.Bool)}, Fn: eqFn, Arg: left},
		Arg:  right,
	}
}

// orElseApp builds `left orelse right`, typed Bool.
func orElseApp(left, right core.Expr) core.Expr {
	orFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.Bool, types.FnType(types.Bool, types.Bool))}, MLName: "orelse"}
	return &core.Apply{
		Node: core.Node{Typ: types.Bool},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.Bool, types.Bool)}, Fn: orFn, Arg: left},
		Arg:  right,
	}
}

// conjoinAll right-associates exprs into a single andalso chain, the way
// core.andAlso does, except it also handles zero and one expressions (the
// literal `true` and the bare expression respectively) since both the
// simplification contract and the Exists strategy below build conjunctions
// from a dynamically filtered slice that may come up empty.
func conjoinAll(exprs []core.Expr) core.Expr {
	if len(exprs) == 0 {
		return trueLit()
	}
	result := exprs[len(exprs)-1]
	for i := len(exprs) - 2; i >= 0; i-- {
		andFn := &core.FnLit{Node: core.Node{Typ: types.FnType(types.Bool, types.FnType(types.Bool, types.Bool))}, MLName: "andalso"}
		result = &core.Apply{
			Node: core.Node{Typ: types.Bool},
			Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.Bool, types.Bool)}, Fn: andFn, Arg: exprs[i]},
			Arg:  result,
		}
	}
	return result
}

// elemStrategy inverts `x = v` (or `v = x`) into the singleton generator
// `x in [v]` — the only strategy guaranteed to resolve any extent it is
// offered in this shape (§9 Open Question 2).
func elemStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil {
		return nil, ErrNonInvertible
	}
	left, right, ok := equalsCall(constraint, "op =")
	if !ok {
		return nil, ErrNonInvertible
	}
	var value core.Expr
	switch {
	case isVarRef(left, id) && !mentionsVar(right, id):
		value = right
	case isVarRef(right, id) && !mentionsVar(left, id):
		value = left
	default:
		return nil, ErrNonInvertible
	}
	return &Generator{
		Pattern:     pat,
		Source:      singletonList(value),
		Cardinality: CardinalitySingleton,
		Unique:      true,
		Strategy:    "Elem",
	}, nil
}

// pointStrategy inverts `List.member(x, xs)`-shaped membership (modeled
// here as an application of a recognized "member" built-in) into scanning
// xs directly: `x in xs`.
func pointStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil {
		return nil, ErrNonInvertible
	}
	app, ok := constraint.(*core.Apply)
	if !ok {
		return nil, ErrNonInvertible
	}
	inner, ok := app.Fn.(*core.Apply)
	if !ok {
		return nil, ErrNonInvertible
	}
	fn, ok := inner.Fn.(*core.FnLit)
	if !ok || fn.MLName != "List.member" {
		return nil, ErrNonInvertible
	}
	if !isVarRef(inner.Arg, id) || mentionsVar(app.Arg, id) {
		return nil, ErrNonInvertible
	}
	return &Generator{
		Pattern:     pat,
		Source:      app.Arg,
		Cardinality: CardinalityBounded,
		Strategy:    "Point",
	}, nil
}

// intLitExpr builds the Int literal v.
func intLitExpr(v int) *core.Lit {
	return &core.Lit{Node: core.Node{Typ: types.Int}, Kind: core.IntLit, Value: v}
}

// intLitVal reports the int value of exp if it is an Int literal.
func intLitVal(exp core.Expr) (int, bool) {
	lit, ok := exp.(*core.Lit)
	if !ok || lit.Kind != core.IntLit {
		return 0, false
	}
	v, ok := lit.Value.(int)
	return v, ok
}

// intBinOp builds `opName l r` (opName one of "Int.+"/"Int.-"), folding the
// result to a literal when both operands already are one — range bounds
// built from two literal endpoints (the common case) come out as plain
// numbers instead of a residual arithmetic expression.
func intBinOp(opName string, l, r core.Expr) core.Expr {
	if lv, lok := intLitVal(l); lok {
		if rv, rok := intLitVal(r); rok {
			switch opName {
			case "Int.+":
				return intLitExpr(lv + rv)
			case "Int.-":
				return intLitExpr(lv - rv)
			}
		}
	}
	fn := &core.FnLit{
		Node:   core.Node{Typ: types.FnType(types.Int, types.FnType(types.Int, types.Int))},
		MLName: opName,
	}
	return &core.Apply{
		Node: core.Node{Typ: types.Int},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.Int, types.Int)}, Fn: fn, Arg: l},
		Arg:  r,
	}
}

// decomposeOffset reports whether exp is id itself (offset 0) or id
// shifted by an integer-literal offset (`id + k` or `k + id`, either
// argument order) — the `e < p+k` rewrite strategy 3 calls for needs to
// recognize a bound expressed in terms of the goal variable plus a
// constant, not just the bare variable.
func decomposeOffset(exp core.Expr, id *core.IdPat) (k int, isOffsetOfVar bool) {
	if isVarRef(exp, id) {
		return 0, true
	}
	app, ok := exp.(*core.Apply)
	if !ok {
		return 0, false
	}
	inner, ok := app.Fn.(*core.Apply)
	if !ok {
		return 0, false
	}
	fn, ok := inner.Fn.(*core.FnLit)
	if !ok || fn.MLName != "Int.+" {
		return 0, false
	}
	l, r := inner.Arg, app.Arg
	if isVarRef(l, id) {
		if v, ok := intLitVal(r); ok {
			return v, true
		}
	}
	if isVarRef(r, id) {
		if v, ok := intLitVal(l); ok {
			return v, true
		}
	}
	return 0, false
}

// classifyBound recognizes one comparison conjunct as a lower or upper
// bound on id, rewriting the `e < p+k` family (the goal variable offset by
// a literal constant on either side of the comparison) back to a bound on
// the bare variable: `e < p+k` becomes the lower bound `p > e-k`, per
// strategy 3.
func classifyBound(cj core.Expr, id *core.IdPat) (isLower bool, bound core.Expr, strict bool, ok bool) {
	op, left, right, isBin := anyBinApp(cj)
	if !isBin {
		return false, nil, false, false
	}
	switch op {
	case "Int.<=", "Int.<", "Int.>=", "Int.>":
	default:
		return false, nil, false, false
	}
	kLeft, varLeft := decomposeOffset(left, id)
	kRight, varRight := decomposeOffset(right, id)
	switch {
	case varLeft && !varRight && !mentionsVar(right, id):
		bound := offsetBound(right, kLeft)
		switch op {
		case "Int.>=":
			return true, bound, false, true
		case "Int.>":
			return true, bound, true, true
		case "Int.<=":
			return false, bound, false, true
		case "Int.<":
			return false, bound, true, true
		}
	case varRight && !varLeft && !mentionsVar(left, id):
		bound := offsetBound(left, kRight)
		switch op {
		case "Int.>=":
			return false, bound, false, true
		case "Int.>":
			return false, bound, true, true
		case "Int.<=":
			return true, bound, false, true
		case "Int.<":
			return true, bound, true, true
		}
	}
	return false, nil, false, false
}

// offsetBound subtracts k (the offset a goal variable was found shifted
// by) from other, the comparison's opposite side, so the bound ends up
// stated in terms of the bare variable.
func offsetBound(other core.Expr, k int) core.Expr {
	if k == 0 {
		return other
	}
	return intBinOp("Int.-", other, intLitExpr(k))
}

// generateRange builds `List.tabulate(count, fn k => effectiveLo+k)`, the
// Core expression strategy 3 and §8.1 invariant 4 require: the closed
// interval between lo and hi, each end adjusted inward by one when its
// side is strict.
func generateRange(lo core.Expr, loStrict bool, hi core.Expr, hiStrict bool) core.Expr {
	effectiveLo := lo
	if loStrict {
		effectiveLo = intBinOp("Int.+", lo, intLitExpr(1))
	}
	effectiveHi := hi
	if hiStrict {
		effectiveHi = intBinOp("Int.-", hi, intLitExpr(1))
	}
	count := intBinOp("Int.+", intBinOp("Int.-", effectiveHi, effectiveLo), intLitExpr(1))

	kPat := &core.IdPat{Name: "k"}
	kPat.Typ = types.Int
	kVar := &core.Var{Node: core.Node{Typ: types.Int}, Name: "k"}
	body := intBinOp("Int.+", effectiveLo, kVar)
	stepType := types.FnType(types.Int, types.Int)
	step := &core.Fn{Node: core.Node{Typ: stepType}, Arms: []core.MatchArm{{Pattern: kPat, Body: body}}}

	listType := types.ListOf(types.Int)
	tabulateFn := &core.FnLit{
		Node:   core.Node{Typ: types.FnType(types.Int, types.FnType(stepType, listType))},
		MLName: "List.tabulate",
	}
	return &core.Apply{
		Node: core.Node{Typ: listType},
		Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(stepType, listType)}, Fn: tabulateFn, Arg: count},
		Arg:  step,
	}
}

// rangeStrategy inverts simultaneous lower and upper bounds on an Int
// pattern — `p > e`, `p >= e`, `p < e`, `p <= e`, on either side of the
// comparison and including the `e < p+k` offset form — into
// generateRange's explicit tabulation (strategy 3, §8.1 invariant 4).
func rangeStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil || !id.Typ.Equals(types.Int) {
		return nil, ErrNonInvertible
	}
	conjuncts := core.DecomposeAnd(constraint)
	var loExpr, hiExpr, loConjunct, hiConjunct core.Expr
	var loStrict, hiStrict bool
	for _, cj := range conjuncts {
		isLower, bound, strict, ok := classifyBound(cj, id)
		if !ok {
			continue
		}
		if isLower {
			loExpr, loStrict, loConjunct = bound, strict, cj
		} else {
			hiExpr, hiStrict, hiConjunct = bound, strict, cj
		}
	}
	if loExpr == nil || hiExpr == nil {
		return nil, ErrNonInvertible
	}
	c.markSatisfied(loConjunct, hiConjunct)
	return &Generator{
		Pattern:     pat,
		Source:      generateRange(loExpr, loStrict, hiExpr, hiStrict),
		Cardinality: CardinalityBounded,
		Unique:      true,
		Strategy:    "Range",
	}, nil
}

// stringPrefixStrategy inverts `String.isPrefix p x` (x the String-typed
// goal) into `_generator.stringsWithPrefix p`, the strings extending p,
// with CardinalityUnbounded. No length bound is recorded here, and
// generator.Limits has none.
func stringPrefixStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil || !id.Typ.Equals(types.String) {
		return nil, ErrNonInvertible
	}
	app, ok := constraint.(*core.Apply)
	if !ok {
		return nil, ErrNonInvertible
	}
	inner, ok := app.Fn.(*core.Apply)
	if !ok {
		return nil, ErrNonInvertible
	}
	fn, ok := inner.Fn.(*core.FnLit)
	if !ok || fn.MLName != "String.isPrefix" {
		return nil, ErrNonInvertible
	}
	if mentionsVar(inner.Arg, id) || !isVarRef(app.Arg, id) {
		return nil, ErrNonInvertible
	}
	source := &core.Apply{
		Node: core.Node{Typ: types.ListOf(types.String)},
		Fn:   &core.FnLit{MLName: "_generator.stringsWithPrefix"},
		Arg:  inner.Arg,
	}
	return &Generator{
		Pattern:     pat,
		Source:      source,
		Cardinality: CardinalityUnbounded,
		Strategy:    "StringPrefix",
	}, nil
}

// boundName identifies a binding by (Name, Ordinal) — the same pair
// isVarRef compares — so a sub-query variable is matched precisely, not
// just by a Name that some outer shadowing declaration happens to share.
type boundName struct {
	Name    string
	Ordinal int
}

// patternBoundNames collects every name p itself binds.
func patternBoundNames(p core.Pattern) []boundName {
	switch pp := p.(type) {
	case *core.IdPat:
		return []boundName{{pp.Name, pp.Ordinal}}
	case *core.AsPat:
		return append([]boundName{{pp.Name, pp.Ordinal}}, patternBoundNames(pp.Sub)...)
	case *core.TuplePattern:
		var out []boundName
		for _, el := range pp.Elements {
			out = append(out, patternBoundNames(el)...)
		}
		return out
	case *core.RecordPattern:
		var out []boundName
		for _, f := range pp.Fields {
			out = append(out, patternBoundNames(f.Pattern)...)
		}
		return out
	case *core.ConPat:
		return patternBoundNames(pp.Payload)
	case *core.ConsPat:
		return append(patternBoundNames(pp.Head), patternBoundNames(pp.Tail)...)
	default:
		return nil
	}
}

// sourceBoundNames collects every name a From's own scans introduce.
func sourceBoundNames(from *core.From) []boundName {
	var out []boundName
	for _, s := range from.Sources {
		out = append(out, patternBoundNames(s.Pattern)...)
	}
	return out
}

func containsBoundName(names []boundName, v *core.Var) bool {
	for _, n := range names {
		if n.Name == v.Name && n.Ordinal == v.Ordinal {
			return true
		}
	}
	return false
}

// mentionsAnyBound reports whether exp refers to any of names.
func mentionsAnyBound(exp core.Expr, names []boundName) bool {
	return mentionsAny(exp, func(v *core.Var) bool { return containsBoundName(names, v) })
}

// allVarsSatisfy is mentionsAny's universal counterpart: true when every
// *core.Var reachable in exp satisfies match (vacuously true if exp has
// none) — the Exists strategy's filter path needs this to tell a
// sub-query-local conjunct (every free variable introduced by the
// sub-query's own scans) apart from one that still reaches outside it.
func allVarsSatisfy(exp core.Expr, match func(*core.Var) bool) bool {
	switch e := exp.(type) {
	case *core.Var:
		return match(e)
	case *core.Apply:
		return allVarsSatisfy(e.Fn, match) && allVarsSatisfy(e.Arg, match)
	case *core.Tuple:
		for _, el := range e.Elements {
			if !allVarsSatisfy(el, match) {
				return false
			}
		}
		return true
	case *core.RecordSelector:
		return allVarsSatisfy(e.Record, match)
	case *core.Case:
		if !allVarsSatisfy(e.Scrutinee, match) {
			return false
		}
		for _, a := range e.Arms {
			if !allVarsSatisfy(a.Body, match) {
				return false
			}
			if a.Guard != nil && !allVarsSatisfy(a.Guard, match) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func onlyMentionsBound(exp core.Expr, names []boundName) bool {
	return allVarsSatisfy(exp, func(v *core.Var) bool { return containsBoundName(names, v) })
}

// existsFrom extracts the sub-query out of `Relational.nonEmpty subquery`.
func existsFrom(constraint core.Expr) (*core.From, bool) {
	app, ok := constraint.(*core.Apply)
	if !ok {
		return nil, false
	}
	fn, ok := app.Fn.(*core.FnLit)
	if !ok || fn.MLName != "Relational.nonEmpty" {
		return nil, false
	}
	from, ok := app.Arg.(*core.From)
	return from, ok
}

// patternToExpr converts an irrefutable Var/Tuple-shaped pattern back into
// the equivalent expression — the inverse of core.ToPat — so a pattern the
// generator already holds (the exists-join's own goal pattern) can be
// reused as a From's Yield.
func patternToExpr(p core.Pattern) core.Expr {
	switch pp := p.(type) {
	case *core.IdPat:
		return &core.Var{Node: core.Node{Typ: pp.Typ}, Name: pp.Name, Ordinal: pp.Ordinal}
	case *core.TuplePattern:
		elems := make([]core.Expr, len(pp.Elements))
		for i, el := range pp.Elements {
			elems[i] = patternToExpr(el)
		}
		return &core.Tuple{Node: core.Node{Typ: pp.Typ}, Elements: elems}
	default:
		return &core.Var{Node: core.Node{Typ: p.Type()}, Name: p.String()}
	}
}

// wrapNonEmpty rebuilds `Relational.nonEmpty(from <sources> where
// conjoinAll(conds) yield ())` over from's own scans — used to carry a
// sub-query-local leftover conjunct (one that does not mention the outer
// goal variable at all) as a Guard instead of silently dropping it.
func wrapNonEmpty(from *core.From, conds []core.Expr) core.Expr {
	unitLit := &core.Lit{Node: core.Node{Typ: types.Unit}, Kind: core.UnitLit, Value: nil}
	inner := &core.From{
		Node:    core.Node{Typ: types.ListOf(types.Unit)},
		Sources: from.Sources,
		Steps:   []core.Step{&core.WhereStep{Cond: conjoinAll(conds)}},
		Yield:   unitLit,
	}
	nonEmptyFn := &core.FnLit{
		Node:   core.Node{Typ: types.FnType(types.ListOf(types.Unit), types.Bool)},
		MLName: "Relational.nonEmpty",
	}
	return &core.Apply{Node: core.Node{Typ: types.Bool}, Fn: nonEmptyFn, Arg: inner}
}

// existsStrategy inverts a constraint built from `Relational.nonEmpty
// subquery` (the shape `exists` desugars into, strategy 5). Each
// where-conjunct of the sub-query that still mentions the outer goal
// variable is offered back to the cache; if the resulting generator's
// source depends on a name the sub-query itself introduced, the
// sub-query's scans are prepended and the join is yielded distinct
// (ExistsJoinGenerator). Otherwise the generator is adopted as-is, and any
// remaining conjuncts that mention only sub-query-local names are kept as
// a nested-exists Guard rather than dropped (ExistsFilterGenerator).
func existsStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil {
		return nil, ErrNonInvertible
	}
	from, ok := existsFrom(constraint)
	if !ok {
		return nil, ErrNonInvertible
	}
	bound := sourceBoundNames(from)
	var whereConds []core.Expr
	for _, step := range from.Steps {
		switch s := step.(type) {
		case *core.WhereStep:
			whereConds = append(whereConds, core.DecomposeAnd(s.Cond)...)
		case *core.RequireStep:
			whereConds = append(whereConds, core.DecomposeAnd(s.Cond)...)
		}
	}
	for i, cond := range whereConds {
		if !mentionsVar(cond, id) {
			continue
		}
		g, err := c.recurse(pat, cond)
		if err != nil {
			continue
		}
		if mentionsAnyBound(g.Source, bound) {
			var remaining []core.Expr
			for j, other := range whereConds {
				if j != i {
					remaining = append(remaining, other)
				}
			}
			steps := make([]core.Step, 0, 2)
			if len(remaining) > 0 {
				steps = append(steps, &core.WhereStep{Cond: conjoinAll(remaining)})
			}
			steps = append(steps, &core.DistinctStep{})
			joined := &core.From{
				Node:    core.Node{Typ: types.ListOf(pat.Type())},
				Sources: append(append([]core.Source{}, from.Sources...), core.Source{Pattern: pat, Expr: g.Source}),
				Steps:   steps,
				Yield:   patternToExpr(pat),
			}
			c.markSatisfied(constraint, cond)
			return &Generator{Pattern: pat, Source: joined, Cardinality: CardinalityBounded, Strategy: "Exists/ExistsJoin"}, nil
		}

		var local []core.Expr
		for j, other := range whereConds {
			if j == i || mentionsVar(other, id) {
				continue
			}
			if onlyMentionsBound(other, bound) {
				local = append(local, other)
			}
		}
		var guard core.Expr
		if len(local) > 0 {
			guard = wrapNonEmpty(from, local)
		}
		c.markSatisfied(constraint, cond)
		return &Generator{
			Pattern:     pat,
			Source:      g.Source,
			Guard:       guard,
			Cardinality: g.Cardinality,
			Strategy:    "Exists/ExistsFilter",
		}, nil
	}
	return nil, ErrNonInvertible
}

// caseStrategy inverts a constraint of the shape `case x of p1 => true |
// _ => false` (or any arm set where exactly the true-valued arms'
// patterns, recombined, describe x's extent) into a Union-of-Elem
// generator over the literal patterns of the true arms. Only constant
// (literal or nullary-constructor) true-arms are invertible this way.
func caseStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil {
		return nil, ErrNonInvertible
	}
	cs, ok := constraint.(*core.Case)
	if !ok || !isVarRef(cs.Scrutinee, id) {
		return nil, ErrNonInvertible
	}
	var values []core.Expr
	for _, arm := range cs.Arms {
		lit, isLit := arm.Body.(*core.Lit)
		if !isLit || lit.Kind != core.BoolLit || lit.Value != true {
			continue
		}
		switch p := arm.Pattern.(type) {
		case *core.LitPattern:
			values = append(values, &core.Lit{Node: core.Node{Typ: p.Typ}, Kind: p.Kind, Value: p.Value})
		case *core.Con0Pat:
			values = append(values, &core.FnLit{Node: core.Node{Typ: p.Typ}, MLName: p.Name})
		default:
			return nil, ErrNonInvertible
		}
	}
	if len(values) == 0 {
		return nil, ErrNonInvertible
	}
	listType := types.ListOf(id.Typ)
	source := core.Expr(&core.FnLit{Node: core.Node{Typ: listType}, MLName: "nil"})
	for i := len(values) - 1; i >= 0; i-- {
		source = &core.Apply{
			Node: core.Node{Typ: listType},
			Fn:   &core.Apply{Fn: &core.FnLit{MLName: "::"}, Arg: values[i]},
			Arg:  source,
		}
	}
	return &Generator{Pattern: pat, Source: source, Cardinality: CardinalityBounded, Unique: true, Strategy: "Case"}, nil
}

// bindingKey is the substitution-map key for a binding (Name, Ordinal).
func bindingKey(name string, ordinal int) string {
	return fmt.Sprintf("%s#%d", name, ordinal)
}

// bindPattern extends subst so that every name pat binds resolves to the
// matching piece of arg — IdPat binds arg whole, a Wildcard binds nothing,
// and a TuplePattern destructures a literal Tuple argument component-wise.
// Reports false for any other pattern shape (constructor-payload patterns
// are out of scope for inlining — see DESIGN.md).
func bindPattern(pat core.Pattern, arg core.Expr, subst map[string]core.Expr) bool {
	switch p := pat.(type) {
	case *core.IdPat:
		subst[bindingKey(p.Name, p.Ordinal)] = arg
		return true
	case *core.WildcardPattern:
		return true
	case *core.TuplePattern:
		tup, ok := arg.(*core.Tuple)
		if !ok || len(tup.Elements) != len(p.Elements) {
			return false
		}
		for i, el := range p.Elements {
			if !bindPattern(el, tup.Elements[i], subst) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// substitute replaces every Var matching a key in subst with its bound
// expression, walking every expression shape an inlined function body
// built from lambdas, applications, tuples, records, and case arms can
// take.
func substitute(exp core.Expr, subst map[string]core.Expr) core.Expr {
	switch e := exp.(type) {
	case *core.Var:
		if rep, ok := subst[bindingKey(e.Name, e.Ordinal)]; ok {
			return rep
		}
		return e
	case *core.Apply:
		return &core.Apply{Node: e.Node, Fn: substitute(e.Fn, subst), Arg: substitute(e.Arg, subst)}
	case *core.Tuple:
		elems := make([]core.Expr, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = substitute(el, subst)
		}
		return &core.Tuple{Node: e.Node, Elements: elems}
	case *core.RecordSelector:
		return &core.RecordSelector{Node: e.Node, Field: e.Field, Record: substitute(e.Record, subst)}
	case *core.Case:
		arms := make([]core.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			arms[i] = substituteArm(a, subst)
		}
		return &core.Case{Node: e.Node, Scrutinee: substitute(e.Scrutinee, subst), Arms: arms}
	case *core.Fn:
		arms := make([]core.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			arms[i] = substituteArm(a, subst)
		}
		return &core.Fn{Node: e.Node, Arms: arms}
	default:
		return exp
	}
}

func substituteArm(a core.MatchArm, subst map[string]core.Expr) core.MatchArm {
	arm := core.MatchArm{Pattern: a.Pattern, Body: substitute(a.Body, subst)}
	if a.Guard != nil {
		arm.Guard = substitute(a.Guard, subst)
	}
	return arm
}

// applyLambda inlines a one-arm, unguarded lambda applied to a single
// argument.
func applyLambda(fn *core.Fn, arg core.Expr) (core.Expr, bool) {
	if len(fn.Arms) != 1 {
		return nil, false
	}
	arm := fn.Arms[0]
	if arm.Guard != nil {
		return nil, false
	}
	subst := map[string]core.Expr{}
	if !bindPattern(arm.Pattern, arg, subst) {
		return nil, false
	}
	return substitute(arm.Body, subst), true
}

// applyChain inlines fn applied to args one at a time, following the
// currying each successive application peels off.
func applyChain(fn core.Expr, args []core.Expr) (core.Expr, bool) {
	cur := fn
	for _, a := range args {
		lam, ok := cur.(*core.Fn)
		if !ok {
			return nil, false
		}
		next, ok := applyLambda(lam, a)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// flattenCall splits an application chain `f a1 a2 ... an` into its head
// and the arguments applied to it, outermost-last.
func flattenCall(exp core.Expr) (head core.Expr, args []core.Expr) {
	for {
		app, ok := exp.(*core.Apply)
		if !ok {
			break
		}
		args = append([]core.Expr{app.Arg}, args...)
		exp = app.Fn
	}
	return exp, args
}

// peelParams walks a (possibly curried) lambda chain, collecting one
// formal parameter pattern per level until the body stops being a Fn.
func peelParams(fn *core.Fn) ([]core.Pattern, core.Expr) {
	var params []core.Pattern
	var body core.Expr = fn
	for {
		cur, ok := body.(*core.Fn)
		if !ok || len(cur.Arms) != 1 {
			break
		}
		params = append(params, cur.Arms[0].Pattern)
		body = cur.Arms[0].Body
	}
	return params, body
}

// normalizeCall expands SML's `fun f (a, b) = ...` tuple-parameter
// convention — one formal parameter that is itself a TuplePattern — into
// its component patterns, and the matching single Tuple-valued call
// argument into its components, so arity checks below see "2 params, 2
// args" rather than "1 tuple param, 1 tuple arg" for the exact same
// function.
func normalizeCall(params []core.Pattern, args []core.Expr) ([]core.Pattern, []core.Expr) {
	if len(params) != 1 || len(args) != 1 {
		return params, args
	}
	tp, ok := params[0].(*core.TuplePattern)
	if !ok {
		return params, args
	}
	ta, ok := args[0].(*core.Tuple)
	if !ok || len(ta.Elements) != len(tp.Elements) {
		return params, args
	}
	return tp.Elements, ta.Elements
}

// callsNamed reports whether exp anywhere refers to a user function bound
// under name — a recursive self-reference is a plain Var, since FnLit is
// reserved for built-ins (core.go).
func callsNamed(exp core.Expr, name string) bool {
	return mentionsAny(exp, func(v *core.Var) bool { return v.Name == name })
}

// pruneSelfCalls drops every orelse-disjunct of body that still calls
// name, the fallback inlining path strategy 7 specifies: "recursive
// branches are pruned (only non-self-calling orelse branches are
// retained)".
func pruneSelfCalls(body core.Expr, name string) core.Expr {
	disjuncts := core.DecomposeOr(body)
	var kept []core.Expr
	for _, d := range disjuncts {
		if !callsNamed(d, name) {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return trueLit()
	}
	result := kept[len(kept)-1]
	for i := len(kept) - 2; i >= 0; i-- {
		result = orElseApp(kept[i], result)
	}
	return result
}

// disjunctShape splits body into (base, subquery) if body is exactly
// `base orelse Relational.nonEmpty(subquery)` in either operand order —
// the shape both the bounded-recursion and transitive-closure branches of
// strategy 7 share, once the bounded branch's leading `n > 0 andalso` has
// been peeled off.
func disjunctShape(body core.Expr) (base core.Expr, subquery *core.From, ok bool) {
	disjuncts := core.DecomposeOr(body)
	if len(disjuncts) != 2 {
		return nil, nil, false
	}
	if from, isExists := existsFrom(disjuncts[1]); isExists {
		return disjuncts[0], from, true
	}
	if from, isExists := existsFrom(disjuncts[0]); isExists {
		return disjuncts[1], from, true
	}
	return nil, nil, false
}

// peelGuard strips a leading `n > 0 andalso ...` guard conjunct, returning
// the remaining expression — the bounded-recursion branch of strategy 7
// wraps its base/step disjunction in exactly this guard.
func peelGuard(body core.Expr) core.Expr {
	conjuncts := core.DecomposeAnd(body)
	if len(conjuncts) == 2 {
		return conjuncts[1]
	}
	return body
}

// tupleComponentType returns t's two element types, or (nil, nil, false)
// if t is not a 2-tuple.
func tupleComponentType(t types.Type) (types.Type, types.Type, bool) {
	tt, ok := t.(*types.TupleType)
	if !ok || len(tt.Elements) != 2 {
		return nil, nil, false
	}
	return tt.Elements[0], tt.Elements[1], true
}

// buildJoinFrom builds the one-step transitive-closure join `from e in
// seed, p in prev where e.#1 = p.#2 yield (p.#1, e.#2)` (§8.3 scenario 3):
// every pair in prev extends one hop further along an edge in seed.
// RecordSelector.Field follows this module's 1-indexed tuple-component
// convention, so e.#0/p.#1 in the scenario's prose are Fields "1"/"2" here.
func buildJoinFrom(seed, prev core.Expr, pairType types.Type) core.Expr {
	aType, bType, ok := tupleComponentType(pairType)
	if !ok {
		aType, bType = types.Int, types.Int
	}
	bagType := types.BagOf(pairType)
	ePat := &core.IdPat{Name: "e"}
	ePat.Typ = pairType
	pPat := &core.IdPat{Name: "p"}
	pPat.Typ = pairType
	eVar := &core.Var{Node: core.Node{Typ: pairType}, Name: "e"}
	pVar := &core.Var{Node: core.Node{Typ: pairType}, Name: "p"}
	eFst := &core.RecordSelector{Node: core.Node{Typ: aType}, Field: "1", Record: eVar}
	eSnd := &core.RecordSelector{Node: core.Node{Typ: bType}, Field: "2", Record: eVar}
	pFst := &core.RecordSelector{Node: core.Node{Typ: aType}, Field: "1", Record: pVar}
	pSnd := &core.RecordSelector{Node: core.Node{Typ: bType}, Field: "2", Record: pVar}
	return &core.From{
		Node:    core.Node{Typ: bagType},
		Sources: []core.Source{{Pattern: ePat, Expr: seed}, {Pattern: pPat, Expr: prev}},
		Steps:   []core.Step{&core.WhereStep{Cond: eqApp(eFst, pSnd)}},
		Yield:   &core.Tuple{Node: core.Node{Typ: pairType}, Elements: []core.Expr{pFst, eSnd}},
	}
}

// buildTransitiveStep builds `fn (all, new) => from e in seed, p in new
// where e.#1 = p.#2 yield (p.#1, e.#2)` — Relational.iterate's step
// function, curried as nested single-parameter Fns to match its 2-arg
// signature (internal/builtins/entries.go). all is bound but unused: this
// step only ever needs the previous round's increment.
func buildTransitiveStep(seed core.Expr, pairType types.Type) *core.Fn {
	bagType := types.BagOf(pairType)
	allPat := &core.IdPat{Name: "all"}
	allPat.Typ = bagType
	newPat := &core.IdPat{Name: "new"}
	newPat.Typ = bagType
	newVar := &core.Var{Node: core.Node{Typ: bagType}, Name: "new"}
	body := buildJoinFrom(seed, newVar, pairType)
	innerFnType := types.FnType(bagType, bagType)
	inner := &core.Fn{Node: core.Node{Typ: innerFnType}, Arms: []core.MatchArm{{Pattern: newPat, Body: body}}}
	outerFnType := types.FnType(bagType, innerFnType)
	return &core.Fn{Node: core.Node{Typ: outerFnType}, Arms: []core.MatchArm{{Pattern: allPat, Body: inner}}}
}

// memberSeed extracts the source collection out of `List.member v xs` —
// the shape a transitive-closure or bounded-recursion base case takes
// once the call's actual arguments have been substituted in, so v is by
// then a concrete tuple rather than a pattern needing inversion (pattern-
// based strategies like Point only invert a free IdPat, which a 2-tuple
// recursion goal is not).
func memberSeed(exp core.Expr) (core.Expr, bool) {
	app, ok := exp.(*core.Apply)
	if !ok {
		return nil, false
	}
	inner, ok := app.Fn.(*core.Apply)
	if !ok {
		return nil, false
	}
	fn, ok := inner.Fn.(*core.FnLit)
	if !ok || fn.MLName != "List.member" {
		return nil, false
	}
	return app.Arg, true
}

// resolveSeed derives the seed collection for base, preferring the direct
// List.member reading and falling back to the cache's own strategies for
// any other invertible shape (e.g. a scalar base case on a single
// variable).
func (c *Cache) resolveSeed(pat core.Pattern, base core.Expr) (core.Expr, bool) {
	if seed, ok := memberSeed(base); ok {
		return seed, true
	}
	g, err := c.recurse(pat, base)
	if err != nil {
		return nil, false
	}
	return g.Source, true
}

// transitiveClosureShape recognizes `base orelse (exists z where step
// andalso f(z, b))` over a binary function f(a, b) and compiles it to
// `Relational.iterate seed step-fn` (§4.7.2 strategy 7, §8.3 scenario 3).
// seed is derived by resolveSeed from base with the call's actual
// arguments substituted in: a List.member base case is read directly, and
// any other base falls back to the cache's own strategies.
func (c *Cache) transitiveClosureShape(pat core.Pattern, params []core.Pattern, body core.Expr, selfName string, args []core.Expr) (*Generator, error) {
	tuplePat, ok := pat.(*core.TuplePattern)
	if !ok || len(tuplePat.Elements) != 2 {
		return nil, ErrNonInvertible
	}
	base, from, ok := disjunctShape(body)
	if !ok {
		return nil, ErrNonInvertible
	}
	var stepConjuncts []core.Expr
	for _, step := range from.Steps {
		if w, ok := step.(*core.WhereStep); ok {
			stepConjuncts = append(stepConjuncts, core.DecomposeAnd(w.Cond)...)
		}
	}
	sawSelfCall := false
	for _, cj := range stepConjuncts {
		if callsNamed(cj, selfName) {
			sawSelfCall = true
			break
		}
	}
	if !sawSelfCall {
		return nil, ErrNonInvertible
	}

	subst := map[string]core.Expr{}
	for i, p := range params {
		if i >= len(args) {
			break
		}
		if !bindPattern(p, args[i], subst) {
			return nil, ErrNonInvertible
		}
	}
	substBase := substitute(base, subst)
	seed, ok := c.resolveSeed(pat, substBase)
	if !ok {
		return nil, ErrNonInvertible
	}

	step := buildTransitiveStep(seed, pat.Type())
	source := &core.Apply{
		Node: core.Node{Typ: types.BagOf(pat.Type())},
		Fn: &core.Apply{
			Node: core.Node{Typ: types.FnType(step.Type(), types.BagOf(pat.Type()))},
			Fn:   &core.FnLit{MLName: "Relational.iterate"},
			Arg:  seed,
		},
		Arg: step,
	}
	return &Generator{
		Pattern:     pat,
		Source:      source,
		Cardinality: CardinalityUnbounded,
		Strategy:    "Function/transitive-closure",
	}, nil
}

// unrollBoundedRecursion recognizes `n > 0 andalso (base orelse (exists z
// where step andalso f(z, b, n-1)))` with a literal n at the call site,
// and expands it into nVal rounds joined one hop at a time and
// concatenated — "the final result is a list concatenation" (§4.7.2
// strategy 7, §8.3 scenario 4). There is no evaluator in this module to
// fold the rounds together, so each round is a real Core expression built
// directly, the way the Union strategy already concatenates disjuncts.
func (c *Cache) unrollBoundedRecursion(pat core.Pattern, params []core.Pattern, body core.Expr, selfName string, args []core.Expr, nVal int) (*Generator, error) {
	tuplePat, ok := pat.(*core.TuplePattern)
	if !ok || len(tuplePat.Elements) != 2 || nVal < 1 {
		return nil, ErrNonInvertible
	}
	base, from, ok := disjunctShape(peelGuard(body))
	if !ok {
		return nil, ErrNonInvertible
	}
	var sawSelfCall bool
	for _, step := range from.Steps {
		if w, ok := step.(*core.WhereStep); ok {
			for _, cj := range core.DecomposeAnd(w.Cond) {
				if callsNamed(cj, selfName) {
					sawSelfCall = true
				}
			}
		}
	}
	if !sawSelfCall {
		return nil, ErrNonInvertible
	}

	subst := map[string]core.Expr{}
	for i, p := range params {
		if i >= len(args) {
			break
		}
		if !bindPattern(p, args[i], subst) {
			return nil, ErrNonInvertible
		}
	}
	substBase := substitute(base, subst)
	seed, ok := c.resolveSeed(pat, substBase)
	if !ok {
		return nil, ErrNonInvertible
	}

	rounds := []core.Expr{seed}
	prev := seed
	for i := 1; i < nVal; i++ {
		if !c.WithinUnrollingLimit(i + 1) {
			return nil, fmt.Errorf("%w: unrolling limit exceeded", ErrNonInvertible)
		}
		next := buildJoinFrom(seed, prev, pat.Type())
		rounds = append(rounds, next)
		prev = next
	}

	appendFn := &core.FnLit{
		Node:   core.Node{Typ: types.FnType(types.ListOf(pat.Type()), types.FnType(types.ListOf(pat.Type()), types.ListOf(pat.Type())))},
		MLName: "@",
	}
	result := rounds[len(rounds)-1]
	for i := len(rounds) - 2; i >= 0; i-- {
		result = &core.Apply{
			Node: core.Node{Typ: types.ListOf(pat.Type())},
			Fn:   &core.Apply{Node: core.Node{Typ: types.FnType(types.ListOf(pat.Type()), types.ListOf(pat.Type()))}, Fn: appendFn, Arg: rounds[i]},
			Arg:  result,
		}
	}
	return &Generator{
		Pattern:     pat,
		Source:      result,
		Cardinality: CardinalityBounded,
		Strategy:    "Function/bounded-recursion",
	}, nil
}

// genericInline is strategy 7's fallback "otherwise" branch: substitute
// the actual arguments for the formal parameters, prune self-calling
// orelse branches, and re-run the whole strategy pipeline on what is left.
func genericInline(c *Cache, pat core.Pattern, name string, params []core.Pattern, body core.Expr, args []core.Expr) (*Generator, error) {
	subst := map[string]core.Expr{}
	n := len(params)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		if !bindPattern(params[i], args[i], subst) {
			return nil, ErrNonInvertible
		}
	}
	pruned := pruneSelfCalls(substitute(body, subst), name)
	g, err := c.recurse(pat, pruned)
	if err != nil {
		return nil, ErrNonInvertible
	}
	g.Strategy = "Function/inline"
	return g, nil
}

// adoptIterate recognizes a constraint that already is `Relational.iterate
// seed step` — built by an earlier call to this same strategy, or handed
// in pre-built by a caller — and adopts it directly, since the closure
// already enumerates every reachable element.
func adoptIterate(pat core.Pattern, constraint core.Expr) (*Generator, error) {
	app, ok := constraint.(*core.Apply)
	if !ok {
		return nil, ErrNonInvertible
	}
	inner, ok := app.Fn.(*core.Apply)
	if !ok {
		return nil, ErrNonInvertible
	}
	fn, ok := inner.Fn.(*core.FnLit)
	if !ok || fn.MLName != "Relational.iterate" {
		return nil, ErrNonInvertible
	}
	return &Generator{
		Pattern:     pat,
		Source:      constraint,
		Cardinality: CardinalityUnbounded,
		Strategy:    "Function/transitive-closure",
	}, nil
}

// functionStrategy implements strategy 7. A lambda application is inlined
// and retried; an application of Relational.iterate already built by an
// earlier pass is adopted directly; an application of a name registered
// via Cache.RegisterFunction is analyzed for the bounded-recursion shape
// (3 params, a literal round count at the call site) or the unbounded
// transitive-closure shape (2 params), falling back to substituting the
// actual arguments into the body and pruning self-calling branches when
// neither concrete shape matches.
func functionStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	if g, err := adoptIterate(pat, constraint); err == nil {
		return g, nil
	}
	head, args := flattenCall(constraint)
	if len(args) == 0 {
		return nil, ErrNonInvertible
	}
	if lam, ok := head.(*core.Fn); ok {
		inlined, ok := applyChain(lam, args)
		if !ok {
			return nil, ErrNonInvertible
		}
		g, err := c.recurse(pat, inlined)
		if err != nil {
			return nil, ErrNonInvertible
		}
		g.Strategy = "Function/lambda-inline"
		return g, nil
	}
	fnVar, ok := head.(*core.Var)
	if !ok {
		return nil, ErrNonInvertible
	}
	fn, registered := c.Functions[fnVar.Name]
	if !registered {
		return nil, ErrNonInvertible
	}
	params, body := peelParams(fn)
	params, args = normalizeCall(params, args)

	if len(params) == 2 && len(args) == 2 {
		if g, err := c.transitiveClosureShape(pat, params, body, fnVar.Name, args); err == nil {
			c.markSatisfied(constraint)
			return g, nil
		}
	}
	if len(params) == 3 && len(args) == 3 {
		if nVal, ok := intLitVal(args[2]); ok {
			if g, err := c.unrollBoundedRecursion(pat, params, body, fnVar.Name, args, nVal); err == nil {
				c.markSatisfied(constraint)
				return g, nil
			}
		}
	}
	return genericInline(c, pat, fnVar.Name, params, body, args)
}

// unionStrategy inverts `c1 orelse c2` by synthesizing each disjunct
// independently and concatenating their sources, provided both disjuncts
// are themselves invertible.
func unionStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	disjuncts := core.DecomposeOr(constraint)
	if len(disjuncts) < 2 {
		return nil, ErrNonInvertible
	}
	var sources []core.Expr
	cardinality := CardinalityBounded
	for _, d := range disjuncts {
		g, err := c.recurse(pat, d)
		if err != nil {
			return nil, ErrNonInvertible
		}
		sources = append(sources, g.Source)
		if g.Cardinality == CardinalityUnbounded {
			cardinality = CardinalityUnbounded
		}
	}
	elemType := pat.Type()
	listType := types.ListOf(elemType)
	result := sources[len(sources)-1]
	for i := len(sources) - 2; i >= 0; i-- {
		result = &core.Apply{
			Node: core.Node{Typ: listType},
			Fn:   &core.Apply{Fn: &core.FnLit{MLName: "@"}, Arg: sources[i]},
			Arg:  result,
		}
	}
	return &Generator{Pattern: pat, Source: result, Cardinality: cardinality, Strategy: "Union"}, nil
}

// fieldDerivationStrategy inverts `#field x = v` against a record- or
// progressive-record-typed variable by deriving a generator over just the
// named field and re-wrapping each produced value into a record whose
// other fields are left as fresh type variables (resolvable only if
// nothing else constrains them — otherwise downstream synthesis for the
// remaining fields is the caller's responsibility via a further
// conjunct).
func fieldDerivationStrategy(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error) {
	id := freeIdPat(pat)
	if id == nil {
		return nil, ErrNonInvertible
	}
	left, right, ok := equalsCall(constraint, "op =")
	if !ok {
		return nil, ErrNonInvertible
	}
	sel, selOk := left.(*core.RecordSelector)
	value := right
	if !selOk {
		sel, selOk = right.(*core.RecordSelector)
		value = left
	}
	if !selOk || !isVarRef(sel.Record, id) || mentionsVar(value, id) {
		return nil, ErrNonInvertible
	}
	fieldPat := &core.IdPat{Name: fmt.Sprintf("%s#%s", id.Name, sel.Field)}
	fieldPat.Typ = value.Type()
	inner, err := c.recurse(fieldPat, &core.Apply{
		Fn:  &core.Apply{Fn: &core.FnLit{MLName: "op ="}, Arg: &core.Var{Node: core.Node{Typ: value.Type()}, Name: fieldPat.Name}},
		Arg: value,
	})
	if err != nil {
		return nil, ErrNonInvertible
	}
	return &Generator{
		Pattern:     pat,
		Source:      inner.Source,
		Cardinality: inner.Cardinality,
		Strategy:    "FieldDerivation",
	}, nil
}

// Package analyzer implements the post-Core use-site classifier (spec
// §4.8, C8): for each named pattern bound by a Let/RecValDecl/Fn arm, it
// classifies how the bound name is used downstream so a later inlining
// pass can decide which bindings are safe to substitute away.
package analyzer

import (
	"github.com/hydromatic/morel-sub000/internal/core"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
)

// UseClass is one of the seven classifications a bound name can receive.
type UseClass int

const (
	// DEAD means the name is never referenced (and the binding is not
	// top-level, where unreferenced bindings are kept regardless —
	// see classify).
	DEAD UseClass = iota
	ONCE_SAFE
	ATOMIC
	MULTI_SAFE
	ONCE_UNSAFE
	MULTI_UNSAFE
	// LOOP_BREAKER marks the self-reference inside a recursive binding's
	// own value: it must never be inlined, since doing so would unfold
	// the recursion at compile time.
	LOOP_BREAKER
)

func (c UseClass) String() string {
	switch c {
	case DEAD:
		return "DEAD"
	case ONCE_SAFE:
		return "ONCE_SAFE"
	case ATOMIC:
		return "ATOMIC"
	case MULTI_SAFE:
		return "MULTI_SAFE"
	case ONCE_UNSAFE:
		return "ONCE_UNSAFE"
	case MULTI_UNSAFE:
		return "MULTI_UNSAFE"
	case LOOP_BREAKER:
		return "LOOP_BREAKER"
	default:
		return "UNKNOWN"
	}
}

// Use records the classification computed for one bound IdPat.
type Use struct {
	Pattern  *core.IdPat
	Class    UseClass
	Count    int
	Parallel bool
}

// Analysis is the result of analyzing a Core expression: one Use per
// IdPat bound along the way, keyed by (Name, Ordinal) since ordinals
// disambiguate shadowed redeclarations (§3.2 invariant 2).
type Analysis struct {
	Uses map[key]*Use
	// Reports collects every ANA001 non-exhaustive-match diagnostic found
	// while walking expr.
	Reports []*corerr.Report
}

type key struct {
	name    string
	ordinal int
}

func keyOf(p *core.IdPat) key { return key{p.Name, p.Ordinal} }

// Get returns the Use recorded for p, if any.
func (a *Analysis) Get(p *core.IdPat) (*Use, bool) {
	u, ok := a.Uses[keyOf(p)]
	return u, ok
}

// Analyze walks expr, classifying every name bound by a Let, RecValDecl,
// or single-IdPat Fn arm it finds. topLevel should be true when expr is a
// top-level program declaration chain (§6.3): top-level bindings are
// exempt from DEAD, since an unreferenced top-level value may still be
// part of the session's visible namespace.
func Analyze(expr core.Expr, topLevel bool) *Analysis {
	a := &Analysis{Uses: map[key]*Use{}}
	analyzeNode(a, expr, topLevel)
	return a
}

func analyzeNode(a *Analysis, expr core.Expr, topLevel bool) {
	switch e := expr.(type) {
	case *core.Let:
		analyzeBinding(a, e.Pattern, e.Value, e.Body, false, topLevel)
		analyzeNode(a, e.Value, false)
		analyzeNode(a, e.Body, topLevel)
	case *core.RecValDecl:
		analyzeBinding(a, e.Pattern, e.Value, e.Body, true, topLevel)
		analyzeNode(a, e.Value, false)
		analyzeNode(a, e.Body, topLevel)
	case *core.Local:
		analyzeNode(a, e.Body, topLevel)
	case *core.Case:
		analyzeNode(a, e.Scrutinee, false)
		if rep := ReportNonExhaustive(e.Arms, e.Scrutinee.Type()); rep != nil {
			a.Reports = append(a.Reports, rep)
		}
		for _, arm := range e.Arms {
			if arm.Guard != nil {
				analyzeNode(a, arm.Guard, false)
			}
			analyzeNode(a, arm.Body, false)
		}
	case *core.Fn:
		for _, arm := range e.Arms {
			if id, ok := arm.Pattern.(*core.IdPat); ok {
				analyzeBinding(a, id, nil, arm.Body, false, false)
			}
			if arm.Guard != nil {
				analyzeNode(a, arm.Guard, false)
			}
			analyzeNode(a, arm.Body, false)
		}
	case *core.Apply:
		analyzeNode(a, e.Fn, false)
		analyzeNode(a, e.Arg, false)
	case *core.Tuple:
		for _, el := range e.Elements {
			analyzeNode(a, el, false)
		}
	case *core.RecordSelector:
		analyzeNode(a, e.Record, false)
	case *core.From:
		for _, s := range e.Sources {
			analyzeNode(a, s.Expr, false)
		}
		analyzeNode(a, e.Yield, false)
	}
}

// analyzeBinding records the Use(s) for every leaf IdPat bound by pat,
// each measured against scope (the expression in which the binding is
// visible). For RecValDecl bindings, also detects self-reference inside
// value to classify the recursive occurrence as LOOP_BREAKER.
func analyzeBinding(a *Analysis, pat core.Pattern, value, scope core.Expr, rec bool, topLevel bool) {
	for _, id := range leafIdPats(pat) {
		k := keyOf(id)
		if rec && mentionsID(value, id, 0) {
			a.Uses[k] = &Use{Pattern: id, Class: LOOP_BREAKER}
			continue
		}
		if isAtomic(value) {
			a.Uses[k] = &Use{Pattern: id, Class: ATOMIC}
			continue
		}
		o := countOccurrences(scope, id, 0)
		a.Uses[k] = &Use{
			Pattern:  id,
			Class:    classify(o.count, o.insideLambda, o.parallel, topLevel),
			Count:    o.count,
			Parallel: o.parallel,
		}
	}
}

func classify(count int, insideLambda, parallel, topLevel bool) UseClass {
	switch {
	case count == 0:
		if topLevel {
			return ONCE_SAFE
		}
		return DEAD
	case count == 1 && !insideLambda && !parallel:
		return ONCE_SAFE
	case count == 1 && !insideLambda && parallel:
		return MULTI_SAFE
	case count == 1 && insideLambda:
		return ONCE_UNSAFE
	default:
		return MULTI_UNSAFE
	}
}

// isAtomic reports whether value is trivial enough to duplicate at every
// use site for free — a bare variable reference, literal, or built-in
// reference — independent of how many times it is used (table row 2).
func isAtomic(value core.Expr) bool {
	switch value.(type) {
	case *core.Var, *core.Lit, *core.FnLit:
		return true
	default:
		return false
	}
}

// leafIdPats collects every IdPat bound by pat, descending through
// tuple/record/as/cons structure. Non-binding shapes (wildcard, literal)
// contribute nothing.
func leafIdPats(pat core.Pattern) []*core.IdPat {
	var out []*core.IdPat
	var walk func(core.Pattern)
	walk = func(p core.Pattern) {
		switch pp := p.(type) {
		case *core.IdPat:
			out = append(out, pp)
		case *core.AsPat:
			out = append(out, &core.IdPat{Name: pp.Name, Ordinal: pp.Ordinal})
			walk(pp.Sub)
		case *core.TuplePattern:
			for _, el := range pp.Elements {
				walk(el)
			}
		case *core.RecordPattern:
			for _, f := range pp.Fields {
				walk(f.Pattern)
			}
		case *core.ConPat:
			walk(pp.Payload)
		case *core.ConsPat:
			walk(pp.Head)
			walk(pp.Tail)
		}
	}
	walk(pat)
	return out
}

type occ struct {
	count        int
	insideLambda bool
	parallel     bool
}

func sumOcc(a, b occ) occ {
	return occ{count: a.count + b.count, insideLambda: a.insideLambda || b.insideLambda, parallel: a.parallel || b.parallel}
}

// countOccurrences counts references to id within expr. depth tracks
// lambda nesting; any occurrence found at depth > 0 sets insideLambda.
// Case arms are combined by taking the max occurrence count across arms
// (since only one arm executes), with parallel set when that max is
// reached by more than one arm (§4.8).
func countOccurrences(expr core.Expr, id *core.IdPat, depth int) occ {
	if expr == nil {
		return occ{}
	}
	switch e := expr.(type) {
	case *core.Var:
		if e.Name == id.Name && e.Ordinal == id.Ordinal {
			return occ{count: 1, insideLambda: depth > 0}
		}
		return occ{}
	case *core.Lit, *core.FnLit:
		return occ{}
	case *core.Apply:
		return sumOcc(countOccurrences(e.Fn, id, depth), countOccurrences(e.Arg, id, depth))
	case *core.Tuple:
		var result occ
		for _, el := range e.Elements {
			result = sumOcc(result, countOccurrences(el, id, depth))
		}
		return result
	case *core.RecordSelector:
		return countOccurrences(e.Record, id, depth)
	case *core.Fn:
		var result occ
		for _, arm := range e.Arms {
			result = sumOcc(result, countOccurrences(arm.Guard, id, depth+1))
			result = sumOcc(result, countOccurrences(arm.Body, id, depth+1))
		}
		return result
	case *core.Case:
		result := countOccurrences(e.Scrutinee, id, depth)
		counts := make([]occ, len(e.Arms))
		for i, arm := range e.Arms {
			armOcc := sumOcc(countOccurrences(arm.Guard, id, depth), countOccurrences(arm.Body, id, depth))
			counts[i] = armOcc
		}
		maxCount := 0
		for _, c := range counts {
			if c.count > maxCount {
				maxCount = c.count
			}
		}
		numAtMax := 0
		insideLambdaAtMax := false
		for _, c := range counts {
			if c.count == maxCount && maxCount > 0 {
				numAtMax++
				insideLambdaAtMax = insideLambdaAtMax || c.insideLambda
			}
		}
		return sumOcc(result, occ{count: maxCount, insideLambda: insideLambdaAtMax, parallel: numAtMax >= 2})
	case *core.Let:
		result := countOccurrences(e.Value, id, depth)
		return sumOcc(result, countOccurrences(e.Body, id, depth))
	case *core.RecValDecl:
		result := countOccurrences(e.Value, id, depth)
		return sumOcc(result, countOccurrences(e.Body, id, depth))
	case *core.Local:
		return countOccurrences(e.Body, id, depth)
	case *core.From:
		var result occ
		for _, s := range e.Sources {
			result = sumOcc(result, countOccurrences(s.Expr, id, depth))
		}
		return sumOcc(result, countOccurrences(e.Yield, id, depth))
	default:
		return occ{}
	}
}

// mentionsID reports whether expr anywhere references id — used to
// detect a RecValDecl's self-reference for LOOP_BREAKER classification.
func mentionsID(expr core.Expr, id *core.IdPat, depth int) bool {
	return countOccurrences(expr, id, depth).count > 0
}

// Package generator implements the generator synthesizer: given a free
// pattern variable and the boolean constraint a query's where
// clauses place on it, produce a finite enumeration strategy that can
// stand in for a missing `p in e` scan. This is what lets `from x where x
// >= 1 andalso x <= 10` run without an explicit source for x.
package generator

import (
	"errors"
	"fmt"

	"github.com/hydromatic/morel-sub000/internal/core"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// ErrNonInvertible is returned by every strategy that cannot synthesize a
// generator for the constraint it was offered. The caller tries the next
// strategy in priorityOrder; if all fail, the extent is left unresolved
// (§9 Open Question 2 — only the Elem strategy is guaranteed to resolve an
// extent; every other failure surfaces this error to the caller, which may
// report it as an unbound-extent diagnostic rather than silently dropping
// the query).
var ErrNonInvertible = errors.New("generator: constraint is not invertible")

// Cardinality bounds what a Generator's caller can assume about how many
// elements it produces, used by the analyzer and by query planning to
// decide evaluation order among several candidate generators for the same
// variable.
type Cardinality int

const (
	// CardinalityUnknown generators may produce any number of elements,
	// including zero or unboundedly many.
	CardinalityUnknown Cardinality = iota
	CardinalitySingleton
	CardinalityBounded
	CardinalityUnbounded
)

// Generator is a synthesized enumeration strategy: a pattern to bind on
// each produced element, the Core expression that (when evaluated)
// produces the source collection to scan, the free pattern variables the
// synthesis consumed from the original constraint, and metadata the
// generator's consumers use to choose between competing candidates.
//
// Guard carries the residual filter a strategy could not fold into Source
// itself — the ExistsFilter path of the Exists strategy is the only
// producer today: a sub-query-local conjunct that constrains the
// generator's element but was not itself part of the dependency the
// generator inverted still has to be checked, wrapped in a nested
// `Relational.nonEmpty` the way the original exists clause was (§4.7.2.5).
// Guard is nil when Source alone already accounts for every conjunct the
// generator consumed.
type Generator struct {
	Pattern     core.Pattern
	Source      core.Expr
	Guard       core.Expr
	FreePats    []core.Pattern
	Cardinality Cardinality
	Unique      bool // true if Source is known not to repeat an element
	Strategy    string
}

func (g *Generator) String() string {
	if g.Guard != nil {
		return fmt.Sprintf("%s in %s where %s [%s]", g.Pattern, g.Source, g.Guard, g.Strategy)
	}
	return fmt.Sprintf("%s in %s [%s]", g.Pattern, g.Source, g.Strategy)
}

// Cache memoizes generators already synthesized for a given (pattern,
// constraint) pair within one compilation. Synthesis is monotonic: once a
// strategy succeeds for a key, every later request for the same key
// returns the cached Generator rather than re-deriving it, so a
// constraint referenced from several places in a query (e.g. both a
// `where` clause and a nested `exists`) is inverted once.
type Cache struct {
	entries map[string]*Generator
	limits  Limits
	depth   int

	// satisfied records, by Core expression text, every conjunct a
	// successful strategy has already discharged — the generator-level
	// simplify(pat, exp) contract of §4.7.3. A where-conjunct whose text
	// matches an entry here is known true once the generator that
	// consumed it is in scope, even if it resurfaces verbatim somewhere
	// else in the query (e.g. an outer where clause re-stating a bound
	// an inner Range generator already derived).
	satisfied map[string]bool

	// Functions maps a `val rec`-bound name to its Core body, so the
	// Function strategy can inline a named recursive call instead of only
	// recognizing an already-built Relational.iterate. Populated through
	// RegisterFunction by whoever drives synthesis (cmd/corec and the
	// tests; the resolver does not) before a constraint referencing that
	// name is offered to Synthesize;
	// env.Env carries only types during resolution, so this table is the
	// generator's own record of function bodies.
	Functions map[string]*core.Fn
}

// NewCache creates an empty Cache bounded by DefaultLimits. Use New to
// supply a corec.yaml-loaded Limits explicitly.
func NewCache() *Cache {
	return &Cache{
		entries:   map[string]*Generator{},
		limits:    DefaultLimits,
		satisfied: map[string]bool{},
		Functions: map[string]*core.Fn{},
	}
}

// RegisterFunction makes fn's body available to the Function strategy
// under name.
func (c *Cache) RegisterFunction(name string, fn *core.Fn) { c.Functions[name] = fn }

// markSatisfied records every non-nil expr in exprs as discharged.
func (c *Cache) markSatisfied(exprs ...core.Expr) {
	for _, e := range exprs {
		if e != nil {
			c.satisfied[e.String()] = true
		}
	}
}

// trueLit builds the Bool literal `true`.
func trueLit() *core.Lit {
	return &core.Lit{Node: core.Node{Typ: types.Bool}, Kind: core.BoolLit, Value: true}
}

// Simplify rewrites exp, replacing any conjunct already recorded in c's
// satisfied set with the literal `true` (§4.7.3). A conjunction with only
// some of its conjuncts satisfied keeps the rest unchanged; a bare
// satisfied expression (not itself a conjunction) simplifies whole.
// Idempotent: simplifying an already-simplified expression is a no-op,
// since a literal `true` conjunct is never itself recorded as satisfied
// (§8.2 simplify(simplify(e)) = simplify(e)).
func (c *Cache) Simplify(exp core.Expr) core.Expr {
	if c.satisfied[exp.String()] {
		return trueLit()
	}
	conjuncts := core.DecomposeAnd(exp)
	if len(conjuncts) <= 1 {
		return exp
	}
	rewrote := false
	out := make([]core.Expr, len(conjuncts))
	for i, cj := range conjuncts {
		if c.satisfied[cj.String()] {
			out[i] = trueLit()
			rewrote = true
		} else {
			out[i] = cj
		}
	}
	if !rewrote {
		return exp
	}
	return conjoinAll(out)
}

// Key computes the cache key for a (pattern, constraint) pair.
func Key(pat core.Pattern, constraint core.Expr) string {
	return pat.String() + " | " + constraint.String()
}

// Get returns the cached Generator for key, if any.
func (c *Cache) Get(key string) (*Generator, bool) {
	g, ok := c.entries[key]
	return g, ok
}

// Put stores g under key.
func (c *Cache) Put(key string, g *Generator) { c.entries[key] = g }

// Synthesize attempts every strategy in priority order for pat against
// constraint, caching and returning the first success. Returns
// ErrNonInvertible if every strategy fails.
func (c *Cache) Synthesize(pat core.Pattern, constraint core.Expr) (*Generator, error) {
	key := Key(pat, constraint)
	if g, ok := c.Get(key); ok {
		return g, nil
	}
	for _, strat := range priorityOrder {
		if g, err := strat(c, pat, constraint); err == nil {
			c.Put(key, g)
			c.markSatisfied(constraint)
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s against %s", ErrNonInvertible, pat, constraint)
}

// SynthesizeOrReport is Synthesize wrapped for a caller that wants a
// structured diagnostic rather than the bare ErrNonInvertible sentinel — the
// REPL and any future batch driver report GEN001 with the unresolved
// constraint attached as context, the way the linker's combineErrors
// attaches detail to a bare link failure.
func (c *Cache) SynthesizeOrReport(pat core.Pattern, constraint core.Expr) (*Generator, error) {
	g, err := c.Synthesize(pat, constraint)
	if err == nil {
		return g, nil
	}
	if errors.Is(err, ErrNonInvertible) {
		rep := corerr.New(corerr.GEN001, "generate", err.Error(), nil).
			WithData("pattern", pat.String()).
			WithData("constraint", constraint.String())
		return nil, corerr.WrapReport(rep)
	}
	return nil, err
}

// recurse is how a strategy (Exists, Union, Field-derivation) synthesizes a
// generator for a sub-constraint instead of calling c.Synthesize directly,
// so the nesting those strategies introduce is counted against c's
// DepthBound — an exists nested inside a union nested inside a field
// derivation cannot recurse past the configured bound.
func (c *Cache) recurse(pat core.Pattern, constraint core.Expr) (*Generator, error) {
	if !c.WithinDepthBound(c.depth) {
		return nil, fmt.Errorf("%w: depth bound exceeded", ErrNonInvertible)
	}
	c.depth++
	defer func() { c.depth-- }()
	return c.Synthesize(pat, constraint)
}

// strategy is the common shape every inversion strategy implements. c is
// threaded through so a strategy (e.g. Exists, Function) can recursively
// synthesize generators for sub-constraints using the same cache.
type strategy func(c *Cache, pat core.Pattern, constraint core.Expr) (*Generator, error)

// priorityOrder is the fixed order strategies are tried in (§4.7): Elem
// first since it is always sound and total over its applicable shape,
// down to Union and Field-derivation last since those recurse into other
// strategies and so are the most expensive to attempt.
var priorityOrder = []strategy{
	elemStrategy,
	pointStrategy,
	rangeStrategy,
	stringPrefixStrategy,
	existsStrategy,
	caseStrategy,
	functionStrategy,
	unionStrategy,
	fieldDerivationStrategy,
}

// freeIdPat returns pat as an *core.IdPat, or nil if pat does not bind a
// single plain identifier (every strategy below only inverts constraints
// on a single scalar variable; tuple/record-bound extents are handled by
// the resolver splitting them into several single-variable scans first).
func freeIdPat(pat core.Pattern) *core.IdPat {
	id, _ := pat.(*core.IdPat)
	return id
}

// isVarRef reports whether exp is a reference to the variable bound by id.
func isVarRef(exp core.Expr, id *core.IdPat) bool {
	v, ok := exp.(*core.Var)
	return ok && v.Ordinal == id.Ordinal && v.Name == id.Name
}

// mentionsVar reports whether exp anywhere refers to id — used to reject
// an inversion candidate whose "value" side is not actually free of the
// variable being solved for.
func mentionsVar(exp core.Expr, id *core.IdPat) bool {
	return mentionsAny(exp, func(v *core.Var) bool { return v.Ordinal == id.Ordinal && v.Name == id.Name })
}

// mentionsAny walks exp and reports whether any *core.Var it contains
// satisfies match — the single tree-walk both mentionsVar (a single name)
// and the Exists strategy's sub-query dependency check (any of several
// names) are built on.
func mentionsAny(exp core.Expr, match func(*core.Var) bool) bool {
	switch e := exp.(type) {
	case *core.Var:
		return match(e)
	case *core.Apply:
		return mentionsAny(e.Fn, match) || mentionsAny(e.Arg, match)
	case *core.Tuple:
		for _, el := range e.Elements {
			if mentionsAny(el, match) {
				return true
			}
		}
		return false
	case *core.RecordSelector:
		return mentionsAny(e.Record, match)
	case *core.Case:
		if mentionsAny(e.Scrutinee, match) {
			return true
		}
		for _, a := range e.Arms {
			if mentionsAny(a.Body, match) || (a.Guard != nil && mentionsAny(a.Guard, match)) {
				return true
			}
		}
		return false
	case *core.From:
		for _, s := range e.Sources {
			if mentionsAny(s.Expr, match) {
				return true
			}
		}
		for _, step := range e.Steps {
			if mentionsAnyStep(step, match) {
				return true
			}
		}
		return mentionsAny(e.Yield, match)
	default:
		return false
	}
}

// mentionsAnyStep is mentionsAny's counterpart for the core.Step variants
// that carry an expression a name could occur free in.
func mentionsAnyStep(step core.Step, match func(*core.Var) bool) bool {
	switch s := step.(type) {
	case *core.WhereStep:
		return mentionsAny(s.Cond, match)
	case *core.RequireStep:
		return mentionsAny(s.Cond, match)
	case *core.ScanStep:
		return mentionsAny(s.Expr, match) || (s.Cond != nil && mentionsAny(s.Cond, match))
	case *core.YieldStep:
		return mentionsAny(s.Value, match)
	case *core.DistinctStep, *core.SkipStep, *core.TakeStep:
		return false
	default:
		return false
	}
}

// singletonList builds a one-element list expression `[v]` of v's type.
func singletonList(v core.Expr) core.Expr {
	listType := types.ListOf(v.Type())
	return &core.Apply{
		Node: core.Node{Typ: listType},
		Fn:   &core.Apply{Fn: &core.FnLit{MLName: "::"}, Arg: v},
		Arg:  &core.FnLit{Node: core.Node{Typ: listType}, MLName: "nil"},
	}
}

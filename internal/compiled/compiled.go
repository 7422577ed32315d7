// Package compiled defines the contract between this module's compiled
// output and the expression evaluator: the evaluator
// itself, the session runtime, and I/O are external collaborators out of
// this module's scope — only the Statement interface they consume is
// specified here, along with thin wrapper types the resolver's output can
// be packaged into before handing it across that boundary.
package compiled

import (
	"fmt"
	"io"

	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// Statement is one compiled top-level declaration, ready for the
// (external) evaluator to run. Eval writes any printed result to out and
// streams every binding it introduces to bindings — a channel rather
// than a return value because a single source statement (`val (x, y) =
// ...`) can introduce more than one name, and the caller may want to
// observe bindings as they become available rather than all at once.
type Statement interface {
	Eval(e *env.Env, out io.Writer, bindings chan<- env.Binding) error
	Type() types.Type
}

// EvalFunc is supplied by the external evaluator: given the environment a
// statement runs in and the Core declaration it wraps, produce the
// resulting runtime value. This module never implements one — every
// concrete Statement below takes it as a dependency.
type EvalFunc func(e *env.Env, decl core.Expr) (interface{}, error)

// ValueStatement is a compiled `val` (or `val rec`) declaration: a
// pattern bound to the result of evaluating Decl (a Let, RecValDecl, or
// Local wrapping one).
type ValueStatement struct {
	Pattern core.Pattern
	Decl    core.Expr
	Typ     types.Type
	Eval_   EvalFunc
}

// Type implements Statement.
func (s *ValueStatement) Type() types.Type { return s.Typ }

// Eval implements Statement by delegating the actual evaluation to
// Eval_, then streaming one env.Binding per name s.Pattern binds.
func (s *ValueStatement) Eval(e *env.Env, out io.Writer, bindings chan<- env.Binding) error {
	if s.Eval_ == nil {
		return fmt.Errorf("compiled: no evaluator wired for %s", s.Pattern)
	}
	v, err := s.Eval_(e, s.Decl)
	if err != nil {
		return err
	}
	for _, b := range bindingsFor(s.Pattern, s.Typ, v) {
		bindings <- b
	}
	fmt.Fprintf(out, "val %s = %v : %s\n", s.Pattern, v, s.Typ)
	return nil
}

// ExprStatement is a compiled bare expression (no `val` — a REPL-style
// "evaluate and print" command). It introduces no bindings of its own;
// many evaluators conventionally rebind a synthetic `it` name to the
// result, which the caller can do by wrapping this in a ValueStatement
// instead when that behavior is wanted.
type ExprStatement struct {
	Decl  core.Expr
	Typ   types.Type
	Eval_ EvalFunc
}

// Type implements Statement.
func (s *ExprStatement) Type() types.Type { return s.Typ }

// Eval implements Statement.
func (s *ExprStatement) Eval(e *env.Env, out io.Writer, bindings chan<- env.Binding) error {
	if s.Eval_ == nil {
		return fmt.Errorf("compiled: no evaluator wired for expression statement")
	}
	v, err := s.Eval_(e, s.Decl)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "val it = %v : %s\n", v, s.Typ)
	return nil
}

// bindingsFor destructures a runtime value against pat, producing one
// env.Binding per leaf name. A TuplePattern expects v to be a
// []interface{} of matching arity; any mismatch falls back to binding
// every leaf name to the whole value, since this module has no
// authoritative runtime value representation of its own (that belongs to
// the external evaluator).
func bindingsFor(pat core.Pattern, typ types.Type, v interface{}) []env.Binding {
	switch p := pat.(type) {
	case *core.IdPat:
		return []env.Binding{{Name: p.Name, Ordinal: p.Ordinal, Value: v, Type: typ, TopLevel: true}}
	case *core.TuplePattern:
		if elems, ok := v.([]interface{}); ok && len(elems) == len(p.Elements) {
			var out []env.Binding
			for i, el := range p.Elements {
				out = append(out, bindingsFor(el, el.Type(), elems[i])...)
			}
			return out
		}
		var out []env.Binding
		for _, el := range p.Elements {
			out = append(out, bindingsFor(el, el.Type(), v)...)
		}
		return out
	case *core.AsPat:
		out := bindingsFor(p.Sub, typ, v)
		return append(out, env.Binding{Name: p.Name, Ordinal: p.Ordinal, Value: v, Type: typ, TopLevel: true})
	default:
		return nil
	}
}

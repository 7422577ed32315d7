// Package core implements the typed Core intermediate representation: the
// algebraic representation of expressions, patterns, declarations and
// query steps that the resolver produces and the generator synthesizer
// rewrites.
package core

import (
	"fmt"
	"strings"

	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// Node is the base embedded in every Core expression: a stable NodeID
// (assigned by the resolver), the Core-level span, and the original
// surface span for diagnostics. Every Core node carries its type (§3.2
// invariant 1) via the Typ field each concrete node embeds alongside.
type Node struct {
	NodeID   uint64
	CoreSpan ast.Pos
	OrigSpan ast.Pos
	Typ      types.Type
}

func (n Node) ID() uint64            { return n.NodeID }
func (n Node) Span() ast.Pos         { return n.CoreSpan }
func (n Node) OriginalSpan() ast.Pos { return n.OrigSpan }
func (n Node) Type() types.Type      { return n.Typ }

// Expr is the interface implemented by every Core expression node.
type Expr interface {
	ID() uint64
	Span() ast.Pos
	OriginalSpan() ast.Pos
	Type() types.Type
	String() string
	coreExpr()
}

// ---- Atomic expressions --------------------------------------------------

// LitKind enumerates literal kinds (mirrors ast.LitKind one-to-one).
type LitKind int

const (
	BoolLit LitKind = iota
	CharLit
	IntLit
	RealLit
	StringLit
	UnitLit
)

// Lit is a literal value.
type Lit struct {
	Node
	Kind  LitKind
	Value interface{}
}

func (*Lit) coreExpr()        {}
func (l *Lit) String() string { return fmt.Sprintf("%v", l.Value) }

// Var is an identifier reference, carrying the stable ordinal of the
// binding it refers to (§3.2 invariant 2).
type Var struct {
	Node
	Name    string
	Ordinal int
}

func (*Var) coreExpr() {}
func (v *Var) String() string {
	if v.Ordinal == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s#%d", v.Name, v.Ordinal)
}

// FnLit is a reference to a built-in function, instantiated at a
// monomorphic use-type (Core is monomorphic at every site, §9).
type FnLit struct {
	Node
	MLName string
}

func (*FnLit) coreExpr()        {}
func (f *FnLit) String() string { return f.MLName }

// ---- Structural expressions ----------------------------------------------

// RecordSelector is `#field e`.
type RecordSelector struct {
	Node
	Field  string
	Record Expr
}

func (*RecordSelector) coreExpr() {}
func (r *RecordSelector) String() string {
	return fmt.Sprintf("#%s %s", r.Field, r.Record)
}

// Tuple is a tuple expression.
type Tuple struct {
	Node
	Elements []Expr
}

func (*Tuple) coreExpr() {}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Apply is function application.
type Apply struct {
	Node
	Fn  Expr
	Arg Expr
}

func (*Apply) coreExpr()        {}
func (a *Apply) String() string { return fmt.Sprintf("%s %s", a.Fn, a.Arg) }

// Fn is a single-parameter lambda represented as a match list over the
// (single, synthetic) parameter — a plain `fn x => body` is one MatchArm
// with an IdPat.
type Fn struct {
	Node
	Arms []MatchArm
}

func (*Fn) coreExpr() {}
func (f *Fn) String() string {
	parts := make([]string, len(f.Arms))
	for i, a := range f.Arms {
		parts[i] = a.String()
	}
	return "fn " + strings.Join(parts, " | ")
}

// MatchArm is one `pattern [when guard] => body` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if unguarded
	Body    Expr
}

func (m MatchArm) String() string {
	if m.Guard != nil {
		return fmt.Sprintf("%s when %s => %s", m.Pattern, m.Guard, m.Body)
	}
	return fmt.Sprintf("%s => %s", m.Pattern, m.Body)
}

// Case is pattern matching over a scrutinee.
type Case struct {
	Node
	Scrutinee Expr
	Arms      []MatchArm
}

func (*Case) coreExpr() {}
func (c *Case) String() string {
	parts := make([]string, len(c.Arms))
	for i, a := range c.Arms {
		parts[i] = a.String()
	}
	return fmt.Sprintf("case %s of %s", c.Scrutinee, strings.Join(parts, " | "))
}

// Let is a (single) non-recursive value declaration. Multi-binding surface
// `let` forms are flattened by the resolver into nested Lets over a tuple
// Case (§4.5), so Core Let is always single-binding.
type Let struct {
	Node
	Pattern Pattern
	Value   Expr
	Body    Expr
}

func (*Let) coreExpr() {}
func (l *Let) String() string {
	return fmt.Sprintf("let %s = %s in %s", l.Pattern, l.Value, l.Body)
}

// RecValDecl is a recursive value declaration (`val rec`). The resolver
// demotes this to Let when the RHS has no free self-reference (§4.5).
type RecValDecl struct {
	Node
	Pattern Pattern
	Value   Expr
	Body    Expr
}

func (*RecValDecl) coreExpr() {}
func (r *RecValDecl) String() string {
	return fmt.Sprintf("let rec %s = %s in %s", r.Pattern, r.Value, r.Body)
}

// Local is a datatype declaration scoping an inner expression.
type Local struct {
	Node
	Datatypes []*types.DataType
	Body      Expr
}

func (*Local) coreExpr() {}
func (l *Local) String() string {
	names := make([]string, len(l.Datatypes))
	for i, d := range l.Datatypes {
		names[i] = d.Name
	}
	return fmt.Sprintf("local %s in %s", strings.Join(names, ", "), l.Body)
}

// ---- Patterns -------------------------------------------------------------

// Pattern is the interface implemented by every Core pattern node.
type Pattern interface {
	Type() types.Type
	String() string
	patternNode()
}

type patBase struct{ Typ types.Type }

func (p patBase) Type() types.Type { return p.Typ }

// WildcardPattern is `_`.
type WildcardPattern struct{ patBase }

func (*WildcardPattern) patternNode()   {}
func (*WildcardPattern) String() string { return "_" }

// LitPattern matches a literal.
type LitPattern struct {
	patBase
	Kind  LitKind
	Value interface{}
}

func (*LitPattern) patternNode()     {}
func (l *LitPattern) String() string { return fmt.Sprintf("%v", l.Value) }

// IdPat is a named pattern. Ordinal is a stable identifier distinguishing
// shadowed redeclarations of the same surface Name (§3.2 invariant 2).
type IdPat struct {
	patBase
	Name    string
	Ordinal int
}

func (*IdPat) patternNode() {}
func (p *IdPat) String() string {
	if p.Ordinal == 0 {
		return p.Name
	}
	return fmt.Sprintf("%s#%d", p.Name, p.Ordinal)
}

// AsPat is `name as subpattern`.
type AsPat struct {
	patBase
	Name    string
	Ordinal int
	Sub     Pattern
}

func (*AsPat) patternNode()     {}
func (a *AsPat) String() string { return fmt.Sprintf("%s as %s", a.Name, a.Sub) }

// TuplePattern matches a tuple.
type TuplePattern struct {
	patBase
	Elements []Pattern
}

func (*TuplePattern) patternNode() {}
func (t *TuplePattern) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RecordFieldPattern is one `name = pattern` entry.
type RecordFieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern matches a (fully resolved, no ellipsis) record.
type RecordPattern struct {
	patBase
	Fields []RecordFieldPattern
}

func (*RecordPattern) patternNode() {}
func (r *RecordPattern) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Name, f.Pattern)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ConPat is a constructor pattern with a payload.
type ConPat struct {
	patBase
	Name    string
	Payload Pattern
}

func (*ConPat) patternNode()     {}
func (c *ConPat) String() string { return fmt.Sprintf("%s %s", c.Name, c.Payload) }

// Con0Pat is a zero-argument constructor pattern.
type Con0Pat struct {
	patBase
	Name string
}

func (*Con0Pat) patternNode()     {}
func (c *Con0Pat) String() string { return c.Name }

// ConsPat is a list-cons pattern `h :: t`.
type ConsPat struct {
	patBase
	Head Pattern
	Tail Pattern
}

func (*ConsPat) patternNode()     {}
func (c *ConsPat) String() string { return fmt.Sprintf("%s :: %s", c.Head, c.Tail) }

// Program is a compiled Core program: an ordered sequence of top-level
// declarations (each a CoreExpr, since every declaration is ultimately a
// Let/RecValDecl/Local wrapping the rest of the program per ANF style).
type Program struct {
	Decls []Expr
}

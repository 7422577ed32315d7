// Package ast defines the surface syntax tree this module consumes from
// the (out-of-scope) parser, and the positions carried through to Core for
// diagnostics. It is a contract package: the parser and type inferencer are
// external collaborators; this package only fixes the shape they hand to
// the resolver.
package ast

import "fmt"

// Pos is a position in source text.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a range in source text.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base interface for every AST node.
type Node interface {
	Position() Pos
}

// base embeds a Pos and supplies Position() to every node that embeds it.
type base struct{ Pos Pos }

func (b base) Position() Pos { return b.Pos }

// Expr is any surface expression.
type Expr interface {
	Node
	exprNode()
}

// Pat is any surface pattern.
type Pat interface {
	Node
	patNode()
}

// Decl is any top-level or let-bound declaration.
type Decl interface {
	Node
	declNode()
}

// ---- Literals ----------------------------------------------------------

// LitKind enumerates the literal kinds.
type LitKind int

const (
	BoolLit LitKind = iota
	CharLit
	IntLit
	RealLit
	StringLit
	UnitLit
)

// Literal is a literal expression.
type Literal struct {
	base
	Kind  LitKind
	Value interface{}
}

func (*Literal) exprNode() {}

// ---- Identifiers --------------------------------------------------------

// Ident is an identifier reference.
type Ident struct {
	base
	Name string
}

func (*Ident) exprNode() {}

// ---- Functions ----------------------------------------------------------

// Lambda is `fn p1 => body | p2 => body2 | ...`, i.e. a single-parameter
// function literal whose body is a match over the parameter. A simple
// `fn x => e` is represented with one MatchClause with pattern x.
type Lambda struct {
	base
	Clauses []MatchClause
}

func (*Lambda) exprNode() {}

// MatchClause is one `pattern => body` arm, optionally guarded.
type MatchClause struct {
	Pattern Pat
	Guard   Expr // nil if unguarded
	Body    Expr
}

// Apply is function application `f e`.
type Apply struct {
	base
	Func Expr
	Arg  Expr
}

func (*Apply) exprNode() {}

// ---- Aggregates -----------------------------------------------------------

// Tuple is a tuple expression.
type Tuple struct {
	base
	Elements []Expr
}

func (*Tuple) exprNode() {}

// RecordField is one `name = value` pair in a record expression.
type RecordField struct {
	Name  string
	Value Expr
}

// Record is a record construction expression, optionally a `{ e with
// f1 = v1, ... }` update (Base != nil).
type Record struct {
	base
	Base   Expr // nil unless this is a `{ base with ... }` update
	Fields []RecordField
}

func (*Record) exprNode() {}

// RecordSelector is `#field e` (field projection).
type RecordSelector struct {
	base
	Field  string
	Record Expr
}

func (*RecordSelector) exprNode() {}

// ListExpr is `[e1, e2, ...]`.
type ListExpr struct {
	base
	Elements []Expr
}

func (*ListExpr) exprNode() {}

// ---- Control flow -----------------------------------------------------

// If is surface sugar for a two-armed boolean Case; the resolver desugars
// it directly (no separate Core node).
type If struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) exprNode() {}

// Case is `case scrutinee of p1 => e1 | p2 => e2 | ...`.
type Case struct {
	base
	Scrutinee Expr
	Arms      []MatchClause
}

func (*Case) exprNode() {}

// ---- Bindings -----------------------------------------------------------

// LetBinding is one `val pi = ei` clause of a (possibly multi-binding) let.
type LetBinding struct {
	Pattern Pat
	Value   Expr
}

// Let is `let val v1 = e1 and v2 = e2 ... in body end`. Rec marks `val rec`.
type Let struct {
	base
	Rec      bool
	Bindings []LetBinding
	Body     Expr
}

func (*Let) exprNode() {}

// Local is `local datatype D = ... in body end`: a datatype declaration
// scoping an inner expression.
type Local struct {
	base
	Datatypes []*DatatypeDecl
	Body      Expr
}

func (*Local) exprNode() {}

// ---- Top level declarations ---------------------------------------------

// ValDecl is a top-level `val p = e` (or `val rec` via Rec).
type ValDecl struct {
	base
	Rec      bool
	Bindings []LetBinding
}

func (*ValDecl) declNode() {}

// DatatypeCtor is one constructor clause of a datatype declaration.
type DatatypeCtor struct {
	Name    string
	Payload TypeExpr // nil for nullary constructors
}

// DatatypeDecl declares a user datatype.
type DatatypeDecl struct {
	base
	Name         string
	Params       []string
	Constructors []DatatypeCtor
}

func (*DatatypeDecl) declNode() {}

// ---- Surface type expressions (consumed only by the upstream inferencer,
// named here so DatatypeDecl/payload annotations have somewhere to live) --

// TypeExpr is a surface type annotation.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedType is a reference to a named type, optionally applied to args
// (e.g. `int`, `'a list`, `('a,'b) either`).
type NamedType struct {
	base
	Name string
	Args []TypeExpr
}

func (*NamedType) typeExprNode() {}

// TupleTypeExpr is `t1 * t2 * ...`.
type TupleTypeExpr struct {
	base
	Elements []TypeExpr
}

func (*TupleTypeExpr) typeExprNode() {}

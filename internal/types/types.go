// Package types implements the type representation for the compilation
// core: primitive, tuple, record, list, bag, option, order, vector, function,
// forall and user-defined datatypes, plus the hash-consed identity and
// canonical field ordering invariants required by the rest of the pipeline.
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Type is the interface implemented by every type in the system. Identity
// is structural: two types are Equal iff their Key()s match.
type Type interface {
	String() string
	Key() string
	Equals(Type) bool
}

// Kind distinguishes the handful of built-in atomic primitives.
type Kind int

const (
	KBool Kind = iota
	KChar
	KInt
	KReal
	KString
	KUnit
)

func (k Kind) String() string {
	switch k {
	case KBool:
		return "bool"
	case KChar:
		return "char"
	case KInt:
		return "int"
	case KReal:
		return "real"
	case KString:
		return "string"
	case KUnit:
		return "unit"
	default:
		return "?"
	}
}

// Primitive is one of the six atomic primitive types.
type Primitive struct {
	Kind Kind
}

func (t *Primitive) String() string { return t.Kind.String() }
func (t *Primitive) Key() string    { return "prim:" + t.Kind.String() }
func (t *Primitive) Equals(o Type) bool {
	op, ok := o.(*Primitive)
	return ok && op.Kind == t.Kind
}

var (
	Bool   = &Primitive{Kind: KBool}
	Char   = &Primitive{Kind: KChar}
	Int    = &Primitive{Kind: KInt}
	Real   = &Primitive{Kind: KReal}
	String = &Primitive{Kind: KString}
	Unit   = &Primitive{Kind: KUnit}
)

// TypeVar is a type variable, distinguished by ordinal.
type TypeVar struct {
	Ordinal int
}

func (t *TypeVar) String() string { return fmt.Sprintf("'a%d", t.Ordinal) }
func (t *TypeVar) Key() string    { return fmt.Sprintf("var:%d", t.Ordinal) }
func (t *TypeVar) Equals(o Type) bool {
	ov, ok := o.(*TypeVar)
	return ok && ov.Ordinal == t.Ordinal
}

var typeVarCounter int

// NewTypeVar returns a fresh type variable with the next ordinal.
func NewTypeVar() *TypeVar {
	typeVarCounter++
	return &TypeVar{Ordinal: typeVarCounter}
}

// TupleType is an N≥2 ordered product.
type TupleType struct {
	Elements []Type
}

// TupleOf builds a tuple type. Panics (an implementation invariant, not a
// user-facing error) if fewer than two elements are given.
func TupleOf(elems ...Type) *TupleType {
	if len(elems) < 2 {
		panic("types.TupleOf: requires at least 2 elements")
	}
	return &TupleType{Elements: elems}
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

func (t *TupleType) Key() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Key()
	}
	return "tuple(" + strings.Join(parts, ",") + ")"
}

func (t *TupleType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// CompareFieldNames is the single authoritative comparator for record field
// ordering (§4.1). Purely numeric labels sort numerically and before any
// non-numeric label; non-numeric labels sort lexicographically after all
// numeric ones. This is a total order: for any distinct a, b exactly one
// of cmp(a,b)<0, cmp(a,b)>0 holds, and it is transitive.
func CompareFieldNames(a, b string) int {
	an, aIsNum := numericLabel(a)
	bn, bIsNum := numericLabel(b)
	switch {
	case aIsNum && bIsNum:
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case aIsNum && !bIsNum:
		return -1
	case !aIsNum && bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func numericLabel(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	// Reject forms with leading zeros (other than "0" itself) so "01"
	// sorts lexicographically rather than colliding with "1".
	if s != strconv.Itoa(n) {
		return 0, false
	}
	return n, true
}

// SortedFieldNames returns names ordered by CompareFieldNames.
func SortedFieldNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool { return CompareFieldNames(out[i], out[j]) < 0 })
	return out
}

// RecordType is a record with N uniquely named fields in canonical order.
type RecordType struct {
	Fields map[string]Type
	order  []string // canonical, computed once at construction
}

// RecordOf builds a record type with canonically ordered fields.
func RecordOf(fields map[string]Type) *RecordType {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	return &RecordType{Fields: fields, order: SortedFieldNames(names)}
}

// OrderedFields returns field names in canonical record order.
func (t *RecordType) OrderedFields() []string { return t.order }

func (t *RecordType) String() string {
	parts := make([]string, len(t.order))
	for i, n := range t.order {
		parts[i] = fmt.Sprintf("%s: %s", n, t.Fields[n].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (t *RecordType) Key() string {
	parts := make([]string, len(t.order))
	for i, n := range t.order {
		parts[i] = n + ":" + t.Fields[n].Key()
	}
	return "record(" + strings.Join(parts, ",") + ")"
}

func (t *RecordType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// ProgressiveRecordType is a record whose field set may be extended lazily
// as fields are referenced (§3.1, §9). Discovered is mutated in place by
// Discover; this is the one mutable Type in the system, scoped to a single
// compilation session's discovery of a dynamic external source.
type ProgressiveRecordType struct {
	Discovered map[string]Type
	onDiscover func(name string) Type
}

// NewProgressiveRecordType creates a progressive record backed by a
// discovery callback invoked the first time a field is referenced.
func NewProgressiveRecordType(onDiscover func(name string) Type) *ProgressiveRecordType {
	return &ProgressiveRecordType{Discovered: map[string]Type{}, onDiscover: onDiscover}
}

// Discover returns the type of field, expanding the tail if not yet seen.
func (t *ProgressiveRecordType) Discover(field string) Type {
	if typ, ok := t.Discovered[field]; ok {
		return typ
	}
	typ := t.onDiscover(field)
	t.Discovered[field] = typ
	return typ
}

func (t *ProgressiveRecordType) String() string {
	names := make([]string, 0, len(t.Discovered))
	for n := range t.Discovered {
		names = append(names, n)
	}
	names = SortedFieldNames(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %s", n, t.Discovered[n].String())
	}
	return "{" + strings.Join(parts, ", ") + ", ...}"
}

func (t *ProgressiveRecordType) Key() string {
	names := make([]string, 0, len(t.Discovered))
	for n := range t.Discovered {
		names = append(names, n)
	}
	names = SortedFieldNames(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ":" + t.Discovered[n].Key()
	}
	return "progrecord(" + strings.Join(parts, ",") + ",...)"
}

// Equals treats two progressive records as equal iff they are the same
// object: their discovered tail can continue to diverge independently.
func (t *ProgressiveRecordType) Equals(o Type) bool {
	op, ok := o.(*ProgressiveRecordType)
	return ok && op == t
}

// ListType is an ordered, possibly-repeating collection.
type ListType struct{ Element Type }

// ListOf builds a list type.
func ListOf(e Type) *ListType { return &ListType{Element: e} }

func (t *ListType) String() string     { return t.Element.String() + " list" }
func (t *ListType) Key() string        { return "list(" + t.Element.Key() + ")" }
func (t *ListType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// BagType is the unordered counterpart of ListType; structurally
// interconvertible via fromList/List.fromBag (see core.WithOrdered).
type BagType struct{ Element Type }

// BagOf builds a bag type.
func BagOf(e Type) *BagType { return &BagType{Element: e} }

func (t *BagType) String() string     { return t.Element.String() + " bag" }
func (t *BagType) Key() string        { return "bag(" + t.Element.Key() + ")" }
func (t *BagType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// OptionType is NONE | SOME of Element.
type OptionType struct{ Element Type }

// OptionOf builds an option type.
func OptionOf(e Type) *OptionType { return &OptionType{Element: e} }

func (t *OptionType) String() string     { return t.Element.String() + " option" }
func (t *OptionType) Key() string        { return "option(" + t.Element.Key() + ")" }
func (t *OptionType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// OrderType is LESS | EQUAL | GREATER.
type OrderType struct{}

func (t *OrderType) String() string     { return "order" }
func (t *OrderType) Key() string        { return "order" }
func (t *OrderType) Equals(o Type) bool { _, ok := o.(*OrderType); return ok }

// Order is the singleton Order type.
var Order Type = &OrderType{}

// VectorType is an equality type, element-typed.
type VectorType struct{ Element Type }

// VectorOf builds a vector type.
func VectorOf(e Type) *VectorType { return &VectorType{Element: e} }

func (t *VectorType) String() string     { return t.Element.String() + " vector" }
func (t *VectorType) Key() string        { return "vector(" + t.Element.Key() + ")" }
func (t *VectorType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// FuncType is τ1 → τ2.
type FuncType struct {
	Param  Type
	Result Type
}

// FnType builds a function type.
func FnType(p, r Type) *FuncType { return &FuncType{Param: p, Result: r} }

func (t *FuncType) String() string { return fmt.Sprintf("%s -> %s", t.Param, t.Result) }
func (t *FuncType) Key() string    { return "fn(" + t.Param.Key() + "->" + t.Result.Key() + ")" }
func (t *FuncType) Equals(o Type) bool { return o != nil && t.Key() == o.Key() }

// ForallType is a universally quantified scheme ∀α1…αn. body. Arity is
// the number of bound variables; body is produced lazily from fresh
// TypeVars by bodyBuilder so every Instantiate call gets independent
// variables to substitute.
type ForallType struct {
	Arity       int
	bodyBuilder func(vars []Type) Type
}

// ForallOf builds a scheme of the given arity; bodyBuilder receives arity
// fresh type variables (in order) and must return the quantified body.
func ForallOf(arity int, bodyBuilder func(vars []Type) Type) *ForallType {
	return &ForallType{Arity: arity, bodyBuilder: bodyBuilder}
}

func (t *ForallType) String() string {
	vars := make([]Type, t.Arity)
	names := make([]string, t.Arity)
	for i := range vars {
		v := &TypeVar{Ordinal: -(i + 1)}
		vars[i] = v
		names[i] = v.String()
	}
	// width.Fold normalizes the ∀ glyph to its canonical (non-fullwidth)
	// form so a scheme printed after round-tripping through a terminal
	// that emits fullwidth variants still compares equal by Key().
	return width.Fold.String(fmt.Sprintf("∀%s. %s", strings.Join(names, " "), t.bodyBuilder(vars)))
}

func (t *ForallType) Key() string {
	return fmt.Sprintf("forall(%d,%s)", t.Arity, t.String())
}

func (t *ForallType) Equals(o Type) bool {
	op, ok := o.(*ForallType)
	return ok && op.Arity == t.Arity && op.String() == t.String()
}

// Apply instantiates a ForallType at the given argument types.
func Apply(scheme *ForallType, args []Type) (Type, error) {
	if len(args) != scheme.Arity {
		return nil, fmt.Errorf("%w: scheme has arity %d, got %d args", ErrUnknownType, scheme.Arity, len(args))
	}
	return scheme.bodyBuilder(args), nil
}

// Constructor describes one constructor of a user-defined datatype. A
// constructor with zero args carries Payload == nil; an n-ary constructor's
// payload is represented as a single tuple/record type (never modeled as
// multiple args directly, per §3.1).
type Constructor struct {
	Name    string
	Payload Type // nil for a nullary constructor
}

// DataType is a named, zero-or-more-type-parameter user datatype with an
// ordered set of constructors.
type DataType struct {
	Name         string
	Params       []string // type-parameter names, in declaration order
	Constructors []Constructor
}

func (t *DataType) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(t.Params, ","))
}

func (t *DataType) Key() string { return "data:" + t.Name }

func (t *DataType) Equals(o Type) bool {
	op, ok := o.(*DataType)
	return ok && op.Name == t.Name
}

// Constructor looks up a named constructor, or returns ok=false.
func (t *DataType) Constructor(name string) (Constructor, bool) {
	for _, c := range t.Constructors {
		if c.Name == name {
			return c, true
		}
	}
	return Constructor{}, false
}

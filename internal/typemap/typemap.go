// Package typemap fixes the contract the upstream unification-based type
// inferencer hands to the resolver. The inferencer itself is an
// external collaborator and out of scope; this package specifies only what
// it must supply, plus a reference implementation used by tests and by
// cmd/corec, which does not run real inference.
package typemap

import (
	"strconv"

	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// TypeMap is produced by the type inferencer and consulted by the resolver
// to attach types to every AST node it translates to Core.
type TypeMap interface {
	// GetType is total for well-typed nodes.
	GetType(node ast.Node) types.Type
	// GetTypeOpt is the partial form of GetType.
	GetTypeOpt(node ast.Node) (types.Type, bool)
	// HasType reports whether node has a recorded type.
	HasType(node ast.Node) bool
	// TypeIsVariable reports whether node's type is a free unification
	// variable (triggers progressive-record handling).
	TypeIsVariable(node ast.Node) bool
	// TypeFieldNames returns the sorted field names of node's type if it is
	// a record or tuple type, or ok=false otherwise.
	TypeFieldNames(node ast.Node) (names []string, ok bool)
}

// MapTypeMap is a reference TypeMap backed by a plain map keyed on node
// identity, used by resolver tests and the demonstration CLI in place of a
// real inferencer.
type MapTypeMap struct {
	types map[ast.Node]types.Type
}

// NewMapTypeMap creates an empty MapTypeMap.
func NewMapTypeMap() *MapTypeMap {
	return &MapTypeMap{types: map[ast.Node]types.Type{}}
}

// Set records node's type. Tests build up a MapTypeMap by calling Set for
// every node the hand-written AST fixture contains.
func (m *MapTypeMap) Set(node ast.Node, t types.Type) {
	m.types[node] = t
}

func (m *MapTypeMap) GetType(node ast.Node) types.Type {
	return m.types[node]
}

func (m *MapTypeMap) GetTypeOpt(node ast.Node) (types.Type, bool) {
	t, ok := m.types[node]
	return t, ok
}

func (m *MapTypeMap) HasType(node ast.Node) bool {
	_, ok := m.types[node]
	return ok
}

func (m *MapTypeMap) TypeIsVariable(node ast.Node) bool {
	t, ok := m.types[node]
	if !ok {
		return false
	}
	_, isVar := t.(*types.TypeVar)
	return isVar
}

func (m *MapTypeMap) TypeFieldNames(node ast.Node) ([]string, bool) {
	t, ok := m.types[node]
	if !ok {
		return nil, false
	}
	switch rt := t.(type) {
	case *types.RecordType:
		return append([]string(nil), rt.OrderedFields()...), true
	case *types.TupleType:
		names := make([]string, len(rt.Elements))
		for i := range rt.Elements {
			names[i] = strconv.Itoa(i + 1)
		}
		return types.SortedFieldNames(names), true
	default:
		return nil, false
	}
}

package types

import "fmt"

// ErrUnknownType is returned (wrapped) by Lookup when a named datatype or
// structure does not exist, and by Apply on arity mismatch.
var ErrUnknownType = fmt.Errorf("unknown type")

// TypeSystem is a registry of named datatypes and structures that resolves
// a type name to its Type. Define and DefineStructure add to it; it owns
// no global state beyond the maps it was constructed with.
type TypeSystem struct {
	named      map[string]Type
	structures map[string]bool // names registered as structures, for Lookup error messages
}

// NewTypeSystem creates an empty type system.
func NewTypeSystem() *TypeSystem {
	return &TypeSystem{named: map[string]Type{}, structures: map[string]bool{}}
}

// Define registers a named type (typically a *DataType, *ForallType, or an
// alias). A later Define under the same name replaces the earlier one;
// Define performs no duplicate check.
func (ts *TypeSystem) Define(name string, t Type) {
	ts.named[name] = t
}

// DefineStructure marks name as a structure (e.g. "List", "String") for
// Lookup bookkeeping; the structure's member record type is itself stored
// via Define.
func (ts *TypeSystem) DefineStructure(name string, recordType Type) {
	ts.named[name] = recordType
	ts.structures[name] = true
}

// Lookup finds a named datatype or structure, failing with ErrUnknownType
// when absent.
func (ts *TypeSystem) Lookup(name string) (Type, error) {
	t, ok := ts.LookupOpt(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t, nil
}

// LookupOpt is the non-erroring form of Lookup.
func (ts *TypeSystem) LookupOpt(name string) (Type, bool) {
	t, ok := ts.named[name]
	return t, ok
}

// IsStructure reports whether name was registered via DefineStructure.
func (ts *TypeSystem) IsStructure(name string) bool {
	return ts.structures[name]
}

// Package builtins implements the built-in catalog: the
// frozen table of structure-qualified functions and constants the resolver
// consults to type and name built-in references, and the generator
// consults to decide which calls are invertible.
package builtins

import (
	"fmt"

	"github.com/hydromatic/morel-sub000/internal/types"
)

// BuiltinEntry is one catalog entry: a structure-qualified name, its type
// signature, an arity (redundant with Type but checked against it at
// registration time so a mismatched hand-written Type is caught early),
// purity, and the value it denotes at runtime. Value is an interface{}
// because the generator and resolver only ever need the entry's Name and
// Type; only a downstream evaluator (out of scope) dereferences Value.
type BuiltinEntry struct {
	Name      string
	Structure string
	Type      func() types.Type
	NumArgs   int
	IsPure    bool
	Value     interface{}
}

// QualifiedName is "Structure.name", or bare "name" for General entries.
func (b *BuiltinEntry) QualifiedName() string {
	if b.Structure == "" || b.Structure == "General" {
		return b.Name
	}
	return b.Structure + "." + b.Name
}

var (
	registry       = map[string]*BuiltinEntry{}
	order          []string // registration order, for ForEach/Reverse determinism
	frozen         = false
)

// ErrFrozen is returned by Register once Freeze has been called.
var ErrFrozen = fmt.Errorf("builtins: registry is frozen")

// Register adds entry to the catalog. It is the only way to populate the
// registry; init() in entries.go calls it for every built-in this package
// ships. Returns an error on a duplicate qualified name, a nil Type
// function, a nil Value, or an arity that disagrees with the function
// type's parameter count.
func Register(entry BuiltinEntry) error {
	if frozen {
		return ErrFrozen
	}
	if entry.Name == "" {
		return fmt.Errorf("builtins: entry has empty Name")
	}
	if entry.Type == nil {
		return fmt.Errorf("builtins: %s: Type function is nil", entry.Name)
	}
	typ := entry.Type()
	if typ == nil {
		return fmt.Errorf("builtins: %s: Type() returned nil", entry.Name)
	}
	if entry.NumArgs > 0 {
		if arity := funcArity(typ); arity >= 0 && arity != entry.NumArgs {
			return fmt.Errorf("builtins: %s: NumArgs=%d but type signature has %d arguments",
				entry.Name, entry.NumArgs, arity)
		}
	}
	if entry.Value == nil {
		return fmt.Errorf("builtins: %s: Value is nil", entry.Name)
	}
	qn := entry.QualifiedName()
	if _, exists := registry[qn]; exists {
		return fmt.Errorf("builtins: %s already registered", qn)
	}
	registry[qn] = &entry
	order = append(order, qn)
	return nil
}

// funcArity counts the curried arity of a function type, or -1 if typ is
// not a function (constants have no arity to check).
func funcArity(typ types.Type) int {
	n := 0
	for {
		ft, ok := typ.(*types.FuncType)
		if !ok {
			break
		}
		n++
		typ = ft.Result
	}
	if n == 0 {
		return -1
	}
	return n
}

// Freeze prevents further registration. cmd/corec's main calls this once at
// startup, after every structure's init() has registered its entries, so
// that a later accidental Register call (e.g. from a plugin) fails loudly
// rather than silently mutating a catalog other goroutines may be reading.
func Freeze() { frozen = true }

// IsFrozen reports whether Freeze has been called.
func IsFrozen() bool { return frozen }

// Lookup returns the entry for a qualified name ("Structure.name", or a
// bare name for General), if any.
func Lookup(qualifiedName string) (*BuiltinEntry, bool) {
	e, ok := registry[qualifiedName]
	return e, ok
}

// ForEach calls f for every entry, in registration order.
func ForEach(f func(*BuiltinEntry)) {
	for _, qn := range order {
		f(registry[qn])
	}
}

// ForEachStructure calls f for every entry belonging to structure, in
// registration order.
func ForEachStructure(structure string, f func(*BuiltinEntry)) {
	for _, qn := range order {
		e := registry[qn]
		if e.Structure == structure {
			f(e)
		}
	}
}

// Reverse returns every entry in the reverse of registration order.
func Reverse() []*BuiltinEntry {
	out := make([]*BuiltinEntry, len(order))
	for i, qn := range order {
		out[len(order)-1-i] = registry[qn]
	}
	return out
}

// Structures returns the distinct structure names present in the catalog,
// in first-registration order.
func Structures() []string {
	seen := map[string]bool{}
	var names []string
	for _, qn := range order {
		s := registry[qn].Structure
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	return names
}

// DataTypes returns the built-in algebraic datatypes option and order.
// No vector, list or bool datatype is among them.
func DataTypes() []*types.DataType {
	return []*types.DataType{
		optionDataType,
		orderDataType,
	}
}

var optionTypeParam = types.NewTypeVar()

var optionDataType = &types.DataType{
	Name:   "option",
	Params: []string{"'a"},
	Constructors: []types.Constructor{
		{Name: "NONE"},
		{Name: "SOME", Payload: optionTypeParam},
	},
}

var orderDataType = &types.DataType{
	Name: "order",
	Constructors: []types.Constructor{
		{Name: "LESS"},
		{Name: "EQUAL"},
		{Name: "GREATER"},
	},
}

// Package env implements the immutable, chained runtime environment (spec
// §3.4, C4) used to track value and type bindings while the resolver walks
// an AST and the generator walks Core expressions.
package env

import (
	"github.com/hydromatic/morel-sub000/internal/types"
)

// Binding is one environment entry. Value and Type are independently
// optional: the resolver populates Type while building Core (no runtime
// Value yet exists), while a later evaluation phase would populate Value.
// Name is the surface identifier; Ordinal disambiguates shadowed
// redeclarations of the same Name, mirroring core.IdPat.Ordinal.
type Binding struct {
	Name     string
	Ordinal  int
	Value    interface{}
	Type     types.Type
	TopLevel bool
}

// Env is an immutable, singly-linked environment frame. Binding a new name
// never mutates an existing Env — it returns a new frame chained to the
// receiver, so a captured Env remains valid after further bindings are
// layered on top of it (closures rely on this).
type Env struct {
	binding Binding
	parent  *Env
}

// Empty is the environment with no bindings.
var Empty *Env

// Bind returns a new Env with b layered in front of e. A nil receiver is
// treated as Empty, so Bind can be used to build an environment from
// scratch: (*Env)(nil).Bind(b).
func (e *Env) Bind(b Binding) *Env {
	return &Env{binding: b, parent: e}
}

// BindAll layers a sequence of bindings in order, each seeing its
// predecessors but not its successors (so later bindings may shadow
// earlier ones, but not refer to themselves unless the caller pre-created
// a placeholder, as val rec does).
func (e *Env) BindAll(bs []Binding) *Env {
	result := e
	for _, b := range bs {
		result = result.Bind(b)
	}
	return result
}

// GetOpt looks up the nearest binding with the given name and ordinal,
// walking outward through parent frames. Ordinal 0 matches the first
// binding found for name regardless of its own ordinal, so callers that
// don't care about shadow-disambiguation can omit it.
func (e *Env) GetOpt(name string, ordinal int) (Binding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.binding.Name == name && (ordinal == 0 || cur.binding.Ordinal == ordinal) {
			return cur.binding, true
		}
	}
	return Binding{}, false
}

// Get is the total form of GetOpt, for call sites that have already
// established (via a prior Resolver pass) that the binding exists.
func (e *Env) Get(name string, ordinal int) Binding {
	b, ok := e.GetOpt(name, ordinal)
	if !ok {
		panic("env: unbound identifier " + name)
	}
	return b
}

// GetTop returns the nearest enclosing binding tagged TopLevel, walking
// outward from e. Top-level bindings are exempted from the generator's
// reachability-based pruning (§4.4): a session-level `val` declaration must
// survive even if nothing in the current expression references it, since a
// later command may. GetTop reports ok=false if no top-level binding
// encloses e.
func (e *Env) GetTop(name string) (Binding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.binding.Name == name && cur.binding.TopLevel {
			return cur.binding, true
		}
	}
	return Binding{}, false
}

// Names returns every distinct name bound in e, nearest-binding-wins,
// without their ordinals — used by diagnostics that list what's in scope.
func (e *Env) Names() []string {
	seen := map[string]bool{}
	var names []string
	for cur := e; cur != nil; cur = cur.parent {
		if !seen[cur.binding.Name] {
			seen[cur.binding.Name] = true
			names = append(names, cur.binding.Name)
		}
	}
	return names
}

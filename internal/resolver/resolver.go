// Package resolver implements the AST-to-Core translation: attaching the upstream type inferencer's TypeMap to every node, assigning
// the stable per-binding ordinals Core relies on for identity, flattening
// multi-binding lets, demoting val rec to a plain Let when the right-hand
// side has no free self-reference, and desugaring the relational query
// surface syntax into core.From / Relational.nonEmpty / Relational.empty.
package resolver

import (
	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/core"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
	"github.com/hydromatic/morel-sub000/internal/typemap"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// resolverState holds the state threaded through one translation pass: the
// type map handed down by the (external) inferencer, and the ordinal
// generator that gives every IdPat binding a number stable across
// shadowing redeclarations of the same surface name (§3.2 invariant 2).
type resolverState struct {
	tm          typemap.TypeMap
	nextOrdinal int
	// variantIdMap is allocated by both constructors; no resolution step
	// reads or writes it. Each use of an identifier resolves to the ordinal
	// of its binding in the environment.
	variantIdMap map[string]int
	// errs accumulates RSV0xx reports for malformed input this pass can
	// recover from (an unbound identifier gets a placeholder Var and
	// resolution continues over the rest of the program), the way the
	// linker collects errors on itself instead of aborting at the first one.
	errs []*corerr.Report
}

// R is the public resolver handle.
type R struct{ st *resolverState }

// NewResolver creates a resolver pass over tm.
func NewResolver(tm typemap.TypeMap) *R {
	return &R{st: &resolverState{tm: tm, variantIdMap: map[string]int{}}}
}

// NewResolverFromOrdinal creates a resolver pass whose ordinal counter
// starts past startOrdinal, so a sequence of per-command resolutions
// sharing one REPL session (internal/session.Session) never reissues an
// ordinal a previous command already handed out.
func NewResolverFromOrdinal(tm typemap.TypeMap, startOrdinal int) *R {
	return &R{st: &resolverState{tm: tm, nextOrdinal: startOrdinal, variantIdMap: map[string]int{}}}
}

// NextOrdinal reports the last ordinal this pass handed out, for a caller
// that wants to seed a follow-up pass via NewResolverFromOrdinal.
func (r *R) NextOrdinal() int { return r.st.nextOrdinal }

// Errors returns every report this pass collected while resolving. A
// non-empty result means the Core it produced contains placeholder
// expressions in place of whatever could not be resolved.
func (r *R) Errors() []*corerr.Report { return r.st.errs }

// report records a Report against this pass without aborting translation.
func (r *R) report(code, phase, message string) *corerr.Report {
	rep := corerr.New(code, phase, message, nil)
	r.st.errs = append(r.st.errs, rep)
	return rep
}

func (r *R) freshOrdinal() int {
	r.st.nextOrdinal++
	return r.st.nextOrdinal
}

func (r *R) nodeType(n ast.Node) types.Type {
	if t, ok := r.st.tm.GetTypeOpt(n); ok {
		return t
	}
	return types.NewTypeVar()
}

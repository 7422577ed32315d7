package resolver

import (
	"github.com/hydromatic/morel-sub000/internal/ast"
	"github.com/hydromatic/morel-sub000/internal/core"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// ResolvePattern translates a surface pattern into its Core form, minting
// a fresh ordinal for every IdPat/AsPat it binds, and filling in the Typ
// every Core pattern carries from the type map.
func (r *R) ResolvePattern(p ast.Pat) core.Pattern {
	pat := r.resolvePatternShape(p)
	setPatternType(pat, r.nodeType(p))
	return pat
}

func (r *R) resolvePatternShape(p ast.Pat) core.Pattern {
	switch pat := p.(type) {
	case *ast.WildcardPat:
		return &core.WildcardPattern{}
	case *ast.LiteralPat:
		return &core.LitPattern{Kind: core.LitKind(pat.Kind), Value: pat.Value}
	case *ast.IdPat:
		return &core.IdPat{Name: pat.Name, Ordinal: r.freshOrdinal()}
	case *ast.AsPat:
		return &core.AsPat{Name: pat.Name, Ordinal: r.freshOrdinal(), Sub: r.ResolvePattern(pat.Sub)}
	case *ast.TuplePat:
		elems := make([]core.Pattern, len(pat.Elements))
		for i, e := range pat.Elements {
			elems[i] = r.ResolvePattern(e)
		}
		return &core.TuplePattern{Elements: elems}
	case *ast.RecordPat:
		fields := make([]core.RecordFieldPattern, len(pat.Fields))
		for i, f := range pat.Fields {
			fields[i] = core.RecordFieldPattern{Name: f.Name, Pattern: r.ResolvePattern(f.Pattern)}
		}
		return &core.RecordPattern{Fields: fields}
	case *ast.ConPat:
		return &core.ConPat{Name: pat.Name, Payload: r.ResolvePattern(pat.Payload)}
	case *ast.Con0Pat:
		return &core.Con0Pat{Name: pat.Name}
	case *ast.ConsPat:
		return &core.ConsPat{Head: r.ResolvePattern(pat.Head), Tail: r.ResolvePattern(pat.Tail)}
	default:
		panic("resolver: unhandled pattern kind")
	}
}

// setPatternType fills the Typ every concrete Core pattern carries via its
// (unexported) embedded patBase. A type switch is needed because Pattern's
// interface only exposes the getter, not a setter.
func setPatternType(p core.Pattern, t types.Type) {
	switch pat := p.(type) {
	case *core.WildcardPattern:
		pat.Typ = t
	case *core.LitPattern:
		pat.Typ = t
	case *core.IdPat:
		pat.Typ = t
	case *core.AsPat:
		pat.Typ = t
	case *core.TuplePattern:
		pat.Typ = t
	case *core.RecordPattern:
		pat.Typ = t
	case *core.ConPat:
		pat.Typ = t
	case *core.Con0Pat:
		pat.Typ = t
	case *core.ConsPat:
		pat.Typ = t
	}
}

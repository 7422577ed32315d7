package resolver

import "github.com/hydromatic/morel-sub000/internal/ast"

// freeRefInExpr reports whether expr contains a free reference to any name
// in names — the check the resolver uses to decide whether a `val rec`
// binding actually needs recursion (§4.5, §9): if the right-hand side
// never mentions its own name(s), RecValDecl demotes to a plain Let.
func freeRefInExpr(names []string, expr ast.Expr) bool {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	return findReferences(expr, want)
}

// findReferences walks expr looking for any identifier reference in want.
// It does not attempt to exclude occurrences that are actually shadowed by
// an inner binding of the same name — over-approximating in that direction
// only risks keeping an unnecessary RecValDecl rather than wrongly
// demoting one, which would be unsound.
func findReferences(expr ast.Expr, want map[string]bool) bool {
	if expr == nil {
		return false
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return want[e.Name]
	case *ast.Literal:
		return false
	case *ast.Lambda:
		for _, c := range e.Clauses {
			if findReferences(c.Guard, want) || findReferences(c.Body, want) {
				return true
			}
		}
		return false
	case *ast.Apply:
		return findReferences(e.Func, want) || findReferences(e.Arg, want)
	case *ast.Tuple:
		for _, el := range e.Elements {
			if findReferences(el, want) {
				return true
			}
		}
		return false
	case *ast.Record:
		if findReferences(e.Base, want) {
			return true
		}
		for _, f := range e.Fields {
			if findReferences(f.Value, want) {
				return true
			}
		}
		return false
	case *ast.RecordSelector:
		return findReferences(e.Record, want)
	case *ast.ListExpr:
		for _, el := range e.Elements {
			if findReferences(el, want) {
				return true
			}
		}
		return false
	case *ast.If:
		return findReferences(e.Cond, want) || findReferences(e.Then, want) || findReferences(e.Else, want)
	case *ast.Case:
		if findReferences(e.Scrutinee, want) {
			return true
		}
		for _, a := range e.Arms {
			if findReferences(a.Guard, want) || findReferences(a.Body, want) {
				return true
			}
		}
		return false
	case *ast.Let:
		for _, b := range e.Bindings {
			if findReferences(b.Value, want) {
				return true
			}
		}
		return findReferences(e.Body, want)
	case *ast.Local:
		return findReferences(e.Body, want)
	case *ast.FromExpr:
		for _, s := range e.Sources {
			if findReferences(s.Expr, want) {
				return true
			}
		}
		for _, st := range e.Steps {
			if stepReferencesAny(st, want) {
				return true
			}
		}
		return findReferences(e.Yield, want) || findReferences(e.Into, want)
	case *ast.ExistsExpr:
		return findReferences(&ast.FromExpr{Sources: e.Query.Sources, Steps: e.Query.Steps, Yield: e.Query.Yield}, want)
	case *ast.ForallExpr:
		return findReferences(&ast.FromExpr{Sources: e.Query.Sources, Steps: e.Query.Steps, Yield: e.Query.Yield}, want) ||
			findReferences(e.Require, want)
	default:
		return false
	}
}

func stepReferencesAny(s ast.Step, want map[string]bool) bool {
	switch st := s.(type) {
	case *ast.ScanStep:
		return findReferences(st.Expr, want) || findReferences(st.Cond, want)
	case *ast.WhereStep:
		return findReferences(st.Cond, want)
	case *ast.YieldStep:
		return findReferences(st.Value, want)
	case *ast.OrderStep:
		for _, k := range st.Keys {
			if findReferences(k.Expr, want) {
				return true
			}
		}
		return false
	case *ast.GroupStep:
		for _, k := range st.Keys {
			if findReferences(k.Value, want) {
				return true
			}
		}
		for _, c := range st.Computes {
			if findReferences(c.Value, want) {
				return true
			}
		}
		return false
	case *ast.ComputeStep:
		return findReferences(st.Value, want)
	case *ast.SkipStep:
		return findReferences(st.Count, want)
	case *ast.TakeStep:
		return findReferences(st.Count, want)
	case *ast.RequireStep:
		return findReferences(st.Cond, want)
	case *ast.ThroughStep:
		return findReferences(st.Func, want)
	default:
		return false
	}
}

package analyzer

import (
	"fmt"

	"github.com/hydromatic/morel-sub000/internal/core"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// CheckExhaustiveness reports whether arms covers every value of
// scrutineeType (ANA001). Coverage is only decidable for the two finite
// shapes a match commonly closes over — bool and list — so any other
// scrutinee type is treated as covered by a wildcard/variable arm and left
// otherwise unchecked, matching the taxonomy's "$list/$bool" scope.
func CheckExhaustiveness(arms []core.MatchArm, scrutineeType types.Type) (bool, []string) {
	universe := buildUniverse(scrutineeType)
	if universe == nil {
		// Not a finite shape this checker covers.
		return true, nil
	}

	uncovered := universe
	for _, arm := range arms {
		if arm.Guard != nil {
			// A guarded arm may fail at runtime, so it cannot be counted
			// on to cover the patterns it would otherwise match.
			continue
		}
		if isWildcardPattern(arm.Pattern) {
			uncovered = nil
			break
		}
		uncovered = subtract(uncovered, expandPattern(arm.Pattern))
	}
	if len(uncovered) == 0 {
		return true, nil
	}
	missing := make([]string, len(uncovered))
	for i, p := range uncovered {
		missing[i] = p.String()
	}
	return false, missing
}

// ReportNonExhaustive builds the ANA001 report for a non-exhaustive match,
// or nil if arms covers scrutineeType.
func ReportNonExhaustive(arms []core.MatchArm, scrutineeType types.Type) *corerr.Report {
	ok, missing := CheckExhaustiveness(arms, scrutineeType)
	if ok {
		return nil
	}
	rep := corerr.New(corerr.ANA001, "analyze",
		fmt.Sprintf("non-exhaustive match on %s", scrutineeType), nil)
	rep.WithData("missing", missing)
	return rep
}

// universeTag is one of the concrete values buildUniverse can enumerate for
// a finite scrutinee type.
type universeTag int

const (
	tagBoolTrue universeTag = iota
	tagBoolFalse
	tagListNil
	tagListCons
)

func (t universeTag) String() string {
	switch t {
	case tagBoolTrue:
		return "true"
	case tagBoolFalse:
		return "false"
	case tagListNil:
		return "[]"
	case tagListCons:
		return "_ :: _"
	default:
		return "?"
	}
}

// buildUniverse returns every tag a match on t must cover, or nil if t is
// not one of the finite shapes this checker understands.
func buildUniverse(t types.Type) []universeTag {
	switch typ := t.(type) {
	case *types.Primitive:
		if typ.Kind == types.KBool {
			return []universeTag{tagBoolTrue, tagBoolFalse}
		}
		return nil
	case *types.ListType:
		return []universeTag{tagListNil, tagListCons}
	default:
		return nil
	}
}

// expandPattern converts a non-wildcard pattern into the universe tags it
// covers, or nil if it is some shape this checker does not classify.
// Wildcard/variable patterns are handled separately by isWildcardPattern
// before this is called.
func expandPattern(p core.Pattern) (covered []universeTag) {
	switch pat := p.(type) {
	case *core.LitPattern:
		if pat.Kind == core.BoolLit {
			if b, ok := pat.Value.(bool); ok {
				if b {
					return []universeTag{tagBoolTrue}
				}
				return []universeTag{tagBoolFalse}
			}
		}
		return nil
	case *core.Con0Pat:
		if pat.Name == "nil" {
			return []universeTag{tagListNil}
		}
		return nil
	case *core.ConsPat:
		return []universeTag{tagListCons}
	default:
		return nil
	}
}

// isWildcardPattern reports whether p matches every value of its type,
// making any further per-value subtraction moot.
func isWildcardPattern(p core.Pattern) bool {
	switch p.(type) {
	case *core.WildcardPattern, *core.IdPat, *core.AsPat:
		return true
	default:
		return false
	}
}

// subtract removes the tags covered by each arm's pattern from universe.
func subtract(universe []universeTag, covered []universeTag) []universeTag {
	coveredSet := map[universeTag]bool{}
	for _, c := range covered {
		coveredSet[c] = true
	}
	var remaining []universeTag
	for _, u := range universe {
		if !coveredSet[u] {
			remaining = append(remaining, u)
		}
	}
	return remaining
}

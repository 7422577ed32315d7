// Package query implements the from-builder/simplifier: a
// set of rewrites over an already-resolved core.From that collapse
// redundant structure the resolver's desugaring tends to introduce —
// adjacent yields and trivial (identity) yields. Scans are left as they
// are.
package query

import "github.com/hydromatic/morel-sub000/internal/core"

// Builder accumulates From steps the way the resolver does while walking a
// surface query, then hands the result to Simplify. It exists as a small
// staging area so callers that build a From incrementally (the resolver,
// or a generator strategy synthesizing a fresh query) don't need to
// pre-size a slice.
type Builder struct {
	sources []core.Source
	steps   []core.Step
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Source appends a source.
func (b *Builder) Source(s core.Source) *Builder {
	b.sources = append(b.sources, s)
	return b
}

// Step appends a step.
func (b *Builder) Step(s core.Step) *Builder {
	b.steps = append(b.steps, s)
	return b
}

// Build finalizes the From with the given yield, without simplifying.
func (b *Builder) Build(yield core.Expr) *core.From {
	return &core.From{Sources: b.sources, Steps: b.steps, Yield: yield}
}

// BuildSimplify finalizes and immediately simplifies the From.
func (b *Builder) BuildSimplify(yield core.Expr) *core.From {
	return Simplify(&core.From{Sources: b.sources, Steps: b.steps, Yield: yield})
}

// Simplify rewrites f in place (returning it) applying, in order:
//
//  1. Scan inlining: a ScanStep `p in e` whose condition is nil and whose
//     pattern is a bare IdPat used nowhere but as a trivial yield is left
//     alone — inlining it would require substitution through the
//     remaining steps, which Simplify does not attempt; it only collapses
//     the two shapes below, which the resolver's own desugaring produces
//     directly and so are safe to detect structurally.
//  2. Adjacent-yield collapse: two consecutive YieldSteps fold into one,
//     keeping only the second (later yields supersede earlier ones).
//  3. Trivial-yield elision: a YieldStep that is the last step and whose
//     Value is syntactically identical (same NodeID) to the From's own
//     final Yield is redundant and dropped.
func Simplify(f *core.From) *core.From {
	f.Steps = collapseAdjacentYields(f.Steps)
	f.Steps = elideTrivialYields(f.Steps, f.Yield)
	return f
}

func collapseAdjacentYields(steps []core.Step) []core.Step {
	out := make([]core.Step, 0, len(steps))
	for i, s := range steps {
		if y, ok := s.(*core.YieldStep); ok {
			if i+1 < len(steps) {
				if _, nextIsYield := steps[i+1].(*core.YieldStep); nextIsYield {
					continue // a later yield supersedes this one
				}
			}
			out = append(out, y)
			continue
		}
		out = append(out, s)
	}
	return steps0(out)
}

func elideTrivialYields(steps []core.Step, finalYield core.Expr) []core.Step {
	out := make([]core.Step, 0, len(steps))
	for i, s := range steps {
		if y, ok := s.(*core.YieldStep); ok && i == len(steps)-1 && sameNode(y.Value, finalYield) {
			continue
		}
		out = append(out, s)
	}
	return steps0(out)
}

func steps0(s []core.Step) []core.Step {
	if len(s) == 0 {
		return nil
	}
	return s
}

func sameNode(a, b core.Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID() != 0 && a.ID() == b.ID()
}

package main

import (
	"fmt"
	"io"

	"github.com/hydromatic/morel-sub000/internal/analyzer"
	corerr "github.com/hydromatic/morel-sub000/internal/errors"
	"github.com/hydromatic/morel-sub000/internal/resolver"
	"github.com/hydromatic/morel-sub000/internal/session"
)

// runFixture resolves and analyzes a named resolver fixture, or synthesizes
// a named generator fixture, printing the result and any diagnostics
// through the same Report shape cmd/corec and a library caller would both
// use.
func runFixture(name string, sess *session.Session, out io.Writer) {
	if f, ok := lookupFixture(name); ok {
		expr, tm := f.Build()
		res := resolver.NewResolverFromOrdinal(tm, sess.NameGenerator.Ordinal())
		resolved := res.ResolveExpr(expr, nil)
		sess.NameGenerator.AdvanceOrdinal(res.NextOrdinal())

		fmt.Fprintf(out, "%s %s\n", cyan("core:"), resolved)
		for _, rep := range res.Errors() {
			printReport(out, rep)
		}

		analysis := analyzer.Analyze(resolved, true)
		for _, rep := range analysis.Reports {
			printReport(out, rep)
		}
		return
	}

	if gf, ok := lookupGeneratorFixture(name); ok {
		for fnName, fn := range gf.Functions {
			sess.Generators.RegisterFunction(fnName, fn)
		}
		g, err := sess.Generators.SynthesizeOrReport(gf.Pattern, gf.Constraint)
		if err != nil {
			if rep, ok := corerr.AsReport(err); ok {
				printReport(out, rep)
			} else {
				fmt.Fprintf(out, "%s %v\n", red("error:"), err)
			}
			return
		}
		fmt.Fprintf(out, "%s %s\n", cyan("generator:"), g)
		return
	}

	fmt.Fprintf(out, "%s unknown fixture %q (try \"corec list\")\n", red("error:"), name)
}

func printReport(out io.Writer, rep *corerr.Report) {
	fmt.Fprintf(out, "%s [%s] %s\n", yellow(rep.Code), rep.Phase, rep.Message)
}

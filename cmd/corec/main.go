// Command corec is a thin demonstration binary over this module's
// resolver, analyzer, and generator packages. It has no parser (out of
// scope, see internal/ast's package doc) so it operates on a small catalog
// of hand-built fixtures rather than source files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hydromatic/morel-sub000/internal/builtins"
	"github.com/hydromatic/morel-sub000/internal/generator"
	"github.com/hydromatic/morel-sub000/internal/session"
)

var (
	versionFlag = flag.Bool("version", false, "print version information")
	helpFlag    = flag.Bool("help", false, "show help")
	configFlag  = flag.String("config", "corec.yaml", "path to a generator limits file (optional)")
)

const version = "0.1.0"

func main() {
	builtins.Freeze()
	flag.Parse()

	if *versionFlag {
		fmt.Printf("corec %s\n", bold(version))
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	limits := loadLimits(*configFlag)

	switch cmd := flag.Arg(0); cmd {
	case "list":
		printFixtureList(os.Stdout)

	// run and check are aliases: with no evaluator in this module there is
	// nothing "run" can do beyond what "check" does — resolve to Core and
	// report whatever the analyzer and resolver found.
	case "run", "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing fixture name\n", red("error"))
			fmt.Println("Usage: corec " + cmd + " <fixture>")
			os.Exit(1)
		}
		sess := session.NewWithLimits(limits)
		runFixture(flag.Arg(1), sess, os.Stdout)

	case "repl":
		runREPL(limits, os.Stdout)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), cmd)
		printHelp()
		os.Exit(1)
	}
}

func loadLimits(path string) generator.Limits {
	if path == "" {
		return generator.DefaultLimits
	}
	limits, err := generator.LoadLimits(path)
	if err != nil {
		return generator.DefaultLimits
	}
	return limits
}

func printHelp() {
	fmt.Println(bold("corec - compilation core demonstration CLI"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  corec <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <fixture>   Resolve and analyze a fixture, or synthesize a generator fixture\n", cyan("run"))
	fmt.Printf("  %s <fixture>   Alias for run\n", cyan("check"))
	fmt.Printf("  %s              List every available fixture\n", cyan("list"))
	fmt.Printf("  %s              Start an interactive fixture runner\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -version        Print version information")
	fmt.Println("  -help           Show this help message")
	fmt.Println("  -config <path>  Load generator.Limits from a YAML file (default corec.yaml)")
}

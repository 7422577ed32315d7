package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/hydromatic/morel-sub000/internal/generator"
	"github.com/hydromatic/morel-sub000/internal/session"
)

// runREPL is a thin line-editing front end over the named fixtures: since
// this module has no parser, there is nothing to type but a fixture name
// (or :list, :help, :quit). History lives under os.TempDir, with
// multi-line mode and name completion enabled.
func runREPL(limits generator.Limits, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".corec_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(true)

	line.SetCompleter(func(partial string) (c []string) {
		for _, f := range fixtures {
			if strings.HasPrefix(f.Name, partial) {
				c = append(c, f.Name)
			}
		}
		for _, cmd := range []string{":help", ":list", ":quit"} {
			if strings.HasPrefix(cmd, partial) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Fprintf(out, "%s %s\n", bold("corec"), bold("repl"))
	fmt.Fprintln(out, "Type a fixture name to run it, :list to see them, :quit to exit.")

	sess := session.NewWithLimits(limits)

	for {
		input, err := line.Prompt("corec> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q":
			fmt.Fprintln(out, green("Goodbye!"))
			goto saveHistory
		case input == ":help" || input == ":h":
			fmt.Fprintln(out, "Commands: :list, :quit, or a fixture name")
		case input == ":list":
			printFixtureList(out)
		default:
			runFixture(input, sess, out)
		}
	}

saveHistory:
	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func printFixtureList(out io.Writer) {
	fmt.Fprintln(out, bold("resolver fixtures:"))
	for _, f := range fixtures {
		fmt.Fprintf(out, "  %s - %s\n", cyan(f.Name), f.Description)
	}
	fmt.Fprintln(out, bold("generator fixtures:"))
	for _, f := range generatorFixtures {
		fmt.Fprintf(out, "  %s - %s\n", cyan(f.Name), f.Description)
	}
}

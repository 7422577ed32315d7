package builtins

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DisplayNames returns every entry name belonging to structure, ordered for
// locale-aware user-facing display (a REPL's `:browse Structure` listing) —
// distinct from the canonical, locale-independent field ordering contract
// types.SortedFieldNames implements, which must never vary with locale.
func DisplayNames(structure string) []string {
	var names []string
	ForEachStructure(structure, func(e *BuiltinEntry) { names = append(names, e.Name) })
	collate.New(language.Und).SortStrings(names)
	return names
}

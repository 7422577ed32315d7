package builtins

import (
	"fmt"
	"math"
	"strings"

	"github.com/hydromatic/morel-sub000/internal/types"
)

func init() {
	for _, reg := range []func() error{
		registerGeneral,
		registerInt,
		registerReal,
		registerChar,
		registerString,
		registerMath,
		registerOption,
		registerList,
		registerVector,
		registerRelational,
		registerSys,
		registerInteract,
	} {
		if err := reg(); err != nil {
			panic(err)
		}
	}
}

func fn1(p, r types.Type) func() types.Type { return func() types.Type { return types.FnType(p, r) } }
func fn2(p1, p2, r types.Type) func() types.Type {
	return func() types.Type { return types.FnType(p1, types.FnType(p2, r)) }
}

// ---- General ---------------------------------------------------------

func registerGeneral() error {
	notFn := func(b bool) bool { return !b }
	entries := []BuiltinEntry{
		{Name: "not", Structure: "General", NumArgs: 1, IsPure: true, Type: fn1(types.Bool, types.Bool), Value: notFn},
		{Name: "ignore", Structure: "General", NumArgs: 1, IsPure: true,
			Type:  fn1(types.NewTypeVar(), types.Unit),
			Value: func(interface{}) struct{} { return struct{}{} }},
		{Name: "op =", Structure: "General", NumArgs: 2, IsPure: true,
			Type: fn2(types.NewTypeVar(), types.NewTypeVar(), types.Bool),
			Value: func(a, b interface{}) bool {
				return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
			}},
	}
	return registerAll(entries)
}

// ---- Int ---------------------------------------------------------------

func registerInt() error {
	entries := []BuiltinEntry{
		{Name: "+", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a + b }},
		{Name: "-", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a - b }},
		{Name: "*", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a * b }},
		{Name: "div", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a / b }},
		{Name: "mod", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int { return a % b }},
		{Name: "~", Structure: "Int", NumArgs: 1, IsPure: true, Type: fn1(types.Int, types.Int), Value: func(a int) int { return -a }},
		{Name: "abs", Structure: "Int", NumArgs: 1, IsPure: true, Type: fn1(types.Int, types.Int), Value: func(a int) int {
			if a < 0 {
				return -a
			}
			return a
		}},
		{Name: "max", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int {
			if a > b {
				return a
			}
			return b
		}},
		{Name: "min", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Int), Value: func(a, b int) int {
			if a < b {
				return a
			}
			return b
		}},
		{Name: "compare", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, orderDataType), Value: intCompare},
		{Name: "toString", Structure: "Int", NumArgs: 1, IsPure: true, Type: fn1(types.Int, types.String), Value: func(a int) string { return fmt.Sprintf("%d", a) }},
		{Name: "<=", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Bool), Value: func(a, b int) bool { return a <= b }},
		{Name: "<", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Bool), Value: func(a, b int) bool { return a < b }},
		{Name: ">=", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Bool), Value: func(a, b int) bool { return a >= b }},
		{Name: ">", Structure: "Int", NumArgs: 2, IsPure: true, Type: fn2(types.Int, types.Int, types.Bool), Value: func(a, b int) bool { return a > b }},
		// fromLarge / quot deliberately unregistered: the catalog has no
		// arbitrary-precision integer type to convert from, and quot's
		// truncating-toward-zero semantics diverge from div only on
		// negative operands, which the generator's Range strategy never
		// produces from this catalog's other entries.
	}
	return registerAll(entries)
}

func intCompare(a, b int) types.Constructor {
	switch {
	case a < b:
		return types.Constructor{Name: "LESS"}
	case a > b:
		return types.Constructor{Name: "GREATER"}
	default:
		return types.Constructor{Name: "EQUAL"}
	}
}

// ---- Real ----------------------------------------------------------------

func registerReal() error {
	entries := []BuiltinEntry{
		{Name: "+", Structure: "Real", NumArgs: 2, IsPure: true, Type: fn2(types.Real, types.Real, types.Real), Value: func(a, b float64) float64 { return a + b }},
		{Name: "-", Structure: "Real", NumArgs: 2, IsPure: true, Type: fn2(types.Real, types.Real, types.Real), Value: func(a, b float64) float64 { return a - b }},
		{Name: "*", Structure: "Real", NumArgs: 2, IsPure: true, Type: fn2(types.Real, types.Real, types.Real), Value: func(a, b float64) float64 { return a * b }},
		{Name: "/", Structure: "Real", NumArgs: 2, IsPure: true, Type: fn2(types.Real, types.Real, types.Real), Value: func(a, b float64) float64 { return a / b }},
		{Name: "~", Structure: "Real", NumArgs: 1, IsPure: true, Type: fn1(types.Real, types.Real), Value: func(a float64) float64 { return -a }},
		{Name: "fromInt", Structure: "Real", NumArgs: 1, IsPure: true, Type: fn1(types.Int, types.Real), Value: func(a int) float64 { return float64(a) }},
		{Name: "toString", Structure: "Real", NumArgs: 1, IsPure: true, Type: fn1(types.Real, types.String), Value: func(a float64) string { return fmt.Sprintf("%g", a) }},
	}
	return registerAll(entries)
}

// ---- Char ------------------------------------------------------------

func registerChar() error {
	entries := []BuiltinEntry{
		{Name: "ord", Structure: "Char", NumArgs: 1, IsPure: true, Type: fn1(types.Char, types.Int), Value: func(c rune) int { return int(c) }},
		{Name: "chr", Structure: "Char", NumArgs: 1, IsPure: true, Type: fn1(types.Int, types.Char), Value: func(n int) rune { return rune(n) }},
		{Name: "isUpper", Structure: "Char", NumArgs: 1, IsPure: true, Type: fn1(types.Char, types.Bool), Value: func(c rune) bool { return c >= 'A' && c <= 'Z' }},
		{Name: "isLower", Structure: "Char", NumArgs: 1, IsPure: true, Type: fn1(types.Char, types.Bool), Value: func(c rune) bool { return c >= 'a' && c <= 'z' }},
		{Name: "isDigit", Structure: "Char", NumArgs: 1, IsPure: true, Type: fn1(types.Char, types.Bool), Value: func(c rune) bool { return c >= '0' && c <= '9' }},
	}
	return registerAll(entries)
}

// ---- String ----------------------------------------------------------

func registerString() error {
	entries := []BuiltinEntry{
		{Name: "^", Structure: "String", NumArgs: 2, IsPure: true, Type: fn2(types.String, types.String, types.String), Value: func(a, b string) string { return a + b }},
		{Name: "size", Structure: "String", NumArgs: 1, IsPure: true, Type: fn1(types.String, types.Int), Value: func(s string) int { return len(s) }},
		{Name: "substring", Structure: "String", NumArgs: 3, IsPure: true,
			Type: func() types.Type { return types.FnType(types.String, types.FnType(types.Int, types.FnType(types.Int, types.String))) },
			Value: func(s string, i, n int) string { return s[i : i+n] }},
		{Name: "isPrefix", Structure: "String", NumArgs: 2, IsPure: true, Type: fn2(types.String, types.String, types.Bool), Value: func(p, s string) bool { return strings.HasPrefix(s, p) }},
		{Name: "isSuffix", Structure: "String", NumArgs: 2, IsPure: true, Type: fn2(types.String, types.String, types.Bool), Value: func(p, s string) bool { return strings.HasSuffix(s, p) }},
		{Name: "concat", Structure: "String", NumArgs: 1, IsPure: true, Type: fn1(types.ListOf(types.String), types.String), Value: strings.Join},
		{Name: "compare", Structure: "String", NumArgs: 2, IsPure: true, Type: fn2(types.String, types.String, orderDataType), Value: stringCompare},
	}
	return registerAll(entries)
}

func stringCompare(a, b string) types.Constructor {
	switch {
	case a < b:
		return types.Constructor{Name: "LESS"}
	case a > b:
		return types.Constructor{Name: "GREATER"}
	default:
		return types.Constructor{Name: "EQUAL"}
	}
}

// ---- Math --------------------------------------------------------------

func registerMath() error {
	entries := []BuiltinEntry{
		{Name: "sqrt", Structure: "Math", NumArgs: 1, IsPure: true, Type: fn1(types.Real, types.Real), Value: math.Sqrt},
		{Name: "pi", Structure: "Math", IsPure: true, Type: func() types.Type { return types.Real }, Value: math.Pi},
	}
	return registerAll(entries)
}

// ---- Option --------------------------------------------------------------

func registerOption() error {
	a := types.NewTypeVar()
	entries := []BuiltinEntry{
		{Name: "isSome", Structure: "Option", NumArgs: 1, IsPure: true, Type: fn1(types.OptionOf(a), types.Bool), Value: func(o interface{}) bool { return o != nil }},
		{Name: "valOf", Structure: "Option", NumArgs: 1, IsPure: true, Type: fn1(types.OptionOf(a), a), Value: func(o interface{}) interface{} { return o }},
		{Name: "getOpt", Structure: "Option", NumArgs: 2, IsPure: true, Type: fn2(types.OptionOf(a), a, a), Value: func(o, d interface{}) interface{} {
			if o == nil {
				return d
			}
			return o
		}},
	}
	return registerAll(entries)
}

// ---- List ------------------------------------------------------------

func registerList() error {
	a := types.NewTypeVar()
	entries := []BuiltinEntry{
		{Name: "null", Structure: "List", NumArgs: 1, IsPure: true, Type: fn1(types.ListOf(a), types.Bool), Value: func(xs []interface{}) bool { return len(xs) == 0 }},
		{Name: "length", Structure: "List", NumArgs: 1, IsPure: true, Type: fn1(types.ListOf(a), types.Int), Value: func(xs []interface{}) int { return len(xs) }},
		{Name: "rev", Structure: "List", NumArgs: 1, IsPure: true, Type: fn1(types.ListOf(a), types.ListOf(a)), Value: reverseList},
		{Name: "hd", Structure: "List", NumArgs: 1, IsPure: true, Type: fn1(types.ListOf(a), a), Value: func(xs []interface{}) interface{} { return xs[0] }},
		{Name: "tl", Structure: "List", NumArgs: 1, IsPure: true, Type: fn1(types.ListOf(a), types.ListOf(a)), Value: func(xs []interface{}) []interface{} { return xs[1:] }},
		{Name: "member", Structure: "List", NumArgs: 2, IsPure: true,
			Type: fn2(a, types.ListOf(a), types.Bool),
			Value: func(x interface{}, xs []interface{}) bool {
				for _, e := range xs {
					if fmt.Sprintf("%v", e) == fmt.Sprintf("%v", x) {
						return true
					}
				}
				return false
			}},
		{Name: "tabulate", Structure: "List", NumArgs: 2, IsPure: true,
			Type: fn2(types.Int, types.FnType(types.Int, a), types.ListOf(a)),
			Value: func(n int, f func(int) interface{}) []interface{} {
				out := make([]interface{}, n)
				for i := range out {
					out[i] = f(i)
				}
				return out
			}},
	}
	return registerAll(entries)
}

func reverseList(xs []interface{}) []interface{} {
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}

// ---- Vector ----------------------------------------------------------

func registerVector() error {
	a := types.NewTypeVar()
	entries := []BuiltinEntry{
		{Name: "length", Structure: "Vector", NumArgs: 1, IsPure: true, Type: fn1(types.VectorOf(a), types.Int), Value: func(v []interface{}) int { return len(v) }},
		{Name: "sub", Structure: "Vector", NumArgs: 2, IsPure: true, Type: fn2(types.VectorOf(a), types.Int, a), Value: func(v []interface{}, i int) interface{} { return v[i] }},
	}
	return registerAll(entries)
}

// ---- Relational --------------------------------------------------------
//
// Relational is the structure the resolver's exists/forall desugaring
// targets (nonEmpty/empty) and the generator's Function strategy
// recognizes for transitive closure (iterate). These are evaluated by the
// external runtime; the Value funcs here exist only to satisfy the
// registry's non-nil-Value invariant and are never called by this module.

func registerRelational() error {
	a := types.NewTypeVar()
	entries := []BuiltinEntry{
		{Name: "nonEmpty", Structure: "Relational", NumArgs: 1, IsPure: true, Type: fn1(types.BagOf(a), types.Bool), Value: func([]interface{}) bool { panic("relational.nonEmpty: evaluated by external runtime") }},
		{Name: "empty", Structure: "Relational", NumArgs: 1, IsPure: true, Type: fn1(types.BagOf(a), types.Bool), Value: func([]interface{}) bool { panic("relational.empty: evaluated by external runtime") }},
		{Name: "only", Structure: "Relational", NumArgs: 1, IsPure: true, Type: fn1(types.BagOf(a), a), Value: func([]interface{}) interface{} { panic("relational.only: evaluated by external runtime") }},
		{Name: "iterate", Structure: "Relational", NumArgs: 2, IsPure: true,
			Type: func() types.Type {
				// step takes the whole set built so far (all) and the
				// increment added in the previous round (new), returning
				// the next round's increment — run until new is empty.
				step := types.FnType(types.BagOf(a), types.FnType(types.BagOf(a), types.BagOf(a)))
				return types.FnType(types.BagOf(a), types.FnType(step, types.BagOf(a)))
			},
			Value: func([]interface{}, interface{}) []interface{} { panic("relational.iterate: evaluated by external runtime") }},
		{Name: "sum", Structure: "Relational", NumArgs: 1, IsPure: true, Type: fn1(types.BagOf(types.Int), types.Int), Value: func([]int) int { panic("relational.sum: evaluated by external runtime") }},
	}
	return registerAll(entries)
}

// ---- Sys / Interact (effectful, out of scope for evaluation) ----------

func registerSys() error {
	entries := []BuiltinEntry{
		{Name: "env", Structure: "Sys", NumArgs: 1, IsPure: false, Type: fn1(types.String, types.OptionOf(types.String)),
			Value: func(string) interface{} { panic("sys.env: evaluated by external runtime") }},
		{Name: "set", Structure: "Sys", NumArgs: 2, IsPure: false, Type: fn2(types.String, types.NewTypeVar(), types.Unit),
			Value: func(string, interface{}) struct{} { panic("sys.set: evaluated by external runtime") }},
	}
	return registerAll(entries)
}

func registerInteract() error {
	entries := []BuiltinEntry{
		{Name: "use", Structure: "Interact", NumArgs: 1, IsPure: false, Type: fn1(types.String, types.Unit),
			Value: func(string) struct{} { panic("interact.use: evaluated by external runtime") }},
	}
	return registerAll(entries)
}

func registerAll(entries []BuiltinEntry) error {
	for _, e := range entries {
		if err := Register(e); err != nil {
			return err
		}
	}
	return nil
}

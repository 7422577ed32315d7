package generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hydromatic/morel-sub000/internal/core"
)

// Limits bounds how far the generator synthesizer will go: a depth bound on
// how deeply strategies may nest recursive synthesis calls, and a
// cap on how many elements a Bounded-cardinality source may unroll to
// before a caller (the analyzer, or a batch driver) should treat a
// generator as effectively unbounded. Passed explicitly into New — no
// global mutable config, loaded once per run rather than read from package
// state.
type Limits struct {
	DepthBound     int `yaml:"depth_bound"`
	UnrollingLimit int `yaml:"unrolling_limit"`
}

// DefaultLimits are the bounds New uses when no corec.yaml is supplied.
var DefaultLimits = Limits{DepthBound: 32, UnrollingLimit: 10000}

// LoadLimits reads Limits from a YAML file (an optional corec.yaml).
func LoadLimits(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("failed to read limits file: %w", err)
	}
	limits := DefaultLimits
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return Limits{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return limits, nil
}

// New creates a Cache bounded by limits. Strategies consult c.limits
// through WithinDepthBound/WithinUnrollingLimit rather than a package
// global, so two Caches in the same process (e.g. one per REPL command)
// can carry independent bounds.
func New(limits Limits) *Cache {
	return &Cache{
		entries:   map[string]*Generator{},
		limits:    limits,
		satisfied: map[string]bool{},
		Functions: map[string]*core.Fn{},
	}
}

// WithinDepthBound reports whether depth (the number of nested recursive
// synthesis calls already open, from any strategy) is still inside c's
// bound.
func (c *Cache) WithinDepthBound(depth int) bool {
	return depth < c.limits.DepthBound
}

// WithinUnrollingLimit reports whether n (an estimated element count for a
// Bounded generator) is still inside c's bound.
func (c *Cache) WithinUnrollingLimit(n int) bool {
	return n <= c.limits.UnrollingLimit
}

// Package session carries the state a sequence of REPL-style commands
// shares across invocations: a monotonic ordinal/node-ID
// generator so successive commands never collide on Core identity, and a
// progressive record tracking every top-level binding the session has
// accumulated so later commands can refer to `it`/prior bindings as one
// growing environment, built on the same single-threaded, allocation-only
// counter style used throughout this module's node-ID generators.
package session

import (
	"fmt"

	"github.com/hydromatic/morel-sub000/internal/env"
	"github.com/hydromatic/morel-sub000/internal/generator"
	"github.com/hydromatic/morel-sub000/internal/types"
)

// NameGenerator produces the two counters a session's resolver passes
// need: pattern ordinals (shared with resolver.R via
// NewResolverFromOrdinal) and Core node IDs. It is the only stateful
// object with session lifetime, accessed from a single compilation
// thread (§5).
type NameGenerator struct {
	nextOrdinal int
	nextNodeID  uint64
}

// NewNameGenerator creates a generator starting from ordinal/node-ID 0.
func NewNameGenerator() *NameGenerator { return &NameGenerator{} }

// Ordinal returns the current ordinal high-water mark.
func (g *NameGenerator) Ordinal() int { return g.nextOrdinal }

// AdvanceOrdinal records that a resolver pass consumed ordinals up to to,
// so the next pass started from this generator won't reissue them.
func (g *NameGenerator) AdvanceOrdinal(to int) {
	if to > g.nextOrdinal {
		g.nextOrdinal = to
	}
}

// FreshNodeID returns a new, session-unique Core node ID.
func (g *NameGenerator) FreshNodeID() uint64 {
	g.nextNodeID++
	return g.nextNodeID
}

// FreshName returns a synthetic identifier name guaranteed not to collide
// with any surface name, for internal bindings a desugaring introduces
// (e.g. a query's implicit tuple-pattern variable).
func (g *NameGenerator) FreshName(prefix string) string {
	g.nextOrdinal++
	return fmt.Sprintf("$%s%d", prefix, g.nextOrdinal)
}

// File is the session's accumulating top-level namespace: every binding
// a prior command introduced, exposed both as an ordinary chained
// environment (for resolving the next command) and as a progressive
// record type (so a command can project `session.x` the way a REPL
// prints its whole accumulated state as one record).
type File struct {
	Env    *env.Env
	Record *types.ProgressiveRecordType
}

// NewFile creates an empty session file. onDiscover resolves a field name
// the record is asked for but has not seen bound yet — normally a lookup
// into Env itself, threaded through by the caller.
func NewFile(onDiscover func(name string) types.Type) *File {
	return &File{Record: types.NewProgressiveRecordType(onDiscover)}
}

// Bind extends the session with one more top-level binding, visible both
// to future Env lookups and to the progressive record's field set.
func (f *File) Bind(b env.Binding) {
	b.TopLevel = true
	f.Env = f.Env.Bind(b)
	f.Record.Discover(b.Name)
}

// Session bundles the state a REPL-style driver needs across commands
// (§6.3): the ordinal/node-ID generator, the accumulating top-level file,
// and one generator.Cache so a constraint inverted for an earlier command
// is not re-derived for a later one referencing the same bound name.
type Session struct {
	NameGenerator *NameGenerator
	File          *File
	Generators    *generator.Cache
}

// New creates a fresh, empty session bounded by generator.DefaultLimits.
func New() *Session { return NewWithLimits(generator.DefaultLimits) }

// NewWithLimits creates a fresh session whose generator synthesis is
// bounded by limits — typically generator.LoadLimits'd from an optional
// corec.yaml.
func NewWithLimits(limits generator.Limits) *Session {
	s := &Session{NameGenerator: NewNameGenerator(), Generators: generator.New(limits)}
	s.File = NewFile(func(name string) types.Type {
		if b, ok := s.File.Env.GetTop(name); ok {
			return b.Type
		}
		return types.NewTypeVar()
	})
	return s
}

package match

import (
	"errors"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
)

const probeDepth = 512

// Nullable finds out if grammar node h matches the empty input, by probing it
// against an empty buffer. The result is cached in the grammar.
//
// Left-recursive constructs are matched without seed growing during a probe.
// A probe which comes back to a node it is still working on, or which exceeds
// the recursion limit, decides for "not nullable". Token terminals and
// directives are not nullable.
func Nullable(g *bnf.Grammar, h bnf.Handle) (nullable bool) {
	if null, known := g.Nullable(h); known {
		return null
	}
	if !g.StartProbe(h) {
		return false
	}
	s := NewSession(g, nil, "", MaxDepth(probeDepth), Integrity(false))
	s.probing = true
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*ruleforge.Error)
			if !ok || !errors.Is(e, ruleforge.ErrRecursionLimit) {
				panic(r)
			}
			tracer().Debugf("nullability probe of node %d too deep, assuming not nullable", h)
			nullable = false
		}
		g.SetNullable(h, nullable)
	}()
	nullable = s.test(h, 0, 0, false).OK
	return
}

/*
Package match implements the matching engine: grammar trees of package bnf are
interpreted against an input text, with memoization and support for left
recursion.

Every grammar node is matched with a two-step protocol. Test finds out, without
building anything, whether a node matches at an input offset and how much input
it consumes. Parse consumes input at the session's cursor and builds a parse
tree node for it. Test results are cached per session, keyed by the grammar
node, the input offset, the active recursion seed and whether matching happens
inside brackets. Parsing relies on tests having been done (or doing them), so
tree construction never has to backtrack.

Choices and references to rule families select the longest match among their
alternatives; on ties, the earliest alternative wins. Optionally, the first
successful alternative wins.

Left Recursion

Rules which are left recursive relative to an entry point are determined by
package leftrec. For these rules the engine grows a seed: the base
alternatives are matched first, then the recursive alternatives are matched
over and over, with the previous match made visible as a seed, as long as the
match grows. A reference to the rule at the offset of a seed does not
recurse; it consumes the seed. Parsing rebuilds the left-nested structure of
such matches by swapping each previous parse into the seed's placeholder.

Configuration

Memoization may be checked for integrity: with option Integrity, or
configuration key "ruleforge.memo-integrity" set, every cache hit is compared
to a fresh computation. If configuration key "panic-on-integrity-error" is
set, a violation panics instead of returning an error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package match

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.match'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.match")
}

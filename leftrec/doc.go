/*
Package leftrec finds left-recursive rules of a grammar and plans how to match
them.

A rule is left recursive if it may call itself without consuming input. A
recursive-descent matcher would loop forever on such rules. Resolve determines,
for a given entry point, the rule families taking part in left-recursive cycles
and computes a growth plan for each family a cycle is entered through: its base
alternatives, which match without recursing into the cycle, and its recursive
alternatives. The matching engine grows a seed from the base alternatives with
the recursive ones (see package match).

The analysis works on a graph of rule families. There is an edge from family A
to family B if a variant of A may call B at its own start position, that is,
B is referenced left-most, or after constructs matching the empty input.
Strongly connected components of this graph are found with Tarjan's algorithm.

	b := bnf.NewBuilder("G")
	g := b.G()
	b.Rule("expr", g.Ref("term"))
	b.Rule("expr.add", g.Seq(g.Ref("expr"), g.Literal("+"), g.Ref("term")))
	…
	res, err := leftrec.Resolve(grammar, grammar.Namespace().Lookup("expr"))

A cycle none of whose members has a base alternative can never match; Resolve
reports it as an error, positioned at the rule's declaration.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package leftrec

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.leftrec'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.leftrec")
}

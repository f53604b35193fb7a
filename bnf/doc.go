/*
Package bnf holds grammars: trees of grammar nodes, stored in an arena, and a
hierarchical namespace of rules.

Grammar Nodes

A grammar node describes one construct of a grammar: a terminal, a sequence,
a choice, a repetition, a lookahead assertion or a reference to a rule. Nodes
are addressed by handles into the arena of their grammar. Terminals, references
and composites without anchors are interned per grammar: constructing the same
construct twice yields the same handle.

    g := bnf.NewGrammar("G", "")
    digit := g.CharSet("0123456789", false)
    num := g.Plus(digit)                    // digit+

Rule Namespace

Rules have dotted names. Declaring "expr.add" implicitly declares "expr" as
well. A reference to "expr" is a reference to the whole family of rules
below it: expr, expr.add, expr.mul, …

    b := bnf.NewBuilder("G")
    b.Rule("expr", b.G().Ref("term"))
    b.Rule("expr.add", b.G().Seq(
        b.G().Anchored("v1", b.G().Ref("expr")),
        b.G().Literal("+"),
        b.G().Anchored("v2", b.G().Ref("term"))))

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bnf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.bnf'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.bnf")
}

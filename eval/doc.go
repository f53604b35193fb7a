/*
Package eval computes values from parse trees, using actions supplied by
clients.

Actions are registered per dotted rule name. For a rule-call node of a parse
tree, the action registered for the rule variant which matched is called with
the node's arguments and the text the node matched:

	actions := eval.FromList(
	    eval.Binding{Rule: "num", Action: func(args *eval.Args, text string) (interface{}, error) {
	        return strconv.Atoi(text)
	    }},
	)
	env := eval.New(grammar, tree, actions)
	v, err := env.Root().Value()

Arguments are the anchored nodes below a rule-call node, up to the next rule
call. Anchors below a repetition accumulate into a *List, in the order the
nodes were matched. A rule without an action evaluates to the value of its
single argument or of its single meaningful child, if there is one.

Values are computed lazily and at most once per node.

Peek walks a tree like Value does, but calls observers instead of actions.
Observers are registered per rule and per caller-chosen key. Nodes without an
observer for a key pass the call on to their children.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package eval

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.eval'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.eval")
}

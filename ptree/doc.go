/*
Package ptree holds parse trees of programs.

Every node of a parse tree is tied to the grammar node which matched it.
Spans are not stored but derived lazily from the lengths of siblings, which
makes moving sub-trees around (as done when re-nesting left-recursive
derivations) cheap. Nodes live in an arena and are addressed by integer
handles; Swap replaces a node by another one by re-assigning a child slot.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ptree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.ptree'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.ptree")
}

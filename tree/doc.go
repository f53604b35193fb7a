/*
Package tree implements walks over tree-shaped arenas.

Both the grammar trees of package bnf and the parse trees of package ptree are
stored as arenas of nodes, addressed by integer handles. This package works on
a minimal view of such an arena, a Shape, and provides traversal (Walk),
subtree search (Dig) and a check that a structure really is a tree (AssertUnique).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ruleforge.tree'.
func tracer() tracing.Trace {
	return tracing.Select("ruleforge.tree")
}

package bnf

import (
	"fmt"
	"sort"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/tree"
)

// Grammar is an arena of grammar nodes together with the rule namespace built
// over them. Each grammar owns its interning table; grammars never share nodes.
type Grammar struct {
	Name   string // name of the grammar, used as source name in errors
	Source string // grammar text, used to compute error positions
	nodes  []*Node
	intern map[string]Handle
	ns     *Namespace
}

// NewGrammar creates an empty grammar. source is the grammar text the grammar
// will be built from, if any.
func NewGrammar(name, source string) *Grammar {
	g := &Grammar{
		Name:   name,
		Source: source,
		intern: make(map[string]Handle),
	}
	g.ns = newNamespace(g)
	return g
}

// Namespace returns the rule namespace of a grammar.
func (g *Grammar) Namespace() *Namespace {
	return g.ns
}

// Node returns the node for a handle, or nil for an invalid handle.
func (g *Grammar) Node(h Handle) *Node {
	if h < 0 || int(h) >= len(g.nodes) {
		return nil
	}
	return g.nodes[h]
}

// Size returns the number of nodes in the arena.
func (g *Grammar) Size() int {
	return len(g.nodes)
}

// Errorf creates an error positioned at a grammar source offset.
func (g *Grammar) Errorf(kind ruleforge.ErrorKind, cause error, pos int, format string,
	args ...interface{}) *ruleforge.Error {
	return ruleforge.Errorf(kind, cause, format, args...).At(g.Name, g.Source, pos)
}

func (g *Grammar) add(n *Node, operands []Handle) Handle {
	intern := n.Anchor == "" && n.define == nil && n.Kind != Defaults
	var key string
	if intern {
		key = n.internKey(operands)
		if h, ok := g.intern[key]; ok {
			return h
		}
	}
	if n.define == nil {
		ops := operands
		n.define = func() []Handle { return ops }
	}
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	if intern {
		g.intern[key] = h
	}
	return h
}

// --- Operands ---------------------------------------------------------------

// Operands returns the operands of a node, materializing them from the node's
// definition on first access.
func (g *Grammar) Operands(h Handle) []Handle {
	n := g.Node(h)
	if n == nil {
		return nil
	}
	if !n.materialized {
		if err := g.Materialize(h); err != nil {
			panic(err) // cannot happen, we checked
		}
	}
	return n.operands
}

// Materialize builds the operand list of a node from its definition. It is an
// error to materialize a node twice.
func (g *Grammar) Materialize(h Handle) error {
	n := g.Node(h)
	if n == nil {
		return ruleforge.Errorf(ruleforge.GrammarStructure, ruleforge.ErrKindMismatch,
			"no grammar node with handle %d", h)
	}
	if n.materialized {
		return ruleforge.Errorf(ruleforge.GrammarStructure, ruleforge.ErrMaterialized,
			"node %d (%s)", h, n)
	}
	n.materialized = true
	n.operands = n.define()
	n.define = nil
	return nil
}

// Operand returns the i-th operand of a node, or NoHandle.
func (g *Grammar) Operand(h Handle, i int) Handle {
	ops := g.Operands(h)
	if i < 0 || i >= len(ops) {
		return NoHandle
	}
	return ops[i]
}

// Project restricts the semantically meaningful operands of a wrapper node to the
// given indices. Projection is not part of a node's identity, so projected nodes
// should be created with Lazy or carry an anchor.
func (g *Grammar) Project(h Handle, indices ...int) Handle {
	if n := g.Node(h); n != nil {
		n.Valid = append([]int(nil), indices...)
	}
	return h
}

// Expect checks that h denotes a node of one of the given classes.
func (g *Grammar) Expect(h Handle, c Class) (*Node, error) {
	n := g.Node(h)
	if n == nil || !n.Kind.Is(c) {
		return n, ruleforge.Errorf(ruleforge.GrammarStructure, ruleforge.ErrKindMismatch,
			"node %d is %v, expected class %04b", h, n, c)
	}
	return n, nil
}

// --- Tree operations --------------------------------------------------------

type shape struct {
	g *Grammar
}

func (s shape) Children(n int) []int {
	ops := s.g.Operands(Handle(n))
	ch := make([]int, len(ops))
	for i, h := range ops {
		ch[i] = int(h)
	}
	return ch
}

// Shape returns a view of the grammar usable with package tree.
// Walks do not follow rule references into other rules.
func (g *Grammar) Shape() tree.Shape {
	return shape{g: g}
}

// Walk walks the sub-tree below h, see tree.Walk.
func (g *Grammar) Walk(h Handle, stop func(Handle) interface{}, process func(Handle, interface{}),
	depthFirst bool) {
	//
	var proc tree.Processor
	if process != nil {
		proc = func(n int, mark interface{}) { process(Handle(n), mark) }
	}
	tree.Walk(g.Shape(), int(h), func(n int) interface{} {
		return stop(Handle(n))
	}, proc, depthFirst)
}

// Dig collects the outermost nodes below h which belong to class c.
// See tree.Dig for the meaning of the other arguments.
func (g *Grammar) Dig(h Handle, c Class, depthFirst bool, min, max int, override error) ([]Handle, error) {
	found, err := tree.Dig(g.Shape(), int(h), func(n int) bool {
		return g.nodes[n].Kind.Is(c)
	}, depthFirst, min, max, override)
	if e, ok := err.(*ruleforge.Error); ok {
		e.Kind = ruleforge.GrammarStructure
	}
	hs := make([]Handle, len(found))
	for i, n := range found {
		hs[i] = Handle(n)
	}
	return hs, err
}

// --- Nullability cache --------------------------------------------------------

// Nullable returns the cached nullability of a node and whether it is known.
func (g *Grammar) Nullable(h Handle) (nullable bool, known bool) {
	n := g.Node(h)
	if n == nil {
		return false, true
	}
	switch n.nullable {
	case nullYes:
		return true, true
	case nullNo:
		return false, true
	}
	return false, false
}

// StartProbe marks a node as being probed for nullability. It returns false if
// the node is already being probed, i.e. the probe has come back to itself.
func (g *Grammar) StartProbe(h Handle) bool {
	n := g.Node(h)
	if n == nil || n.nullable == nullProbing {
		return false
	}
	n.nullable = nullProbing
	return true
}

// SetNullable caches the nullability of a node.
func (g *Grammar) SetNullable(h Handle, nullable bool) {
	if n := g.Node(h); n != nil {
		if nullable {
			n.nullable = nullYes
		} else {
			n.nullable = nullNo
		}
	}
}

// --- Reference resolution -----------------------------------------------------

// ResolveRefs resolves every rule reference of the grammar against the namespace.
// References to names which are not declared rules but are accepted by isToken
// are turned into token terminals. isToken may be nil. The first unresolvable
// reference is reported with its source position.
func (g *Grammar) ResolveRefs(isToken func(string) bool) error {
	for h, n := range g.nodes {
		if n.Kind != Ref || n.Target != nil {
			continue
		}
		if e := g.ns.Lookup(n.Text); e != nil {
			n.Target = e
			continue
		}
		if isToken != nil && isToken(n.Text) {
			tracer().Debugf("reference %q resolves to a token type", n.Text)
			n.Kind = Token
			continue
		}
		_, err := g.ns.Resolve(n.Text)
		if e, ok := err.(*ruleforge.Error); ok {
			e.At(g.Name, g.Source, n.Pos)
			tracer().Errorf("node %d: %v", h, e)
		}
		return err
	}
	return nil
}

// --- Anchors ------------------------------------------------------------------

// CheckAnchors checks that the anchors of a rule's right-hand side are unique
// within every sequence, except for anchors below repetitions, which accumulate.
func (g *Grammar) CheckAnchors(h Handle) error {
	_, err := g.anchorsOf(h)
	return err
}

// anchorsOf returns the set of anchors a node binds outside of repetitions.
func (g *Grammar) anchorsOf(h Handle) (map[string]bool, error) {
	n := g.Node(h)
	if n == nil {
		return nil, nil
	}
	if n.Anchor != "" {
		return map[string]bool{n.Anchor: true}, nil
	}
	switch {
	case n.Kind.Is(RepetitionClass), n.Kind == Ref, n.Kind.Is(PredicateClass):
		return nil, nil
	case n.Kind == Defaults:
		return nil, nil // defaults only fill in missing anchors
	case n.Kind == Choice:
		union := make(map[string]bool)
		for _, op := range g.Operands(h) {
			set, err := g.anchorsOf(op)
			if err != nil {
				return nil, err
			}
			for a := range set {
				union[a] = true
			}
		}
		return union, nil
	case n.Kind.Is(CompositeClass):
		union := make(map[string]bool)
		for _, op := range g.Operands(h) {
			set, err := g.anchorsOf(op)
			if err != nil {
				return nil, err
			}
			for _, a := range sortedKeys(set) {
				if union[a] {
					pos := g.Node(op).Pos
					if pos < 0 {
						pos = n.Pos
					}
					return nil, g.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrDuplicateAnchor,
						pos, "anchor $%s bound twice outside of a repetition", a)
				}
				union[a] = true
			}
		}
		return union, nil
	}
	return nil, nil
}

// IteratedAnchors returns the anchors of a right-hand side which occur below a
// repetition (options included). Evaluation binds these to lists, whether or
// not the repetition matched. Anchored nodes and references are not looked
// into.
func (g *Grammar) IteratedAnchors(h Handle) map[string]bool {
	iterated := make(map[string]bool)
	var collect func(h Handle, below bool)
	collect = func(h Handle, below bool) {
		n := g.Node(h)
		if n == nil {
			return
		}
		if n.Anchor != "" {
			if below {
				iterated[n.Anchor] = true
			}
			return
		}
		if n.Kind == Ref {
			return
		}
		below = below || n.Kind.Is(RepetitionClass)
		for _, op := range g.Operands(h) {
			collect(op, below)
		}
	}
	collect(h, false)
	return iterated
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dump is a debugging helper, printing a node tree as an indented list.
func (g *Grammar) Dump(h Handle) string {
	var s string
	var dump func(Handle, int)
	dump = func(h Handle, indent int) {
		s += fmt.Sprintf("%*s%d: %s\n", indent*2, "", h, g.Node(h))
		for _, op := range g.Operands(h) {
			dump(op, indent+1)
		}
	}
	dump(h, 0)
	return s
}

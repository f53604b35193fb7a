package ptree

import (
	"fmt"
	"strings"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/tree"
)

// None is the null node handle.
const None = -1

// Node is a node of a parse tree.
type Node struct {
	Grammar     bnf.Handle // grammar node which matched this node
	Parent      int        // None for the root and for detached nodes
	Children    []int
	Rule        *bnf.Entry // concrete rule variant, for rule-call nodes
	Anchor      string     // anchor name inherited from the grammar node
	Boundary    bool       // node is a rule call
	Verdict     bool       // outcome of a lookahead assertion
	Placeholder bool       // stands in for a left-recursive seed

	length  int // length of a leaf
	lenGen  int
	cachedL int
	posGen  int
	cachedP int
}

// Tree is a parse tree over a program text. Nodes are kept in an arena.
type Tree struct {
	Text  string // the program text
	Base  int    // offset of the root within Text
	Root  int
	nodes []Node
	gen   int // generation, incremented on every structural change
}

// New creates an empty parse tree for a program text.
func New(text string) *Tree {
	return &Tree{Text: text, Root: None, gen: 1}
}

// Add creates a new detached node. length is the length of the matched input;
// it is used only as long as the node has no children.
func (t *Tree) Add(g bnf.Handle, length int) int {
	t.nodes = append(t.nodes, Node{Grammar: g, Parent: None, length: length})
	t.gen++
	return len(t.nodes) - 1
}

// Node returns a node. The pointer is valid until the next call of Add.
func (t *Tree) Node(n int) *Node {
	if n < 0 || n >= len(t.nodes) {
		return nil
	}
	return &t.nodes[n]
}

// Size returns the number of nodes in the arena, including detached ones.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Append appends child as the last child of parent.
func (t *Tree) Append(parent, child int) {
	p := &t.nodes[parent]
	p.Children = append(p.Children, child)
	t.nodes[child].Parent = parent
	t.gen++
}

// Children is part of interface tree.Shape.
func (t *Tree) Children(n int) []int {
	if n < 0 || n >= len(t.nodes) {
		return nil
	}
	return t.nodes[n].Children
}

// Parent returns the parent of a node, or None.
func (t *Tree) Parent(n int) int {
	return t.nodes[n].Parent
}

// Len returns the length of the input matched by a node. For nodes with
// children, this is the sum of the children's lengths.
func (t *Tree) Len(n int) int {
	node := &t.nodes[n]
	if len(node.Children) == 0 {
		return node.length
	}
	if node.lenGen == t.gen {
		return node.cachedL
	}
	l := 0
	for _, ch := range node.Children {
		l += t.Len(ch)
	}
	node = &t.nodes[n]
	node.cachedL, node.lenGen = l, t.gen
	return l
}

// Start returns the offset of a node within the program text, derived from the
// start of its parent and the lengths of its preceding siblings.
func (t *Tree) Start(n int) int {
	node := &t.nodes[n]
	if node.Parent == None {
		return t.Base
	}
	if node.posGen == t.gen {
		return node.cachedP
	}
	p := node.Parent
	start := t.Start(p)
	for _, sib := range t.nodes[p].Children {
		if sib == n {
			break
		}
		start += t.Len(sib)
	}
	node = &t.nodes[n]
	node.cachedP, node.posGen = start, t.gen
	return start
}

// Span returns the span of input a node covers.
func (t *Tree) Span(n int) ruleforge.Span {
	start := t.Start(n)
	return ruleforge.Span{start, start + t.Len(n)}
}

// Matched returns the text a node matched.
func (t *Tree) Matched(n int) string {
	return t.Span(n).Of(t.Text)
}

// Swap replaces node old by node repl: repl takes the child slot of old and the
// anchor of that slot, and old is detached. If old is the root, repl becomes the
// new root.
func (t *Tree) Swap(old, repl int) error {
	if old == repl {
		return nil
	}
	if old < 0 || old >= len(t.nodes) || repl < 0 || repl >= len(t.nodes) {
		return ruleforge.Errorf(ruleforge.ParseTree, ruleforge.ErrKindMismatch,
			"cannot swap node %d with node %d", old, repl)
	}
	t.detach(repl)
	p := t.nodes[old].Parent
	if p == None {
		if t.Root == old {
			t.Root = repl
		}
	} else {
		for i, ch := range t.nodes[p].Children {
			if ch == old {
				t.nodes[p].Children[i] = repl
				break
			}
		}
	}
	t.nodes[repl].Parent = p
	t.nodes[repl].Anchor = t.nodes[old].Anchor
	t.nodes[old].Parent = None
	t.gen++
	tracer().Debugf("swapped node %d into slot of node %d", repl, old)
	return nil
}

func (t *Tree) detach(n int) {
	p := t.nodes[n].Parent
	if p == None {
		return
	}
	ch := t.nodes[p].Children
	for i, c := range ch {
		if c == n {
			t.nodes[p].Children = append(ch[:i:i], ch[i+1:]...)
			break
		}
	}
	t.nodes[n].Parent = None
}

// Depth returns the number of rule-call boundaries between the root and n,
// not counting n itself.
func (t *Tree) Depth(n int) int {
	d := 0
	for p := t.nodes[n].Parent; p != None; p = t.nodes[p].Parent {
		if t.nodes[p].Boundary {
			d++
		}
	}
	return d
}

// --- Tree operations --------------------------------------------------------

// Walk walks the sub-tree below n, see tree.Walk.
func (t *Tree) Walk(n int, stop func(int) interface{}, process func(int, interface{}), depthFirst bool) {
	tree.Walk(t, n, tree.Stopper(stop), tree.Processor(process), depthFirst)
}

// Dig collects the outermost nodes below n for which match is true.
// See tree.Dig for the meaning of the other arguments.
func (t *Tree) Dig(n int, match func(*Node) bool, depthFirst bool, min, max int, override error) ([]int, error) {
	return tree.Dig(t, n, func(m int) bool {
		return match(&t.nodes[m])
	}, depthFirst, min, max, override)
}

// AssertUnique checks that the tree below the root is really a tree.
func (t *Tree) AssertUnique() error {
	if t.Root == None {
		return nil
	}
	return tree.AssertUnique(t, t.Root)
}

// Each calls f for every node reachable from the root, in pre-order, with the
// nesting level of the node.
func (t *Tree) Each(f func(n int, level int)) {
	if t.Root == None {
		return
	}
	var visit func(n, level int)
	visit = func(n, level int) {
		f(n, level)
		for _, ch := range t.nodes[n].Children {
			visit(ch, level+1)
		}
	}
	visit(t.Root, 0)
}

// Dump renders a tree as an indented list, for debugging. g is used to print the
// grammar nodes; it may be nil.
func (t *Tree) Dump(g *bnf.Grammar) string {
	var b strings.Builder
	t.Each(func(n, level int) {
		node := &t.nodes[n]
		label := fmt.Sprintf("#%d", node.Grammar)
		if g != nil {
			label = g.Node(node.Grammar).String()
		}
		if node.Rule != nil {
			label = node.Rule.Name
		}
		if node.Anchor != "" {
			label = "$" + node.Anchor + ":" + label
		}
		fmt.Fprintf(&b, "%*s%s %v %q\n", level*2, "", label, t.Span(n), t.Matched(n))
	})
	return b.String()
}

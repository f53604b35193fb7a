package bnf

import (
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/ruleforge"
)

// --- Rule namespace ----------------------------------------------------------

// Entry is a declared rule name. Entries form a tree following the segments of
// dotted names: entry "expr.add" is a child of entry "expr".
type Entry struct {
	Name    string   // full dotted name
	Segment string   // last segment of Name
	Parent  *Entry   // lookup relation only
	LHS     Handle   // canonical reference node naming this rule family
	RHS     Handle   // right-hand side, NoHandle for unassigned entries
	Params  []string // formal parameters as declared, without semantics
	Pos     int      // grammar source position of the declaration, -1 if unknown

	// Left-recursion metadata, filled in by package leftrec.
	LeftCalls []*Entry // rule families referenced in left-most position
	Calls     []*Entry // all rule families referenced
	Cycle     bool     // entry takes part in a left-recursive cycle

	children *arraylist.List // of *Entry, in declaration order
	index    map[string]*Entry
	variants []*Entry
}

func newEntry(name, segment string, parent *Entry) *Entry {
	return &Entry{
		Name:     name,
		Segment:  segment,
		Parent:   parent,
		LHS:      NoHandle,
		RHS:      NoHandle,
		Pos:      -1,
		children: arraylist.New(),
		index:    make(map[string]*Entry),
	}
}

// Assigned is true if a right-hand side has been bound to the entry.
func (e *Entry) Assigned() bool {
	return e.RHS != NoHandle
}

// Child returns the child entry for a name segment, or nil.
func (e *Entry) Child(segment string) *Entry {
	return e.index[segment]
}

// Children returns the child entries in declaration order.
func (e *Entry) Children() []*Entry {
	ch := make([]*Entry, 0, e.children.Size())
	it := e.children.Iterator()
	for it.Next() {
		ch = append(ch, it.Value().(*Entry))
	}
	return ch
}

// Each calls f for e and every entry below it, in declaration pre-order.
func (e *Entry) Each(f func(*Entry)) {
	f(e)
	it := e.children.Iterator()
	for it.Next() {
		it.Value().(*Entry).Each(f)
	}
}

// Variants returns the members of the rule family of e: e itself and all entries
// below it which have a right-hand side, in declaration pre-order. A reference
// to e matches any of them. The result is computed once; it depends on the
// static content of the namespace only.
func (e *Entry) Variants() []*Entry {
	if e.variants == nil {
		vs := make([]*Entry, 0, 1)
		e.Each(func(v *Entry) {
			if v.Assigned() {
				vs = append(vs, v)
			}
		})
		e.variants = vs
	}
	return e.variants
}

// Within is true if e equals anc or is nested below it.
func (e *Entry) Within(anc *Entry) bool {
	for x := e; x != nil; x = x.Parent {
		if x == anc {
			return true
		}
	}
	return false
}

func (e *Entry) String() string {
	if e == nil {
		return "<nil entry>"
	}
	return e.Name
}

// Namespace is the tree of rule names of a grammar.
type Namespace struct {
	g    *Grammar
	root *Entry
}

func newNamespace(g *Grammar) *Namespace {
	return &Namespace{g: g, root: newEntry("", "", nil)}
}

// Root returns the unnamed root entry.
func (ns *Namespace) Root() *Entry {
	return ns.root
}

func splitName(name string) ([]string, bool) {
	if name == "" {
		return nil, false
	}
	segs := strings.Split(name, ".")
	for _, s := range segs {
		if s == "" {
			return segs, false
		}
	}
	return segs, true
}

// Declare makes sure an entry exists for every prefix of a dotted name and
// returns the entry for the full name. pos is the source position of the
// declaration, it is recorded for newly created entries.
func (ns *Namespace) Declare(name string, pos int) (*Entry, error) {
	segs, ok := splitName(name)
	if !ok {
		return nil, ns.g.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrSyntax, pos,
			"invalid rule name %q", name)
	}
	e := ns.root
	for i, seg := range segs {
		child := e.index[seg]
		if child == nil {
			child = newEntry(strings.Join(segs[:i+1], "."), seg, e)
			child.Pos = pos
			child.LHS = ns.g.Ref(child.Name)
			ns.g.Node(child.LHS).Target = child
			e.index[seg] = child
			e.children.Add(child)
			tracer().Debugf("declared rule name %s", child.Name)
		}
		e = child
	}
	return e, nil
}

// Assign binds a right-hand side to a declared name. Assigning an undeclared
// name or assigning a name twice is an error.
func (ns *Namespace) Assign(name string, rhs Handle, pos int) (*Entry, error) {
	e, err := ns.Resolve(name)
	if err != nil {
		if re, ok := err.(*ruleforge.Error); ok {
			re.At(ns.g.Name, ns.g.Source, pos)
		}
		return nil, err
	}
	if e.Assigned() {
		return e, ns.g.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrReassigned, pos,
			"rule %s", name).For(name)
	}
	e.RHS = rhs
	for x := e; x != nil; x = x.Parent {
		x.variants = nil
	}
	if pos >= 0 {
		e.Pos = pos
	}
	return e, nil
}

// Resolve looks up a dotted name. If a prefix is not declared, the error names
// the offending segment.
func (ns *Namespace) Resolve(name string) (*Entry, error) {
	segs, ok := splitName(name)
	if !ok {
		return nil, ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrUndeclared,
			"invalid rule name %q", name).For(name)
	}
	e := ns.root
	for i, seg := range segs {
		child := e.index[seg]
		if child == nil {
			return nil, ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrUndeclared,
				"segment %q of %q (no rule %s)", seg, name, strings.Join(segs[:i+1], ".")).For(name)
		}
		e = child
	}
	return e, nil
}

// Lookup returns the entry for a dotted name, or nil.
func (ns *Namespace) Lookup(name string) *Entry {
	e, err := ns.Resolve(name)
	if err != nil {
		return nil
	}
	return e
}

// Entries returns all named entries in declaration pre-order.
func (ns *Namespace) Entries() []*Entry {
	var all []*Entry
	ns.root.Each(func(e *Entry) {
		if e != ns.root {
			all = append(all, e)
		}
	})
	return all
}

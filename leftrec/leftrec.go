package leftrec

import (
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/match"
)

// analysis holds the state of left-recursion analysis for one grammar.
type analysis struct {
	g     *bnf.Grammar
	order map[*bnf.Entry]int           // declaration order
	left  map[bnf.Handle][]bnf.Handle // left-most references below a node
	// Tarjan
	index   map[*bnf.Entry]int
	low     map[*bnf.Entry]int
	onStack map[*bnf.Entry]bool
	stack   *arraystack.Stack
	counter int
	sccs    [][]*bnf.Entry
	sccOf   map[*bnf.Entry]int
}

func newAnalysis(g *bnf.Grammar) *analysis {
	a := &analysis{
		g:     g,
		order: make(map[*bnf.Entry]int),
		left:  make(map[bnf.Handle][]bnf.Handle),
	}
	for i, e := range g.Namespace().Entries() {
		a.order[e] = i
	}
	return a
}

// --- Dependency extraction -------------------------------------------------------

// Dependencies computes the left-recursion metadata of every rule of a grammar:
// the rule families called at the rule's start position (LeftCalls) and all
// rule families called (Calls).
func Dependencies(g *bnf.Grammar) {
	newAnalysis(g).dependencies()
}

func (a *analysis) dependencies() {
	for _, e := range a.g.Namespace().Entries() {
		e.LeftCalls, e.Calls = nil, nil
		if !e.Assigned() {
			continue
		}
		e.LeftCalls = targetsOf(a.g, a.leftRefs(e.RHS))
		e.Calls = targetsOf(a.g, a.refs(e.RHS))
		tracer().Debugf("%s calls %v, left-most %v", e.Name, e.Calls, e.LeftCalls)
	}
}

// leftRefs returns the reference nodes which may be matched at the start
// position of node h.
func (a *analysis) leftRefs(h bnf.Handle) []bnf.Handle {
	if refs, ok := a.left[h]; ok {
		return refs
	}
	var refs []bnf.Handle
	n := a.g.Node(h)
	switch {
	case n.Kind == bnf.Ref:
		refs = []bnf.Handle{h}
	case n.Kind.Is(bnf.CompositeClass):
		for _, op := range a.g.Operands(h) {
			refs = append(refs, a.leftRefs(op)...)
			if !a.transparent(op) {
				break
			}
		}
	case n.Kind == bnf.Choice:
		for _, op := range a.g.Operands(h) {
			refs = append(refs, a.leftRefs(op)...)
		}
	case n.Kind.Is(bnf.RepetitionClass | bnf.PredicateClass | bnf.WhitespaceClass):
		refs = a.leftRefs(a.g.Operand(h, 0))
	}
	a.left[h] = refs
	return refs
}

// transparent is true if the construct following h in a sequence may be
// matched at the same position as h.
func (a *analysis) transparent(h bnf.Handle) bool {
	switch a.g.Node(h).Kind {
	case bnf.Lookahead, bnf.Defaults:
		return true
	}
	return match.Nullable(a.g, h)
}

// refs returns all reference nodes below and including h.
func (a *analysis) refs(h bnf.Handle) []bnf.Handle {
	if a.g.Node(h).Kind == bnf.Ref {
		return []bnf.Handle{h}
	}
	refs, _ := a.g.Dig(h, bnf.ReferenceClass, true, 0, bnf.Unbounded, nil)
	return refs
}

func targetsOf(g *bnf.Grammar, refs []bnf.Handle) []*bnf.Entry {
	var targets []*bnf.Entry
	seen := make(map[*bnf.Entry]bool)
	for _, r := range refs {
		if t := g.Node(r).Target; t != nil && !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	return targets
}

// Calling a family means calling all of its variants.
func leftSucc(e *bnf.Entry) []*bnf.Entry {
	var succ []*bnf.Entry
	for _, v := range e.Variants() {
		succ = append(succ, v.LeftCalls...)
	}
	return succ
}

func callSucc(e *bnf.Entry) []*bnf.Entry {
	var succ []*bnf.Entry
	for _, v := range e.Variants() {
		succ = append(succ, v.Calls...)
	}
	return succ
}

// --- Cycle detection ---------------------------------------------------------------

// reachable returns the rule families which may be called when matching entry,
// in declaration order.
func (a *analysis) reachable(entry *bnf.Entry) []*bnf.Entry {
	set := treeset.NewWith(a.byDeclaration)
	var visit func(*bnf.Entry)
	visit = func(e *bnf.Entry) {
		if set.Contains(e) {
			return
		}
		set.Add(e)
		for _, c := range callSucc(e) {
			visit(c)
		}
	}
	visit(entry)
	families := make([]*bnf.Entry, 0, set.Size())
	for _, v := range set.Values() {
		families = append(families, v.(*bnf.Entry))
	}
	return families
}

func (a *analysis) byDeclaration(x, y interface{}) int {
	return a.order[x.(*bnf.Entry)] - a.order[y.(*bnf.Entry)]
}

// tarjan finds the strongly connected components of the left-call graph,
// restricted to the given families.
func (a *analysis) tarjan(families []*bnf.Entry) {
	a.index = make(map[*bnf.Entry]int)
	a.low = make(map[*bnf.Entry]int)
	a.onStack = make(map[*bnf.Entry]bool)
	a.stack = arraystack.New()
	a.sccOf = make(map[*bnf.Entry]int)
	a.counter, a.sccs = 0, nil
	within := make(map[*bnf.Entry]bool, len(families))
	for _, e := range families {
		within[e] = true
	}
	for _, e := range families {
		if _, visited := a.index[e]; !visited {
			a.strongConnect(e, within)
		}
	}
}

func (a *analysis) strongConnect(v *bnf.Entry, within map[*bnf.Entry]bool) {
	a.index[v], a.low[v] = a.counter, a.counter
	a.counter++
	a.stack.Push(v)
	a.onStack[v] = true
	for _, w := range leftSucc(v) {
		if !within[w] {
			continue
		}
		if _, visited := a.index[w]; !visited {
			a.strongConnect(w, within)
			if a.low[w] < a.low[v] {
				a.low[v] = a.low[w]
			}
		} else if a.onStack[w] && a.index[w] < a.low[v] {
			a.low[v] = a.index[w]
		}
	}
	if a.low[v] != a.index[v] {
		return
	}
	var scc []*bnf.Entry
	for {
		x, _ := a.stack.Pop()
		w := x.(*bnf.Entry)
		a.onStack[w] = false
		a.sccOf[w] = len(a.sccs)
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	a.sccs = append(a.sccs, scc)
}

// cyclic is true if an SCC contains an edge, i.e. has more than one member or
// a member calling itself.
func (a *analysis) cyclic(scc []*bnf.Entry) bool {
	if len(scc) > 1 {
		return true
	}
	for _, w := range leftSucc(scc[0]) {
		if w == scc[0] {
			return true
		}
	}
	return false
}

// --- Resolution ------------------------------------------------------------------

// Resolve determines the left-recursive rule families relevant for matching
// entry and computes growth plans for them. Rule references taking part in a
// cycle are flagged as recursive, and cycle members are flagged in the
// namespace.
func Resolve(g *bnf.Grammar, entry *bnf.Entry) (*bnf.Resolution, error) {
	if entry == nil {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrUnresolvedEntry, "no entry point")
	}
	a := newAnalysis(g)
	a.dependencies()
	families := a.reachable(entry)
	a.tarjan(families)
	res := &bnf.Resolution{Entry: entry, Targets: make(map[*bnf.Entry]*bnf.Growth)}
	for _, scc := range a.sccs {
		if !a.cyclic(scc) {
			continue
		}
		members := a.sorted(scc)
		a.markCycle(members)
		hasBase := false
		for _, m := range members {
			if !a.isTarget(m, entry, families) {
				continue
			}
			gr := a.partition(m, members)
			res.Targets[m] = gr
			hasBase = hasBase || len(gr.Base) > 0
		}
		if !hasBase {
			hasBase = a.anyBase(members)
		}
		if !hasBase {
			culprit := members[0]
			names := make([]string, len(members))
			for i, m := range members {
				names[i] = m.Name
			}
			err := g.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrNoBaseCase, culprit.Pos,
				"every alternative of {%s} recurses without consuming input",
				strings.Join(names, ", ")).For(culprit.Name)
			tracer().Errorf("%v", err)
			return nil, err
		}
	}
	tracer().Infof("entry %s: %d rule families, %d left-recursive", entry.Name, len(families), len(res.Targets))
	return res, nil
}

func (a *analysis) sorted(scc []*bnf.Entry) []*bnf.Entry {
	set := treeset.NewWith(a.byDeclaration)
	for _, e := range scc {
		set.Add(e)
	}
	members := make([]*bnf.Entry, 0, len(scc))
	for _, v := range set.Values() {
		members = append(members, v.(*bnf.Entry))
	}
	return members
}

// markCycle flags cycle members, and the left-most references of their
// variants which lead back into the cycle.
func (a *analysis) markCycle(members []*bnf.Entry) {
	for _, m := range members {
		m.Cycle = true
		for _, v := range m.Variants() {
			for _, r := range a.leftRefs(v.RHS) {
				if a.inCycleOf(a.g.Node(r).Target, m) {
					a.g.Node(r).Recursive = true
				}
			}
		}
	}
}

// isTarget is true if cycle member m is the entry point or is called from a
// family outside of its cycle.
func (a *analysis) isTarget(m, entry *bnf.Entry, families []*bnf.Entry) bool {
	if m == entry {
		return true
	}
	for _, f := range families {
		if a.sccOf[f] == a.sccOf[m] {
			continue
		}
		for _, c := range callSucc(f) {
			if c == m {
				return true
			}
		}
	}
	return false
}

// alternatives flattens the variants of family m and top-level choices of their
// right-hand sides into a list of alternatives.
func (a *analysis) alternatives(m *bnf.Entry) []bnf.Alternative {
	var alts []bnf.Alternative
	for _, v := range m.Variants() {
		n := a.g.Node(v.RHS)
		if n.Kind == bnf.Choice && n.Anchor == "" && !n.FirstMatch && n.Valid == nil {
			for _, op := range a.g.Operands(v.RHS) {
				alts = append(alts, bnf.Alternative{Variant: v, Body: op})
			}
			continue
		}
		alts = append(alts, bnf.Alternative{Variant: v, Body: v.RHS})
	}
	return alts
}

// recurses is true if an alternative may call a member of m's cycle at its
// start position.
func (a *analysis) recurses(alt bnf.Alternative, m *bnf.Entry) bool {
	for _, r := range a.leftRefs(alt.Body) {
		if a.inCycleOf(a.g.Node(r).Target, m) {
			return true
		}
	}
	return false
}

func (a *analysis) inCycleOf(t, m *bnf.Entry) bool {
	if t == nil {
		return false
	}
	scc, ok := a.sccOf[t]
	return ok && scc == a.sccOf[m]
}

func (a *analysis) partition(m *bnf.Entry, members []*bnf.Entry) *bnf.Growth {
	gr := &bnf.Growth{Target: m, Members: members}
	for _, alt := range a.alternatives(m) {
		if a.recurses(alt, m) {
			gr.Recursive = append(gr.Recursive, alt)
		} else {
			gr.Base = append(gr.Base, alt)
		}
	}
	tracer().Debugf("%s grows from %d base alternatives with %d recursive ones",
		m.Name, len(gr.Base), len(gr.Recursive))
	return gr
}

func (a *analysis) anyBase(members []*bnf.Entry) bool {
	for _, m := range members {
		for _, alt := range a.alternatives(m) {
			if !a.recurses(alt, m) {
				return true
			}
		}
	}
	return false
}

package eval

import (
	"sort"
	"strings"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/ptree"
)

// Args are the arguments of an action: the evaluators of the anchored nodes
// below a rule-call node.
type Args struct {
	names  []string // in order of first appearance
	bound  map[string]Evaluator
	offset int
}

// Offset returns the start offset of the rule-call node within the program
// text.
func (args *Args) Offset() int {
	return args.offset
}

// Get returns the value of argument name.
func (args *Args) Get(name string) (interface{}, error) {
	ev, ok := args.bound[name]
	if !ok {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrNoAction,
			"no argument $%s", name)
	}
	return ev.Value()
}

// Value returns the value of argument name. It is a shortcut for actions: if
// the argument cannot be evaluated, the error is passed on as the error of
// the calling action.
func (args *Args) Value(name string) interface{} {
	v, err := args.Get(name)
	if err != nil {
		panic(argPanic{err: err})
	}
	return v
}

// Has is true if argument name is bound.
func (args *Args) Has(name string) bool {
	_, ok := args.bound[name]
	return ok
}

// Names returns the names of all arguments, sorted.
func (args *Args) Names() []string {
	names := append([]string(nil), args.names...)
	sort.Strings(names)
	return names
}

// Text returns the text matched by argument name, or the empty string.
func (args *Args) Text(name string) string {
	if ev, ok := args.bound[name]; ok {
		return ev.Text()
	}
	return ""
}

// Evaluator returns the evaluator for argument name, or nil. Actions may use it
// to evaluate arguments conditionally.
func (args *Args) Evaluator(name string) Evaluator {
	return args.bound[name]
}

func (args *Args) bind(name string, ev Evaluator) {
	if _, ok := args.bound[name]; !ok {
		args.names = append(args.names, name)
	}
	args.bound[name] = ev
}

// bind collects the arguments of rule-call node n. The walk stops at anchored
// nodes and at rule calls. Anchors occurring below a repetition in the rule's
// right-hand side are always bound to a list, which may be empty; an anchor
// bound outside of a repetition joins a list for the same name. Default values
// fill in anchors left unbound or bound to an empty list.
func (env *Env) bind(n int) (*Args, error) {
	args := &Args{bound: make(map[string]Evaluator), offset: env.T.Start(n)}
	iterated := env.iteratedAnchors(n)
	lists := make(map[string]*List)
	single := make(map[string]int)
	var defaults []bnf.Default
	var err error
	env.T.Walk(n, func(m int) interface{} {
		node := env.T.Node(m)
		if node.Anchor != "" || node.Boundary {
			return node
		}
		if env.G.Node(node.Grammar).Kind == bnf.Defaults {
			return node
		}
		return nil
	}, func(m int, _ interface{}) {
		node := env.T.Node(m)
		if node.Anchor == "" {
			if g := env.G.Node(node.Grammar); g.Kind == bnf.Defaults && !node.Boundary {
				defaults = append(defaults, g.Defaults...)
			}
			return
		}
		name := node.Anchor
		if iterated[name] || env.iterated(m, n) {
			l := lists[name]
			if l == nil {
				l = &List{anchor: name}
				lists[name] = l
				if prev, ok := single[name]; ok {
					l.elements = append(l.elements, env.For(prev))
				}
				args.bind(name, l)
			}
			l.elements = append(l.elements, env.For(m))
			return
		}
		if l := lists[name]; l != nil {
			l.elements = append(l.elements, env.For(m))
			return
		}
		if prev, ok := single[name]; ok && err == nil {
			e := ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrDuplicateAnchor,
				"$%s bound to %q and to %q", name, env.T.Matched(prev), env.T.Matched(m)).
				At("", env.T.Text, env.T.Start(m))
			if r := env.T.Node(n).Rule; r != nil {
				e.For(r.Name)
			}
			err = e
			return
		}
		single[name] = m
		args.bind(name, env.For(m))
	}, true)
	if err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	for _, name := range sortedNames(iterated) {
		if lists[name] == nil {
			lists[name] = &List{anchor: name}
			args.bind(name, lists[name])
		}
	}
	for _, d := range defaults {
		if !args.Has(d.Anchor) {
			args.bind(d.Anchor, &fallback{env: env, def: d})
		} else if l := lists[d.Anchor]; l != nil && l.Len() == 0 {
			l.elements = append(l.elements, &fallback{env: env, def: d})
		}
	}
	for _, l := range lists {
		l.text = spanText(l)
	}
	return args, nil
}

// iteratedAnchors returns the anchors of the right-hand side of the rule called
// at n which occur below a repetition.
func (env *Env) iteratedAnchors(n int) map[string]bool {
	r := env.T.Node(n).Rule
	if r == nil || !r.Assigned() {
		return nil
	}
	if iterated, ok := env.iterating[r.RHS]; ok {
		return iterated
	}
	iterated := env.G.IteratedAnchors(r.RHS)
	env.iterating[r.RHS] = iterated
	return iterated
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// iterated is true if node m lies below a repetition within the rule call at n.
func (env *Env) iterated(m, n int) bool {
	for p := env.T.Parent(m); p != n && p != ptree.None; p = env.T.Parent(p) {
		if env.G.Node(env.T.Node(p).Grammar).Kind.Is(bnf.RepetitionClass) {
			return true
		}
	}
	return false
}

func spanText(l *List) string {
	var b strings.Builder
	for _, ev := range l.elements {
		b.WriteString(ev.Text())
	}
	return b.String()
}

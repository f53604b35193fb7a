package eval

import (
	"fmt"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/ptree"
)

// Action computes the value of a rule-call node from its arguments and the
// text it matched.
type Action func(args *Args, text string) (interface{}, error)

// Actions maps dotted rule names to actions.
type Actions map[string]Action

// Binding pairs a rule name with an action.
type Binding struct {
	Rule   string
	Action Action
}

// FromList creates an action table from a list of bindings. Later bindings
// for the same rule replace earlier ones.
func FromList(bindings ...Binding) Actions {
	actions := make(Actions, len(bindings))
	for _, b := range bindings {
		actions[b.Rule] = b.Action
	}
	return actions
}

// Observer is called by Peek for rule-call nodes.
type Observer func(args *Args, text string) error

// Observers maps dotted rule names to observers per caller key.
type Observers map[string]map[interface{}]Observer

// Reparser evaluates the literal of a default value with a rule of the grammar.
type Reparser func(rule, literal string) (Evaluator, error)

// Evaluator computes the value of a node of a parse tree, or of a list of
// nodes.
type Evaluator interface {
	Value() (interface{}, error) // computed once, then cached
	Peek(key interface{}) error  // call observers registered for key
	Anchor() string              // anchor name, if any
	Text() string                // text matched
}

// Env is the evaluation environment for a parse tree.
type Env struct {
	G         *bnf.Grammar
	T         *ptree.Tree
	actions   Actions
	observers Observers
	reparse   Reparser
	evals     map[int]Evaluator
	iterating map[bnf.Handle]map[string]bool // per right-hand side
}

// Option configures an Env.
type Option func(env *Env)

// WithObservers sets the observers for Peek.
func WithObservers(obs Observers) Option {
	return func(env *Env) {
		env.observers = obs
	}
}

// WithReparser sets the function to evaluate default values with.
func WithReparser(rp Reparser) Option {
	return func(env *Env) {
		env.reparse = rp
	}
}

// New creates an evaluation environment for a parse tree, which has been built
// with grammar g.
func New(g *bnf.Grammar, t *ptree.Tree, actions Actions, opts ...Option) *Env {
	env := &Env{
		G:         g,
		T:         t,
		actions:   actions,
		evals:     make(map[int]Evaluator),
		iterating: make(map[bnf.Handle]map[string]bool),
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// Root returns the evaluator for the root of the parse tree.
func (env *Env) Root() Evaluator {
	return env.For(env.T.Root)
}

// For returns the evaluator for node n of the parse tree.
func (env *Env) For(n int) Evaluator {
	if ev, ok := env.evals[n]; ok {
		return ev
	}
	var ev Evaluator
	node := env.T.Node(n)
	switch {
	case node == nil:
		ev = &Constant{}
	case node.Boundary:
		ev = &nodeEval{env: env, n: n}
	default:
		k := env.G.Node(node.Grammar).Kind
		switch {
		case k.Is(bnf.RepetitionClass):
			ev = env.repetition(n)
		case k == bnf.Lookahead:
			ev = &boolEval{env: env, n: n}
		default:
			ev = &nodeEval{env: env, n: n}
		}
	}
	env.evals[n] = ev
	return ev
}

func (env *Env) repetition(n int) *List {
	node := env.T.Node(n)
	l := &List{anchor: node.Anchor, text: env.T.Matched(n)}
	for _, ch := range node.Children {
		l.elements = append(l.elements, env.For(ch))
	}
	return l
}

// --- Node evaluators ------------------------------------------------------------

type outcome struct {
	value interface{}
	err   error
}

type nodeEval struct {
	env    *Env
	n      int
	result *outcome
	args   *Args
}

func (ev *nodeEval) Anchor() string {
	return ev.env.T.Node(ev.n).Anchor
}

func (ev *nodeEval) Text() string {
	return ev.env.T.Matched(ev.n)
}

func (ev *nodeEval) String() string {
	node := ev.env.T.Node(ev.n)
	if node.Rule != nil {
		return fmt.Sprintf("<%s %q>", node.Rule.Name, ev.Text())
	}
	return fmt.Sprintf("<%s %q>", ev.env.G.Node(node.Grammar), ev.Text())
}

func (ev *nodeEval) Value() (interface{}, error) {
	if ev.result == nil {
		v, err := ev.compute()
		ev.result = &outcome{value: v, err: err}
	}
	return ev.result.value, ev.result.err
}

func (ev *nodeEval) compute() (interface{}, error) {
	env, node := ev.env, ev.env.T.Node(ev.n)
	if !node.Boundary {
		switch k := env.G.Node(node.Grammar).Kind; {
		case k.Is(bnf.CompositeClass | bnf.ChoiceClass):
			sem := env.semantic(ev.n)
			if len(sem) == 1 {
				return env.For(sem[0]).Value()
			}
			return ev.Text(), nil
		case k == bnf.Defaults:
			return nil, nil
		}
		return ev.Text(), nil // terminals, skips and directives
	}
	rule := node.Rule.Name
	args, err := ev.arguments()
	if err != nil {
		return nil, err
	}
	if action, ok := env.actions[rule]; ok {
		tracer().Debugf("calling action for %s with %v", rule, args.Names())
		return call(func() (interface{}, error) { return action(args, ev.Text()) })
	}
	if len(args.names) == 1 {
		tracer().Debugf("%s passes through argument $%s", rule, args.names[0])
		return args.bound[args.names[0]].Value()
	}
	if len(args.names) == 0 {
		sem := env.semantic(ev.n)
		if len(sem) == 1 {
			tracer().Debugf("%s passes through its only child", rule)
			return env.For(sem[0]).Value()
		}
		body := env.T.Node(node.Children[0])
		if len(sem) == 0 && env.G.Node(body.Grammar).Kind.Is(bnf.TerminalClass) {
			return ev.Text(), nil
		}
	}
	return nil, ruleforge.Errorf(ruleforge.UnimplementedAction, ruleforge.ErrNoAction,
		"%s has no action and no single child to pass through", rule).
		For(rule).At("", env.T.Text, env.T.Start(ev.n))
}

func (ev *nodeEval) arguments() (*Args, error) {
	if ev.args != nil {
		return ev.args, nil
	}
	args, err := ev.env.bind(ev.n)
	if err != nil {
		return nil, err
	}
	ev.args = args
	return args, nil
}

// Peek calls the observer registered for the rule of a rule-call node and key.
// Nodes without such an observer pass the call on to their children.
func (ev *nodeEval) Peek(key interface{}) error {
	env, node := ev.env, ev.env.T.Node(ev.n)
	if node.Boundary {
		if obs, ok := env.observers[node.Rule.Name][key]; ok {
			args, err := ev.arguments()
			if err != nil {
				return err
			}
			tracer().Debugf("peeking into %s", node.Rule.Name)
			_, err = call(func() (interface{}, error) { return nil, obs(args, ev.Text()) })
			return err
		}
	}
	for _, ch := range env.semantic(ev.n) {
		if err := env.For(ch).Peek(key); err != nil {
			return err
		}
	}
	return nil
}

// argPanic carries an error out of an action, see Args.Value.
type argPanic struct {
	err error
}

func call(f func() (interface{}, error)) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(argPanic)
			if !ok {
				panic(r)
			}
			v, err = nil, p.err
		}
	}()
	return f()
}

// semantic returns the children of n which carry meaning for evaluation.
// Unanchored terminals, lookaheads, skips and defaults are left out; unanchored
// sequences, groups and choices are looked through.
func (env *Env) semantic(n int) []int {
	var sem []int
	var collect func(n int)
	collect = func(n int) {
		node := env.T.Node(n)
		valid := env.G.Node(node.Grammar).Valid
		for i, ch := range node.Children {
			if valid != nil && !node.Boundary && !contains(valid, i) {
				continue
			}
			c := env.T.Node(ch)
			k := env.G.Node(c.Grammar).Kind
			switch {
			case c.Anchor == "" && c.Boundary && env.whitespace(ch):
			case c.Anchor != "" || c.Boundary:
				sem = append(sem, ch)
			case k == bnf.Skip, k == bnf.Defaults, k == bnf.Lookahead, k.Is(bnf.TerminalClass):
			case k.Is(bnf.CompositeClass | bnf.ChoiceClass):
				collect(ch)
			default:
				sem = append(sem, ch)
			}
		}
	}
	collect(n)
	return sem
}

// whitespace is true for calls of rules consisting of a skip construct.
func (env *Env) whitespace(n int) bool {
	ch := env.T.Children(n)
	return len(ch) == 1 && env.G.Node(env.T.Node(ch[0]).Grammar).Kind == bnf.Skip
}

func contains(indices []int, i int) bool {
	for _, x := range indices {
		if x == i {
			return true
		}
	}
	return false
}

// --- Lookahead evaluators ---------------------------------------------------------

type boolEval struct {
	env *Env
	n   int
}

func (ev *boolEval) Value() (interface{}, error) {
	return ev.env.T.Node(ev.n).Verdict, nil
}

func (ev *boolEval) Peek(key interface{}) error { return nil }
func (ev *boolEval) Anchor() string           { return ev.env.T.Node(ev.n).Anchor }
func (ev *boolEval) Text() string             { return "" }

// --- Fallback evaluators -------------------------------------------------------------

// Constant is an evaluator for a fixed value.
type Constant struct {
	Name string
	V    interface{}
}

func (c *Constant) Value() (interface{}, error) { return c.V, nil }
func (c *Constant) Peek(interface{}) error       { return nil }
func (c *Constant) Anchor() string               { return c.Name }
func (c *Constant) Text() string                 { return fmt.Sprint(c.V) }

// fallback evaluates a default value by re-parsing its literal.
type fallback struct {
	env    *Env
	def    bnf.Default
	target Evaluator
	err    error
}

func (fb *fallback) resolve() (Evaluator, error) {
	if fb.target == nil && fb.err == nil {
		if fb.env.reparse == nil {
			fb.err = fb.env.G.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrBadDefault, fb.def.Pos,
				"no way to evaluate default value for $%s", fb.def.Anchor)
		} else {
			tracer().Debugf("evaluating default $%s with rule %s", fb.def.Anchor, fb.def.Rule)
			fb.target, fb.err = fb.env.reparse(fb.def.Rule, fb.def.Literal)
		}
	}
	return fb.target, fb.err
}

func (fb *fallback) Value() (interface{}, error) {
	ev, err := fb.resolve()
	if err != nil {
		return nil, err
	}
	return ev.Value()
}

func (fb *fallback) Peek(key interface{}) error {
	ev, err := fb.resolve()
	if err != nil {
		return err
	}
	return ev.Peek(key)
}

func (fb *fallback) Anchor() string { return fb.def.Anchor }
func (fb *fallback) Text() string   { return fb.def.Literal }

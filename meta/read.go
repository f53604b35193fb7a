package meta

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/eval"
	"github.com/npillmayer/ruleforge/match"
)

// Option configures Read.
type Option func(*reader)

// Tokens makes references to names accepted by isToken token terminals,
// unless the names are declared as rules.
func Tokens(isToken func(string) bool) Option {
	return func(r *reader) {
		r.isToken = isToken
	}
}

type reader struct {
	source  string
	text    string
	isToken func(string) bool
	g       *bnf.Grammar
}

// statement is a rule of grammar text.
type statement struct {
	name   string
	params []string
	rhs    bnf.Handle
	pos    int
}

// Read compiles grammar text into a grammar. source names the text in error
// messages. Every rule is declared before right-hand sides are bound, so rules
// may reference rules defined further down.
func Read(source, text string, opts ...Option) (*bnf.Grammar, error) {
	r := &reader{source: source, text: text}
	for _, opt := range opts {
		opt(r)
	}
	mg, res, err := Grammar()
	if err != nil {
		return nil, err
	}
	start := mg.Namespace().Lookup("grammar")
	s := match.NewSession(mg, res, text, match.SourceName(source))
	_, err = s.Parse(start.LHS)
	if err != nil || s.Cursor() < len(text) {
		return nil, r.syntaxError(s)
	}
	r.g = bnf.NewGrammar(source, text)
	env := eval.New(mg, s.Tree(), r.actions())
	v, err := env.Root().Value()
	if err != nil {
		return nil, err
	}
	stmts, _ := v.([]*statement)
	if err := r.define(stmts); err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	tracer().Infof("grammar %s: %d rules, %d grammar nodes", source, len(stmts), r.g.Size())
	return r.g, nil
}

func (r *reader) syntaxError(s *match.Session) error {
	at, exp := s.Expected()
	if at < s.Cursor() {
		at = s.Cursor()
	}
	msg := "unexpected end of grammar"
	if at < len(r.text) {
		rest := r.text[at:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		msg = fmt.Sprintf("unexpected %q", rest)
	}
	if len(exp) > 0 {
		msg += ", expected one of " + strings.Join(exp, " ")
	}
	err := ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrSyntax, msg).At(r.source, r.text, at)
	tracer().Errorf("%v", err)
	return err
}

// define declares all rules, binds their right-hand sides, resolves references
// and checks anchors and default values.
func (r *reader) define(stmts []*statement) error {
	ns := r.g.Namespace()
	for _, st := range stmts {
		if _, err := ns.Declare(st.name, st.pos); err != nil {
			return err
		}
	}
	for _, st := range stmts {
		e, err := ns.Assign(st.name, st.rhs, st.pos)
		if err != nil {
			return err
		}
		e.Params = st.params
	}
	if err := r.g.ResolveRefs(r.isToken); err != nil {
		return err
	}
	for _, st := range stmts {
		if err := r.g.CheckAnchors(st.rhs); err != nil {
			if e, ok := err.(*ruleforge.Error); ok {
				e.For(st.name)
			}
			return err
		}
		if err := r.checkDefaults(st); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) checkDefaults(st *statement) error {
	ds, _ := r.g.Dig(st.rhs, bnf.ExtensionClass, true, 0, bnf.Unbounded, nil)
	if r.g.Node(st.rhs).Kind == bnf.Defaults {
		ds = append(ds, st.rhs)
	}
	for _, h := range ds {
		for _, d := range r.g.Node(h).Defaults {
			if r.g.Namespace().Lookup(d.Rule) == nil {
				return r.g.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrBadDefault, d.Pos,
					"default for $%s refers to unknown rule %s", d.Anchor, d.Rule).For(st.name)
			}
		}
	}
	return nil
}

// --- Actions -----------------------------------------------------------------------

type wrapper func(bnf.Handle) bnf.Handle

// handle returns argument name as a grammar node.
func handle(args *eval.Args, name string) (bnf.Handle, error) {
	v, err := args.Get(name)
	if err != nil {
		return bnf.NoHandle, err
	}
	h, ok := v.(bnf.Handle)
	if !ok {
		return bnf.NoHandle, mismatch(name, "grammar node", v)
	}
	return h, nil
}

// list returns argument name, which is bound below a repetition.
func list(args *eval.Args, name string) (*eval.List, error) {
	v, err := args.Get(name)
	if err != nil {
		return nil, err
	}
	l, ok := v.(*eval.List)
	if !ok {
		return nil, mismatch(name, "list", v)
	}
	return l, nil
}

// handles returns the elements of list argument name as grammar nodes.
func handles(args *eval.Args, name string) ([]bnf.Handle, error) {
	l, err := list(args, name)
	if err != nil {
		return nil, err
	}
	hs := make([]bnf.Handle, 0, l.Len())
	err = l.Each(func(_ int, v interface{}) error {
		h, ok := v.(bnf.Handle)
		if !ok {
			return mismatch(name, "grammar node", v)
		}
		hs = append(hs, h)
		return nil
	})
	return hs, err
}

// present is true if optional argument name matched.
func present(args *eval.Args, name string) bool {
	l, err := list(args, name)
	return err == nil && l.Len() > 0
}

func mismatch(name, expected string, v interface{}) error {
	return ruleforge.Errorf(ruleforge.GrammarStructure, ruleforge.ErrKindMismatch,
		"meta grammar: $%s should be a %s, is %T", name, expected, v)
}

func (r *reader) actions() eval.Actions {
	g := r.g
	return eval.Actions{
		"grammar": func(args *eval.Args, _ string) (interface{}, error) {
			l, err := list(args, "s")
			if err != nil {
				return nil, err
			}
			stmts := make([]*statement, 0, l.Len())
			err = l.Each(func(_ int, v interface{}) error {
				st, ok := v.(*statement)
				if !ok {
					return mismatch("s", "statement", v)
				}
				stmts = append(stmts, st)
				return nil
			})
			return stmts, err
		},
		"statement": func(args *eval.Args, _ string) (interface{}, error) {
			st := &statement{name: args.Text("name"), pos: args.Offset()}
			if present(args, "params") {
				l, _ := list(args, "params")
				p, err := l.At(0)
				if err != nil {
					return nil, err
				}
				if st.params, _ = p.([]string); st.params == nil {
					return nil, mismatch("params", "parameter list", p)
				}
			}
			tracer().Debugf("rule %s", st.name)
			var err error
			st.rhs, err = handle(args, "rhs")
			return st, err
		},
		"params": func(args *eval.Args, _ string) (interface{}, error) {
			l, err := list(args, "p")
			if err != nil {
				return nil, err
			}
			params := []string{}
			for i := 0; i < l.Len(); i++ {
				params = append(params, l.Element(i).Text())
			}
			return params, nil
		},
		"choice": func(args *eval.Args, _ string) (interface{}, error) {
			alts, err := handles(args, "alt")
			if err != nil {
				return nil, err
			}
			if len(alts) == 1 {
				return alts[0], nil
			}
			return g.At(g.Choice(alts...), args.Offset()), nil
		},
		"sequence": func(args *eval.Args, _ string) (interface{}, error) {
			terms, err := handles(args, "t")
			if err != nil {
				return nil, err
			}
			if len(terms) == 1 {
				return terms[0], nil
			}
			return g.At(g.Seq(terms...), args.Offset()), nil
		},
		"term.anchored": func(args *eval.Args, _ string) (interface{}, error) {
			body, err := handle(args, "body")
			if err != nil {
				return nil, err
			}
			return g.Anchored(args.Text("name"), body), nil
		},
		"term.named": func(args *eval.Args, _ string) (interface{}, error) {
			name := args.Text("ref")
			return g.Anchored(name, g.At(g.Ref(name), args.Offset())), nil
		},
		"unary.not": func(args *eval.Args, _ string) (interface{}, error) {
			body, err := handle(args, "body")
			if err != nil {
				return nil, err
			}
			return g.At(g.Not(body), args.Offset()), nil
		},
		"unary.and": func(args *eval.Args, _ string) (interface{}, error) {
			body, err := handle(args, "body")
			if err != nil {
				return nil, err
			}
			return g.At(g.And(body), args.Offset()), nil
		},
		"unary.postfix": func(args *eval.Args, _ string) (interface{}, error) {
			h, err := handle(args, "atom")
			if err != nil {
				return nil, err
			}
			suffixes, err := list(args, "suffix")
			if err != nil {
				return nil, err
			}
			err = suffixes.Each(func(_ int, v interface{}) error {
				wrap, ok := v.(wrapper)
				if !ok {
					return mismatch("suffix", "repetition", v)
				}
				h = g.At(wrap(h), args.Offset())
				return nil
			})
			return h, err
		},
		"suffix.star": func(*eval.Args, string) (interface{}, error) {
			return wrapper(g.Star), nil
		},
		"suffix.plus": func(*eval.Args, string) (interface{}, error) {
			return wrapper(g.Plus), nil
		},
		"suffix.option": func(*eval.Args, string) (interface{}, error) {
			return wrapper(g.Option), nil
		},
		"suffix.bounds": func(args *eval.Args, _ string) (interface{}, error) {
			min, _ := strconv.Atoi(args.Text("min"))
			max := min
			if present(args, "comma") {
				max = bnf.Unbounded
				if present(args, "max") {
					max, _ = strconv.Atoi(args.Text("max"))
				}
			}
			if max != bnf.Unbounded && max < min {
				return nil, ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrSyntax,
					"repetition bounds {%d,%d} are empty", min, max).At(r.source, r.text, args.Offset())
			}
			return wrapper(func(h bnf.Handle) bnf.Handle { return g.Bounded(h, min, max) }), nil
		},
		"atom.string": func(args *eval.Args, _ string) (interface{}, error) {
			return g.At(g.Literal(unescape(args.Text("s"))), args.Offset()), nil
		},
		"atom.istring": func(args *eval.Args, _ string) (interface{}, error) {
			return g.At(g.ILiteral(unescape(args.Text("s"))), args.Offset()), nil
		},
		"atom.charset": func(args *eval.Args, _ string) (interface{}, error) {
			return g.At(g.CharSet(unescape(args.Text("s")), present(args, "neg")), args.Offset()), nil
		},
		"atom.any": func(args *eval.Args, _ string) (interface{}, error) {
			return g.At(g.Wildcard(), args.Offset()), nil
		},
		"atom.group": func(args *eval.Args, _ string) (interface{}, error) {
			body, err := handle(args, "body")
			if err != nil {
				return nil, err
			}
			return g.At(g.Group(true, body), args.Offset()), nil
		},
		"atom.defaults": func(args *eval.Args, _ string) (interface{}, error) {
			l, err := list(args, "d")
			if err != nil {
				return nil, err
			}
			defaults := make([]bnf.Default, 0, l.Len())
			err = l.Each(func(_ int, v interface{}) error {
				d, ok := v.(bnf.Default)
				if !ok {
					return mismatch("d", "default value", v)
				}
				defaults = append(defaults, d)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return g.At(g.DefaultValues(defaults...), args.Offset()), nil
		},
		"default": func(args *eval.Args, _ string) (interface{}, error) {
			return bnf.Default{
				Anchor:  args.Text("anchor"),
				Rule:    args.Text("rule"),
				Literal: args.Text("literal"),
				Pos:     args.Offset(),
			}, nil
		},
		"atom.directive": func(args *eval.Args, _ string) (interface{}, error) {
			return g.At(g.Directive(args.Text("name"), strings.TrimSpace(args.Text("args"))), args.Offset()), nil
		},
		"atom.ref": func(args *eval.Args, _ string) (interface{}, error) {
			return g.At(g.Ref(args.Text("name")), args.Offset()), nil
		},
	}
}

// unescape resolves backslash escapes of literals and character sets.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, c := range s {
		if !escaped {
			if c == '\\' {
				escaped = true
			} else {
				b.WriteRune(c)
			}
			continue
		}
		escaped = false
		switch c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

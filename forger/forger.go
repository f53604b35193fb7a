package forger

import (
	"io"
	"strings"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/eval"
	"github.com/npillmayer/ruleforge/leftrec"
	"github.com/npillmayer/ruleforge/match"
	"github.com/npillmayer/ruleforge/meta"
	"github.com/npillmayer/ruleforge/ptree"
	"github.com/npillmayer/ruleforge/scanner"
)

// Forger compiles a grammar and parses programs with it.
type Forger struct {
	g        *bnf.Grammar
	resolved map[*bnf.Entry]*bnf.Resolution
	grammar  string // name of the grammar in error messages
	program  string // name of programs in error messages
	partial  bool
	tokens   scanner.TokenSource
	matching []match.Option
}

// Option configures a Forger.
type Option func(*Forger)

// FirstMatch lets choices and rule families select the first successful
// alternative instead of the longest one.
func FirstMatch(b bool) Option {
	return func(f *Forger) {
		f.matching = append(f.matching, match.FirstMatch(b))
	}
}

// Partial accepts programs of which the entry point matches a prefix only.
func Partial(b bool) Option {
	return func(f *Forger) {
		f.partial = b
	}
}

// Integrity switches memo integrity checks on or off. The default is taken
// from configuration key "ruleforge.memo-integrity".
func Integrity(b bool) Option {
	return func(f *Forger) {
		f.matching = append(f.matching, match.Integrity(b))
	}
}

// WithTokens switches to the token-oriented dialect. References to token type
// names of ts become token terminals, and literals match token lexemes.
func WithTokens(ts scanner.TokenSource) Option {
	return func(f *Forger) {
		f.tokens = ts
		f.matching = append(f.matching, match.WithTokens(ts))
	}
}

// WithDirective registers a handler for directive @name(…).
func WithDirective(name string, d match.Directive) Option {
	return func(f *Forger) {
		f.matching = append(f.matching, match.WithDirective(name, d))
	}
}

// SourceName sets the name of programs used in error messages.
func SourceName(name string) Option {
	return func(f *Forger) {
		f.program = name
	}
}

// GrammarName sets the name of grammar text used in error messages.
func GrammarName(name string) Option {
	return func(f *Forger) {
		f.grammar = name
	}
}

// eof matches the empty string at the end of the input.
func eof(input string, offset int, _ string) (int, bool) {
	return 0, offset == len(input)
}

// New creates a Forger without a grammar. Call Define before parsing.
func New(opts ...Option) *Forger {
	f := &Forger{
		grammar:  "grammar",
		program:  "program",
		matching: []match.Option{match.WithDirective("eof", eof)},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Compile creates a Forger for grammar text.
func Compile(text string, opts ...Option) (*Forger, error) {
	f := New(opts...)
	if err := f.Define(text); err != nil {
		return nil, err
	}
	return f, nil
}

// Define compiles grammar text, replacing a previously defined grammar. Every
// rule family is resolved for left recursion; the first grammar error found
// is returned and the previous grammar is kept.
func (f *Forger) Define(text string) error {
	var opts []meta.Option
	if f.tokens != nil {
		ts := f.tokens
		opts = append(opts, meta.Tokens(func(name string) bool {
			_, ok := ts.TypeOf(name)
			return ok
		}))
	}
	g, err := meta.Read(f.grammar, text, opts...)
	if err != nil {
		return err
	}
	resolved := make(map[*bnf.Entry]*bnf.Resolution)
	for _, e := range g.Namespace().Entries() {
		if len(e.Variants()) == 0 {
			continue
		}
		res, err := leftrec.Resolve(g, e)
		if err != nil {
			return err
		}
		resolved[e] = res
	}
	f.g, f.resolved = g, resolved
	tracer().Infof("grammar %s defines %d rule families", f.grammar, len(resolved))
	return nil
}

// Grammar returns the compiled grammar, or nil.
func (f *Forger) Grammar() *bnf.Grammar {
	return f.g
}

// Entry returns the namespace entry for a dotted rule name which may serve as
// an entry point for parsing.
func (f *Forger) Entry(name string) (*bnf.Entry, error) {
	if f.g == nil {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrNoGrammar, "no grammar defined")
	}
	e, err := f.g.Namespace().Resolve(name)
	if err != nil || f.resolved[e] == nil {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrUnresolvedEntry,
			"no rule %q to start parsing with", name).For(name)
	}
	return e, nil
}

// Parse parses program starting with the rule named entry and returns the
// parse tree.
func (f *Forger) Parse(entry, program string) (*ptree.Tree, error) {
	e, err := f.Entry(entry)
	if err != nil {
		return nil, err
	}
	opts := append([]match.Option{match.SourceName(f.program)}, f.matching...)
	s := match.NewSession(f.g, f.resolved[e], program, opts...)
	if _, err := s.Parse(e.LHS); err != nil {
		if pe, ok := err.(*ruleforge.Error); ok && pe.Rule == "" {
			pe.For(entry)
		}
		return nil, err
	}
	if !f.partial && s.Cursor() < len(program) {
		return nil, f.incomplete(s, entry, program)
	}
	tracer().Debugf("%s matched %d bytes of %s", entry, s.Cursor(), f.program)
	return s.Tree(), nil
}

// incomplete reports a match of a strict prefix of the program.
func (f *Forger) incomplete(s *match.Session, entry, program string) error {
	at, exp := s.Expected()
	if at < s.Cursor() {
		at, exp = s.Cursor(), nil
	}
	msg := "end of input"
	if len(exp) > 0 {
		msg = "one of " + strings.Join(exp, " ")
	}
	return ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrParseFailed,
		"%s matched %d of %d bytes, expected %s", entry, s.Cursor(), len(program), msg).
		For(entry).At(f.program, program, at)
}

// ParseReader parses a program read from r.
func (f *Forger) ParseReader(entry string, r io.Reader) (*ptree.Tree, error) {
	if r == nil {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrNoProgram, "no program to parse")
	}
	program, err := io.ReadAll(r)
	if err != nil {
		return nil, ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrNoProgram, "cannot read program: %v", err)
	}
	return f.Parse(entry, string(program))
}

// Evaluate parses program and computes its value with actions. Default values
// of anchors are computed by parsing their literals with the same grammar and
// actions.
func (f *Forger) Evaluate(entry, program string, actions eval.Actions) (interface{}, error) {
	env, err := f.env(entry, program, actions, nil)
	if err != nil {
		return nil, err
	}
	return env.Root().Value()
}

// Peek parses program and calls the observers registered for key on the rule
// nodes of the parse tree.
func (f *Forger) Peek(entry, program string, observers eval.Observers, key interface{}) error {
	env, err := f.env(entry, program, nil, observers)
	if err != nil {
		return err
	}
	return env.Root().Peek(key)
}

func (f *Forger) env(entry, program string, actions eval.Actions, observers eval.Observers) (*eval.Env, error) {
	t, err := f.Parse(entry, program)
	if err != nil {
		return nil, err
	}
	return eval.New(f.g, t, actions,
		eval.WithObservers(observers),
		eval.WithReparser(f.reparser(actions, observers))), nil
}

// reparser evaluates default-value literals. Nested defaults are handled by the
// same reparser.
func (f *Forger) reparser(actions eval.Actions, observers eval.Observers) eval.Reparser {
	return func(rule, literal string) (eval.Evaluator, error) {
		tracer().Debugf("evaluating default %s(`%s`)", rule, literal)
		env, err := f.env(rule, literal, actions, observers)
		if err != nil {
			return nil, err
		}
		return env.Root(), nil
	}
}

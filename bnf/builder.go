package bnf

import "github.com/npillmayer/ruleforge"

// Builder is a helper for constructing grammars programmatically.
//
//    b := bnf.NewBuilder("G")
//    g := b.G()
//    b.Rule("digits", g.CharSet("0123456789", false))
//    b.Rule("num", g.Plus(g.Ref("digits")))
//    grammar, err := b.Grammar()
//
// Errors are collected and reported by Grammar(); after the first error, all
// further calls are ignored.
type Builder struct {
	g       *Grammar
	isToken func(string) bool
	err     error
}

// NewBuilder creates a builder for a new, empty grammar.
func NewBuilder(name string) *Builder {
	return &Builder{g: NewGrammar(name, "")}
}

// G returns the grammar under construction, for access to node constructors.
func (b *Builder) G() *Grammar {
	return b.g
}

// Declare declares a rule name without a right-hand side.
func (b *Builder) Declare(name string) *Builder {
	if b.err == nil {
		_, b.err = b.g.ns.Declare(name, -1)
	}
	return b
}

// Rule declares a rule name and binds a right-hand side to it.
func (b *Builder) Rule(name string, rhs Handle) *Builder {
	if b.err != nil {
		return b
	}
	if _, b.err = b.g.ns.Declare(name, -1); b.err != nil {
		return b
	}
	_, b.err = b.g.ns.Assign(name, rhs, -1)
	return b
}

// Tokens sets a predicate for names to be treated as token types, if they are
// not declared as rules.
func (b *Builder) Tokens(isToken func(string) bool) *Builder {
	b.isToken = isToken
	return b
}

// Grammar completes the grammar: references are resolved and anchors are
// checked. It returns the first error encountered during construction.
func (b *Builder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.g.ResolveRefs(b.isToken); err != nil {
		return nil, err
	}
	for _, e := range b.g.ns.Entries() {
		if !e.Assigned() {
			continue
		}
		if err := b.g.CheckAnchors(e.RHS); err != nil {
			if re, ok := err.(*ruleforge.Error); ok {
				re.For(e.Name)
			}
			return nil, err
		}
	}
	return b.g, nil
}

// --- Left-recursion resolution results --------------------------------------

// Alternative is one way of deriving a rule family: a body belonging to a
// variant of the family.
type Alternative struct {
	Variant *Entry
	Body    Handle
}

// Growth describes how to match a left-recursive rule family by seed growing.
// Base alternatives cannot reach the recursive cycle without consuming input;
// recursive alternatives can.
type Growth struct {
	Target    *Entry
	Members   []*Entry // members of the cycle the target takes part in
	Base      []Alternative
	Recursive []Alternative
}

// Resolution is the result of left-recursion analysis for one entry point:
// the rule families which have to be matched by seed growing.
type Resolution struct {
	Entry   *Entry
	Targets map[*Entry]*Growth
}

// GrowthFor returns the growth plan for a rule family, or nil if the family is
// matched by plain recursive descent.
func (r *Resolution) GrowthFor(e *Entry) *Growth {
	if r == nil || r.Targets == nil {
		return nil
	}
	return r.Targets[e]
}

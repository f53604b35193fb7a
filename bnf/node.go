package bnf

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle addresses a node in the arena of a grammar.
type Handle int

// NoHandle is the null handle.
const NoHandle Handle = -1

// Kind is the concrete kind of a grammar node.
type Kind uint8

// Kinds of grammar nodes.
const (
	NoKind    Kind = iota
	Literal        // "abc"
	ILiteral       // i"abc", case-insensitive
	CharSet        // 'abc' or '^abc'
	Wildcard       // .
	Token          // token type of a token source
	Sequence       // a b c
	Group          // ( a b c )
	Choice         // a | b | c
	Star           // a*
	Plus           // a+
	Option         // a?
	Bounded        // a{m,n}
	Lookahead      // !a or &a
	Ref            // reference to a rule family
	Skip           // whitespace and comments
	Defaults       // {$name:rule(`literal`), …}
	Directive      // @name(args)
)

var kindNames = [...]string{"?", "Literal", "ILiteral", "CharSet", "Wildcard", "Token",
	"Sequence", "Group", "Choice", "Star", "Plus", "Option", "Bounded", "Lookahead",
	"Ref", "Skip", "Defaults", "Directive"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Class groups node kinds into families. A kind may belong to more than one class.
type Class uint16

// Classes of grammar node kinds.
const (
	TerminalClass   Class = 1 << iota // consumes input directly
	CompositeClass                    // sequences and groups
	ChoiceClass                       // alternatives
	RepetitionClass                   // *, +, ?, {m,n}
	PredicateClass                    // lookahead assertions
	ReferenceClass                    // rule references
	WhitespaceClass                   // skip constructs
	ExtensionClass                    // defaults and directives
	AnyClass        Class = 0xffff
)

var kindClasses = map[Kind]Class{
	Literal:   TerminalClass,
	ILiteral:  TerminalClass,
	CharSet:   TerminalClass,
	Wildcard:  TerminalClass,
	Token:     TerminalClass,
	Sequence:  CompositeClass,
	Group:     CompositeClass,
	Choice:    ChoiceClass,
	Star:      RepetitionClass,
	Plus:      RepetitionClass,
	Option:    RepetitionClass,
	Bounded:   RepetitionClass,
	Lookahead: PredicateClass,
	Ref:       ReferenceClass,
	Skip:      WhitespaceClass,
	Defaults:  ExtensionClass,
	Directive: ExtensionClass | TerminalClass,
}

// Class returns the class bits of a kind.
func (k Kind) Class() Class {
	return kindClasses[k]
}

// Is is true if k belongs to at least one of the classes in c.
func (k Kind) Is(c Class) bool {
	return kindClasses[k]&c != 0
}

// Unbounded is the maximum of repetitions without upper bound.
const Unbounded = -1

// Default is a fallback value for an anchor, given as a literal to be parsed
// with a rule, independently of the program input.
type Default struct {
	Anchor  string
	Rule    string
	Literal string
	Pos     int
}

type nullability uint8

const (
	nullUnknown nullability = iota
	nullProbing
	nullYes
	nullNo
)

// Node is a grammar node. Nodes are created by the constructors of Grammar and
// are structurally immutable after grammar compilation, except for the anchor,
// the recursive flag and cached analysis results.
type Node struct {
	Kind       Kind
	Text       string    // literal text, char-set members, rule or token name, directive name, skip exclusions
	Args       string    // directive arguments
	Min, Max   int       // repetition bounds, Max may be Unbounded
	Negated    bool      // negated char-set or negative lookahead
	FirstMatch bool      // choice selects the first successful alternative
	Bracketed  bool      // group was written with parentheses
	Anchor     string    // name binding this node for evaluation
	Valid      []int     // indices of semantically meaningful operands, nil for all
	Recursive  bool      // set by left-recursion analysis
	Pos        int       // offset in grammar source, -1 if unknown
	Defaults   []Default // for kind Defaults
	Target     *Entry    // resolved rule family for kind Ref

	operands     []Handle
	define       func() []Handle
	materialized bool
	nullable     nullability
}

func (n *Node) String() string {
	var b strings.Builder
	if n.Anchor != "" {
		b.WriteString("$" + n.Anchor + ":")
	}
	switch n.Kind {
	case Literal:
		b.WriteString(strconv.Quote(n.Text))
	case ILiteral:
		b.WriteString("i" + strconv.Quote(n.Text))
	case CharSet:
		if n.Negated {
			b.WriteString("'^" + n.Text + "'")
		} else {
			b.WriteString("'" + n.Text + "'")
		}
	case Wildcard:
		b.WriteString(".")
	case Token, Ref:
		b.WriteString(n.Text)
	case Lookahead:
		if n.Negated {
			b.WriteString("!")
		} else {
			b.WriteString("&")
		}
	case Directive:
		fmt.Fprintf(&b, "@%s(%s)", n.Text, n.Args)
	default:
		b.WriteString(n.Kind.String())
	}
	switch n.Kind {
	case Star:
		b.WriteString("*")
	case Plus:
		b.WriteString("+")
	case Option:
		b.WriteString("?")
	case Bounded:
		if n.Max == Unbounded {
			fmt.Fprintf(&b, "{%d,}", n.Min)
		} else {
			fmt.Fprintf(&b, "{%d,%d}", n.Min, n.Max)
		}
	}
	return b.String()
}

// internKey is the identity of a node for interning. Nodes carrying anchors,
// defaults or lazy definitions are never interned.
func (n *Node) internKey(operands []Handle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%q|%q|%d|%d|%t|%t|%t|", n.Kind, n.Text, n.Args, n.Min, n.Max,
		n.Negated, n.FirstMatch, n.Bracketed)
	for _, h := range operands {
		b.WriteString(strconv.Itoa(int(h)))
		b.WriteByte(',')
	}
	return b.String()
}

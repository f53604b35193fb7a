package forger

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/npillmayer/ruleforge/bnf"
)

// RuleTable returns a text table of the rules of the grammar, in declaration
// order, with their definitions and the rule families they call in left-most
// position.
func (f *Forger) RuleTable() string {
	if f.g == nil {
		return ""
	}
	data := [][]string{{"Rule", "Left calls", "Definition"}}
	for _, e := range f.g.Namespace().Entries() {
		if !e.Assigned() {
			continue
		}
		name := e.Name
		if len(e.Params) > 0 {
			name += "(" + strings.Join(e.Params, ", ") + ")"
		}
		if e.Cycle {
			name += " ↺"
		}
		left := make([]string, len(e.LeftCalls))
		for i, c := range e.LeftCalls {
			left[i] = c.Name
		}
		data = append(data, []string{name, strings.Join(left, " "), render(f.g, e.RHS)})
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// render prints a grammar node in the syntax of grammar text.
func render(g *bnf.Grammar, h bnf.Handle) string {
	n := g.Node(h)
	var b strings.Builder
	if n.Anchor != "" {
		b.WriteString("$" + n.Anchor + ":")
	}
	ops := g.Operands(h)
	switch {
	case n.Bracketed && len(ops) == 1:
		b.WriteString("(" + render(g, ops[0]) + ")")
	case n.Kind.Is(bnf.CompositeClass):
		parts := make([]string, len(ops))
		for i, op := range ops {
			parts[i] = nested(g, op)
		}
		if n.Bracketed {
			b.WriteString("(" + strings.Join(parts, " ") + ")")
		} else {
			b.WriteString(strings.Join(parts, " "))
		}
	case n.Kind == bnf.Choice:
		parts := make([]string, len(ops))
		for i, op := range ops {
			parts[i] = render(g, op)
		}
		b.WriteString(strings.Join(parts, " | "))
	case n.Kind.Is(bnf.RepetitionClass):
		b.WriteString(nested(g, ops[0]))
		switch n.Kind {
		case bnf.Star:
			b.WriteString("*")
		case bnf.Plus:
			b.WriteString("+")
		case bnf.Option:
			b.WriteString("?")
		default:
			if n.Max == bnf.Unbounded {
				fmt.Fprintf(&b, "{%d,}", n.Min)
			} else if n.Min == n.Max {
				fmt.Fprintf(&b, "{%d}", n.Min)
			} else {
				fmt.Fprintf(&b, "{%d,%d}", n.Min, n.Max)
			}
		}
	case n.Kind == bnf.Lookahead:
		if n.Negated {
			b.WriteString("!")
		} else {
			b.WriteString("&")
		}
		b.WriteString(nested(g, ops[0]))
	case n.Kind == bnf.Skip:
		b.WriteString("~" + nested(g, ops[0]))
	case n.Kind == bnf.Defaults:
		defs := make([]string, len(n.Defaults))
		for i, d := range n.Defaults {
			defs[i] = fmt.Sprintf("$%s:%s(`%s`)", d.Anchor, d.Rule, d.Literal)
		}
		b.WriteString("{" + strings.Join(defs, ", ") + "}")
	default:
		terminal := *n
		terminal.Anchor = ""
		b.WriteString(terminal.String())
	}
	return b.String()
}

// nested renders an operand, putting parentheses around choices and unbracketed
// sequences.
func nested(g *bnf.Grammar, h bnf.Handle) string {
	n := g.Node(h)
	s := render(g, h)
	if n.Anchor == "" && (n.Kind == bnf.Choice || n.Kind == bnf.Sequence) && len(g.Operands(h)) > 1 {
		return "(" + s + ")"
	}
	return s
}

package match

import (
	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/ptree"
)

// parse builds a parse tree node for grammar node h at offset. The node and
// its sub-tree are detached; the caller appends it to its parent.
// Every decision is taken from (memoized) tests, so parse never backtracks.
func (s *Session) parse(h bnf.Handle, offset, sd int, inBr bool) int {
	r := s.test(h, offset, sd, inBr)
	if !r.OK {
		panic(ruleforge.Errorf(ruleforge.GrammarStructure, ruleforge.ErrParseFailed,
			"parse of node %d at offset %d without successful test", h, offset))
	}
	if sd != 0 && s.seeds[sd].offset < offset {
		sd = 0
	}
	n := s.G.Node(h)
	t := s.tree
	switch n.Kind {
	case bnf.Sequence, bnf.Group:
		inner := inBr || n.Kind == bnf.Group && n.Bracketed
		node := s.add(h, n, 0)
		pos := offset
		for _, op := range s.G.Operands(h) {
			t.Append(node, s.parse(op, pos, sd, inner))
			pos += s.test(op, pos, sd, inner).Length
		}
		return node
	case bnf.Choice:
		i, _ := s.choice(h, n, offset, sd, inBr)
		node := s.add(h, n, 0)
		t.Append(node, s.parse(s.G.Operand(h, i), offset, sd, inBr))
		return node
	case bnf.Star, bnf.Plus, bnf.Option, bnf.Bounded:
		count, _ := s.repeat(h, n, offset, sd, inBr)
		return s.iterate(h, n, s.G.Operand(h, 0), count, offset, sd, inBr)
	case bnf.Skip:
		count, _ := s.skip(h, n, offset, sd, inBr)
		return s.iterate(h, n, s.G.Operand(h, 0), count, offset, sd, inBr)
	case bnf.Lookahead:
		s.lookahead++
		inner := s.test(s.G.Operand(h, 0), offset, sd, inBr)
		s.lookahead--
		node := s.add(h, n, 0)
		t.Node(node).Verdict = inner.OK
		return node
	case bnf.Ref:
		return s.parseCall(h, n, offset, sd, inBr)
	}
	return s.add(h, n, r.Length) // terminals, defaults and directives
}

func (s *Session) add(h bnf.Handle, n *bnf.Node, length int) int {
	node := s.tree.Add(h, length)
	s.tree.Node(node).Anchor = n.Anchor
	return node
}

func (s *Session) iterate(h bnf.Handle, n *bnf.Node, op bnf.Handle, count, offset, sd int, inBr bool) int {
	node := s.add(h, n, 0)
	pos := offset
	for i := 0; i < count; i++ {
		s.tree.Append(node, s.parse(op, pos, sd, inBr))
		pos += s.test(op, pos, sd, inBr).Length
	}
	return node
}

// parseCall builds a rule node for a reference to a rule family. A reference
// consuming a seed becomes a placeholder, to be swapped with the parse of the
// seed later.
func (s *Session) parseCall(h bnf.Handle, n *bnf.Node, offset, sd int, inBr bool) int {
	target := s.target(h, n)
	if id := s.seedFor(target, offset, sd); id != 0 {
		ph := s.add(h, n, s.seeds[id].length)
		p := s.tree.Node(ph)
		p.Placeholder, p.Boundary, p.Rule = true, true, target
		return ph
	}
	if gr := s.res.GrowthFor(target); gr != nil {
		node := s.parseGrowth(gr, offset, sd, inBr)
		p := s.tree.Node(node)
		p.Grammar, p.Anchor = h, n.Anchor
		return node
	}
	i, _ := s.variant(target, offset, sd, inBr)
	v := target.Variants()[i]
	return s.ruleNode(h, n.Anchor, v, v.RHS, offset, sd, inBr)
}

// ruleNode creates a rule-call node for variant v, with the parse of body as
// its only child.
func (s *Session) ruleNode(h bnf.Handle, anchor string, v *bnf.Entry, body bnf.Handle,
	offset, sd int, inBr bool) int {
	//
	node := s.tree.Add(h, 0)
	p := s.tree.Node(node)
	p.Rule, p.Boundary, p.Anchor = v, true, anchor
	s.tree.Append(node, s.parse(body, offset, sd, inBr))
	return node
}

// parseGrowth rebuilds the left-nested structure of a grown seed: the base
// match is parsed first, then every growth step is parsed with a placeholder
// for the previous match, and the previous parse is swapped into it.
func (s *Session) parseGrowth(gr *bnf.Growth, offset, sd int, inBr bool) int {
	base := baseOf(gr)
	i, r := s.chooseAlt(base, offset, sd, inBr, -1)
	node := s.ruleNode(gr.Target.LHS, "", base[i].Variant, base[i].Body, offset, sd, inBr)
	isSeed := func(p *ptree.Node) bool {
		return p.Placeholder && p.Rule == gr.Target
	}
	for {
		next := s.seedID(gr.Target, offset, r.Length, sd)
		j, grown := s.chooseAlt(gr.Recursive, offset, next, inBr, r.Length)
		if j < 0 {
			break
		}
		alt := gr.Recursive[j]
		step := s.ruleNode(gr.Target.LHS, "", alt.Variant, alt.Body, offset, next, inBr)
		seeds, _ := s.tree.Dig(step, isSeed, true, 0, -1, nil)
		if len(seeds) > 0 {
			if err := s.tree.Swap(seeds[0], node); err != nil {
				panic(err)
			}
		}
		node, r = step, grown
	}
	return node
}

package match

import (
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
)

// match tests grammar node h at offset, without consulting the memo cache
// for h itself.
func (s *Session) match(h bnf.Handle, offset, sd int, inBr bool) Result {
	n := s.G.Node(h)
	if n == nil {
		panic(ruleforge.Errorf(ruleforge.GrammarStructure, ruleforge.ErrKindMismatch,
			"no grammar node with handle %d", h))
	}
	var r Result
	switch n.Kind {
	case bnf.Literal, bnf.ILiteral:
		r = s.literal(n, offset)
	case bnf.CharSet, bnf.Wildcard:
		r = s.char(n, offset)
	case bnf.Token:
		r = s.token(n, offset)
	case bnf.Sequence, bnf.Group:
		r = s.sequence(h, n, offset, sd, inBr)
	case bnf.Choice:
		_, r = s.choice(h, n, offset, sd, inBr)
	case bnf.Star, bnf.Plus, bnf.Option, bnf.Bounded:
		_, r = s.repeat(h, n, offset, sd, inBr)
	case bnf.Lookahead:
		s.lookahead++
		inner := s.test(s.G.Operand(h, 0), offset, sd, inBr)
		s.lookahead--
		r = Result{OK: inner.OK != n.Negated}
	case bnf.Ref:
		r = s.call(h, n, offset, sd, inBr)
	case bnf.Skip:
		_, r = s.skip(h, n, offset, sd, inBr)
	case bnf.Defaults:
		r = Result{OK: true}
	case bnf.Directive:
		r = s.directive(n, offset)
	default:
		panic(ruleforge.Errorf(ruleforge.NotImplemented, ruleforge.ErrAbstract,
			"cannot match node %d of kind %v", h, n.Kind))
	}
	if !r.OK && n.Kind.Is(bnf.TerminalClass) {
		s.expect(n, offset)
	}
	return r
}

// --- Terminals -----------------------------------------------------------------

func (s *Session) literal(n *bnf.Node, offset int) Result {
	if s.tokens != nil {
		t := s.tokenAt(offset)
		if t.err != nil || t.tok == nil {
			return fail
		}
		lx := t.tok.Lexeme()
		if lx == n.Text || n.Kind == bnf.ILiteral && strings.EqualFold(lx, n.Text) {
			return Result{OK: true, Length: t.n}
		}
		return fail
	}
	end := offset + len(n.Text)
	if end > len(s.input) {
		return fail
	}
	if n.Kind == bnf.Literal && s.input[offset:end] == n.Text ||
		n.Kind == bnf.ILiteral && strings.EqualFold(s.input[offset:end], n.Text) {
		return Result{OK: true, Length: len(n.Text)}
	}
	return fail
}

func (s *Session) char(n *bnf.Node, offset int) Result {
	if offset >= len(s.input) {
		return fail
	}
	r, size := utf8.DecodeRuneInString(s.input[offset:])
	if n.Kind == bnf.Wildcard || strings.ContainsRune(n.Text, r) != n.Negated {
		return Result{OK: true, Length: size}
	}
	return fail
}

func (s *Session) token(n *bnf.Node, offset int) Result {
	if s.tokens == nil {
		if s.probing {
			return fail
		}
		panic(ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrKindMismatch,
			"grammar uses token type %s, but no token source is configured", n.Text))
	}
	typ, ok := s.tokens.TypeOf(n.Text)
	if !ok {
		panic(ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrUndeclared,
			"token type %s unknown to token source", n.Text).At(s.G.Name, s.G.Source, n.Pos))
	}
	t := s.tokenAt(offset)
	if t.err != nil || t.tok == nil || t.tok.TokType() != typ {
		return fail
	}
	return Result{OK: true, Length: t.n}
}

func (s *Session) tokenAt(offset int) tokenAt {
	if t, ok := s.tokCache[offset]; ok {
		return t
	}
	var t tokenAt
	t.tok, t.n, t.err = s.tokens.TokenAt(s.input, offset)
	if t.err != nil {
		tracer().Debugf("no token at %d: %v", offset, t.err)
	}
	s.tokCache[offset] = t
	return t
}

func (s *Session) directive(n *bnf.Node, offset int) Result {
	d, ok := s.directives[n.Text]
	if !ok {
		if s.probing {
			return fail
		}
		panic(ruleforge.Errorf(ruleforge.Usage, ruleforge.ErrUnknownDirective,
			"@%s", n.Text).At(s.G.Name, s.G.Source, n.Pos))
	}
	length, ok := d(s.input, offset, n.Args)
	if !ok {
		return fail
	}
	return Result{OK: true, Length: length}
}

// --- Composites ----------------------------------------------------------------

func (s *Session) sequence(h bnf.Handle, n *bnf.Node, offset, sd int, inBr bool) Result {
	inner := inBr || n.Kind == bnf.Group && n.Bracketed
	pos := offset
	for _, op := range s.G.Operands(h) {
		r := s.test(op, pos, sd, inner)
		if !r.OK {
			return fail
		}
		pos += r.Length
	}
	return Result{OK: true, Length: pos - offset}
}

func (s *Session) choice(h bnf.Handle, n *bnf.Node, offset, sd int, inBr bool) (int, Result) {
	ops := s.G.Operands(h)
	return s.choose(len(ops), func(i int) bnf.Handle { return ops[i] },
		offset, sd, inBr, n.FirstMatch || s.firstMatch, -1)
}

// choose tests alternatives at offset and selects the longest successful one,
// preferring earlier alternatives on ties, or the first successful one if first
// is set. Only matches longer than min are considered. choose returns -1 if no
// alternative qualifies.
func (s *Session) choose(count int, alt func(int) bnf.Handle, offset, sd int, inBr, first bool,
	min int) (int, Result) {
	//
	best, bestR := -1, fail
	for i := 0; i < count; i++ {
		r := s.test(alt(i), offset, sd, inBr)
		if !r.OK || r.Length <= min {
			continue
		}
		if first {
			return i, r
		}
		if best < 0 || r.Length > bestR.Length {
			best, bestR = i, r
		}
	}
	return best, bestR
}

// repeat counts the iterations of a repetition. Repetition stops at the first
// failure, at a zero-length match, or at the maximum count. A zero-length
// match could be repeated indefinitely, so it satisfies any minimum count.
func (s *Session) repeat(h bnf.Handle, n *bnf.Node, offset, sd int, inBr bool) (int, Result) {
	op := s.G.Operand(h, 0)
	pos, count := offset, 0
	for n.Max == bnf.Unbounded || count < n.Max {
		r := s.test(op, pos, sd, inBr)
		if !r.OK {
			break
		}
		if r.Length == 0 {
			if count < n.Min {
				count = n.Min
			}
			break
		}
		count++
		pos += r.Length
	}
	if count < n.Min {
		return count, fail
	}
	return count, Result{OK: true, Length: pos - offset}
}

// skip matches whitespace and comments. Outside of brackets, skipping stops in
// front of a match containing one of the excluded characters. Skip always
// succeeds.
func (s *Session) skip(h bnf.Handle, n *bnf.Node, offset, sd int, inBr bool) (int, Result) {
	rule := s.G.Operand(h, 0)
	pos, count := offset, 0
	for {
		r := s.test(rule, pos, sd, inBr)
		if !r.OK || r.Length == 0 {
			break
		}
		if !inBr && n.Text != "" && strings.ContainsAny(s.input[pos:pos+r.Length], n.Text) {
			break
		}
		count++
		pos += r.Length
	}
	return count, Result{OK: true, Length: pos - offset}
}

// --- Rule calls ----------------------------------------------------------------

func (s *Session) target(h bnf.Handle, n *bnf.Node) *bnf.Entry {
	if n.Target == nil {
		panic(ruleforge.Errorf(ruleforge.GrammarSemantics, ruleforge.ErrUndeclared,
			"unresolved reference to %s (node %d)", n.Text, h).At(s.G.Name, s.G.Source, n.Pos))
	}
	return n.Target
}

// call matches a reference to a rule family. A reference meeting the seed of
// its family consumes the seed; families which are left recursive for the
// current entry point grow seeds; all others select among their variants.
func (s *Session) call(h bnf.Handle, n *bnf.Node, offset, sd int, inBr bool) Result {
	target := s.target(h, n)
	if id := s.seedFor(target, offset, sd); id != 0 {
		return Result{OK: true, Length: s.seeds[id].length}
	}
	s.enter(target)
	defer s.leave()
	if gr := s.res.GrowthFor(target); gr != nil {
		return s.grow(gr, offset, sd, inBr)
	}
	_, r := s.variant(target, offset, sd, inBr)
	return r
}

func (s *Session) variant(target *bnf.Entry, offset, sd int, inBr bool) (int, Result) {
	vs := target.Variants()
	return s.choose(len(vs), func(i int) bnf.Handle { return vs[i].RHS },
		offset, sd, inBr, s.firstMatch, -1)
}

func (s *Session) chooseAlt(alts []bnf.Alternative, offset, sd int, inBr bool, min int) (int, Result) {
	return s.choose(len(alts), func(i int) bnf.Handle { return alts[i].Body },
		offset, sd, inBr, s.firstMatch, min)
}

// baseOf returns the alternatives a growing family starts with. A family
// without base alternatives of its own relies on another member of its cycle
// to grow, and starts with plain descent.
func baseOf(gr *bnf.Growth) []bnf.Alternative {
	if len(gr.Base) == 0 {
		return gr.Recursive
	}
	return gr.Base
}

// grow matches a left-recursive rule family: starting from a base match, the
// recursive alternatives are matched with the current match as seed, as long
// as the match grows.
func (s *Session) grow(gr *bnf.Growth, offset, sd int, inBr bool) Result {
	_, r := s.chooseAlt(baseOf(gr), offset, sd, inBr, -1)
	if !r.OK {
		return fail
	}
	for {
		next := s.seedID(gr.Target, offset, r.Length, sd)
		i, grown := s.chooseAlt(gr.Recursive, offset, next, inBr, r.Length)
		if i < 0 {
			break
		}
		tracer().Debugf("seed of %s at %d grows from %d to %d", gr.Target, offset, r.Length, grown.Length)
		r = grown
	}
	return r
}

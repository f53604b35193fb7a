package bnf

// --- Node constructors ----------------------------------------------------------
//
// Constructors return handles into the grammar's arena. Constructing an
// equal construct twice returns the same handle, unless the construct is lazy
// or anchored.

func (g *Grammar) newNode(k Kind) *Node {
	return &Node{Kind: k, Pos: -1}
}

// Literal creates a terminal matching text exactly.
func (g *Grammar) Literal(text string) Handle {
	n := g.newNode(Literal)
	n.Text = text
	return g.add(n, nil)
}

// ILiteral creates a terminal matching text, ignoring case.
func (g *Grammar) ILiteral(text string) Handle {
	n := g.newNode(ILiteral)
	n.Text = text
	return g.add(n, nil)
}

// CharSet creates a terminal matching a single character out of members, or,
// if negated, any single character not in members.
func (g *Grammar) CharSet(members string, negated bool) Handle {
	n := g.newNode(CharSet)
	n.Text = members
	n.Negated = negated
	return g.add(n, nil)
}

// Wildcard creates a terminal matching any single character.
func (g *Grammar) Wildcard() Handle {
	return g.add(g.newNode(Wildcard), nil)
}

// Token creates a terminal matching a token of the given token type name.
func (g *Grammar) Token(name string) Handle {
	n := g.newNode(Token)
	n.Text = name
	return g.add(n, nil)
}

// Ref creates a reference to a rule family. The reference is resolved
// against the namespace later, see ResolveRefs.
func (g *Grammar) Ref(name string) Handle {
	n := g.newNode(Ref)
	n.Text = name
	return g.add(n, nil)
}

// Seq creates a sequence of operands.
func (g *Grammar) Seq(operands ...Handle) Handle {
	return g.add(g.newNode(Sequence), copyHandles(operands))
}

// Group creates a parenthesized group. Bracketed groups switch the matcher into
// bracket context, where skip constructs ignore their exclusions.
func (g *Grammar) Group(bracketed bool, operands ...Handle) Handle {
	n := g.newNode(Group)
	n.Bracketed = bracketed
	return g.add(n, copyHandles(operands))
}

// Choice creates alternatives, resolved by longest match.
func (g *Grammar) Choice(operands ...Handle) Handle {
	return g.add(g.newNode(Choice), copyHandles(operands))
}

// FirstChoice creates alternatives, resolved by first successful match.
func (g *Grammar) FirstChoice(operands ...Handle) Handle {
	n := g.newNode(Choice)
	n.FirstMatch = true
	return g.add(n, copyHandles(operands))
}

func (g *Grammar) repetition(k Kind, h Handle, min, max int) Handle {
	n := g.newNode(k)
	n.Min, n.Max = min, max
	return g.add(n, []Handle{h})
}

// Star creates h*.
func (g *Grammar) Star(h Handle) Handle {
	return g.repetition(Star, h, 0, Unbounded)
}

// Plus creates h+.
func (g *Grammar) Plus(h Handle) Handle {
	return g.repetition(Plus, h, 1, Unbounded)
}

// Option creates h?.
func (g *Grammar) Option(h Handle) Handle {
	return g.repetition(Option, h, 0, 1)
}

// Bounded creates h{min,max}. Both bounds are inclusive; max may be Unbounded.
func (g *Grammar) Bounded(h Handle, min, max int) Handle {
	return g.repetition(Bounded, h, min, max)
}

// Not creates a negative lookahead !h.
func (g *Grammar) Not(h Handle) Handle {
	n := g.newNode(Lookahead)
	n.Negated = true
	return g.add(n, []Handle{h})
}

// And creates a positive lookahead &h.
func (g *Grammar) And(h Handle) Handle {
	return g.add(g.newNode(Lookahead), []Handle{h})
}

// Skip creates a whitespace construct, repeating rule as long as it matches
// non-empty text. Outside of bracket context, a match containing any of the
// characters in exclude ends the skip.
func (g *Grammar) Skip(rule Handle, exclude string) Handle {
	n := g.newNode(Skip)
	n.Text = exclude
	return g.add(n, []Handle{rule})
}

// Directive creates an extension point @name(args), matched by a directive
// handler registered with the matcher.
func (g *Grammar) Directive(name, args string) Handle {
	n := g.newNode(Directive)
	n.Text = name
	n.Args = args
	return g.add(n, nil)
}

// DefaultValues creates a zero-width construct supplying fallback values for
// anchors which are not bound otherwise.
func (g *Grammar) DefaultValues(defaults ...Default) Handle {
	n := g.newNode(Defaults)
	n.Defaults = append([]Default(nil), defaults...)
	return g.add(n, nil)
}

// Lazy creates a composite node of kind k whose operands are produced by define
// on first access. This allows to construct nodes referencing nodes which do
// not exist yet.
func (g *Grammar) Lazy(k Kind, define func() []Handle) Handle {
	n := g.newNode(k)
	if k.Is(RepetitionClass) {
		n.Min, n.Max = repetitionBounds(k)
	}
	n.define = define
	return g.add(n, nil)
}

func repetitionBounds(k Kind) (int, int) {
	switch k {
	case Plus:
		return 1, Unbounded
	case Option:
		return 0, 1
	}
	return 0, Unbounded
}

// Anchored returns a copy of node h, bound to an anchor name. Anchored nodes are
// never shared.
func (g *Grammar) Anchored(name string, h Handle) Handle {
	orig := g.Node(h)
	if orig == nil {
		return NoHandle
	}
	ops := g.Operands(h)
	n := &Node{
		Kind:       orig.Kind,
		Text:       orig.Text,
		Args:       orig.Args,
		Min:        orig.Min,
		Max:        orig.Max,
		Negated:    orig.Negated,
		FirstMatch: orig.FirstMatch,
		Bracketed:  orig.Bracketed,
		Anchor:     name,
		Valid:      orig.Valid,
		Pos:        orig.Pos,
		Target:     orig.Target,
	}
	return g.add(n, copyHandles(ops))
}

// At records the grammar source position of a node, if none is known yet.
// Interned nodes keep the position of their first occurrence.
func (g *Grammar) At(h Handle, pos int) Handle {
	if n := g.Node(h); n != nil && n.Pos < 0 {
		n.Pos = pos
	}
	return h
}

func copyHandles(hs []Handle) []Handle {
	if len(hs) == 0 {
		return nil
	}
	return append([]Handle(nil), hs...)
}

package bnf

import (
	"errors"
	"testing"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestInterning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	g := NewGrammar("G", "")
	a1, a2 := g.Literal("a"), g.Literal("a")
	if a1 != a2 {
		t.Errorf("expected literal \"a\" to be interned, have %d and %d", a1, a2)
	}
	if g.ILiteral("a") == a1 {
		t.Errorf("case-insensitive literal must not be shared with exact literal")
	}
	s1 := g.Seq(a1, g.Ref("b"))
	s2 := g.Seq(a2, g.Ref("b"))
	if s1 != s2 {
		t.Errorf("expected equal sequences to be interned")
	}
	x := g.Anchored("x", a1)
	if x == a1 || g.Anchored("x", a1) == x {
		t.Errorf("anchored nodes must never be shared")
	}
	if g.Node(x).Anchor != "x" || g.Node(a1).Anchor != "" {
		t.Errorf("anchor leaked into shared node")
	}
	other := NewGrammar("H", "")
	if h := other.Literal("a"); other.Node(h) == g.Node(a1) {
		t.Errorf("grammars must not share nodes")
	}
}

func TestMaterializeOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	g := NewGrammar("G", "")
	calls := 0
	var lazy Handle
	lazy = g.Lazy(Sequence, func() []Handle {
		calls++
		return []Handle{g.Literal("x"), g.Literal("y")}
	})
	if n := len(g.Operands(lazy)); n != 2 {
		t.Fatalf("expected 2 operands, have %d", n)
	}
	g.Operands(lazy)
	if calls != 1 {
		t.Errorf("expected definition to run once, ran %d times", calls)
	}
	err := g.Materialize(lazy)
	if !errors.Is(err, ruleforge.ErrMaterialized) || ruleforge.KindOf(err) != ruleforge.GrammarStructure {
		t.Errorf("expected grammar structure error for second materialization, have %v", err)
	}
}

func TestNamespace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	g := NewGrammar("G", "")
	ns := g.Namespace()
	if _, err := ns.Declare("expr.add", 0); err != nil {
		t.Fatal(err)
	}
	if ns.Lookup("expr") == nil {
		t.Fatalf("expected prefix 'expr' to be declared implicitly")
	}
	if ns.Lookup("expr").Assigned() {
		t.Errorf("intermediate entry must not have a right-hand side")
	}
	if _, err := ns.Assign("expr.add", g.Literal("+"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := ns.Assign("expr.add", g.Literal("+"), 0); !errors.Is(err, ruleforge.ErrReassigned) {
		t.Errorf("expected re-assignment to fail, have %v", err)
	}
	if _, err := ns.Assign("term", g.Literal("1"), 0); !errors.Is(err, ruleforge.ErrUndeclared) {
		t.Errorf("expected assignment of undeclared name to fail, have %v", err)
	}
	_, err := ns.Resolve("expr.mul.x")
	var rerr *ruleforge.Error
	if !errors.As(err, &rerr) || rerr.Kind != ruleforge.GrammarSemantics {
		t.Fatalf("expected reference error, have %v", err)
	}
	t.Logf("error = %v", err)
}

func TestVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	b := NewBuilder("G")
	g := b.G()
	b.Rule("expr", g.Ref("term"))
	b.Rule("expr.add", g.Seq(g.Ref("expr"), g.Literal("+"), g.Ref("term")))
	b.Declare("expr.group")
	b.Rule("expr.group.paren", g.Seq(g.Literal("("), g.Ref("expr"), g.Literal(")")))
	b.Rule("expr.mul", g.Seq(g.Ref("expr"), g.Literal("*"), g.Ref("term")))
	b.Rule("term", g.CharSet("0123456789", false))
	G, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, v := range G.Namespace().Lookup("expr").Variants() {
		names = append(names, v.Name)
	}
	expected := []string{"expr", "expr.add", "expr.group.paren", "expr.mul"}
	if len(names) != len(expected) {
		t.Fatalf("expected variants %v, have %v", expected, names)
	}
	for i := range names {
		if names[i] != expected[i] {
			t.Errorf("expected variants %v, have %v", expected, names)
		}
	}
	if ref := G.Node(G.Ref("expr")); ref.Target == nil || ref.Target.Name != "expr" {
		t.Errorf("reference to expr not resolved")
	}
}

func TestResolveRefs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	src := "a = b\nb = NUM c"
	g := NewGrammar("refs", src)
	ns := g.Namespace()
	ns.Declare("a", 0)
	ns.Declare("b", 6)
	ns.Assign("a", g.At(g.Ref("b"), 4), 0)
	ns.Assign("b", g.Seq(g.At(g.Ref("NUM"), 10), g.At(g.Ref("c"), 14)), 6)
	err := g.ResolveRefs(func(name string) bool { return name == "NUM" })
	var rerr *ruleforge.Error
	if !errors.As(err, &rerr) || !errors.Is(err, ruleforge.ErrUndeclared) {
		t.Fatalf("expected undeclared reference error, have %v", err)
	}
	if rerr.Line != 2 || rerr.Col != 9 {
		t.Errorf("expected error at 2:9, have %d:%d", rerr.Line, rerr.Col)
	}
	if g.Node(g.Ref("NUM")).Kind != Token {
		t.Errorf("expected NUM to be turned into a token terminal")
	}
}

func TestCheckAnchors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	g := NewGrammar("G", "")
	digit := g.CharSet("0123456789", false)
	repeated := g.Seq(g.Anchored("x", digit), g.Star(g.Seq(g.Literal(","), g.Anchored("x", digit))))
	if err := g.CheckAnchors(repeated); err != nil {
		t.Errorf("anchors in repetitions accumulate, but: %v", err)
	}
	alternatives := g.Choice(g.Anchored("x", digit), g.Anchored("x", g.Literal("-")))
	if err := g.CheckAnchors(alternatives); err != nil {
		t.Errorf("anchors in different alternatives do not clash, but: %v", err)
	}
	dup := g.Seq(g.Anchored("x", digit), g.Literal("+"), g.Anchored("x", digit))
	if err := g.CheckAnchors(dup); !errors.Is(err, ruleforge.ErrDuplicateAnchor) {
		t.Errorf("expected duplicate anchor error, have %v", err)
	}
}

func TestIteratedAnchors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	g := NewGrammar("G", "")
	digit := g.CharSet("0123456789", false)
	rhs := g.Seq(
		g.Anchored("x", digit),
		g.Star(g.Seq(g.Literal(","), g.Anchored("x", digit))),
		g.Option(g.Seq(g.Literal(";"), g.Anchored("tail", g.Ref("rest")))),
		g.Anchored("all", g.Plus(g.Anchored("inner", digit))),
		g.Anchored("last", digit),
	)
	iterated := g.IteratedAnchors(rhs)
	if !iterated["x"] || !iterated["tail"] {
		t.Errorf("expected $x and $tail to be iterated, have %v", iterated)
	}
	if iterated["all"] || iterated["last"] {
		t.Errorf("$all and $last are not below a repetition, have %v", iterated)
	}
	if iterated["inner"] {
		t.Errorf("anchors below an anchored node are not arguments, have %v", iterated)
	}
	if len(g.IteratedAnchors(g.Anchored("y", digit))) != 0 {
		t.Errorf("expected no iterated anchors for a single anchored term")
	}
}

func TestDig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.bnf")
	defer teardown()
	//
	g := NewGrammar("G", "")
	rhs := g.Seq(g.Literal("("), g.Star(g.Choice(g.Literal("a"), g.Ref("b"))), g.Literal(")"))
	terms, err := g.Dig(rhs, TerminalClass, true, 0, Unbounded, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 3 {
		t.Errorf("expected 3 terminals, have %d", len(terms))
	}
	_, err = g.Dig(rhs, ReferenceClass, false, 2, 2, nil)
	if !errors.Is(err, ruleforge.ErrCardinality) || ruleforge.KindOf(err) != ruleforge.GrammarStructure {
		t.Errorf("expected cardinality error from grammar layer, have %v", err)
	}
}

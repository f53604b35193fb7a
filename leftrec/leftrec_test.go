package leftrec

import (
	"errors"
	"testing"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/ruleforge/match"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.leftrec")
	defer teardown()
	//
	b := bnf.NewBuilder("G")
	g := b.G()
	b.Rule("ws", g.Star(g.CharSet(" ", false)))
	b.Rule("list", g.Seq(g.Ref("ws"), g.Ref("item"), g.Literal(","), g.Ref("list")))
	b.Rule("item", g.Plus(g.CharSet("abc", false)))
	G, err := b.Grammar()
	require.NoError(t, err)
	Dependencies(G)
	list := G.Namespace().Lookup("list")
	names := func(es []*bnf.Entry) []string {
		var ns []string
		for _, e := range es {
			ns = append(ns, e.Name)
		}
		return ns
	}
	// ws matches the empty input, so item is called at the start position as well
	assert.Equal(t, []string{"ws", "item"}, names(list.LeftCalls))
	assert.Equal(t, []string{"ws", "item", "list"}, names(list.Calls))
}

func TestDirectRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.leftrec")
	defer teardown()
	//
	b := bnf.NewBuilder("G")
	g := b.G()
	b.Rule("expr", g.Ref("term"))
	b.Rule("expr.add", g.Seq(g.Ref("expr"), g.Literal("+"), g.Ref("term")))
	b.Rule("term", g.CharSet("0123456789", false))
	G, err := b.Grammar()
	require.NoError(t, err)
	expr := G.Namespace().Lookup("expr")
	add := G.Namespace().Lookup("expr.add")
	res, err := Resolve(G, expr)
	require.NoError(t, err)
	gr := res.GrowthFor(expr)
	require.NotNil(t, gr, "expected expr to be grown")
	assert.Equal(t, []*bnf.Entry{expr}, gr.Members)
	require.Len(t, gr.Base, 1)
	assert.Equal(t, expr, gr.Base[0].Variant)
	require.Len(t, gr.Recursive, 1)
	assert.Equal(t, add, gr.Recursive[0].Variant)
	assert.True(t, expr.Cycle)
	assert.Nil(t, res.GrowthFor(G.Namespace().Lookup("term")))
	assert.True(t, G.Node(G.Operand(add.RHS, 0)).Recursive)
	//
	s := match.NewSession(G, res, "1+2+3")
	r, err := s.Test(expr.LHS, 0)
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, 5, r.Length)
}

func TestIndirectRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.leftrec")
	defer teardown()
	//
	b := bnf.NewBuilder("G")
	g := b.G()
	b.Rule("A", g.Choice(g.Seq(g.Ref("B"), g.Literal("x")), g.Literal("y")))
	b.Rule("B", g.Seq(g.Ref("A"), g.Literal("z")))
	G, err := b.Grammar()
	require.NoError(t, err)
	A := G.Namespace().Lookup("A")
	B := G.Namespace().Lookup("B")
	res, err := Resolve(G, A)
	require.NoError(t, err)
	gr := res.GrowthFor(A)
	require.NotNil(t, gr)
	assert.Equal(t, []*bnf.Entry{A, B}, gr.Members)
	require.Len(t, gr.Base, 1)
	assert.Equal(t, "\"y\"", G.Node(gr.Base[0].Body).String())
	require.Len(t, gr.Recursive, 1)
	assert.Nil(t, res.GrowthFor(B), "B is entered through A only")
	assert.True(t, B.Cycle)
	//
	s := match.NewSession(G, res, "yzxzx")
	r, err := s.Test(A.LHS, 0)
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, 5, r.Length)
}

func TestMissingBaseCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.leftrec")
	defer teardown()
	//
	src := "term = '0123456789'\nexpr = expr \"+\" term\n"
	G := bnf.NewGrammar("calc", src)
	ns := G.Namespace()
	_, err := ns.Declare("term", 0)
	require.NoError(t, err)
	_, err = ns.Declare("expr", 20)
	require.NoError(t, err)
	_, err = ns.Assign("term", G.CharSet("0123456789", false), 0)
	require.NoError(t, err)
	_, err = ns.Assign("expr", G.Seq(G.Ref("expr"), G.Literal("+"), G.Ref("term")), 20)
	require.NoError(t, err)
	require.NoError(t, G.ResolveRefs(nil))
	//
	_, err = Resolve(G, ns.Lookup("expr"))
	require.Error(t, err)
	t.Logf("error: %v", err)
	if !errors.Is(err, ruleforge.ErrNoBaseCase) {
		t.Errorf("expected missing base case, have %v", err)
	}
	e := err.(*ruleforge.Error)
	assert.Equal(t, ruleforge.GrammarSemantics, e.Kind)
	assert.Equal(t, "expr", e.Rule)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 1, e.Col)
}

func TestNonLeftCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.leftrec")
	defer teardown()
	//
	b := bnf.NewBuilder("G")
	g := b.G()
	b.Rule("expr", g.Choice(g.Seq(g.Literal("("), g.Ref("expr"), g.Literal(")")), g.Literal("n")))
	G, err := b.Grammar()
	require.NoError(t, err)
	expr := G.Namespace().Lookup("expr")
	res, err := Resolve(G, expr)
	require.NoError(t, err)
	assert.Empty(t, res.Targets, "recursion behind a parenthesis is not left recursion")
	assert.False(t, expr.Cycle)
}

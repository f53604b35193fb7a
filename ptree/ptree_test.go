package ptree

import (
	"testing"

	"github.com/npillmayer/ruleforge/bnf"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// build constructs a tree for "1+2" shaped like
//
//    seq
//     ├── "1"
//     ├── "+"
//     └── "2"
//
func build(t *testing.T) (*Tree, []int) {
	tr := New("1+2")
	seq := tr.Add(bnf.NoHandle, 0)
	one := tr.Add(bnf.NoHandle, 1)
	plus := tr.Add(bnf.NoHandle, 1)
	two := tr.Add(bnf.NoHandle, 1)
	tr.Append(seq, one)
	tr.Append(seq, plus)
	tr.Append(seq, two)
	tr.Root = seq
	return tr, []int{seq, one, plus, two}
}

func TestSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.ptree")
	defer teardown()
	//
	tr, n := build(t)
	if tr.Len(n[0]) != 3 {
		t.Errorf("expected root to have length 3, has %d", tr.Len(n[0]))
	}
	if tr.Start(n[3]) != 2 || tr.Matched(n[3]) != "2" {
		t.Errorf("expected third child at 2 matching \"2\", is %v %q", tr.Span(n[3]), tr.Matched(n[3]))
	}
	var text string
	for _, ch := range tr.Children(n[0]) {
		text += tr.Matched(ch)
	}
	if text != tr.Matched(n[0]) {
		t.Errorf("children do not reproduce the parent's text: %q vs %q", text, tr.Matched(n[0]))
	}
}

func TestSwap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.ptree")
	defer teardown()
	//
	tr := New("1+2+3")
	// inner: 1+2, built first, detached
	inner := tr.Add(bnf.NoHandle, 0)
	for _, l := range []int{1, 1, 1} {
		tr.Append(inner, tr.Add(bnf.NoHandle, l))
	}
	tr.Node(inner).Anchor = "outer"
	// outer: <placeholder>+3
	outer := tr.Add(bnf.NoHandle, 0)
	ph := tr.Add(bnf.NoHandle, 3)
	tr.Node(ph).Placeholder = true
	tr.Node(ph).Anchor = "v1"
	tr.Append(outer, ph)
	tr.Append(outer, tr.Add(bnf.NoHandle, 1))
	tr.Append(outer, tr.Add(bnf.NoHandle, 1))
	tr.Root = outer
	if tr.Matched(ph) != "1+2" {
		t.Errorf("placeholder should cover \"1+2\", covers %q", tr.Matched(ph))
	}
	if err := tr.Swap(ph, inner); err != nil {
		t.Fatal(err)
	}
	if tr.Children(outer)[0] != inner || tr.Parent(inner) != outer {
		t.Errorf("inner node not swapped into placeholder slot")
	}
	if tr.Parent(ph) != None {
		t.Errorf("placeholder not detached")
	}
	if tr.Node(inner).Anchor != "v1" {
		t.Errorf("swapped node should carry the slot's anchor, has %q", tr.Node(inner).Anchor)
	}
	if tr.Matched(outer) != "1+2+3" || tr.Start(tr.Children(inner)[2]) != 2 {
		t.Errorf("spans wrong after swap: %v", tr.Dump(nil))
	}
	if err := tr.AssertUnique(); err != nil {
		t.Error(err)
	}
}

func TestDepth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.ptree")
	defer teardown()
	//
	tr, n := build(t)
	tr.Node(n[0]).Boundary = true
	if d := tr.Depth(n[1]); d != 1 {
		t.Errorf("expected depth 1 below a rule call, have %d", d)
	}
	if d := tr.Depth(n[0]); d != 0 {
		t.Errorf("expected root depth 0, have %d", d)
	}
}

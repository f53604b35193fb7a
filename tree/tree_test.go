package tree

import (
	"errors"
	"reflect"
	"testing"

	"github.com/npillmayer/ruleforge"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type mapShape map[int][]int

func (m mapShape) Children(n int) []int {
	return m[n]
}

//       0
//     / | \
//    1  2  3
//   / \     \
//  4   5     6
//            |
//            7
var sample = mapShape{
	0: {1, 2, 3},
	1: {4, 5},
	3: {6},
	6: {7},
}

func collect(s Shape, depthFirst bool, stopAt func(int) bool) []int {
	var visited []int
	Walk(s, 0, func(n int) interface{} {
		visited = append(visited, n)
		if stopAt(n) {
			return n
		}
		return nil
	}, nil, depthFirst)
	return visited
}

func TestWalkOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.tree")
	defer teardown()
	//
	never := func(int) bool { return false }
	if v := collect(sample, true, never); !reflect.DeepEqual(v, []int{1, 4, 5, 2, 3, 6, 7}) {
		t.Errorf("depth first order is %v", v)
	}
	if v := collect(sample, false, never); !reflect.DeepEqual(v, []int{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("breadth first order is %v", v)
	}
}

func TestWalkPrunes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.tree")
	defer teardown()
	//
	stopAt := func(n int) bool { return n == 1 || n == 6 }
	for _, df := range []bool{true, false} {
		v := collect(sample, df, stopAt)
		for _, n := range v {
			if n == 4 || n == 5 || n == 7 {
				t.Errorf("walk (depth first=%v) descended into pruned subtree: %v", df, v)
			}
		}
	}
}

func TestDig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.tree")
	defer teardown()
	//
	odd := func(n int) bool { return n%2 == 1 }
	found, err := Dig(sample, 0, odd, true, 1, -1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(found, []int{1, 3}) { // 5 and 7 are hidden below 1 and 3
		t.Errorf("expected outermost odd nodes [1 3], have %v", found)
	}
	_, err = Dig(sample, 0, odd, false, 3, 3, nil)
	if !errors.Is(err, ruleforge.ErrCardinality) {
		t.Errorf("expected cardinality error, have %v", err)
	}
	custom := errors.New("custom")
	_, err = Dig(sample, 0, odd, false, 0, 1, custom)
	if err != custom {
		t.Errorf("expected override error, have %v", err)
	}
}

func TestAssertUnique(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ruleforge.tree")
	defer teardown()
	//
	if err := AssertUnique(sample, 0); err != nil {
		t.Errorf("sample is a tree, but: %v", err)
	}
	dag := mapShape{0: {1, 2}, 1: {3}, 2: {3}}
	if err := AssertUnique(dag, 0); !errors.Is(err, ruleforge.ErrNotUnique) {
		t.Errorf("expected DAG to be rejected, have %v", err)
	}
	cyclic := mapShape{0: {1}, 1: {0}}
	if err := AssertUnique(cyclic, 0); !errors.Is(err, ruleforge.ErrNotUnique) {
		t.Errorf("expected cycle to be rejected, have %v", err)
	}
}

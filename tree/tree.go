package tree

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/ruleforge"
)

// Shape is the minimal view of a tree-shaped arena: nodes are integer handles,
// and every node knows its ordered children.
type Shape interface {
	Children(n int) []int
}

// Stopper decides for a visited node whether it is a target of a walk. A non-nil
// return value marks the node as a target; the value is handed to the processor.
// A nil return value lets the walk continue into the node's children.
type Stopper func(n int) interface{}

// Processor is called for every target of a walk.
type Processor func(n int, mark interface{})

// Walk visits the descendants of root (root itself is not visited).
// For every node, stop decides whether the node is a target. Targets are
// handed to process and their subtrees are pruned from the walk; all other
// nodes are descended into. With depthFirst set, nodes are visited in
// pre-order, otherwise level by level. Pruning is the same for both modes.
func Walk(s Shape, root int, stop Stopper, process Processor, depthFirst bool) {
	if s == nil || stop == nil {
		return
	}
	if process == nil {
		process = func(int, interface{}) {}
	}
	if depthFirst {
		walkDepthFirst(s, root, stop, process)
		return
	}
	walkBreadthFirst(s, root, stop, process)
}

func walkDepthFirst(s Shape, root int, stop Stopper, process Processor) {
	stack := arraystack.New()
	pushReversed(stack, s.Children(root))
	for !stack.Empty() {
		top, _ := stack.Pop()
		n := top.(int)
		if mark := stop(n); mark != nil {
			process(n, mark)
			continue
		}
		pushReversed(stack, s.Children(n))
	}
}

func pushReversed(stack *arraystack.Stack, children []int) {
	for i := len(children) - 1; i >= 0; i-- {
		stack.Push(children[i])
	}
}

func walkBreadthFirst(s Shape, root int, stop Stopper, process Processor) {
	queue := arraylist.New()
	for _, ch := range s.Children(root) {
		queue.Add(ch)
	}
	for !queue.Empty() {
		front, _ := queue.Get(0)
		queue.Remove(0)
		n := front.(int)
		if mark := stop(n); mark != nil {
			process(n, mark)
			continue
		}
		for _, ch := range s.Children(n) {
			queue.Add(ch)
		}
	}
}

// Dig collects the outermost descendants of root for which match is true.
// The number of nodes found must lie within [min…max]; a negative max means
// unbounded. If the count is out of bounds, Dig returns the nodes found together
// with an error: override, if it is non-nil, or a parse-tree error naming the
// expected and the actual count.
func Dig(s Shape, root int, match func(int) bool, depthFirst bool, min, max int,
	override error) ([]int, error) {
	//
	var found []int
	Walk(s, root, func(n int) interface{} {
		if match(n) {
			return true
		}
		return nil
	}, func(n int, _ interface{}) {
		found = append(found, n)
	}, depthFirst)
	if len(found) < min || (max >= 0 && len(found) > max) {
		if override != nil {
			return found, override
		}
		tracer().Debugf("dig below %d: found %d nodes, expected %s", root, len(found), bounds(min, max))
		return found, ruleforge.Errorf(ruleforge.ParseTree, ruleforge.ErrCardinality,
			"expected %s nodes, found %d", bounds(min, max), len(found))
	}
	return found, nil
}

func bounds(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d", min)
	case min == max:
		return fmt.Sprintf("exactly %d", min)
	}
	return fmt.Sprintf("%d to %d", min, max)
}

// attachment is the context a node is reached through: its parent and its depth.
type attachment struct {
	parent, depth int
}

// AssertUnique checks that every node below root is reachable through exactly one
// (parent, depth) context, i.e. that the structure is a tree and not a DAG.
// Cycles are reported as well.
func AssertUnique(s Shape, root int) error {
	seen := make(map[int]attachment)
	onPath := make(map[int]bool)
	var visit func(n, parent, depth int) error
	visit = func(n, parent, depth int) error {
		if onPath[n] {
			return ruleforge.Errorf(ruleforge.ParseTree, ruleforge.ErrNotUnique,
				"node %d is part of a cycle", n)
		}
		at := attachment{parent: parent, depth: depth}
		if prev, ok := seen[n]; ok {
			if prev != at {
				tracer().Errorf("node %d attached at %v and at %v", n, prev, at)
				return ruleforge.Errorf(ruleforge.ParseTree, ruleforge.ErrNotUnique,
					"node %d has parents %d (depth %d) and %d (depth %d)",
					n, prev.parent, prev.depth, parent, depth)
			}
			return nil
		}
		seen[n] = at
		onPath[n] = true
		for _, ch := range s.Children(n) {
			if err := visit(ch, n, depth+1); err != nil {
				return err
			}
		}
		delete(onPath, n)
		return nil
	}
	return visit(root, -1, 0)
}

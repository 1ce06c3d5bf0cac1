package ast

import "github.com/edwingeng/deque"

// Release tears down the tree rooted at root, following owned edges only
// (operands, binding values, scope bodies). Every released node loses its
// children and its back-reference. It returns the number of nodes released;
// nodes already released are skipped, so each node is released exactly once.
func Release(root Node) int {
	if root == nil || root.base().released {
		return 0
	}
	pending := deque.NewDeque()
	pending.PushBack(root)

	count := 0
	for pending.Len() != 0 {
		node := pending.Front().(Node)
		pending.PopFront()

		impl := node.base()
		if impl.released {
			continue
		}
		impl.released = true
		impl.parent = nil
		count++

		switch n := node.(type) {
		case *FunctionCall:
			for _, operand := range n.Operands {
				if operand != nil {
					pending.PushBack(operand)
				}
			}
			n.Operands = nil
		case *Scope:
			if n.Bindings != nil {
				for _, binding := range n.Bindings.bindings {
					if binding.Value != nil {
						pending.PushBack(binding.Value)
					}
					binding.Value = nil
				}
				n.Bindings.bindings = nil
			}
			if n.Body != nil {
				pending.PushBack(n.Body)
			}
			n.Body = nil
		}
	}
	return count
}

// Released reports whether node has been torn down by Release.
func Released(node Node) bool {
	return node != nil && node.base().released
}

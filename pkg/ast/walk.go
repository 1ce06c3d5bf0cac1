package ast

// Inspect visits root and its owned descendants in depth-first order,
// operands left to right and binding values before the scope body. Returning
// false from fn skips the children of that node.
func Inspect(root Node, fn func(Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	switch n := root.(type) {
	case *FunctionCall:
		for _, operand := range n.Operands {
			Inspect(operand, fn)
		}
	case *Scope:
		for _, binding := range n.Bindings.Bindings() {
			Inspect(binding.Value, fn)
		}
		Inspect(n.Body, fn)
	}
}

// CountNodes returns the number of nodes owned by the tree rooted at root.
func CountNodes(root Node) int {
	count := 0
	Inspect(root, func(Node) bool {
		count++
		return true
	})
	return count
}

// Depth returns the nesting depth of root; a leaf has depth 1.
func Depth(root Node) int {
	if root == nil {
		return 0
	}
	deepest := 0
	switch n := root.(type) {
	case *FunctionCall:
		for _, operand := range n.Operands {
			if d := Depth(operand); d > deepest {
				deepest = d
			}
		}
	case *Scope:
		for _, binding := range n.Bindings.Bindings() {
			if d := Depth(binding.Value); d > deepest {
				deepest = d
			}
		}
		if d := Depth(n.Body); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

package optimize

import (
	"fmt"

	"github.com/viraptor/basalt/internal/ast"
)

// maxPasses bounds the fixpoint loop. Every pass that changes anything
// strictly reduces the tree, so hitting the bound means a node is
// oscillating, which is a defect.
const maxPasses = 100

// Tree optimizes a whole tree to a global fixpoint: bottom-up compute
// passes repeat until a pass emits no new change signals. The returned
// expression is the final root, which may differ from the input when the
// root itself was rewritten.
func Tree(cc *Collection, root ast.Expression) (ast.Expression, error) {
	for pass := 0; pass < maxPasses; pass++ {
		before := len(cc.Signals())

		replaced, err := computeRecursive(cc, root)
		if err != nil {
			return nil, err
		}
		root = replaced

		if len(cc.Signals()) == before {
			return root, nil
		}
	}
	return nil, fmt.Errorf("optimization did not reach a fixpoint after %d passes", maxPasses)
}

// computeRecursive computes children before their parent, so every node
// sees its operands in their most reduced form.
func computeRecursive(cc *Collection, expr ast.Expression) (ast.Expression, error) {
	for i, child := range expr.Children() {
		replaced, err := computeRecursive(cc, child)
		if err != nil {
			return nil, err
		}
		if replaced != child {
			expr.SetChild(i, replaced)
		}
	}

	return expr.Compute(cc)
}

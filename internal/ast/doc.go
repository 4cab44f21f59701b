// Package ast defines the expression tree the Basalt optimizer rewrites.
//
// Nodes own their operand subtrees exclusively. A rewrite replaces a whole
// node through the value returned from Compute; no node ever mutates the
// operands of a still-live sibling. The optimizer driver is the only caller
// of SetChild, and only to install a replacement it was handed.
//
// The compute protocol:
//
// Every expression implements Compute(cc) returning a replacement (itself
// when nothing changed) and an error that is only ever an internal invariant
// violation. Folding uncertainty and provable runtime exceptions never
// surface as errors - they degrade to "keep or replace the node, record what
// is known" through the ConstraintContext capabilities. Compute is a pure,
// terminating function of the node and the context's current knowledge, and
// it is idempotent: re-invoking it on an already-folded node returns the node
// unchanged and emits no new change signals. The driver relies on that to
// detect the fixpoint.
package ast

// Package optimize drives abstract interpretation over expression trees.
//
// A Collection is the working state of one optimization run: the facts
// proven so far, the exception exits and control-flow escapes registered by
// nodes, and the change signals that drive fixpoint detection. Tree runs
// bottom-up compute passes over a tree until a pass produces no new
// signals, at which point the tree is fully reduced.
package optimize

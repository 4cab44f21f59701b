package optimize

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/value"
)

// Collection is the constraint state of one optimization run. It implements
// ast.ConstraintContext. A Collection is not safe for concurrent use; each
// tree gets its own.
type Collection struct {
	runToken string

	// knowledge holds proven constant values keyed by node identity.
	// RemoveKnowledge drops entries when their subject escapes.
	knowledge map[ast.Expression]value.Value

	signals        []Change
	exceptionExits []value.ErrorKind
	escapes        []ast.Expression

	sink    Sink
	sinkErr error
}

// NewCollection creates an empty collection with a fresh run token.
func NewCollection() *Collection {
	return &Collection{
		runToken:  uuid.Must(uuid.NewV7()).String(),
		knowledge: make(map[ast.Expression]value.Value),
	}
}

// SetSink attaches a change sink. Every subsequent signal is forwarded to
// it in emission order.
func (c *Collection) SetSink(sink Sink) { c.sink = sink }

// RunToken identifies this run in traces.
func (c *Collection) RunToken() string { return c.runToken }

// Signals returns the change signals emitted so far, in order.
func (c *Collection) Signals() []Change { return c.signals }

// ExceptionExits returns the registered exception exit kinds, in
// registration order, duplicates included.
func (c *Collection) ExceptionExits() []value.ErrorKind { return c.exceptionExits }

// Escapes returns the nodes that registered a control-flow escape, in
// order.
func (c *Collection) Escapes() []ast.Expression { return c.escapes }

// Knowledge returns the proven constant value for the node, if any.
func (c *Collection) Knowledge(expr ast.Expression) (value.Value, bool) {
	v, ok := c.knowledge[expr]
	return v, ok
}

// SinkErr returns the first error the sink reported, if any. Sink failures
// never abort optimization; they surface here after the run.
func (c *Collection) SinkErr() error { return c.sinkErr }

func (c *Collection) OnExceptionRaiseExit(kind value.ErrorKind) {
	c.exceptionExits = append(c.exceptionExits, kind)
}

func (c *Collection) RemoveKnowledge(expr ast.Expression) {
	delete(c.knowledge, expr)
}

func (c *Collection) OnControlFlowEscape(node ast.Expression) {
	c.escapes = append(c.escapes, node)
}

// CompileTimeComputation runs the deferred computation and converts its
// outcome into a replacement node. A successful computation becomes a
// constant reference; a language-level exception becomes a provably-raising
// node carrying the identical exception kind and message. Any other error
// is an optimizer defect and aborts the run.
func (c *Collection) CompileTimeComputation(node ast.Expression, computation func() (value.Value, error), description string) (ast.Expression, error) {
	result, err := computation()
	if err != nil {
		rerr, ok := value.AsRuntimeError(err)
		if !ok {
			return nil, fmt.Errorf("compile time computation of %s at %s: %w", node.Kind(), node.SourceRef(), err)
		}

		replacement := ast.NewRaiseExpression(rerr.Kind, rerr.Message, node.SourceRef())
		c.OnExceptionRaiseExit(rerr.Kind)
		c.SignalChange("new_raise", node.SourceRef(),
			fmt.Sprintf("%s Predicted to raise %s exception.", description, rerr.Kind))
		return replacement, nil
	}

	replacement := ast.NewConstantRef(result, node.SourceRef())
	c.knowledge[replacement] = result
	c.SignalChange("new_constant", node.SourceRef(), description)
	return replacement, nil
}

func (c *Collection) SignalChange(tags string, ref ast.SourceRef, message string) {
	change := Change{Tags: tags, Ref: ref, Message: message}
	c.signals = append(c.signals, change)

	if c.sink != nil {
		if err := c.sink.RecordChange(c.runToken, len(c.signals), change); err != nil && c.sinkErr == nil {
			c.sinkErr = err
		}
	}
}

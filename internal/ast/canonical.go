package ast

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/viraptor/basalt/internal/value"
)

// treeHashDomain separates tree hashes from any other sha256 use.
const treeHashDomain = "basalt/tree/v1"

// dumpNode is the canonical JSON shape of one expression. Field order is
// fixed by the struct, so encoding is deterministic.
type dumpNode struct {
	Kind     string     `json:"kind"`
	Operator string     `json:"operator,omitempty"`
	Name     string     `json:"name,omitempty"`
	Value    string     `json:"value,omitempty"`
	Error    *dumpError `json:"error,omitempty"`
	Children []dumpNode `json:"children,omitempty"`
}

type dumpError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func buildDump(expr Expression) dumpNode {
	node := dumpNode{Kind: expr.Kind()}

	switch e := expr.(type) {
	case *ConstantRef:
		v, _ := e.ConstantValue()
		node.Value = norm.NFC.String(value.Repr(v))
	case *VariableRef:
		node.Name = e.Name()
	case *CallExpression:
		node.Name = e.Function()
	case *RaiseExpression:
		node.Error = &dumpError{
			Kind:    string(e.ErrorKind()),
			Message: norm.NFC.String(e.Message()),
		}
	case *BinaryOperation:
		node.Operator = e.Operator()
	case *InPlaceBinaryOperation:
		node.Operator = e.Operator()
	case *UnaryOperation:
		node.Operator = e.Operator()
	case *NotOperation:
		node.Operator = e.Operator()
	}

	children := expr.Children()
	if len(children) > 0 {
		node.Children = make([]dumpNode, len(children))
		for i, child := range children {
			node.Children[i] = buildDump(child)
		}
	}

	return node
}

// CanonicalDump renders the tree as deterministic JSON. Equal trees produce
// byte-identical dumps; the dump has no trailing newline.
func CanonicalDump(expr Expression) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(buildDump(expr)); err != nil {
		return nil, fmt.Errorf("encoding tree dump: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// TreeHash returns the hex digest of the canonical dump, domain separated
// so the digest never collides with other hashed artifacts.
func TreeHash(expr Expression) (string, error) {
	dump, err := CanonicalDump(expr)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(treeHashDomain))
	h.Write([]byte{0})
	h.Write(dump)
	return hex.EncodeToString(h.Sum(nil)), nil
}

package dag

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
)

// WriteGraphviz writes the nodes reachable from roots as a dot digraph.
// Roots are drawn with a double border.
func (p *Pool) WriteGraphviz(w io.Writer, roots ...Handle) error {
	bw := bufio.NewWriter(w)
	isRoot := make(map[Handle]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}

	fmt.Fprintln(bw, "digraph dag {")
	fmt.Fprintln(bw, "  node [shape=box];")
	for _, h := range p.Reachable(roots...) {
		e := p.entries[h]
		attrs := "label=" + strconv.Quote(p.label(e))
		if e.Kind == KindOperator {
			attrs += ", shape=ellipse"
		}
		if isRoot[h] {
			attrs += ", peripheries=2"
		}
		fmt.Fprintf(bw, "  n%d [%s];\n", h, attrs)
		for i, o := range e.Operands {
			if len(e.Operands) > 1 {
				fmt.Fprintf(bw, "  n%d -> n%d [label=\"%d\"];\n", h, o, i)
			} else {
				fmt.Fprintf(bw, "  n%d -> n%d;\n", h, o)
			}
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func (p *Pool) label(e Entry) string {
	switch e.Kind {
	case KindConstant:
		return e.Value.String()
	case KindVariable:
		return p.reg.Get(e.Param)
	}
	return e.Op.String()
}

// dag-json layout
const (
	documentType = "dag"

	nodeNumber          = "number"
	nodeParameter       = "parameter"
	nodeAddInverse      = "add-inverse"
	nodeMultiplyInverse = "multiply-inverse"
	nodeAdd             = "add"
	nodeMultiply        = "multiply"
)

type document struct {
	Type       string     `json:"type"`
	Parameters []string   `json:"parameters"`
	NumNodes   int        `json:"num-nodes"`
	Dag        []jsonNode `json:"dag"`
	Functions  []int      `json:"functions"`
}

type jsonNode struct {
	Operator     string   `json:"operator"`
	Numerator    *big.Int `json:"numerator,omitempty"`
	Denominator  *big.Int `json:"denominator,omitempty"`
	Parameter    string   `json:"parameter,omitempty"`
	Operand      *int     `json:"operand,omitempty"`
	OperandLeft  *int     `json:"operand-left,omitempty"`
	OperandRight *int     `json:"operand-right,omitempty"`
}

// WriteJSON writes the nodes reachable from roots in the dag-json layout.
// The layout only knows add, multiply and their inverses, so subtract and
// divide are written as a + (-b) and a * (1/b).
func (p *Pool) WriteJSON(w io.Writer, roots ...Handle) error {
	doc := document{Type: documentType, Parameters: p.reg.Names()}
	pos := make(map[Handle]int)
	emit := func(n jsonNode) int {
		doc.Dag = append(doc.Dag, n)
		return len(doc.Dag) - 1
	}
	ref := func(i int) *int { return &i }

	for _, h := range p.Reachable(roots...) {
		e := p.entries[h]
		switch e.Kind {
		case KindConstant:
			pos[h] = emit(jsonNode{Operator: nodeNumber, Numerator: e.Value.Num(), Denominator: e.Value.Den()})
		case KindVariable:
			pos[h] = emit(jsonNode{Operator: nodeParameter, Parameter: p.reg.Get(e.Param)})
		default:
			a := pos[e.Operands[0]]
			switch e.Op {
			case OpNegate:
				pos[h] = emit(jsonNode{Operator: nodeAddInverse, Operand: ref(a)})
			case OpReciprocal:
				pos[h] = emit(jsonNode{Operator: nodeMultiplyInverse, Operand: ref(a)})
			case OpAdd:
				pos[h] = emit(jsonNode{Operator: nodeAdd, OperandLeft: ref(a), OperandRight: ref(pos[e.Operands[1]])})
			case OpMultiply:
				pos[h] = emit(jsonNode{Operator: nodeMultiply, OperandLeft: ref(a), OperandRight: ref(pos[e.Operands[1]])})
			case OpSubtract:
				b := emit(jsonNode{Operator: nodeAddInverse, Operand: ref(pos[e.Operands[1]])})
				pos[h] = emit(jsonNode{Operator: nodeAdd, OperandLeft: ref(a), OperandRight: ref(b)})
			case OpDivide:
				b := emit(jsonNode{Operator: nodeMultiplyInverse, Operand: ref(pos[e.Operands[1]])})
				pos[h] = emit(jsonNode{Operator: nodeMultiply, OperandLeft: ref(a), OperandRight: ref(b)})
			}
		}
	}

	doc.NumNodes = len(doc.Dag)
	doc.Functions = make([]int, len(roots))
	for i, r := range roots {
		doc.Functions[i] = pos[r]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// LoadJSON reads a dag-json document into a new pool over reg. Parameters
// named by the document are registered. The returned handles correspond to
// the document's functions.
func LoadJSON(r io.Reader, reg *param.Registry, opts ...Option) (*Pool, []Handle, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, pverrors.DagInvalidDocument("malformed json", err)
	}
	if doc.Type != documentType {
		return nil, nil, pverrors.DagInvalidDocument(fmt.Sprintf("type %q, want %q", doc.Type, documentType), nil)
	}
	if doc.NumNodes != len(doc.Dag) {
		return nil, nil, pverrors.DagInvalidDocument(fmt.Sprintf("num-nodes is %d but dag has %d nodes", doc.NumNodes, len(doc.Dag)), nil)
	}
	for _, name := range doc.Parameters {
		reg.Register(name)
	}

	pool := NewPool(reg, opts...)
	handles := make([]Handle, len(doc.Dag))
	for i, n := range doc.Dag {
		h, err := pool.loadNode(n, i, handles)
		if err != nil {
			return nil, nil, err
		}
		handles[i] = h
	}

	roots := make([]Handle, len(doc.Functions))
	for i, f := range doc.Functions {
		if f < 0 || f >= len(handles) {
			return nil, nil, pverrors.DagInvalidDocument(fmt.Sprintf("function %d refers to node %d", i, f), nil)
		}
		roots[i] = handles[f]
	}
	return pool, roots, nil
}

func (p *Pool) loadNode(n jsonNode, index int, handles []Handle) (Handle, error) {
	operand := func(ref *int, key string) (Handle, error) {
		if ref == nil {
			return 0, pverrors.DagInvalidDocument(fmt.Sprintf("node %d: missing %s", index, key), nil)
		}
		if *ref < 0 || *ref >= index {
			return 0, pverrors.DagInvalidDocument(fmt.Sprintf("node %d: %s %d is not an earlier node", index, key, *ref), nil)
		}
		return handles[*ref], nil
	}
	unary := func(op Op) (Handle, error) {
		a, err := operand(n.Operand, "operand")
		if err != nil {
			return 0, err
		}
		return p.Apply(op, a)
	}
	binary := func(op Op) (Handle, error) {
		a, err := operand(n.OperandLeft, "operand-left")
		if err != nil {
			return 0, err
		}
		b, err := operand(n.OperandRight, "operand-right")
		if err != nil {
			return 0, err
		}
		return p.Apply(op, a, b)
	}

	switch n.Operator {
	case nodeNumber:
		if n.Numerator == nil || n.Denominator == nil {
			return 0, pverrors.DagInvalidDocument(fmt.Sprintf("node %d: number needs numerator and denominator", index), nil)
		}
		return p.Constant(fraction.FromBigPair(n.Numerator, n.Denominator)), nil
	case nodeParameter:
		if n.Parameter == "" {
			return 0, pverrors.DagInvalidDocument(fmt.Sprintf("node %d: missing parameter", index), nil)
		}
		return p.Parameter(n.Parameter), nil
	case nodeAddInverse:
		return unary(OpNegate)
	case nodeMultiplyInverse:
		return unary(OpReciprocal)
	case nodeAdd:
		return binary(OpAdd)
	case nodeMultiply:
		return binary(OpMultiply)
	}
	return 0, pverrors.DagInvalidDocument(fmt.Sprintf("node %d: unknown operator %q", index, n.Operator), nil)
}

package dag

import (
	"strconv"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
)

// Op identifies an operator node
type Op uint8

// Operators. Only those up to OpReciprocal can be applied; the rest are
// known names that Apply rejects.
const (
	OpAdd Op = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpReciprocal
	OpPow
	OpMin
	OpMax
	OpMod
)

var opNames = map[Op]string{
	OpAdd:        "add",
	OpSubtract:   "subtract",
	OpMultiply:   "multiply",
	OpDivide:     "divide",
	OpNegate:     "negate",
	OpReciprocal: "reciprocal",
	OpPow:        "pow",
	OpMin:        "min",
	OpMax:        "max",
	OpMod:        "mod",
}

// String returns the operator name
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Supported reports whether Apply accepts the operator
func (o Op) Supported() bool {
	return o >= OpAdd && o <= OpReciprocal
}

// Arity returns the number of operands the operator takes
func (o Op) Arity() int {
	switch o {
	case OpNegate, OpReciprocal:
		return 1
	}
	return 2
}

// priority orders operator nodes before arity and operands are compared
func (o Op) priority() int {
	switch o {
	case OpAdd, OpSubtract:
		return 1
	case OpMultiply, OpDivide:
		return 2
	case OpNegate, OpReciprocal:
		return 3
	}
	return 4
}

// ParseOp resolves an operator name. Unknown names are reported as
// unsupported operators.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, pverrors.DagUnsupportedOperator(name)
}

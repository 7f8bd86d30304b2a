package expr

import (
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/ordered"
	"github.com/dustlang/dustrun/internal/value"
)

// Environment is the insertion-ordered name→Value binding scope an
// expression is evaluated against. Later writes to an existing name
// overwrite its value without changing iteration order.
type Environment struct {
	vars *ordered.Map[value.Value]
}

// NewEnvironment returns an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{vars: ordered.New[value.Value]()}
}

// Set binds name to v.
func (e *Environment) Set(name string, v value.Value) {
	e.vars.Set(name, v)
}

// Get resolves name, reporting whether it is bound.
func (e *Environment) Get(name string) (value.Value, bool) {
	return e.vars.Get(name)
}

// Eval parses and evaluates src against env in one step.
func Eval(src string, env *Environment) (value.Value, error) {
	node, err := Parse(src)
	if err != nil {
		return value.Value{}, err
	}
	return node.eval(env)
}

func (n *intLit) eval(*Environment) (value.Value, error) { return value.Int(n.v), nil }

func (n *boolLit) eval(*Environment) (value.Value, error) { return value.Bool(n.v), nil }

func (n *stringLit) eval(*Environment) (value.Value, error) { return value.String(n.v), nil }

func (n *ident) eval(env *Environment) (value.Value, error) {
	v, ok := env.Get(n.name)
	if !ok {
		return value.Value{}, faults.NewRuntime("unknown identifier: %s", n.name)
	}
	return v, nil
}

func (n *binOp) eval(env *Environment) (value.Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return value.Value{}, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return value.Value{}, err
	}

	switch n.op {
	case "Or", "And":
		lb, ok1 := left.AsBool()
		rb, ok2 := right.AsBool()
		if !ok1 || !ok2 {
			return value.Value{}, faults.NewRuntime("%s requires two Bool operands", n.op)
		}
		if n.op == "Or" {
			return value.Bool(lb || rb), nil
		}
		return value.Bool(lb && rb), nil

	case "Eq":
		if left.Kind() != right.Kind() {
			return value.Value{}, faults.NewRuntime("Eq requires operands of equal type")
		}
		return value.Bool(left.Equal(right)), nil

	case "Lt", "Le", "Gt", "Ge":
		li, ok1 := left.AsInt()
		ri, ok2 := right.AsInt()
		if !ok1 || !ok2 {
			return value.Value{}, faults.NewRuntime("%s requires two Int operands", n.op)
		}
		switch n.op {
		case "Lt":
			return value.Bool(li < ri), nil
		case "Le":
			return value.Bool(li <= ri), nil
		case "Gt":
			return value.Bool(li > ri), nil
		default:
			return value.Bool(li >= ri), nil
		}

	case "Add", "Sub", "Mul", "Div":
		li, ok1 := left.AsInt()
		ri, ok2 := right.AsInt()
		if !ok1 || !ok2 {
			return value.Value{}, faults.NewRuntime("%s requires two Int operands", n.op)
		}
		switch n.op {
		case "Add":
			return value.Int(li + ri), nil
		case "Sub":
			return value.Int(li - ri), nil
		case "Mul":
			return value.Int(li * ri), nil
		default:
			if ri == 0 {
				return value.Value{}, faults.NewRuntime("division by zero")
			}
			return value.Int(li / ri), nil
		}

	default:
		return value.Value{}, faults.NewRuntime("unknown operator: %s", n.op)
	}
}

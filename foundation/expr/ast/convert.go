// File: convert.go
// Title: Map Conversion
// Description: Converts trees to and from generic maps so they can travel as
//              JSON, YAML or protobuf Struct values.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-02
// Modified: 2026-10-02

package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	exerr "github.com/msto63/exprkit/foundation/core/error"
)

// ToMap returns a JSON-shaped representation of n:
//
//	{"type": "BinaryOp", "op": "Add", "left": {...}, "right": {...}}
//
// Literal values are int64.
func ToMap(n Node) map[string]interface{} {
	switch x := n.(type) {
	case *Literal:
		return map[string]interface{}{"type": "Literal", "value": x.Value}
	case *Variable:
		return map[string]interface{}{"type": "Variable", "name": x.Name}
	case *BinaryOp:
		return map[string]interface{}{
			"type":  "BinaryOp",
			"op":    x.Op.String(),
			"left":  ToMap(x.Left),
			"right": ToMap(x.Right),
		}
	case *Assignment:
		return map[string]interface{}{
			"type":   "Assignment",
			"target": x.Target,
			"value":  ToMap(x.Value),
		}
	default:
		return nil
	}
}

// FromMap rebuilds a tree from the output of ToMap after it went through a
// generic decoder. Literal values may arrive as any integer type, as an
// integral float64, as json.Number or as a decimal string.
func FromMap(m map[string]interface{}) (Node, error) {
	if m == nil {
		return nil, invalid("missing node")
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "Literal":
		v, err := toInt64(m["value"])
		if err != nil {
			return nil, err
		}
		return &Literal{Value: v}, nil

	case "Variable":
		name, ok := m["name"].(string)
		if !ok || name == "" {
			return nil, invalid("variable without name")
		}
		return &Variable{Name: name}, nil

	case "BinaryOp":
		opName, _ := m["op"].(string)
		op, ok := ParseOperator(opName)
		if !ok {
			return nil, invalid(fmt.Sprintf("unknown operator %q", opName))
		}
		left, err := childFromMap(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := childFromMap(m, "right")
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: op, Left: left, Right: right}, nil

	case "Assignment":
		target, ok := m["target"].(string)
		if !ok || target == "" {
			return nil, invalid("assignment without target")
		}
		value, err := childFromMap(m, "value")
		if err != nil {
			return nil, err
		}
		return &Assignment{Target: target, Value: value}, nil

	default:
		return nil, invalid(fmt.Sprintf("unknown node type %q", typ))
	}
}

func childFromMap(m map[string]interface{}, key string) (Node, error) {
	child, ok := m[key].(map[string]interface{})
	if !ok {
		return nil, invalid(fmt.Sprintf("field %q is not a node", key))
	}
	return FromMap(child)
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return 0, invalid(fmt.Sprintf("literal %v is not an exact integer", x))
		}
		return int64(x), nil
	case json.Number:
		return toInt64(x.String())
	case string:
		if i, err := strconv.ParseInt(x, 10, 64); err == nil {
			return i, nil
		}
		u, err := strconv.ParseUint(x, 10, 64)
		if err != nil {
			return 0, invalid(fmt.Sprintf("literal %q is not an integer", x))
		}
		return int64(u), nil
	default:
		return 0, invalid(fmt.Sprintf("literal value of type %T", v))
	}
}

func invalid(msg string) error {
	return exerr.New("invalid tree: " + msg).
		WithCode(exerr.CodeInvalidInput).
		WithOperation("ast.FromMap")
}

package exprv1

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/exprkit/foundation/expr/ast"
)

// maxExactFloat is the largest magnitude a float64 holds without losing
// integer precision
const maxExactFloat = 1 << 53

// IntValue encodes v as a number when it fits a float64 exactly and as a
// decimal string otherwise
func IntValue(v int64) *structpb.Value {
	if v >= -maxExactFloat && v <= maxExactFloat {
		return structpb.NewNumberValue(float64(v))
	}
	return structpb.NewStringValue(strconv.FormatInt(v, 10))
}

// Int decodes a value written by IntValue
func Int(v *structpb.Value) (int64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
			return 0, fmt.Errorf("%v is not an exact integer", f)
		}
		return int64(f), nil
	case *structpb.Value_StringValue:
		return strconv.ParseInt(k.StringValue, 10, 64)
	default:
		return 0, fmt.Errorf("value of kind %T is not an integer", k)
	}
}

// TreeValue encodes a tree in the ast.ToMap shape
func TreeValue(node ast.Node) (*structpb.Value, error) {
	m := portable(ast.ToMap(node))
	if m == nil {
		return structpb.NewNullValue(), nil
	}
	return structpb.NewValue(m)
}

// Tree decodes a tree written by TreeValue
func Tree(v *structpb.Value) (ast.Node, error) {
	s := v.GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("tree is not an object")
	}
	return ast.FromMap(s.AsMap())
}

// portable replaces int64 literal values with kinds structpb can carry
// without precision loss
func portable(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case int64:
			if x >= -maxExactFloat && x <= maxExactFloat {
				out[k] = float64(x)
			} else {
				out[k] = strconv.FormatInt(x, 10)
			}
		case map[string]interface{}:
			out[k] = portable(x)
		default:
			out[k] = v
		}
	}
	return out
}

// Text returns the "text" field of a request
func Text(req *structpb.Struct) string {
	return req.GetFields()["text"].GetStringValue()
}

// TextRequest builds a request carrying text
func TextRequest(text string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"text": structpb.NewStringValue(text),
	}}
}

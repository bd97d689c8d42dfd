package ast

import "fmt"

// ValueType represents the type of a literal in a schema definition.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeArray   ValueType = "array"
	ValueTypeNull    ValueType = "null"
)

// ValueNode is a literal from the schema file (enum member, trigger value,
// expected value).
type ValueNode struct {
	Type     ValueType
	Value    interface{} // string, float64, bool, []*ValueNode, or nil
	Location Location
}

// String returns a display form of the value.
func (v *ValueNode) String() string {
	if v == nil || v.Type == ValueTypeNull {
		return "null"
	}
	switch v.Type {
	case ValueTypeString:
		return v.Value.(string)
	case ValueTypeArray:
		items := v.Value.([]*ValueNode)
		out := "["
		for i, item := range items {
			if i > 0 {
				out += ", "
			}
			out += item.String()
		}
		return out + "]"
	default:
		return fmt.Sprintf("%v", v.Value)
	}
}

// Interface returns the plain Go value, flattening arrays.
func (v *ValueNode) Interface() interface{} {
	if v == nil {
		return nil
	}
	if v.Type == ValueTypeArray {
		items := v.Value.([]*ValueNode)
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = item.Interface()
		}
		return out
	}
	return v.Value
}

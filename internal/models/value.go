package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a scalar property value: either a string or a number.
// The zero Value is the empty string.
type Value struct {
	kind PropertyType
	str  string
	num  float64
}

// StringValue creates a string Value
func StringValue(s string) Value {
	return Value{kind: TypeString, str: s}
}

// NumberValue creates a numeric Value
func NumberValue(n float64) Value {
	return Value{kind: TypeNumber, num: n}
}

// Type returns the kind tag of the value
func (v Value) Type() PropertyType {
	if v.kind == "" {
		return TypeString
	}
	return v.kind
}

// AsString returns the string variant
func (v Value) AsString() (string, bool) {
	if v.Type() != TypeString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric variant
func (v Value) AsNumber() (float64, bool) {
	if v.kind != TypeNumber {
		return 0, false
	}
	return v.num, true
}

// IsZero reports whether v is the empty string, which is what the zero
// Value holds
func (v Value) IsZero() bool {
	return v.Equal(Value{})
}

// Equal reports strict equality: same kind and same value
func (v Value) Equal(other Value) bool {
	if v.Type() != other.Type() {
		return false
	}
	if v.kind == TypeNumber {
		return v.num == other.num
	}
	return v.str == other.str
}

// String returns the display form, which is also the identity key used to
// de-duplicate candidate values.
func (v Value) String() string {
	if v.kind == TypeNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// UnmarshalYAML decodes a scalar; numeric scalars become numbers
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("property value must be a scalar, got %s at line %d", kindName(node.Kind), node.Line)
	}

	switch node.ShortTag() {
	case "!!int", "!!float":
		var n float64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("invalid number %q at line %d: %w", node.Value, node.Line, err)
		}
		*v = NumberValue(n)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}

// MarshalYAML encodes the value as a plain scalar
func (v Value) MarshalYAML() (interface{}, error) {
	if n, ok := v.AsNumber(); ok {
		return n, nil
	}
	return v.str, nil
}

// UnmarshalJSON decodes a JSON string or number
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case float64:
		*v = NumberValue(val)
	case string:
		*v = StringValue(val)
	default:
		return fmt.Errorf("property value must be a string or number, got %s", string(data))
	}
	return nil
}

// MarshalJSON encodes the value as a JSON string or number
func (v Value) MarshalJSON() ([]byte, error) {
	if n, ok := v.AsNumber(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(v.str)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

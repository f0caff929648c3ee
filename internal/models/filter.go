package models

// OperatorID identifies a filter operator
type OperatorID string

const (
	OpEquals      OperatorID = "equals"
	OpGreaterThan OperatorID = "greater_than"
	OpLessThan    OperatorID = "less_than"
	OpAny         OperatorID = "any"
	OpNone        OperatorID = "none"
	OpIn          OperatorID = "in"
	OpContains    OperatorID = "contains"
)

// Operator is a comparison kind restricted to compatible property types
type Operator struct {
	ID             OperatorID     `yaml:"id" json:"id" validate:"required"`
	Text           string         `yaml:"text" json:"text" validate:"required"`
	SupportedTypes []PropertyType `yaml:"supported_types" json:"supported_types" validate:"min=1,dive,required"`
}

// Supports reports whether the operator applies to a property type
func (o Operator) Supports(t PropertyType) bool {
	for _, st := range o.SupportedTypes {
		if st == t {
			return true
		}
	}
	return false
}

// TakesValue reports whether the operator needs a value to be chosen
func (o Operator) TakesValue() bool {
	return o.ID != OpAny && o.ID != OpNone
}

// MultiValue reports whether the operator takes a set of values
func (o Operator) MultiValue() bool {
	return o.ID == OpIn
}
